package config

import "time"

// ConsultationConfig bounds the question loop and the completeness judge.
type ConsultationConfig struct {
	// MaxQuestions is the hard ceiling on follow-ups per session.
	MaxQuestions int `yaml:"max_questions"`

	// MaxValidationRetries bounds how often validation may bounce the
	// session back to gathering before proceeding with what it has.
	MaxValidationRetries int `yaml:"max_validation_retries"`

	// JudgeTimeoutSeconds bounds one completeness judge call.
	JudgeTimeoutSeconds int `yaml:"judge_timeout_seconds"`
}

func DefaultConsultationConfig() ConsultationConfig {
	return ConsultationConfig{
		MaxQuestions:         8,
		MaxValidationRetries: 2,
		JudgeTimeoutSeconds:  10,
	}
}

func (c *ConsultationConfig) normalize() {
	d := DefaultConsultationConfig()
	if c.MaxQuestions <= 0 {
		c.MaxQuestions = d.MaxQuestions
	}
	if c.MaxValidationRetries < 0 {
		c.MaxValidationRetries = d.MaxValidationRetries
	}
	if c.JudgeTimeoutSeconds <= 0 {
		c.JudgeTimeoutSeconds = d.JudgeTimeoutSeconds
	}
}

// JudgeTimeout returns the judge call budget as a duration.
func (c ConsultationConfig) JudgeTimeout() time.Duration {
	return time.Duration(c.JudgeTimeoutSeconds) * time.Second
}
