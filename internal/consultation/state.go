// Package consultation implements the stateful marketing consultation engine:
// a multi-turn question/answer loop that gathers structured campaign
// parameters from free-text conversation before any campaign is generated.
//
// The package is organized around a small state machine:
//
//	INITIAL -> GATHERING <-> VALIDATING -> READY -> COMPLETED
//	                                   \-> FAILED
//
// The machine itself is pure over (state, answer); all external intelligence
// (the semantic completeness judge) is injected behind narrow interfaces so
// the whole loop is testable with deterministic fakes.
package consultation

import (
	"strings"
	"time"
)

// Stage is the discrete phase of a consultation.
type Stage string

const (
	StageInitial    Stage = "initial"    // Just created, first input not yet processed
	StageGathering  Stage = "gathering"  // Actively asking questions
	StageValidating Stage = "validating" // Checking if gathered info suffices
	StageReady      Stage = "ready"      // Sufficient info, finalizing
	StageCompleted  Stage = "completed"  // Terminal: ready for campaign handoff
	StageFailed     Stage = "failed"     // Terminal: unrecoverable error
)

// Terminal reports whether the stage accepts no further steps.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// Field names one of the six canonical intent fields.
type Field string

const (
	FieldGoal     Field = "goal"
	FieldAudience Field = "audience"
	FieldChannels Field = "channels"
	FieldBudget   Field = "budget"
	FieldTone     Field = "tone"
	FieldTimeline Field = "timeline"
)

// CoreFields are the three fields that must be present before a consultation
// can be considered complete. Tone and timeline are opportunistic only.
var CoreFields = []Field{FieldGoal, FieldAudience, FieldChannels}

// Intent is the fixed-field record of everything learned about the campaign.
// Unset fields are empty strings (nil slice for channels), never sentinel
// values like "unknown".
type Intent struct {
	Goal     string
	Audience string
	Channels []string
	Budget   string
	Tone     string
	Timeline string
}

// Get returns the value of a field as a single string. Channels are joined
// with ", " so callers that only care about presence can treat all six
// fields uniformly.
func (in Intent) Get(f Field) string {
	switch f {
	case FieldGoal:
		return in.Goal
	case FieldAudience:
		return in.Audience
	case FieldChannels:
		return strings.Join(in.Channels, ", ")
	case FieldBudget:
		return in.Budget
	case FieldTone:
		return in.Tone
	case FieldTimeline:
		return in.Timeline
	}
	return ""
}

// Has reports whether a field carries a value.
func (in Intent) Has(f Field) bool {
	if f == FieldChannels {
		return len(in.Channels) > 0
	}
	return strings.TrimSpace(in.Get(f)) != ""
}

// CoreComplete reports whether all three core fields are set.
func (in Intent) CoreComplete() bool {
	for _, f := range CoreFields {
		if !in.Has(f) {
			return false
		}
	}
	return true
}

// MissingCore returns the core fields that are still unset, in canonical order.
func (in Intent) MissingCore() []Field {
	var missing []Field
	for _, f := range CoreFields {
		if !in.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// clone returns a deep copy.
func (in Intent) clone() Intent {
	out := in
	if in.Channels != nil {
		out.Channels = append([]string(nil), in.Channels...)
	}
	return out
}

// Update is a partial intent delta produced by the extractor. Zero-value
// fields mean "no change"; the machine merges updates into the state's
// intent, so an Update never removes information.
type Update struct {
	Goal     string
	Audience string
	Channels []string
	Budget   string
	Tone     string
	Timeline string
}

// IsZero reports whether the update carries no field at all.
func (u Update) IsZero() bool {
	return u.Goal == "" && u.Audience == "" && len(u.Channels) == 0 &&
		u.Budget == "" && u.Tone == "" && u.Timeline == ""
}

// apply merges the update into an intent. Non-empty update fields overwrite;
// opportunistic extraction guarantees it only populates absent fields, so
// overwrite-on-merge implements both the "leave present fields untouched"
// rule and the "answer always wins" rule.
func (u Update) apply(in *Intent) {
	if u.Goal != "" {
		in.Goal = u.Goal
	}
	if u.Audience != "" {
		in.Audience = u.Audience
	}
	if len(u.Channels) > 0 {
		in.Channels = append([]string(nil), u.Channels...)
	}
	if u.Budget != "" {
		in.Budget = u.Budget
	}
	if u.Tone != "" {
		in.Tone = u.Tone
	}
	if u.Timeline != "" {
		in.Timeline = u.Timeline
	}
}

// QA is one question/answer exchange. Answered distinguishes "no answer yet"
// from an empty answer string.
type QA struct {
	Question string
	Field    Field // the intent field the question targets
	Answer   string
	Answered bool
	AskedAt  time.Time
}

// State is the complete record of one consultation session. It is mutated
// exclusively by Machine.Step (single writer); the session manager hands out
// defensive copies to everyone else.
type State struct {
	SessionID string
	CreatedAt time.Time

	// RawInput is every user utterance in arrival order, append-only.
	RawInput []string

	Stage  Stage
	Intent Intent

	// QAHistory holds every question asked. Invariant: at most the last
	// entry may be unanswered.
	QAHistory []QA

	QuestionCount int
	MaxQuestions  int

	// ValidationRetries counts VALIDATING -> GATHERING bounces; bounded by
	// MaxValidationRetries so the loop cannot cycle forever below the
	// question ceiling.
	ValidationRetries    int
	MaxValidationRetries int

	HasEnoughInfo bool

	// FinalPlan is the human-readable consultation summary, set on READY.
	FinalPlan string

	// Meta carries diagnostic breadcrumbs. Never consulted for control flow.
	Meta map[string]string
}

// NewState creates a fresh consultation for the given first utterance.
func NewState(sessionID, initialInput string, maxQuestions, maxValidationRetries int) *State {
	return &State{
		SessionID:            sessionID,
		CreatedAt:            time.Now(),
		RawInput:             []string{initialInput},
		Stage:                StageInitial,
		MaxQuestions:         maxQuestions,
		MaxValidationRetries: maxValidationRetries,
		Meta:                 make(map[string]string),
	}
}

// InitialInput returns the utterance that opened the session.
func (s *State) InitialInput() string {
	if len(s.RawInput) == 0 {
		return ""
	}
	return s.RawInput[0]
}

// AwaitingAnswer reports whether the last question is still unanswered.
func (s *State) AwaitingAnswer() bool {
	if len(s.QAHistory) == 0 {
		return false
	}
	return !s.QAHistory[len(s.QAHistory)-1].Answered
}

// LastQuestion returns the most recent QA entry, or nil.
func (s *State) LastQuestion() *QA {
	if len(s.QAHistory) == 0 {
		return nil
	}
	return &s.QAHistory[len(s.QAHistory)-1]
}

// CheckIntegrity verifies the structural invariants of the QA history:
// at most one unanswered entry, and only in last position. A violation
// means some writer bypassed the state machine.
func (s *State) CheckIntegrity() error {
	for i, qa := range s.QAHistory {
		if !qa.Answered && i != len(s.QAHistory)-1 {
			return &CorruptedStateError{
				SessionID: s.SessionID,
				Detail:    "unanswered question is not the last history entry",
				Snapshot:  s.Clone(),
			}
		}
	}
	if s.QuestionCount < 0 || s.QuestionCount != len(s.QAHistory) {
		return &CorruptedStateError{
			SessionID: s.SessionID,
			Detail:    "question count does not match history length",
			Snapshot:  s.Clone(),
		}
	}
	return nil
}

// Clone returns a deep copy of the state. Step operates on a clone so a
// failed step leaves the caller's state untouched.
func (s *State) Clone() *State {
	out := *s
	out.RawInput = append([]string(nil), s.RawInput...)
	out.QAHistory = append([]QA(nil), s.QAHistory...)
	out.Intent = s.Intent.clone()
	out.Meta = make(map[string]string, len(s.Meta))
	for k, v := range s.Meta {
		out.Meta[k] = v
	}
	return &out
}

// Snapshot is the six-field view handed to the semantic completeness judge
// and embedded in campaign requests. Absent fields are empty strings.
type Snapshot struct {
	Goal     string
	Audience string
	Channels []string
	Budget   string
	Tone     string
	Timeline string

	QuestionsAsked int
	InitialInput   string
}

// SnapshotIntent captures the current intent for external evaluation.
func (s *State) SnapshotIntent() Snapshot {
	in := s.Intent.clone()
	return Snapshot{
		Goal:           in.Goal,
		Audience:       in.Audience,
		Channels:       in.Channels,
		Budget:         in.Budget,
		Tone:           in.Tone,
		Timeline:       in.Timeline,
		QuestionsAsked: s.QuestionCount,
		InitialInput:   s.InitialInput(),
	}
}
