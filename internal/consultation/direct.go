package consultation

import (
	"context"
	"encoding/json"
	"strings"
)

// Completer is a minimal text-completion capability used for the one-shot
// parsing fallback. Implementations live in the perception package.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

const directParseSystem = `You extract marketing campaign details from a user request.
Respond with a single JSON object and nothing else, using exactly these keys:
{"goal": "", "audience": "", "channels": [], "budget": "", "tone": "", "timeline": ""}
Leave a key empty when the request does not mention it. Do not invent values.`

// DirectParser is the one-shot bypass around the consultation loop: it pulls
// whatever the rules find from a single utterance and, when the core fields
// are still incomplete, asks the model to fill the gaps. Used for callers
// that opt out of the multi-turn flow and as the fallback after a FAILED
// session.
type DirectParser struct {
	extractor *Extractor
	completer Completer
}

// NewDirectParser builds a parser. A nil completer disables the model
// fallback and the rule output is returned as-is.
func NewDirectParser(completer Completer) *DirectParser {
	return &DirectParser{extractor: NewExtractor(), completer: completer}
}

// Parse extracts an intent from one utterance. Rule hits always win over
// model output for the same field. Model failures are non-fatal: the rule
// result is returned with the error for the caller to log.
func (p *DirectParser) Parse(ctx context.Context, text string) (Intent, error) {
	var in Intent
	up := p.extractor.Extract(text, in)
	up.apply(&in)

	if in.CoreComplete() || p.completer == nil {
		return in, nil
	}

	raw, err := p.completer.Complete(ctx, directParseSystem, text)
	if err != nil {
		return in, err
	}
	fill, err := decodeIntentJSON(raw)
	if err != nil {
		return in, err
	}
	// Only fill fields the rules left empty.
	merge := Update{}
	if !in.Has(FieldGoal) {
		merge.Goal = fill.Goal
	}
	if !in.Has(FieldAudience) {
		merge.Audience = fill.Audience
	}
	if !in.Has(FieldChannels) && len(fill.Channels) > 0 {
		merge.Channels = NormalizeChannels(strings.Join(fill.Channels, ", "))
	}
	if !in.Has(FieldBudget) {
		merge.Budget = fill.Budget
	}
	if !in.Has(FieldTone) {
		merge.Tone = fill.Tone
	}
	if !in.Has(FieldTimeline) {
		merge.Timeline = fill.Timeline
	}
	merge.apply(&in)
	return in, nil
}

type intentJSON struct {
	Goal     string   `json:"goal"`
	Audience string   `json:"audience"`
	Channels []string `json:"channels"`
	Budget   string   `json:"budget"`
	Tone     string   `json:"tone"`
	Timeline string   `json:"timeline"`
}

// decodeIntentJSON tolerates the model wrapping its object in markdown
// fences or prose; it decodes the first balanced JSON object it finds.
func decodeIntentJSON(raw string) (intentJSON, error) {
	var out intentJSON
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			s = s[i : j+1]
		}
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return intentJSON{}, err
	}
	out.Goal = strings.TrimSpace(out.Goal)
	out.Audience = strings.TrimSpace(out.Audience)
	out.Budget = strings.TrimSpace(out.Budget)
	out.Tone = strings.TrimSpace(out.Tone)
	out.Timeline = strings.TrimSpace(out.Timeline)
	return out, nil
}
