package consultation

import "strings"

// Extractor turns raw user text into intent field updates using the ordered
// rule lists in rules.go. It holds no state; both entry points are pure.
type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

// Extract scans text for every field the current intent does not yet have.
// Fields already present are left alone so an aside in a later answer never
// clobbers an earlier explicit one. A text that matches nothing yields a
// zero Update, which is not an error.
func (e *Extractor) Extract(text string, current Intent) Update {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return Update{}
	}

	var up Update
	if !current.Has(FieldGoal) {
		if v, ok := firstMatch(goalRules, lower); ok {
			up.Goal = v
		}
	}
	if !current.Has(FieldAudience) {
		if v, ok := firstMatch(audienceRules, lower); ok {
			up.Audience = v
		}
	}
	if !current.Has(FieldChannels) {
		up.Channels = NormalizeChannels(lower)
	}
	if !current.Has(FieldBudget) {
		if v, ok := firstMatch(budgetRules, lower); ok {
			up.Budget = v
		}
	}
	if !current.Has(FieldTone) {
		if v, ok := firstMatch(toneRules, lower); ok {
			up.Tone = v
		}
	}
	if !current.Has(FieldTimeline) {
		if v, ok := firstMatch(timelineRules, lower); ok {
			up.Timeline = v
		}
	}
	return up
}

// ExtractAnswer processes a reply to a question about one specific field.
// The targeted field may overwrite an existing value, since the user was
// explicitly asked for it. Unlike the opportunistic path, a short direct
// answer is accepted verbatim when no pattern fires, unless it is a
// placeholder or a question back at us.
func (e *Extractor) ExtractAnswer(field Field, answer string, current Intent) Update {
	lower := strings.ToLower(strings.TrimSpace(answer))
	if lower == "" {
		return Update{}
	}

	// Asides in the answer still count for the other missing fields.
	up := e.Extract(answer, current)

	switch field {
	case FieldGoal:
		if v, ok := firstMatch(goalRules, lower); ok {
			up.Goal = v
		} else if acceptableVerbatim(lower) && !isVagueGoal(lower) {
			up.Goal = strings.Trim(strings.TrimSpace(answer), ".,!?")
		}
	case FieldAudience:
		if v, ok := firstMatch(audienceRules, lower); ok {
			up.Audience = v
		} else if acceptableVerbatim(lower) && !isVagueAudience(lower) {
			up.Audience = strings.Trim(strings.TrimSpace(answer), ".,!?")
		}
	case FieldChannels:
		up.Channels = NormalizeChannels(lower)
	case FieldBudget:
		if v, ok := firstMatch(budgetRules, lower); ok {
			up.Budget = v
		}
	case FieldTone:
		if v, ok := firstMatch(toneRules, lower); ok {
			up.Tone = v
		} else if acceptableVerbatim(lower) {
			up.Tone = strings.Trim(strings.TrimSpace(answer), ".,!?")
		}
	case FieldTimeline:
		if v, ok := firstMatch(timelineRules, lower); ok {
			up.Timeline = v
		}
	}
	return up
}

// acceptableVerbatim reports whether a raw answer is short and declarative
// enough to store as-is when no pattern recognizes it.
func acceptableVerbatim(lower string) bool {
	if len(lower) == 0 || len(lower) > 60 {
		return false
	}
	if strings.ContainsAny(lower, "?") {
		return false
	}
	for _, w := range []string{"what", "how", "why", "when", "which", "don't know", "not sure", "no idea"} {
		if strings.Contains(lower, w) {
			return false
		}
	}
	return true
}
