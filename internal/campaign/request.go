// Package campaign turns a finished consultation into the input a campaign
// generator consumes, and renders the human-facing brief.
package campaign

import "strings"

// NotSpecified is the canonical rendering for fields the consultation never
// filled. Downstream prompts rely on this exact string.
const NotSpecified = "not specified"

// DefaultChannels is the fallback channel mix when a session completed
// without any usable channel answer (possible via the question ceiling).
var DefaultChannels = []string{"Email", "Instagram"}

// Request is the normalized campaign input. It is a pure value: building it
// twice from the same session yields identical contents.
type Request struct {
	SessionID string `json:"session_id"`

	Product  string   `json:"product"`
	Audience string   `json:"audience"`
	Channels []string `json:"channels"`
	Budget   string   `json:"budget"`
	Tone     string   `json:"tone"`
	Timeline string   `json:"timeline"`

	// QuestionsAsked and Complete describe how the consultation went, so
	// a generator can hedge when information was forced through the
	// question ceiling.
	QuestionsAsked int  `json:"questions_asked"`
	Complete       bool `json:"complete"`
}

// Prompt renders the request as the instruction block handed to a campaign
// generator model.
func (r *Request) Prompt() string {
	var b strings.Builder
	b.WriteString("Create a marketing campaign plan with the following parameters:\n\n")
	b.WriteString("Product or service: " + r.Product + "\n")
	b.WriteString("Target audience: " + r.Audience + "\n")
	b.WriteString("Channels: " + strings.Join(r.Channels, ", ") + "\n")
	b.WriteString("Budget: " + r.Budget + "\n")
	b.WriteString("Tone: " + r.Tone + "\n")
	b.WriteString("Timeline: " + r.Timeline + "\n")
	if !r.Complete {
		b.WriteString("\nNote: the consultation ended before all details were confirmed. Make reasonable assumptions and state them.\n")
	}
	return b.String()
}
