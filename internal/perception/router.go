package perception

import (
	"context"
	"regexp"
	"strings"
)

// MessageKind classifies an incoming user message.
type MessageKind string

const (
	// KindMarketing opens or continues a consultation.
	KindMarketing MessageKind = "marketing"
	// KindChat is everything else; the caller answers conversationally.
	KindChat MessageKind = "chat"
)

const routerSystem = `You classify a user message for a marketing assistant.
Answer with a single word: MARKETING if the user wants help promoting, advertising or selling something, CHAT otherwise.`

// Router decides whether a message should enter the consultation flow. A
// keyword pass handles the obvious cases locally; only genuinely ambiguous
// messages reach the model, and a model failure downgrades to CHAT so the
// assistant stays responsive.
type Router struct {
	client LLMClient
}

// NewRouter builds a router. A nil client keeps it heuristic-only.
func NewRouter(client LLMClient) *Router {
	return &Router{client: client}
}

var reMarketingKeyword = regexp.MustCompile(`\b(promote|promoting|promotion|market|marketing|advertis\w*|campaign|sell|selling|brand|branding|customers|audience|outreach)\b`)

// Greetings and one-word acknowledgements never open a consultation even if
// the model would happily call them marketing.
var reSmallTalk = regexp.MustCompile(`^\s*(hi|hello|hey|thanks|thank you|ok|okay|cool|bye|goodbye)[.!?\s]*$`)

// Classify routes one message.
func (r *Router) Classify(ctx context.Context, text string) (MessageKind, error) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" || reSmallTalk.MatchString(lower) {
		return KindChat, nil
	}
	if reMarketingKeyword.MatchString(lower) {
		return KindMarketing, nil
	}
	if r.client == nil {
		return KindChat, nil
	}

	answer, err := r.client.CompleteWithSystem(ctx, routerSystem, text)
	if err != nil {
		return KindChat, err
	}
	if strings.Contains(strings.ToUpper(answer), "MARKETING") {
		return KindMarketing, nil
	}
	return KindChat, nil
}

// IsAffirmative reports whether a short reply is a plain confirmation, used
// when the assistant asks "do you want to start a campaign?".
func IsAffirmative(text string) bool {
	switch strings.Trim(strings.ToLower(strings.TrimSpace(text)), ".!? ") {
	case "yes", "yeah", "yep", "sure", "ok", "okay", "please", "go ahead", "sounds good", "let's do it":
		return true
	}
	return false
}
