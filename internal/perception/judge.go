package perception

import (
	"context"
	"fmt"
	"strings"

	"marketnerd/internal/consultation"
)

const judgeSystem = `You review a marketing consultation and decide whether enough information has been gathered to build a campaign plan.
Answer with a single word: YES if the information is sufficient, NO if more questions are needed.`

// CompletenessJudge implements consultation.Judge on top of an LLMClient.
// The verdict is parsed defensively: negative tokens are checked before
// affirmative ones so "no, not enough" never reads as a yes, and an answer
// containing neither is an error rather than a guess.
type CompletenessJudge struct {
	client LLMClient
}

func NewCompletenessJudge(client LLMClient) *CompletenessJudge {
	return &CompletenessJudge{client: client}
}

var (
	negativeTokens    = []string{"no", "not enough", "insufficient", "incomplete", "missing", "need more"}
	affirmativeTokens = []string{"yes", "sufficient", "complete", "enough", "ready"}
)

// JudgeComplete asks the model the yes/no completeness question for the
// given intent snapshot.
func (j *CompletenessJudge) JudgeComplete(ctx context.Context, snap consultation.Snapshot) (bool, error) {
	prompt := j.buildPrompt(snap)
	answer, err := j.client.CompleteWithSystem(ctx, judgeSystem, prompt)
	if err != nil {
		return false, fmt.Errorf("judge call: %w", err)
	}
	return parseVerdict(answer)
}

func (j *CompletenessJudge) buildPrompt(snap consultation.Snapshot) string {
	var b strings.Builder
	b.WriteString("A user asked for help with a marketing campaign.\n")
	fmt.Fprintf(&b, "Original request: %s\n\n", snap.InitialInput)
	b.WriteString("Information gathered so far:\n")
	fmt.Fprintf(&b, "- Product or goal: %s\n", orUnknown(snap.Goal))
	fmt.Fprintf(&b, "- Target audience: %s\n", orUnknown(snap.Audience))
	fmt.Fprintf(&b, "- Channels: %s\n", orUnknown(strings.Join(snap.Channels, ", ")))
	fmt.Fprintf(&b, "- Budget: %s\n", orUnknown(snap.Budget))
	fmt.Fprintf(&b, "- Tone: %s\n", orUnknown(snap.Tone))
	fmt.Fprintf(&b, "- Timeline: %s\n", orUnknown(snap.Timeline))
	fmt.Fprintf(&b, "\nQuestions asked so far: %d\n", snap.QuestionsAsked)
	b.WriteString("\nIs this enough information to create a concrete campaign plan? Answer YES or NO.")
	return b.String()
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "unknown"
	}
	return v
}

// parseVerdict maps the model's free text onto a boolean. Negatives win
// over affirmatives; an answer containing neither is ambiguous. Single-word
// tokens match on word boundaries so "now" never reads as "no".
func parseVerdict(answer string) (bool, error) {
	lower := strings.ToLower(answer)
	words := map[string]bool{}
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z')
	}) {
		words[w] = true
	}

	containsToken := func(tok string) bool {
		if strings.Contains(tok, " ") {
			return strings.Contains(lower, tok)
		}
		return words[tok]
	}

	for _, tok := range negativeTokens {
		if containsToken(tok) {
			return false, nil
		}
	}
	for _, tok := range affirmativeTokens {
		if containsToken(tok) {
			return true, nil
		}
	}
	return false, fmt.Errorf("ambiguous judge answer %q", truncate(answer, 80))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
