package campaign

import (
	"context"
	"fmt"
	"strings"
)

// Generator produces a campaign plan from a request. The perception layer's
// clients satisfy this through GeneratorFunc; tests script it directly.
type Generator interface {
	GeneratePlan(ctx context.Context, req *Request) (string, error)
}

// GeneratorFunc adapts a completion function to Generator.
type GeneratorFunc func(ctx context.Context, system, prompt string) (string, error)

const generatorSystem = `You are a marketing strategist. Produce a concise, actionable campaign plan in markdown with sections for strategy, per-channel tactics, and a simple timeline. Respect the stated budget.`

func (f GeneratorFunc) GeneratePlan(ctx context.Context, req *Request) (string, error) {
	return f(ctx, generatorSystem, req.Prompt())
}

// Brief renders the request as a markdown summary shown to the user before
// or instead of a generated plan.
func Brief(req *Request) string {
	var b strings.Builder
	b.WriteString("# Campaign Brief\n\n")
	fmt.Fprintf(&b, "**Product:** %s\n\n", req.Product)
	fmt.Fprintf(&b, "**Audience:** %s\n\n", req.Audience)
	fmt.Fprintf(&b, "**Channels:** %s\n\n", strings.Join(req.Channels, ", "))
	fmt.Fprintf(&b, "**Budget:** %s\n\n", req.Budget)
	fmt.Fprintf(&b, "**Tone:** %s\n\n", req.Tone)
	fmt.Fprintf(&b, "**Timeline:** %s\n\n", req.Timeline)
	if !req.Complete {
		b.WriteString("> Consultation ended early; some values are assumptions.\n")
	}
	return b.String()
}
