package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"marketnerd/internal/campaign"
	"marketnerd/internal/session"
)

var (
	consultDirect bool
	consultJSON   bool
	consultPlan   bool
)

var consultCmd = &cobra.Command{
	Use:   "consult [message]",
	Short: "Run a consultation from the terminal",
	Long: `Starts a consultation with the given message and reads answers from
stdin until the session completes. With --direct the question loop is
skipped entirely: the message is parsed in one shot and converted
immediately, with unknown fields left as "not specified".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")
		ctx, cancel := signalContext()
		defer cancel()

		if consultDirect {
			return runDirectConsult(ctx, message)
		}
		return runInteractiveConsult(ctx, message)
	},
}

func init() {
	consultCmd.Flags().BoolVar(&consultDirect, "direct", false, "one-shot parse, no questions")
	consultCmd.Flags().BoolVar(&consultJSON, "json", false, "print the campaign request as JSON")
	consultCmd.Flags().BoolVar(&consultPlan, "plan", false, "generate a full campaign plan from the brief")
}

func runInteractiveConsult(ctx context.Context, message string) error {
	startConfigWatcher(ctx)

	id, res, err := app.manager.Create(ctx, message)
	if err != nil {
		return err
	}

	reader := bufio.NewScanner(os.Stdin)
	for res.Type == session.TurnQuestion {
		fmt.Printf("\n%s\n> ", res.Question)
		if !reader.Scan() {
			return fmt.Errorf("input closed before consultation finished")
		}
		stepCtx, cancel := context.WithTimeout(ctx, stepTimeout)
		res, err = app.manager.Submit(stepCtx, id, reader.Text())
		cancel()
		if err != nil {
			return err
		}
	}

	switch res.Type {
	case session.TurnReady:
		if err := printRequest(res.Request); err != nil {
			return err
		}
		return maybeGeneratePlan(ctx, res.Request)
	case session.TurnFailed:
		return fmt.Errorf("consultation failed: %s", res.Reason)
	}
	return nil
}

// runDirectConsult bypasses the question loop, mirroring what callers get
// after a failed session.
func runDirectConsult(ctx context.Context, message string) error {
	intent, err := app.parser.Parse(ctx, message)
	if err != nil {
		logger.Warn(fmt.Sprintf("direct parse degraded: %v", err))
	}

	req := &campaign.Request{
		Product:  orNotSpecified(intent.Goal),
		Audience: orNotSpecified(intent.Audience),
		Channels: intent.Channels,
		Budget:   orNotSpecified(intent.Budget),
		Tone:     orNotSpecified(intent.Tone),
		Timeline: orNotSpecified(intent.Timeline),
		Complete: intent.CoreComplete(),
	}
	if len(req.Channels) == 0 {
		req.Channels = append([]string(nil), campaign.DefaultChannels...)
	}
	if err := printRequest(req); err != nil {
		return err
	}
	return maybeGeneratePlan(ctx, req)
}

// maybeGeneratePlan asks the configured model to write the full campaign
// plan when --plan is set.
func maybeGeneratePlan(ctx context.Context, req *campaign.Request) error {
	if !consultPlan {
		return nil
	}
	if app.client == nil {
		return fmt.Errorf("--plan requires a configured API key")
	}

	gen := campaign.GeneratorFunc(app.client.CompleteWithSystem)
	plan, err := gen.GeneratePlan(ctx, req)
	if err != nil {
		return fmt.Errorf("plan generation failed: %w", err)
	}

	out, err := glamour.Render(plan, "auto")
	if err != nil {
		fmt.Println(plan)
		return nil
	}
	fmt.Print(out)
	return nil
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return campaign.NotSpecified
	}
	return v
}

func printRequest(req *campaign.Request) error {
	if consultJSON {
		data, err := json.MarshalIndent(req, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	out, err := glamour.Render(campaign.Brief(req), "auto")
	if err != nil {
		// Plain fallback when the terminal renderer is unavailable.
		fmt.Println(campaign.Brief(req))
		return nil
	}
	fmt.Print(out)
	return nil
}
