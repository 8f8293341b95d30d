package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"marketnerd/internal/session"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Run scripted consultations concurrently",
	Long: `Reads a YAML file containing a list of scripts, each a list of
strings: the opening message followed by the answers in order. Scripts run
concurrently, bounded by session.workers, and the final turn of each is
printed in input order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		scripts, err := parseScripts(data)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		pool := session.NewPool(app.manager, app.cfg.Session.Workers)
		results, err := pool.RunScripts(ctx, scripts)
		if err != nil {
			return err
		}
		for i, res := range results {
			fmt.Printf("script %d: %s\n", i+1, describeResult(res))
		}
		return nil
	},
}

func parseScripts(data []byte) ([][]string, error) {
	var scripts [][]string
	if err := yaml.Unmarshal(data, &scripts); err != nil {
		return nil, fmt.Errorf("invalid scripts file: %w", err)
	}
	if len(scripts) == 0 {
		return nil, fmt.Errorf("scripts file is empty")
	}
	for i, s := range scripts {
		if len(s) == 0 {
			return nil, fmt.Errorf("script %d is empty", i+1)
		}
	}
	return scripts, nil
}

func describeResult(res *session.TurnResult) string {
	switch res.Type {
	case session.TurnReady:
		return fmt.Sprintf("completed: %s -> %s via %v",
			res.Request.Product, res.Request.Audience, res.Request.Channels)
	case session.TurnFailed:
		return "failed: " + res.Reason
	default:
		return "ran out of answers at: " + res.Question
	}
}
