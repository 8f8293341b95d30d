package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marketnerd/internal/campaign"
	"marketnerd/internal/consultation"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect archived consultation sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if app.archive == nil {
			return fmt.Errorf("session archive not configured")
		}
		records, err := app.archive.List(sessionsLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No archived sessions.")
			return nil
		}
		for _, rec := range records {
			fmt.Printf("%s  %-10s  %2d questions  %s\n",
				rec.ArchivedAt.Format("2006-01-02 15:04"),
				rec.Stage, rec.QuestionCount, summaryLine(rec.Intent))
			fmt.Printf("  id: %s\n", rec.ID)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one archived session with its transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if app.archive == nil {
			return fmt.Errorf("session archive not configured")
		}
		rec, err := app.archive.Get(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Session %s (%s)\n", rec.ID, rec.Stage)
		fmt.Printf("Created:  %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Archived: %s\n\n", rec.ArchivedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Goal:     %s\n", rec.Intent.Goal)
		fmt.Printf("Audience: %s\n", rec.Intent.Audience)
		fmt.Printf("Channels: %s\n", strings.Join(rec.Intent.Channels, ", "))
		fmt.Printf("Budget:   %s\n", rec.Intent.Budget)

		if len(rec.Transcript) > 0 {
			fmt.Println("\nTranscript:")
			for i, qa := range rec.Transcript {
				fmt.Printf("  Q%d: %s\n", i+1, qa.Question)
				if qa.Answered {
					fmt.Printf("  A%d: %s\n", i+1, qa.Answer)
				} else {
					fmt.Printf("  A%d: (unanswered)\n", i+1)
				}
			}
		}
		if rec.FinalPlan != "" {
			fmt.Printf("\n%s\n", rec.FinalPlan)
		}
		return nil
	},
}

var sessionsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show archive statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if app.archive == nil {
			return fmt.Errorf("session archive not configured")
		}
		records, err := app.archive.List(1000)
		if err != nil {
			return err
		}

		var completed, failed, other, questions int
		for _, rec := range records {
			switch rec.Stage {
			case consultation.StageCompleted:
				completed++
			case consultation.StageFailed:
				failed++
			default:
				other++
			}
			questions += rec.QuestionCount
		}
		fmt.Printf("Archived sessions: %d\n", len(records))
		fmt.Printf("  completed: %d\n", completed)
		fmt.Printf("  failed:    %d\n", failed)
		fmt.Printf("  expired:   %d\n", other)
		if len(records) > 0 {
			fmt.Printf("Average questions per session: %.1f\n", float64(questions)/float64(len(records)))
		}
		return nil
	},
}

func summaryLine(in consultation.Intent) string {
	goal := in.Goal
	if goal == "" {
		goal = campaign.NotSpecified
	}
	audience := in.Audience
	if audience == "" {
		audience = campaign.NotSpecified
	}
	return fmt.Sprintf("%s -> %s", goal, audience)
}

func init() {
	sessionsListCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "maximum sessions to list")
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsStatsCmd)
}
