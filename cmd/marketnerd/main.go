// Package main provides the marketnerd CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"marketnerd/internal/config"
	"marketnerd/internal/consultation"
	"marketnerd/internal/logging"
	"marketnerd/internal/perception"
	"marketnerd/internal/session"
)

var (
	// Global flags
	verbose   bool
	workspace string
	apiKey    string

	logger *zap.Logger

	// app is the wired backend shared by the subcommands.
	app *application
)

// application bundles the configured components.
type application struct {
	cfg     *config.Config
	client  perception.LLMClient // nil when no API key is configured
	machine *consultation.Machine
	manager *session.Manager
	router  *perception.Router
	parser  *consultation.DirectParser
	archive *session.Archive
}

var rootCmd = &cobra.Command{
	Use:   "marketnerd",
	Short: "marketNERD - consultative marketing campaign assistant",
	Long: `marketNERD turns a vague marketing request into a concrete campaign
brief through a short, bounded consultation: it extracts what your message
already says, asks only for what is missing, and hands off a normalized
campaign request once enough is known.

Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return initApp()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil && app.archive != nil {
			_ = app.archive.Close()
		}
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

// initApp loads config and wires the backend. A missing API key is not
// fatal: extraction and planning are rule-based, only the completeness
// judge and the router fallback degrade.
func initApp() error {
	cfgPath := config.DefaultConfigPath(workspace)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}

	if err := logging.Initialize(logging.FromConfig(workspace, cfg.Logging)); err != nil {
		return err
	}
	logging.Boot("marketnerd starting, provider=%s", cfg.LLM.Provider)

	var client perception.LLMClient
	if cfg.LLM.Configured() {
		client, err = perception.NewClient(cfg.LLM)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("no API key configured; running with rule-based extraction only")
	}

	var judge consultation.Judge
	if client != nil {
		judge = perception.NewCompletenessJudge(client)
	}
	machine := consultation.NewMachine(consultation.NewEvaluator(judge, cfg.Consultation.JudgeTimeout()))

	var archive *session.Archive
	archivePath := cfg.Session.ArchivePath
	if archivePath != "" {
		if !filepath.IsAbs(archivePath) {
			archivePath = filepath.Join(config.WorkspaceDir(workspace), archivePath)
		}
		archive, err = session.OpenArchive(archivePath)
		if err != nil {
			logger.Warn("session archive unavailable", zap.Error(err))
			archive = nil
		}
	}

	var completer consultation.Completer
	if client != nil {
		completer = completerAdapter{client}
	}

	app = &application{
		cfg:     cfg,
		client:  client,
		machine: machine,
		manager: session.NewManager(machine, cfg.Consultation, cfg.Session, archive),
		router:  perception.NewRouter(client),
		parser:  consultation.NewDirectParser(completer),
		archive: archive,
	}
	return nil
}

// startConfigWatcher hot-reloads the consultation limits while a long-lived
// command runs. New sessions pick up edited limits without a restart.
func startConfigWatcher(ctx context.Context) {
	path := config.DefaultConfigPath(workspace)
	_, err := config.NewWatcher(ctx, path, func(cfg *config.Config) {
		app.manager.UpdateConsultationConfig(cfg.Consultation)
		logger.Info("configuration reloaded", zap.String("path", path))
	})
	if err != nil {
		logger.Warn("config watcher unavailable", zap.Error(err))
	}
}

// completerAdapter narrows an LLMClient to the consultation package's
// Completer capability.
type completerAdapter struct {
	client perception.LLMClient
}

func (a completerAdapter) Complete(ctx context.Context, system, prompt string) (string, error) {
	return a.client.CompleteWithSystem(ctx, system, prompt)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()
	return ctx, cancel
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the marketnerd version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("marketnerd 0.1.0")
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key override")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(consultCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(sessionsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// stepTimeout bounds one consultation turn end to end, including judge
// retries.
const stepTimeout = 2 * time.Minute
