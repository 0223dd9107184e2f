// Package main provides the numerologyX CLI entry point.
//
// Every command opens the configured store, restores the last report and
// drives one Orchestrator:
//
//	config ─► store.Open ─► gateway.New ─► session.New ─► Restore
//	                                            │
//	          calculate / forecast / chat / serve ...
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"numerologyx/internal/config"
	"numerologyx/internal/gateway"
	"numerologyx/internal/logging"
	"numerologyx/internal/session"
	"numerologyx/internal/store"
	"numerologyx/internal/usage"
)

var (
	// Global flags
	verbose    bool
	configPath string
	apiKey     string
	backend    string
	plain      bool
	timeout    time.Duration

	// Logger
	logger *zap.Logger

	// modelOverride replaces the generative service when set (tests).
	modelOverride gateway.Model
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "numerologyx",
	Short: "numerologyX - AI numerology reports, forecasts and guidance",
	Long: `numerologyX generates a personal numerology report from a full name and
date of birth, then builds yearly forecasts, Vastu guidance, remedies, a daily
pulse and a conversational guide on top of it.

The last report is persisted and restored on the next run.

Run "numerologyx calculate --name ... --dob YYYY-MM-DD" to begin.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logging.SetBase(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Config file path")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY env)")
	rootCmd.PersistentFlags().StringVar(&backend, "store", "", "Store backend override: memory, sqlite, redis")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "Print reports in the plain-text download format")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(vastuCmd)
	rootCmd.AddCommand(remediesCmd)
	rootCmd.AddCommand(pulseCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("NUMEROLOGYX_CONFIG"); p != "" {
		return p
	}
	return ".numerologyx/config.yaml"
}

// app bundles everything a command needs.
type app struct {
	cfg   *config.Config
	store *store.Store
	gw    *gateway.Gateway
	orch  *session.Orchestrator
	usage *usage.Tracker
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		cfg.Gateway.APIKey = apiKey
	}
	if backend != "" {
		cfg.Store.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case cfg.Logging.File != "":
		if err := logging.Initialize(cfg.Logging.Options()); err != nil {
			return nil, err
		}
	case len(cfg.Logging.Categories) > 0:
		logging.SetCategories(cfg.Logging.Categories)
	}
	return cfg, nil
}

// openApp wires the store, gateway and orchestrator and restores the last session.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openAppWith(ctx, cfg, modelOverride)
}

// openAppWith is openApp with an explicit config and optional model.
func openAppWith(ctx context.Context, cfg *config.Config, model gateway.Model) (*app, error) {
	timer := logging.StartTimer(logging.CategoryBoot, "openApp")
	defer timer.Stop()

	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	var gw *gateway.Gateway
	if model != nil {
		gw = gateway.NewWithModel(model, cfg)
	} else if gw, err = gateway.New(ctx, cfg); err != nil {
		st.Close()
		return nil, err
	}

	tracker, err := usage.NewTracker(ctx, st.KV())
	if err != nil {
		st.Close()
		return nil, err
	}
	gw.SetUsageRecorder(tracker)

	orch := session.New(gw, st)
	if err := orch.Restore(ctx); err != nil {
		orch.Close()
		st.Close()
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	logging.Boot("numerologyX ready (store=%s, configured=%v)", cfg.Store.Backend, gw.Configured())
	return &app{cfg: cfg, store: st, gw: gw, orch: orch, usage: tracker}, nil
}

func (a *app) Close() {
	a.orch.Close()
	if err := a.usage.Flush(context.Background()); err != nil {
		logging.BootWarn("failed to save usage: %v", err)
	}
	if err := a.store.Close(); err != nil {
		logging.BootWarn("failed to close store: %v", err)
	}
}

// commandContext returns a context bounded by --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
