package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"domkey/internal/config"
	"domkey/internal/logging"
	"domkey/internal/registry"
	"domkey/internal/version"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	logFile    string
	strictFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "domkey",
	Short: "domkey - incremental sibling and branch index for element trees",
	Long: `domkey walks an element tree once, in document order, and records which
elements are siblings and which ancestors every element has. The index answers
"which elements can this one be reordered among?" and "which path leads to
this element?" without walking the tree again.

Inputs:
  .html .htm .vue   templates parsed with tree-sitter
  .yaml .yml .json  tree documents (id, kind, tag, children)
  .toml             recorded visit traces ([[visit]] id, depth, sibling)`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("domkey version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default: ./domkey.toml or ~/.config/domkey/domkey.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error, quiet (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Log format: human or json (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Also append logs to this file (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&strictFlag, "strict", false,
		"Reject traversal contract violations even if config says lenient")
}

// runtime carries the resolved configuration of one command invocation.
type runtime struct {
	cfg    *config.Config
	mode   registry.Mode
	logger *slog.Logger
	closer io.Closer
}

// Close releases the log file, if any.
func (rt *runtime) Close() {
	if rt.closer != nil {
		rt.closer.Close()
	}
}

// loadRuntime resolves configuration.
// Precedence: CLI flag > DOMKEY_* env var > config file > defaults
func loadRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if logFile != "" {
		cfg.Logging.File = logFile
	}
	if strictFlag {
		cfg.Validation.Mode = string(registry.ModeStrict)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mode, err := registry.ParseMode(cfg.Validation.Mode)
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  cfg.Logging.Level,
		Output: cmd.ErrOrStderr(),
	}
	rt := &runtime{cfg: cfg, mode: mode}
	if cfg.Logging.File == "" {
		rt.logger = logging.NewLogger(logCfg)
		return rt, nil
	}
	rt.logger, rt.closer, err = logging.NewFileLogger(logCfg, cfg.Logging.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return rt, nil
}

// newContext returns a context cancelled on SIGINT or SIGTERM.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
