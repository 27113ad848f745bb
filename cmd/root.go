// Package cmd implements the CLI commands for pagekit using Cobra.
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/landinghub/pagekit/core/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	flagConfig string

	// settings holds the layered configuration; cfg is its decoded form,
	// available once the root command's pre-run has completed.
	settings = config.New()
	cfg      *config.Config
	logger   = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "pagekit",
	Short: "pagekit builds, imports and packages LandingHub pages",
	Long: `pagekit is the LandingHub page document engine. It validates page
documents, renders them to static HTML (and Markdown, PDF or JSON), imports
existing HTML as editable pages, and packs pages with their images into
portable .iuhpage files.

Usage:
  pagekit render <page.json> --html
  pagekit import <file.html|url> --title "Spring launch"
  pagekit pack <page.json> --assets-dir ./images`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (YAML)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("output_dir", "", "Output directory (default: current directory)")
	pf.String("library", "pagekit-library.db", "Template library database")

	mustBind("log_level", pf.Lookup("log-level"))
	mustBind("output_dir", pf.Lookup("output_dir"))
	mustBind("library.path", pf.Lookup("library"))
}

// setup loads configuration and configures logging before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(settings, flagConfig)
	if err != nil {
		return err
	}
	cfg = loaded

	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger.SetLevel(level)
	logger.WithField("command", cmd.CommandPath()).Debug("configuration loaded")
	return nil
}

// Execute runs the root command. Interrupts cancel the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// timeNow is the clock used for metadata timestamps.
var timeNow = time.Now

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// mustBind binds a flag to a config key. Flags are registered in init, so
// a missing flag is a programming error.
func mustBind(key string, flag *pflag.Flag) {
	if err := settings.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}
