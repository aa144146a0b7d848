package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/cgv-watch/internal/config"
	"github.com/pfrederiksen/cgv-watch/internal/extract"
	"github.com/pfrederiksen/cgv-watch/internal/logger"
	"github.com/pfrederiksen/cgv-watch/internal/notifier"
	"github.com/pfrederiksen/cgv-watch/internal/render"
	"github.com/pfrederiksen/cgv-watch/internal/scraper"
	"github.com/pfrederiksen/cgv-watch/internal/secret"
	"github.com/pfrederiksen/cgv-watch/internal/watch"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagEnvFile     string
	flagTheater     string
	flagTheaterName string
	flagHall        string
	flagMode        string
	flagWindowDays  int
	flagRenderer    string
	flagLogLevel    string
	flagFormat      string
	flagDryRun      bool
	flagMetricsFile string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cgv-watch",
		Short: "Email the films scheduled in one CGV hall",
		Long: `A CLI tool that checks a CGV theater's schedule for one hall.
Finds the farthest date with a published schedule, extracts the titles
showing in the hall and delivers them by email (or Telegram/Twitter).`,
		RunE:          runCheck,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagEnvFile, "env-file", config.DefaultEnvFile, "Environment file to load before reading the environment")
	pf.StringVar(&flagTheater, "theater", "", "Theater code (overrides CGV_THEATER_ID)")
	pf.StringVar(&flagTheaterName, "theater-name", "", "Theater name used in the subject and page clicks (overrides CGV_THEATER_NAME)")
	pf.StringVar(&flagHall, "hall", "", "Hall marker, e.g. 1관 (overrides CGV_HALL)")
	pf.StringVar(&flagMode, "mode", "", "Fetch mode: http or browser (overrides CGV_MODE)")
	pf.IntVar(&flagWindowDays, "window-days", 0, "Days past today to probe (overrides CGV_WINDOW_DAYS)")
	pf.StringVar(&flagRenderer, "renderer", "", "Browser driver: chromedp or playwright (overrides CGV_RENDERER)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	pf.StringVar(&flagFormat, "format", "text", "Output format: text or json")

	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print the report instead of delivering it")
	cmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path (overrides CGV_METRICS_FILE)")

	cmd.AddCommand(newProbeCmd(), newExtractCmd(), newSealCmd())

	return cmd
}

// loadConfig reads the environment, applies flag overrides and configures logging
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagEnvFile)
	if err != nil {
		return nil, err
	}
	applyOverrides(cmd, cfg)

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyOverrides copies explicitly set flags onto cfg
func applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("theater") {
		cfg.TheaterID = flagTheater
	}
	if flags.Changed("theater-name") {
		cfg.TheaterName = flagTheaterName
	}
	if flags.Changed("hall") {
		cfg.HallMarker = flagHall
	}
	if flags.Changed("mode") {
		cfg.Mode = config.Mode(strings.ToLower(flagMode))
	}
	if flags.Changed("window-days") {
		cfg.WindowDays = flagWindowDays
	}
	if flags.Changed("renderer") {
		cfg.Renderer = flagRenderer
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = flagMetricsFile
	}
}

func outputFormat() (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}
	return format, nil
}

// buildNotifier returns the delivery channel for a run
func buildNotifier(cfg *config.Config, dryRun bool, w io.Writer) (notifier.Notifier, error) {
	if dryRun {
		return notifier.NewDryRunNotifier(w), nil
	}

	var notifiers notifier.Multi
	for _, name := range cfg.Notifiers {
		var (
			n   notifier.Notifier
			err error
		)
		switch strings.ToLower(name) {
		case "email":
			n, err = notifier.NewEmailNotifier(cfg.Mail)
		case "telegram":
			n, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		case "twitter":
			n, err = notifier.NewTwitterNotifier(cfg.Twitter)
		default:
			return nil, fmt.Errorf("unknown notifier: %s", name)
		}
		if err != nil {
			return nil, fmt.Errorf("configuring %s notifier: %w", name, err)
		}
		notifiers = append(notifiers, n)
	}

	switch len(notifiers) {
	case 0:
		return nil, fmt.Errorf("no notifiers configured")
	case 1:
		return notifiers[0], nil
	}
	return notifiers, nil
}

// newRunner wires the fetcher for the configured mode
func newRunner(cfg *config.Config, n notifier.Notifier) (*watch.Runner, error) {
	if cfg.Mode == config.ModeBrowser {
		renderer, err := render.New(cfg.Renderer)
		if err != nil {
			return nil, err
		}
		return watch.New(cfg, nil, renderer, n), nil
	}

	sc := scraper.New(cfg.TheaterID, cfg.ScheduleURL, cfg.FetchTimeout)
	return watch.New(cfg, sc, nil, n), nil
}

// runCheck is the main command logic
func runCheck(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	n, err := buildNotifier(cfg, flagDryRun, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	runner, err := newRunner(cfg, n)
	if err != nil {
		return err
	}

	outcome, runErr := runner.Run(cmd.Context())
	if outcome != nil {
		result := newRunOutput(outcome, runErr == nil)
		if err := WriteOutput(cmd.OutOrStdout(), result, format); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return runErr
}

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Find the farthest date with a usable schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Mode = config.ModeHTTP

			sc := scraper.New(cfg.TheaterID, cfg.ScheduleURL, cfg.FetchTimeout)
			runner := watch.New(cfg, sc, nil, nil)
			result, err := runner.Probe(cmd.Context())
			if err != nil {
				return err
			}

			return WriteOutput(cmd.OutOrStdout(), newProbeOutput(cfg, result), format)
		},
	}
}

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract hall titles from a saved schedule text (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var data []byte
			if len(args) == 1 && args[0] != "-" {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			ex, err := extract.New(cfg.ExtractOptions())
			if err != nil {
				return err
			}

			result := ex.Extract(string(data))
			return WriteOutput(cmd.OutOrStdout(), &ExtractOutput{Hall: cfg.HallMarker, Result: result}, format)
		},
	}
}

func newSealCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seal [value]",
		Short: "Seal a credential with CGV_WATCH_PASSPHRASE (stdin when no value is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value string
			if len(args) == 1 {
				value = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				value = strings.TrimRight(string(data), "\r\n")
			}
			if value == "" {
				return fmt.Errorf("nothing to seal")
			}

			sealed, err := secret.Seal(os.Getenv("CGV_WATCH_PASSPHRASE"), value)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sealed)
			return nil
		},
	}
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
