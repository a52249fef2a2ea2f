package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/lth/passgen/internal/batch"
	"github.com/lth/passgen/internal/charset"
	"github.com/lth/passgen/internal/config"
	"github.com/lth/passgen/internal/logging"
	"github.com/lth/passgen/password"
)

var (
	version = "1.0.0"

	configFile string
	verbose    bool
	duration   time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "passgen",
		Short: "Generate random passwords",
		Long: `passgen v` + version + `
Generates passwords from a cryptographically secure random source.
Digits and symbols are scattered through the password instead of
being appended at the end.

Every flag can also be set through a PASSGEN_* environment variable
(e.g. PASSGEN_NO_UPPER=true) or a config file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGenerate,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	config.AddFlags(rootCmd.Flags())

	charsetsCmd := &cobra.Command{
		Use:   "charsets",
		Short: "List the named character sets usable as pools",
		Args:  cobra.NoArgs,
		Run:   runCharsets,
	}

	benchCmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Measure generation throughput",
		Args:  cobra.NoArgs,
		RunE:  runBenchmark,
	}
	config.AddFlags(benchCmd.Flags())
	benchCmd.Flags().DurationVar(&duration, "duration", 5*time.Second, "How long to run")

	rootCmd.AddCommand(charsetsCmd, benchCmd)
	return rootCmd
}

// setup loads the configuration and builds the logger and generator shared
// by the generating commands.
func setup(cmd *cobra.Command) (config.Config, *zap.Logger, *password.Generator, error) {
	cfg, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return config.Config{}, nil, nil, errors.Wrap(err, "create logger")
	}

	gen, err := password.NewGenerator(cfg.GeneratorInput())
	if err != nil {
		return config.Config{}, nil, nil, errors.Wrap(err, "create generator")
	}

	logger.Debug("configuration loaded",
		zap.Int("length", cfg.Length),
		zap.Int("digits", cfg.Digits),
		zap.Int("symbols", cfg.Symbols),
		zap.Bool("no_upper", cfg.NoUpper),
		zap.Bool("allow_repeat", cfg.AllowRepeat),
		zap.Int("count", cfg.Count),
		zap.Int("workers", cfg.Workers))

	return cfg, logger, gen, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, logger, gen, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signalContext()
	defer cancel()

	r := batch.New(gen, cfg.Workers)
	r.SetLogger(logger)

	var bar *progressbar.ProgressBar
	if cfg.Count > 1 && isTerminal(os.Stderr) {
		bar = progressbar.NewOptions(cfg.Count,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("generating"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		r.SetProgressCallback(func(p batch.Progress) {
			_ = bar.Add(1)
		})
	}

	passwords, err := r.Run(ctx, cfg.Request(), cfg.Count)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		return err
	}

	return writeLines(cmd.OutOrStdout(), passwords)
}

func runCharsets(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Character Sets")
	fmt.Fprintln(w, "==============")
	for _, p := range charset.Presets() {
		fmt.Fprintf(w, "%-20s %3d  %s\n", p.Name, p.Size(), p.Chars)
	}
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, logger, gen, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signalContext()
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, duration)
	defer cancelTimeout()

	r := batch.New(gen, cfg.Workers)
	r.SetLogger(logger)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Benchmarking with %d workers for %s...\n", r.Workers(), duration)

	start := time.Now()
	passwords, errc := r.Stream(ctx, cfg.Request())
	for range passwords {
	}
	if err := <-errc; err != nil {
		return err
	}
	elapsed := time.Since(start)

	rate := float64(r.Generated()) / elapsed.Seconds()
	fmt.Fprintf(w, "Generated: %d passwords in %s\n", r.Generated(), formatDuration(elapsed))
	fmt.Fprintf(w, "Rate: %.0f passwords/second\n", rate)
	return nil
}

func writeLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := fmt.Fprintln(bw, l); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
