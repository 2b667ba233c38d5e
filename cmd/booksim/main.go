// main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/stephenlclarke/fixcat/config"
	"github.com/stephenlclarke/fixcat/encoder"
	"github.com/stephenlclarke/fixcat/logging"
	"go.uber.org/zap"
)

// Version, Branch, GitUrl, Sha are injected at build time via -ldflags
var (
	Version = "0.0.0"
	Branch  = "main"
	GitUrl  = "git@github.com:stephenlclarke/fixcat.git"
	Sha     = "0000000"
)

var newKafkaSink = func(opts encoder.KafkaOptions) (encoder.Sink, error) {
	return encoder.NewKafkaSink(opts)
}

// CLIOptions holds all parsed flag values.
type CLIOptions struct {
	ConfigFile string
	Messages   int
}

func parseFlagsArgs(args []string, errOut io.Writer) (CLIOptions, error) {
	var opts CLIOptions

	fs := flag.NewFlagSet("booksim", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&opts.ConfigFile, "config", "", "Path to a yaml/json/toml config file")
	fs.IntVar(&opts.Messages, "n", -1, "Number of messages to generate (overrides config)")

	fs.Usage = func() {
		PrintUsage(errOut)
		fmt.Fprintln(errOut, "\nFlags:")
		fs.PrintDefaults()
	}

	err := fs.Parse(args)
	return opts, err
}

// PrintUsage prints the program usage.
func PrintUsage(out io.Writer) {
	fmt.Fprintf(out, "booksim %s (branch:%s, commit:%s)\n\n", Version, Branch, Sha)
	fmt.Fprintf(out, "  git clone %s\n\n", GitUrl)
	fmt.Fprintln(out, "Usage: booksim [-config=booksim.yaml] [-n=messages]")
	fmt.Fprintf(out, "       settings may be overridden with %s_* environment variables\n", config.EnvPrefix)
}

// Process loads the configuration, opens the sink and runs the generator.
func Process(ctx context.Context, args []string, out, errOut io.Writer) int {
	opts, err := parseFlagsArgs(args, errOut)
	if err != nil {
		return 2
	}

	cfg, err := config.LoadConfig(opts.ConfigFile)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if opts.Messages >= 0 {
		cfg.Messages = opts.Messages
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	defer logger.Sync()

	sink, err := openSink(cfg, out)
	if err != nil {
		logger.Error("cannot open sink", zap.Error(err))
		return 1
	}

	n, runErr := run(ctx, cfg, sink, logger)
	closeErr := sink.Close()

	if runErr != nil {
		logger.Error("generator stopped", zap.Int("messages", n), zap.Error(runErr))
		return 1
	}
	if closeErr != nil {
		logger.Error("cannot flush sink", zap.Error(closeErr))
		return 1
	}

	return 0
}

// openSink picks Kafka when enabled, otherwise a file or stdout ("-").
func openSink(cfg config.ConfigOptions, stdout io.Writer) (encoder.Sink, error) {
	if cfg.Kafka.Enabled {
		return newKafkaSink(cfg.KafkaSinkOptions())
	}

	if cfg.Output == "" || cfg.Output == "-" {
		return encoder.NewWriterSink(stdout, nil), nil
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return encoder.NewWriterSink(f, f), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Process(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
