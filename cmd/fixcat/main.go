// main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/stephenlclarke/fixcat/decoder"
	"github.com/stephenlclarke/fixcat/fix"
	"github.com/stephenlclarke/fixcat/logging"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Version, Branch, GitUrl, Sha are injected at build time via -ldflags
var (
	Version = "0.0.0"
	Branch  = "main"
	GitUrl  = "git@github.com:stephenlclarke/fixcat.git"
	Sha     = "0000000"
)

var isTerminal = term.IsTerminal // allow override in tests

type colourFlag struct {
	isSet bool
	value bool
}

func (c *colourFlag) String() string {
	if c.value {
		return "true"
	}
	return "false"
}

func (c *colourFlag) Set(s string) error {
	c.isSet = true
	s = strings.ToLower(s)
	switch s {
	case "", "true", "yes":
		c.value = true
	case "false", "no":
		c.value = false
	default:
		return fmt.Errorf("invalid value for -colour: %q", s)
	}
	return nil
}

func (c *colourFlag) IsBoolFlag() bool {
	return true
}

// separatorFlag accepts soh or pipe.
type separatorFlag struct {
	value byte
}

func (s *separatorFlag) String() string {
	if s.value == fix.Pipe {
		return "pipe"
	}
	return "soh"
}

func (s *separatorFlag) Set(v string) error {
	sep, ok := fix.SeparatorByName(v)
	if !ok {
		return fmt.Errorf("invalid value for -separator: %q (soh|pipe)", v)
	}
	s.value = sep
	return nil
}

// CLIOptions holds all parsed flag values.
type CLIOptions struct {
	Separator     separatorFlag
	Colour        colourFlag
	Obfuscate     bool
	MaxBodyLength int
	LogLevel      string
	Files         []string
}

// parseFlagsArgs parses command-line arguments using a fresh FlagSet.
func parseFlagsArgs(args []string, errOut io.Writer) (CLIOptions, error) {
	opts := CLIOptions{Separator: separatorFlag{value: fix.SOH}}
	var pipe bool

	fs := flag.NewFlagSet("fixcat", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Var(&opts.Separator, "separator", "Field separator (soh|pipe)")
	fs.BoolVar(&pipe, "pipe", false, "Shorthand for -separator=pipe")
	fs.Var(&opts.Colour, "colour", "Force coloured output (yes|no). Default: auto-detect based on stdout")
	fs.BoolVar(&opts.Obfuscate, "obfuscate", false, "Replace identifying tag values with stable aliases")
	fs.IntVar(&opts.MaxBodyLength, "max-body", decoder.DefaultMaxBodyLength, "Largest BodyLength(9) accepted")
	fs.StringVar(&opts.LogLevel, "log-level", "warn", "Diagnostic log level (debug|info|warn|error)")

	fs.Usage = func() {
		PrintUsage(errOut)
		fmt.Fprintln(errOut, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if pipe {
		opts.Separator.value = fix.Pipe
	}
	opts.Files = fs.Args()

	return opts, nil
}

// PrintUsage prints the program usage.
func PrintUsage(out io.Writer) {
	fmt.Fprintf(out, "fixcat %s (branch:%s, commit:%s)\n\n", Version, Branch, Sha)
	fmt.Fprintf(out, "  git clone %s\n\n", GitUrl)
	fmt.Fprintln(out, "Usage: fixcat [-separator=soh|pipe | -pipe] [-colour=yes|no] [-obfuscate] [file1.fix file2.fix ...]")
	fmt.Fprintln(out, "       producer | fixcat [-separator=soh|pipe]")
}

// Process is the entry point: parses flags, decodes every input and returns an exit code.
func Process(args []string, stdin io.Reader, out, errOut io.Writer) int {
	opts, err := parseFlagsArgs(args, errOut)
	if err != nil {
		return 2
	}

	logger, err := logging.New(opts.LogLevel, true)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	defer logger.Sync()

	files := opts.Files
	if len(files) == 0 {
		if isTerminalFile(stdin) {
			PrintUsage(errOut)
			return 1
		}
		files = []string{"-"}
	}

	if !opts.Colour.isSet {
		if !isTerminalFile(out) {
			decoder.DisableColours()
		}
	} else if !opts.Colour.value {
		decoder.DisableColours()
	}

	var obfuscator *fix.Obfuscator
	if opts.Obfuscate {
		obfuscator = fix.CreateObfuscator(fix.DefaultSensitiveTags, true)
	}

	logger.Debug("starting", zap.Strings("inputs", files), zap.Stringer("separator", &opts.Separator))

	return catFiles(files, stdin, out, errOut, opts, obfuscator, logger)
}

func isTerminalFile(v any) bool {
	f, ok := v.(*os.File)
	return ok && isTerminal(int(f.Fd()))
}

func main() {
	os.Exit(Process(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
