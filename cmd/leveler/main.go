// Command leveler runs audio through the leveling graph.
//
// Usage:
//
//	leveler process [flags] input.wav output.wav
//	leveler curve [flags]
//	leveler keys
//
// Examples:
//
//	leveler process -s compressorEnabled=true -s limiterEnabled=true in.wav out.wav
//	leveler process --settings voice.json --store ~/.config/leveler in.wav out.wav
//	leveler process --graph in.wav out.wav > graph.json
//	leveler curve -s multibandEnabled=true --tone 120
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	LogLevel string           `default:"info" enum:"error,warn,info,debug,trace" help:"Log level (${enum})."`
	Version  kong.VersionFlag `short:"v" help:"Show version information."`

	Process processCmd `cmd:"" help:"Process a WAV file through the leveling graph."`
	Curve   curveCmd   `cmd:"" help:"Print the steady-state transfer curve of a configuration."`
	Keys    keysCmd    `cmd:"" help:"List every settings key with its default."`
}

// runEnv is bound into every command's Run method.
type runEnv struct {
	ctx    context.Context
	stdout io.Writer
	log    *logrus.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Exit)
	stop()

	if err != nil {
		printError(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, exit func(int)) error {
	var cli CLI

	parser, err := kong.New(&cli,
		kong.Name("leveler"),
		kong.Description("Per-source compressor, EQ, gate, AGC and limiter graph"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(cli.LogLevel, stderr)
	if err != nil {
		return err
	}

	return kctx.Run(&runEnv{ctx: ctx, stdout: stdout, log: logger})
}

func newLogger(level string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return logger, nil
}
