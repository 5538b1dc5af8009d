// Command tablescope lists the base tables of a database schema.
//
// Usage:
//
//	tablescope [-config tablescope.yaml] list     -schema shop [-format json|text]
//	tablescope [-config tablescope.yaml] names    -schema shop [-kind VIEW]
//	tablescope [-config tablescope.yaml] serve
//	tablescope [-config tablescope.yaml] snapshot -schema shop
//	tablescope [-config tablescope.yaml] diff     -schema shop
//
// Settings come from the YAML file and TABLESCOPE_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/koustreak/tablescope/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// command is one subcommand. It receives its own arguments after the name.
type command func(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error

var commands = map[string]command{
	"list":     runList,
	"names":    runNames,
	"serve":    runServe,
	"snapshot": runSnapshot,
	"diff":     runDiff,
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tablescope", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("TABLESCOPE_CONFIG"), "path to a YAML config file")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: tablescope [-config file] <list|names|serve|snapshot|diff> [flags]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fs.Usage()
		return fmt.Errorf("unknown command %q", name)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	return cmd(ctx, cfg, fs.Args()[1:], out)
}
