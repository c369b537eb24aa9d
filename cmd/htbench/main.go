// Command htbench drives a hashtable through a synthetic workload and
// reports per-phase timings and resize activity as JSON.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/theflywheel/hashtable/internal/logger"
)

// configFlags map one-to-one onto Config keys. Only flags given on the
// command line override the file and environment.
var configFlags = []cli.Flag{
	&cli.IntFlag{
		Name:  "keys",
		Usage: "Number of distinct keys to insert",
	},
	&cli.FloatFlag{
		Name:  "remove-ratio",
		Usage: "Fraction of the keys removed after insertion",
	},
	&cli.StringFlag{
		Name:  "key-kind",
		Usage: "Key type to generate.  One of: int, string, uuid.",
	},
	&cli.StringFlag{
		Name:  "hash",
		Usage: "Hash function name, e.g. xxhash, djb2, fnv1a, knuth, rjenkins",
	},
	&cli.IntFlag{
		Name:  "min-capacity",
		Usage: "Minimum capacity the table never shrinks below",
	},
	&cli.FloatFlag{
		Name:  "lower-bound",
		Usage: "Load factor at or below which the table shrinks",
	},
	&cli.FloatFlag{
		Name:  "upper-bound",
		Usage: "Load factor at or above which the table grows",
	},
	&cli.Uint64Flag{
		Name:  "seed",
		Usage: "Seed for key generation",
	},
	&cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write the JSON summary to this file instead of stdout",
	},
}

func main() {
	if err := command().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func command() *cli.Command {
	return &cli.Command{
		Name:  "htbench",
		Usage: "Exercise the hashtable with a configurable workload",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output logs as JSON.  Set to true if stderr is not a TTY.",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set the log level.  One of: trace, debug, info, notice, warn, error.",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			opts := []logger.LoggerOpt{}
			if cmd.Bool("json") {
				opts = append(opts, logger.WithHandler(logger.JSONHandler))
			}
			if cmd.IsSet("log-level") {
				opts = append(opts, logger.WithLoggerLevel(logger.ParseLevel(cmd.String("log-level"))))
			}
			return logger.WithContext(ctx, logger.New(opts...)), nil
		},
		Commands: []*cli.Command{
			runCommand(),
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a workload and print its summary",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML or JSON config file",
			},
		}, configFlags...),
		Action: action,
	}
}

func action(ctx context.Context, cmd *cli.Command) error {
	l := logger.From(ctx)

	overrides := map[string]any{}
	for _, f := range configFlags {
		name := f.Names()[0]
		if cmd.IsSet(name) {
			overrides[name] = cmd.Value(name)
		}
	}

	cfg, err := LoadConfig(cmd.String("config"), overrides)
	if err != nil {
		return err
	}
	l.Debug("loaded config", "config", cfg)

	summary, err := Run(ctx, cfg)
	if err != nil {
		l.Error("workload failed", "error", err)
		return err
	}

	return summary.WriteFile(cfg.Output)
}
