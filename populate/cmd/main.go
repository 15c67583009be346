// Package main provides the populate CLI that expands the
// placeholders of a prompt templates CSV using values from
// a JSON or YAML config file.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/byte4ever/promptfill/populate"
)

// Environment variables that override the built-in flag
// defaults. Explicit flags still win.
const (
	envTemplates = "POPULATE_TEMPLATES"
	envConfig    = "POPULATE_CONFIG"
	envOut       = "POPULATE_OUT"
	envSeed      = "POPULATE_SEED"
)

func envOr(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}

	return fallback
}

func newRootCmd() *cobra.Command {
	var (
		templates string
		cfgPath   string
		out       string
		seed      int64
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Populate prompts CSV using config values",
		Long: "Reads a CSV of prompt templates, replaces <company>, <ceo>," +
			" <competitor> and <individual> placeholders with values from" +
			" the config file, and writes the result with a" +
			" \"generated user input\" column.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.ErrOrStderr(), verbose)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			const errCtx = "populate"

			opts := populate.Options{
				TemplatesPath: templates,
				ConfigPath:    cfgPath,
				OutPath:       out,
			}

			sd, err := resolveSeed(cmd, seed)
			if err != nil {
				return fmt.Errorf("%s: %w", errCtx, err)
			}

			opts.Seed = sd

			res, err := populate.Run(opts)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(
				cmd.OutOrStdout(),
				"Wrote %d rows → %s\n", res.Rows, res.Path,
			)
			if err != nil {
				return fmt.Errorf(
					"%s: writing to stdout: %w", errCtx, err,
				)
			}

			return nil
		},
	}

	fl := cmd.Flags()

	fl.StringVar(
		&templates, "templates",
		envOr(envTemplates, populate.DefaultTemplatesPath),
		"path to the source templates CSV",
	)

	fl.StringVar(
		&cfgPath, "config",
		envOr(envConfig, populate.DefaultConfigPath),
		"path to the config JSON (or .yaml)",
	)

	fl.StringVar(
		&out, "out",
		envOr(envOut, populate.DefaultOutPath),
		"output CSV path",
	)

	fl.Int64Var(
		&seed, "seed", 0,
		"optional random seed for reproducible picks (env "+envSeed+")",
	)

	fl.BoolVarP(
		&verbose, "verbose", "v", false,
		"log every generated row",
	)

	return cmd
}

// resolveSeed returns the --seed flag when given, else
// POPULATE_SEED when set, else nil.
func resolveSeed(cmd *cobra.Command, flagSeed int64) (*int64, error) {
	if cmd.Flags().Changed("seed") {
		return &flagSeed, nil
	}

	raw := envOr(envSeed, "")
	if raw == "" {
		return nil, nil
	}

	sv, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", envSeed, raw, err)
	}

	return &sv, nil
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	))
}

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load() //nolint:errcheck // optional file

	if err := newRootCmd().Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
