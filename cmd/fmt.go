package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pipcheck/pipcheck/internal/parsers"
	"github.com/pipcheck/pipcheck/internal/scanner"
)

var flagCheck bool

// fmtCmd rewrites manifests in canonical form
var fmtCmd = &cobra.Command{
	Use:   "fmt [paths...]",
	Short: "Rewrite manifests in canonical form",
	Long: `fmt rewrites each discovered Pipfile with a fixed section order and
requirements sorted by normalized package name. With --check no file is
written; the command exits non-zero when any manifest differs from its
canonical form.`,
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVar(&flagCheck, "check", false, "Report unformatted manifests without writing")
}

func runFmt(cmd *cobra.Command, args []string) error {
	ctx := newContext(cmd)
	config, err := buildConfig(args)
	if err != nil {
		return err
	}

	s, err := scanner.New(config)
	if err != nil {
		return fmt.Errorf("failed to initialize scanner: %w", err)
	}

	manifests, err := s.Manifests(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover manifests: %w", err)
	}

	changed := false
	for _, m := range manifests {
		formatted := parsers.Format(m)

		current, err := os.ReadFile(m.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", m.Path, err)
		}
		if bytes.Equal(current, formatted) {
			continue
		}
		changed = true

		if flagCheck {
			fmt.Fprintf(os.Stderr, "%s is not canonically formatted\n", m.Path)
			continue
		}

		if err := os.WriteFile(m.Path, formatted, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", m.Path, err)
		}
		fmt.Fprintf(os.Stderr, "rewrote %s\n", m.Path)
	}

	if flagCheck && changed {
		os.Exit(1)
	}
	return nil
}
