package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chainguard-dev/clog"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pipcheck/pipcheck/internal/models"
	"github.com/pipcheck/pipcheck/internal/reporter"
	"github.com/pipcheck/pipcheck/internal/scanner"
)

var (
	flagOutput  string
	flagFormat  string
	flagFailOn  string
	flagNoFail  bool
	flagNoCache bool
	flagTimeout int
	flagJobs    int
	flagDisable []string
	flagVerbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pipcheck [paths...]",
	Short: "Lint Pipfile dependency manifests",
	Long: `pipcheck finds Pipfile manifests and checks that they are sound:
the package index is declared with a well-formed HTTPS URL, package names
are unique within each group, version constraints parse, and VCS-pinned
entries carry both a repository URL and a commit reference.

With the verify subcommand, manifests are additionally checked against the
network: the index must answer, every package must exist on it, every
constraint must be satisfiable by a published version, and pinned git refs
must resolve in their repositories.

Examples:
  # Lint the current directory
  pipcheck

  # Lint specific paths
  pipcheck ./svc ./tools

  # Output as JSON
  pipcheck --format json

  # Output SARIF for GitHub Code Scanning
  pipcheck --format sarif --output results.sarif

  # Treat warnings as failures
  pipcheck --fail-on warning

  # Verify against the index and pinned repositories
  pipcheck verify`,
	RunE: runLint,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagOutput, "output", "o", "", "Output file path (default: stdout)")
	pf.StringVarP(&flagFormat, "format", "f", "terminal", "Output format: terminal, json, sarif")
	pf.StringVar(&flagFailOn, "fail-on", "error", "Lowest severity that causes a non-zero exit: error, warning, info")
	pf.BoolVar(&flagNoFail, "no-fail", false, "Exit 0 regardless of findings")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Disable caching of index responses")
	pf.IntVar(&flagTimeout, "timeout", 30, "HTTP request timeout in seconds")
	pf.IntVar(&flagJobs, "jobs", 8, "Maximum concurrent index queries")
	pf.StringSliceVar(&flagDisable, "disable", nil, "Rule IDs to suppress")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	viper.BindPFlag("format", pf.Lookup("format"))
	viper.BindPFlag("fail-on", pf.Lookup("fail-on"))
	viper.BindPFlag("no-cache", pf.Lookup("no-cache"))
	viper.BindPFlag("timeout", pf.Lookup("timeout"))
	viper.BindPFlag("jobs", pf.Lookup("jobs"))
	viper.BindPFlag("disable", pf.Lookup("disable"))

	rootCmd.AddCommand(listCmd, fmtCmd, verifyCmd, versionCmd)
}

// initConfig merges an optional .pipcheck.yaml with flags and environment
func initConfig() {
	viper.SetConfigName(".pipcheck")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("PIPCHECK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: could not read config file: %v\n", err)
		}
	}
}

// buildConfig assembles the scanner configuration from viper and flags
func buildConfig(paths []string) (*models.Config, error) {
	config := models.DefaultConfig()
	if len(paths) > 0 {
		config.Paths = paths
	}
	config.OutputFormat = viper.GetString("format")
	config.OutputFile = flagOutput

	failOn, err := models.ParseSeverity(viper.GetString("fail-on"))
	if err != nil {
		return nil, fmt.Errorf("invalid --fail-on: %w", err)
	}
	config.FailOn = failOn
	config.NoFail = flagNoFail
	config.NoCache = viper.GetBool("no-cache")
	config.DisabledRules = viper.GetStringSlice("disable")
	config.Timeout = time.Duration(viper.GetInt("timeout")) * time.Second
	if jobs := viper.GetInt("jobs"); jobs > 0 {
		config.MaxConcurrent = jobs
	}
	return config, nil
}

// newContext attaches the logger to the command context
func newContext(cmd *cobra.Command) context.Context {
	level := charmlog.WarnLevel
	if flagVerbose {
		level = charmlog.DebugLevel
	}
	log := clog.New(charmlog.NewWithOptions(os.Stderr, charmlog.Options{Level: level}))
	return clog.WithLogger(cmd.Context(), log)
}

func runLint(cmd *cobra.Command, args []string) error {
	return runScan(cmd, args, false)
}

func runScan(cmd *cobra.Command, args []string, remote bool) error {
	ctx := newContext(cmd)
	config, err := buildConfig(args)
	if err != nil {
		return err
	}
	config.Remote = remote

	// Create scanner
	s, err := scanner.New(config)
	if err != nil {
		return fmt.Errorf("failed to initialize scanner: %w", err)
	}

	// Run scan
	issues, err := s.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	// Generate report
	rep := reporter.Get(config.OutputFormat)
	output, err := rep.Report(issues)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	// Write output
	if config.OutputFile != "" {
		if err := os.WriteFile(config.OutputFile, output, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", config.OutputFile)
	} else {
		fmt.Print(string(output))
	}

	// Exit with error code if issues reach the configured severity
	if !config.NoFail && anyAtOrAbove(issues, config.FailOn) {
		os.Exit(1)
	}

	return nil
}

func anyAtOrAbove(issues []models.Issue, threshold models.Severity) bool {
	for _, issue := range issues {
		if issue.Severity.Rank() >= threshold.Rank() {
			return true
		}
	}
	return false
}
