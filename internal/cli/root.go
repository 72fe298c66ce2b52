package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "0.3.0"

// Exit codes
const (
	ExitSuccess        = 0
	ExitThresholdError = 1
	ExitUsageError     = 2
	ExitAuthError      = 3
	ExitRuntimeError   = 4
)

var rootCmd = &cobra.Command{
	Use:   "argus",
	Short: "LLM pull-request analysis for CI pipelines",
	Long:  "Argus sends changed PR files to an LLM endpoint, normalizes the response into structured findings, and publishes them as PR comments, inline annotations, description updates, and labels.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(allCmd)
	rootCmd.AddCommand(kindsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print argus version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "argus version %s\n", version)
	},
}

// newLogger builds the run logger. Structured JSON in CI, console otherwise.
func newLogger(verbose bool) *zap.Logger {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"stderr"}
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
