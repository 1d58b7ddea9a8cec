// Command studyctl runs the study assistant's building blocks from a shell.
package main

import (
	"fmt"
	"os"

	"studyassistant/internal/logging"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "studyctl",
		Short:         "Extract, analyse and report on TNPSC study material",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug|info|warn|error")

	root.AddCommand(reportCmd(), extractCmd(), analyzeCmd(), tokenCmd())
	return root
}
