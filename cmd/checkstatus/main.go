// Command checkstatus reconciles shipment status between Order-System and
// Trace-System from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/config"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool

	cfg *config.Config
	log *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "checkstatus",
	Short: "Reconcile shipment status between Order-System and Trace-System",
	Long: `checkstatus looks up a batch of tracking or pickup numbers in Order-System
and Trace-System and prints both views side by side.

Credentials are read from config.toml or CHECKSTATUS_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		level := "warn"
		if verbose {
			level = "debug"
		}
		log, err = logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr"})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = logger.Sync(log)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")

	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
