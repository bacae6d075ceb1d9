package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Fooracles/SystemApp-sub000/internal/config"
	"github.com/Fooracles/SystemApp-sub000/internal/debug"
	"github.com/Fooracles/SystemApp-sub000/internal/telemetry"
)

var (
	jsonOutput  bool
	verboseFlag bool
	quietFlag   bool

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc

	logger    *slog.Logger
	logCloser io.Closer
)

// flagKeys maps persistent flags onto their viper keys. A flag only
// overrides config when it was set explicitly.
var flagKeys = map[string]string{
	"db":       config.KeyDBDSN,
	"driver":   config.KeyDBDriver,
	"actor":    config.KeyActor,
	"json":     config.KeyJSON,
	"timezone": config.KeyTimezone,
	"log-file": config.KeyLogFile,
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database DSN (sqlite path or mysql DSN)")
	rootCmd.PersistentFlags().String("driver", "", "Database driver: sqlite or mysql")
	rootCmd.PersistentFlags().String("actor", "", "Acting user id or name (default: $SYSAPP_ACTOR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("timezone", "", "IANA timezone used for dates (default: local)")
	rootCmd.PersistentFlags().String("log-file", "", "Error log file (JSON lines)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")

	rootCmd.Flags().BoolP("version", "V", false, "Print version information")

	rootCmd.AddGroup(&cobra.Group{ID: "work", Title: "Tasks & Tickets:"})
	rootCmd.AddGroup(&cobra.Group{ID: "setup", Title: "Setup & Directory:"})
	rootCmd.AddGroup(&cobra.Group{ID: "maint", Title: "Maintenance:"})
}

var rootCmd = &cobra.Command{
	Use:           "sysapp",
	Short:         "sysapp - task, ticket and delegation tracker",
	Long:          `Tracks delegated tasks, tickets and client requirements for admins, managers, doers and clients.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("sysapp version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return err
		}
		applyFlagOverrides(cmd)
		jsonOutput = config.GetBool(config.KeyJSON)

		debug.Configure(verboseFlag, quietFlag)
		level := config.GetString(config.KeyLogLevel)
		if verboseFlag {
			level = "debug"
		}

		rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

		l, closer, err := debug.NewLogger(config.GetString(config.KeyLogFile), level)
		if err != nil {
			return err
		}
		logger, logCloser = l, closer
		slog.SetDefault(logger)

		if err := telemetry.Init(rootCtx, "sysapp", Version); err != nil {
			debug.Tracef("telemetry init failed: %v", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		telemetry.Shutdown(ctx)
		cancel()
		if logCloser != nil {
			_ = logCloser.Close()
		}
		if rootCancel != nil {
			rootCancel()
		}
	},
}

// applyFlagOverrides copies explicitly set persistent flags into config.
func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if f.Value.Type() == "bool" {
			v, _ := flags.GetBool(name)
			config.Set(key, v)
			continue
		}
		config.Set(key, f.Value.String())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		FatalError("%v", err)
	}
}
