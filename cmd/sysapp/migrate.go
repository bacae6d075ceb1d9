package main

import (
	"github.com/spf13/cobra"

	"github.com/Fooracles/SystemApp-sub000/internal/debug"
	"github.com/Fooracles/SystemApp-sub000/internal/storage/factory"
)

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	GroupID: "maint",
	Short:   "Create or upgrade the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		opened, err := factory.Open(rootCtx, storeOptions())
		if err != nil {
			return err
		}
		defer func() { _ = opened.Close() }()
		debug.Notef("Schema is up to date (%s)\n", opened.SQL.Driver())
		return nil
	},
}

var backfillDryRun bool

var backfillCmd = &cobra.Command{
	Use:     "backfill-delays",
	GroupID: "maint",
	Short:   "Rewrite legacy delay strings in the current format",
	Long: `Rewrite delay_duration values stored in the legacy "X days Y hrs Z mins"
format as "2 D 1 h 5 m" strings. Use --dry-run to count affected rows without writing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp()
		defer func() { _ = a.Close() }()

		n, err := a.svc.BackfillDelays(rootCtx, backfillDryRun)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"rewritten": n, "dry_run": backfillDryRun})
			return nil
		}
		verb := "Rewrote"
		if backfillDryRun {
			verb = "Would rewrite"
		}
		debug.Notef("%s %d delay value(s)\n", verb, n)
		return nil
	},
}

func init() {
	backfillCmd.Flags().BoolVar(&backfillDryRun, "dry-run", false, "Report how many rows would change without writing")
	rootCmd.AddCommand(migrateCmd, backfillCmd)
}
