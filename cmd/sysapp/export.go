package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Fooracles/SystemApp-sub000/internal/debug"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

// snapshot is the full export document.
type snapshot struct {
	ExportedAt     time.Time               `json:"exported_at" yaml:"exported_at" toml:"exported_at"`
	Departments    []*types.Department     `json:"departments" yaml:"departments" toml:"departments"`
	ClientAccounts []*types.ClientAccount  `json:"client_accounts" yaml:"client_accounts" toml:"client_accounts"`
	Users          []*types.User           `json:"users" yaml:"users" toml:"users"`
	Items          []*types.WorkItem       `json:"items" yaml:"items" toml:"items"`
	Tasks          []*types.DelegationTask `json:"tasks" yaml:"tasks" toml:"tasks"`
}

var exportCmd = &cobra.Command{
	Use:     "export",
	GroupID: "maint",
	Short:   "Export directory, items and tasks as JSON, YAML or TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("output")

		a := mustOpenApp()
		defer func() { _ = a.Close() }()
		st := a.store.Storage

		snap := snapshot{ExportedAt: time.Now().UTC()}
		var err error
		if snap.Departments, err = st.ListDepartments(rootCtx); err != nil {
			return err
		}
		if snap.ClientAccounts, err = st.ListClientAccounts(rootCtx); err != nil {
			return err
		}
		if snap.Users, err = st.ListUsers(rootCtx, types.UserFilter{}); err != nil {
			return err
		}
		if snap.Items, err = st.SearchItems(rootCtx, types.ItemFilter{}); err != nil {
			return err
		}
		if snap.Tasks, err = st.SearchTasks(rootCtx, types.TaskFilter{}); err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if out != "" && out != "-" {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			w = f
		}
		if err := encodeSnapshot(w, format, snap); err != nil {
			return err
		}
		if out != "" && out != "-" {
			debug.Notef("Exported %d tasks and %d items to %s\n", len(snap.Tasks), len(snap.Items), out)
		}
		return nil
	},
}

func encodeSnapshot(w io.Writer, format string, snap snapshot) error {
	switch strings.ToLower(format) {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(w).Encode(snap)
	default:
		return fmt.Errorf("unknown export format %q (json, yaml or toml)", format)
	}
}

func init() {
	exportCmd.Flags().StringP("format", "f", "json", "Output format: json, yaml or toml")
	exportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
