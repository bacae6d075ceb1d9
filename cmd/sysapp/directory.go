package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
	"github.com/Fooracles/SystemApp-sub000/internal/ui"
)

var userCmd = &cobra.Command{
	Use:     "user",
	GroupID: "setup",
	Short:   "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		get := func(name string) string { v, _ := flags.GetString(name); return strings.TrimSpace(v) }

		role := types.Role(strings.ToLower(get("role")))
		if !role.IsValid() {
			return fmt.Errorf("invalid role %q (admin, manager, doer or client)", get("role"))
		}
		a := mustOpenApp()
		defer func() { _ = a.Close() }()

		u := &types.User{Name: strings.TrimSpace(args[0]), Email: get("email"), Role: role}
		if ref := get("manager"); ref != "" {
			m, err := a.lookupUser(rootCtx, ref)
			if err != nil {
				return err
			}
			u.ManagerID = &m.ID
		}
		if ref := get("department"); ref != "" {
			id, err := a.departmentID(rootCtx, ref)
			if err != nil {
				return err
			}
			u.DepartmentID = &id
		}
		if ref := get("account"); ref != "" {
			id, err := a.accountID(rootCtx, ref)
			if err != nil {
				return err
			}
			u.ClientAccountID = &id
		}
		if role == types.RoleClient && u.ClientAccountID == nil {
			return fmt.Errorf("client users need --account")
		}
		if err := a.store.Storage.CreateUser(rootCtx, u); err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(u)
			return nil
		}
		fmt.Printf("%s Added %s %s (id %d)\n", ui.RenderPass("✓"), u.Role, u.Name, u.ID)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp()
		defer func() { _ = a.Close() }()

		var filter types.UserFilter
		if raw, _ := cmd.Flags().GetString("role"); raw != "" {
			role := types.Role(strings.ToLower(raw))
			filter.Role = &role
		}
		users, err := a.store.Storage.ListUsers(rootCtx, filter)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(users)
			return nil
		}
		for _, u := range users {
			fmt.Printf("%4d  %-8s %s\n", u.ID, u.Role, u.Name)
		}
		return nil
	},
}

var deptCmd = &cobra.Command{
	Use:     "dept <name>",
	GroupID: "setup",
	Short:   "Add a department, or list them with no argument",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp()
		defer func() { _ = a.Close() }()
		if len(args) == 1 {
			d := &types.Department{Name: strings.TrimSpace(args[0])}
			if err := a.store.Storage.CreateDepartment(rootCtx, d); err != nil {
				return err
			}
			fmt.Printf("%s Added department %s (id %d)\n", ui.RenderPass("✓"), d.Name, d.ID)
			return nil
		}
		depts, err := a.store.Storage.ListDepartments(rootCtx)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(depts)
			return nil
		}
		for _, d := range depts {
			fmt.Printf("%4d  %s\n", d.ID, d.Name)
		}
		return nil
	},
}

var accountCmd = &cobra.Command{
	Use:     "account <name>",
	GroupID: "setup",
	Short:   "Add a client account, or list them with no argument",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp()
		defer func() { _ = a.Close() }()
		if len(args) == 1 {
			acct := &types.ClientAccount{Name: strings.TrimSpace(args[0])}
			if err := a.store.Storage.CreateClientAccount(rootCtx, acct); err != nil {
				return err
			}
			fmt.Printf("%s Added client account %s (id %d)\n", ui.RenderPass("✓"), acct.Name, acct.ID)
			return nil
		}
		accts, err := a.store.Storage.ListClientAccounts(rootCtx)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(accts)
			return nil
		}
		for _, acct := range accts {
			fmt.Printf("%4d  %s\n", acct.ID, acct.Name)
		}
		return nil
	},
}

func (a *app) departmentID(ctx context.Context, ref string) (int64, error) {
	depts, err := a.store.Storage.ListDepartments(ctx)
	if err != nil {
		return 0, err
	}
	for _, d := range depts {
		if strconv.FormatInt(d.ID, 10) == ref || strings.EqualFold(d.Name, ref) {
			return d.ID, nil
		}
	}
	return 0, fmt.Errorf("no department %q", ref)
}

func (a *app) accountID(ctx context.Context, ref string) (int64, error) {
	accts, err := a.store.Storage.ListClientAccounts(ctx)
	if err != nil {
		return 0, err
	}
	for _, acct := range accts {
		if strconv.FormatInt(acct.ID, 10) == ref || strings.EqualFold(acct.Name, ref) {
			return acct.ID, nil
		}
	}
	return 0, fmt.Errorf("no client account %q", ref)
}

func init() {
	af := userAddCmd.Flags()
	af.String("role", "doer", "Role: admin, manager, doer or client")
	af.String("email", "", "Email address")
	af.String("manager", "", "Manager user id or exact name")
	af.String("department", "", "Department id or name")
	af.String("account", "", "Client account id or name (clients only)")
	userListCmd.Flags().String("role", "", "Only list users with this role")

	userCmd.AddCommand(userAddCmd, userListCmd)
	rootCmd.AddCommand(userCmd, deptCmd, accountCmd)
}
