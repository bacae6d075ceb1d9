package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Fooracles/SystemApp-sub000/internal/debug"
	"github.com/Fooracles/SystemApp-sub000/internal/lifecycle"
	"github.com/Fooracles/SystemApp-sub000/internal/ticketview"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
	"github.com/Fooracles/SystemApp-sub000/internal/ui"
	"github.com/Fooracles/SystemApp-sub000/internal/workflow"
)

var ticketCmd = &cobra.Command{
	Use:     "ticket",
	Aliases: []string{"item"},
	GroupID: "work",
	Short:   "List and manage tickets, tasks and requirements",
}

var ticketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List work items visible to the actor",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp()
		defer func() { _ = a.Close() }()
		actor := a.mustActor()

		views, err := a.svc.GetItems(rootCtx, actor, types.ItemFilter{})
		if err != nil {
			return err
		}
		items := make([]*types.WorkItem, 0, len(views))
		for _, v := range views {
			items = append(items, v.WorkItem)
		}

		flags := cmd.Flags()
		get := func(name string) string { v, _ := flags.GetString(name); return v }
		showDropped, _ := flags.GetBool("show-dropped")
		desc, _ := flags.GetBool("desc")
		page, _ := flags.GetInt("page")
		size, _ := flags.GetInt("page-size")
		if size <= 0 {
			size = a.svc.PageSize()
		}

		state := ticketview.New(size)
		state.Load(items)
		f := ticketview.Filters{
			Search:      get("search"),
			Status:      types.ItemStatus(get("status")),
			CreatedBy:   get("created-by"),
			AssignedTo:  get("assigned-to"),
			ShowDropped: showDropped,
		}
		if raw := get("type"); raw != "" {
			t, ok := types.ParseItemType(raw)
			if !ok {
				return fmt.Errorf("unknown item type %q", raw)
			}
			f.Type = t
		}
		state.SetFilters(f)
		state.Sort = ticketview.ParseSortColumn(get("sort"))
		state.Desc = desc
		state.Page = page

		pageItems := state.PageItems()
		if jsonOutput {
			outputJSON(map[string]interface{}{
				"items":       pageItems,
				"page":        state.Page,
				"total_pages": state.TotalPages(),
				"total":       len(state.Visible()),
			})
			return nil
		}
		if len(pageItems) == 0 {
			debug.Notef("No items found.\n")
			return nil
		}
		fmt.Println(ui.RenderItemTable(pageItems))
		fmt.Println(ui.RenderPageFooter(state.Page, state.TotalPages(), len(state.Visible())))
		return nil
	},
}

var ticketShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one work item with its status timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a := mustOpenApp()
		defer func() { _ = a.Close() }()

		item, err := a.svc.GetItem(rootCtx, a.mustActor(), id)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(item)
			return nil
		}
		fmt.Print(ui.RenderMarkdown(itemMarkdown(item)))
		return nil
	},
}

// itemMarkdown renders an item as a markdown document for the terminal.
func itemMarkdown(item workflow.ItemView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# #%d %s\n\n", item.ID, item.Title)
	fmt.Fprintf(&b, "**%s** · **%s** · created by %s on %s\n\n", item.Type, item.Status,
		item.CreatedByName, item.CreatedAt.Format("2006-01-02 15:04"))
	if item.AssignedToName != "" {
		fmt.Fprintf(&b, "Assigned to %s\n\n", item.AssignedToName)
	}
	if d := strings.TrimSpace(item.Description); d != "" {
		b.WriteString(d + "\n\n")
	}
	if len(item.Attachments) > 0 {
		b.WriteString("## Attachments\n\n")
		for _, name := range item.Attachments {
			fmt.Fprintf(&b, "- `%s`\n", workflow.DisplayName(name))
		}
		b.WriteString("\n")
	}
	if item.ProvidedDescription != nil || len(item.ProvidedAttachments) > 0 {
		b.WriteString("## Provided\n\n")
		if item.ProvidedDescription != nil {
			b.WriteString(*item.ProvidedDescription + "\n\n")
		}
		for _, name := range item.ProvidedAttachments {
			fmt.Fprintf(&b, "- `%s`\n", workflow.DisplayName(name))
		}
		b.WriteString("\n")
	}
	b.WriteString("## Timeline\n\n")
	for _, step := range item.Timeline {
		mark := "[ ]"
		switch step.State {
		case lifecycle.StepDone:
			mark = "[x]"
		case lifecycle.StepCurrent:
			mark = "[>]"
		case lifecycle.StepDropped:
			mark = "[-]"
		}
		fmt.Fprintf(&b, "- %s %s\n", mark, step.Status)
	}
	return b.String()
}

var ticketCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Raise a ticket, task or requirement",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp()
		defer func() { _ = a.Close() }()
		actor := a.mustActor()

		flags := cmd.Flags()
		get := func(name string) string { v, _ := flags.GetString(name); return v }
		paths, _ := flags.GetStringSlice("attach")
		uploads, closeAll, err := openUploads(paths)
		if err != nil {
			return err
		}
		defer closeAll()

		in := workflow.CreateItemInput{
			Type:        get("type"),
			Title:       get("title"),
			Description: get("description"),
			Files:       uploads,
		}
		if ref := get("assign"); ref != "" {
			u, err := a.lookupUser(rootCtx, ref)
			if err != nil {
				return err
			}
			in.AssignedTo = &u.ID
		}
		item, err := a.svc.CreateItem(rootCtx, actor, in)
		if err != nil {
			return describeFieldErrors(err)
		}
		if jsonOutput {
			outputJSON(item)
			return nil
		}
		fmt.Printf("%s Created %s #%d (%s)\n", ui.RenderPass("✓"), item.Type, item.ID, ui.RenderItemStatus(item.Status))
		return nil
	},
}

var ticketStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Move a work item to another status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a := mustOpenApp()
		defer func() { _ = a.Close() }()

		item, err := a.svc.UpdateItemStatus(rootCtx, a.mustActor(), id, args[1])
		if err != nil {
			return err
		}
		printItemResult(item, "Status updated")
		return nil
	},
}

var ticketDropCmd = &cobra.Command{
	Use:   "drop <id>",
	Short: "Drop a work item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a := mustOpenApp()
		defer func() { _ = a.Close() }()

		item, err := a.svc.DropItem(rootCtx, a.mustActor(), id)
		if err != nil {
			return err
		}
		printItemResult(item, "Dropped")
		return nil
	},
}

var ticketProvideCmd = &cobra.Command{
	Use:   "provide <id>",
	Short: "Provide what a requirement asked for",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		description, _ := cmd.Flags().GetString("description")
		paths, _ := cmd.Flags().GetStringSlice("attach")
		uploads, closeAll, err := openUploads(paths)
		if err != nil {
			return err
		}
		defer closeAll()

		a := mustOpenApp()
		defer func() { _ = a.Close() }()
		item, err := a.svc.ProvideRequirement(rootCtx, a.mustActor(), id, description, uploads)
		if err != nil {
			return err
		}
		printItemResult(item, "Provided")
		return nil
	},
}

func printItemResult(item workflow.ItemView, verb string) {
	if jsonOutput {
		outputJSON(item)
		return
	}
	fmt.Printf("%s %s: %s #%d is %s\n", ui.RenderPass("✓"), verb, item.Type, item.ID, ui.RenderItemStatus(item.Status))
}

// openUploads opens local files for attaching. The returned func closes them.
func openUploads(paths []string) ([]workflow.Upload, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	uploads := make([]workflow.Upload, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("open attachment: %w", err)
		}
		files = append(files, f)
		uploads = append(uploads, workflow.Upload{Name: filepath.Base(p), Reader: f})
	}
	return uploads, closeAll, nil
}

func init() {
	lf := ticketListCmd.Flags()
	lf.String("type", "", "Filter by type: Task, Ticket or Required")
	lf.String("status", "", "Filter by status")
	lf.String("search", "", "Filter by title or description substring")
	lf.String("created-by", "", "Filter by creator name")
	lf.String("assigned-to", "", "Filter by assignee name")
	lf.Bool("show-dropped", false, "Include dropped items")
	lf.String("sort", "created_at", "Sort column: id, title, type, status, created_by, assigned_to, created_at, status_updated_at")
	lf.Bool("desc", true, "Sort descending")
	lf.Int("page", 1, "Page number")
	lf.Int("page-size", 0, "Rows per page (default: page-size config)")

	cf := ticketCreateCmd.Flags()
	cf.String("type", "Ticket", "Item type: Task, Ticket or Required")
	cf.String("title", "", "Title (required)")
	cf.StringP("description", "d", "", "Description (markdown)")
	cf.String("assign", "", "Assignee user id or exact name")
	cf.StringSlice("attach", nil, "File to attach (repeatable)")

	pf := ticketProvideCmd.Flags()
	pf.StringP("description", "d", "", "What is being provided")
	pf.StringSlice("attach", nil, "File to attach (repeatable)")

	ticketCmd.AddCommand(ticketListCmd, ticketShowCmd, ticketCreateCmd, ticketStatusCmd, ticketDropCmd, ticketProvideCmd)
	rootCmd.AddCommand(ticketCmd)
}
