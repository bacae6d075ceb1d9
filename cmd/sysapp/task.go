package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/Fooracles/SystemApp-sub000/internal/config"
	"github.com/Fooracles/SystemApp-sub000/internal/debug"
	"github.com/Fooracles/SystemApp-sub000/internal/query"
	"github.com/Fooracles/SystemApp-sub000/internal/shift"
	"github.com/Fooracles/SystemApp-sub000/internal/timeparsing"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
	"github.com/Fooracles/SystemApp-sub000/internal/ui"
	"github.com/Fooracles/SystemApp-sub000/internal/workflow"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	GroupID: "work",
	Short:   "List and manage delegation tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks visible to the actor",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp()
		defer func() { _ = a.Close() }()
		actor := a.mustActor()

		flags := cmd.Flags()
		get := func(name string) string { v, _ := flags.GetString(name); return v }
		page, _ := flags.GetInt("page")
		size, _ := flags.GetInt("page-size")

		filter := types.TaskFilter{
			UniqueIDContains:    get("id"),
			DescriptionContains: get("search"),
			DoerContains:        get("doer"),
			DepartmentContains:  get("department"),
			PlannedFrom:         get("from"),
			PlannedTo:           get("to"),
			DoerStatus:          query.ParseDoerStatus(get("doer-status")),
		}
		if raw := get("status"); raw != "" {
			st, ok := query.NormalizeTaskStatus(raw)
			if !ok {
				return fmt.Errorf("unknown status %q", raw)
			}
			filter.Status = &st
		}

		res, err := a.svc.ListTasks(rootCtx, actor, workflow.ListTasksInput{
			Filter:   filter,
			Sort:     types.ParseTaskSortOption(get("sort"), get("dir")),
			Page:     page,
			PageSize: size,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(res)
			return nil
		}
		if len(res.Tasks) == 0 {
			debug.Notef("No tasks found.\n")
			return nil
		}
		lines := make([]ui.TaskLine, 0, len(res.Tasks))
		for _, row := range res.Tasks {
			lines = append(lines, ui.TaskLine{Task: row.DelegationTask, Delay: row.DelayDisplay})
		}
		fmt.Println(ui.RenderTaskTable(lines))
		fmt.Println(ui.RenderPageFooter(res.Page.Number, res.Page.TotalPages, res.Page.Total))
		return nil
	},
}

var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a task",
	Long: `Add a delegation or checklist task.

Doers always create tasks for themselves. Use --interactive for a terminal form.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp()
		defer func() { _ = a.Close() }()
		actor := a.mustActor()

		flags := cmd.Flags()
		get := func(name string) string { v, _ := flags.GetString(name); return v }
		in := workflow.CreateTaskInput{
			TaskType:        get("type"),
			Description:     get("description"),
			Doer:            get("doer"),
			PlannedDate:     get("date"),
			PlannedTime:     get("time"),
			DurationMinutes: get("duration"),
		}
		if interactive, _ := flags.GetBool("interactive"); interactive {
			if err := runTaskForm(&in, actor); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					fmt.Fprintln(os.Stderr, "Task creation cancelled.")
					return nil
				}
				return fmt.Errorf("form error: %w", err)
			}
		}

		task, err := a.svc.CreateTask(rootCtx, actor, in)
		if err != nil {
			return describeFieldErrors(err)
		}
		if jsonOutput {
			outputJSON(task)
			return nil
		}
		fmt.Printf("%s Created task %s for %s on %s %s\n",
			ui.RenderPass("✓"), task.UniqueID, task.DoerName, task.PlannedDate, task.PlannedTime)
		return nil
	},
}

// runTaskForm fills in the create input from a terminal form. Values already
// given as flags are used as defaults.
func runTaskForm(in *workflow.CreateTaskInput, actor types.Actor) error {
	if in.TaskType == "" {
		in.TaskType = string(types.TaskTypeDelegation)
	}
	if in.PlannedDate == "" {
		in.PlannedDate = time.Now().In(config.Location()).Format("2006-01-02")
	}
	if in.DurationMinutes == "" {
		in.DurationMinutes = "30"
	}
	required := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", field)
			}
			return nil
		}
	}

	fields := []huh.Field{
		huh.NewSelect[string]().
			Title("Type").
			Options(
				huh.NewOption("Delegation", string(types.TaskTypeDelegation)),
				huh.NewOption("Checklist", string(types.TaskTypeChecklist)),
			).
			Value(&in.TaskType),
		huh.NewText().
			Title("Description").
			Description("What needs to be done (required)").
			CharLimit(2000).
			Value(&in.Description).
			Validate(required("description")),
	}
	if !actor.IsDoer() {
		fields = append(fields, huh.NewInput().
			Title("Doer").
			Description("User id or exact name").
			Value(&in.Doer).
			Validate(required("doer")))
	}
	form := huh.NewForm(
		huh.NewGroup(fields...),
		huh.NewGroup(
			huh.NewInput().Title("Planned date").Placeholder("YYYY-MM-DD").Value(&in.PlannedDate).Validate(required("planned date")),
			huh.NewInput().Title("Planned time").Placeholder("HH:MM").Value(&in.PlannedTime).Validate(required("planned time")),
			huh.NewInput().Title("Duration (minutes)").Value(&in.DurationMinutes).Validate(required("duration")),
			huh.NewConfirm().Title("Create this task?").Affirmative("Create").Negative("Cancel"),
		),
	).WithTheme(huh.ThemeDracula())
	return form.Run()
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <task-id> <status>",
	Short: "Change a task's status (pending, completed, not_done, cant_be_done)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a := mustOpenApp()
		defer func() { _ = a.Close() }()

		res, err := a.svc.UpdateTaskStatus(rootCtx, a.mustActor(), id, args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(res)
			return nil
		}
		delay := ""
		if res.Task.DelayDuration != "" {
			delay = " (" + ui.RenderDelay(res.Task.DelayDuration) + ")"
		}
		fmt.Printf("%s %s %s actual %s%s\n", res.Icon, res.Task.UniqueID,
			ui.RenderTaskStatus(res.Task.Status), res.ActualDisplay, delay)
		return nil
	},
}

var taskShiftCmd = &cobra.Command{
	Use:   "shift <task-id>",
	Short: "Move a task to a new planned date and time",
	Long: `Move a task to a new slot. Within the same week the task is rescheduled in
place; into another week it is closed as shifted and a new task is created.

The target is given with --date/--time or in plain words with --to, e.g.
--to "next friday 3pm" or --to +2d. Without a time of day the task keeps its
current planned time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		date, _ := flags.GetString("date")
		clock, _ := flags.GetString("time")
		if to, _ := flags.GetString("to"); to != "" {
			target, err := timeparsing.ParseRelativeTime(to, time.Now().In(config.Location()))
			if err != nil {
				return err
			}
			d, c := timeparsing.Slot(target)
			date = d
			if clock == "" && timeparsing.HasClock(to) {
				clock = c
			}
		}
		if date == "" {
			return errors.New("a target is required: pass --date or --to")
		}

		a := mustOpenApp()
		defer func() { _ = a.Close() }()
		res, err := a.svc.ShiftTask(rootCtx, a.mustActor(), id, date, clock)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(res)
			return nil
		}
		if res.Kind == shift.NewWeek {
			fmt.Printf("%s %s closed as shifted; new task %s on %s %s\n", ui.RenderAccent("↪"),
				res.Previous.UniqueID, res.Task.UniqueID, res.Task.PlannedDate, res.Task.PlannedTime)
			return nil
		}
		fmt.Printf("%s %s rescheduled to %s %s\n", ui.RenderAccent("↪"),
			res.Task.UniqueID, res.Task.PlannedDate, res.Task.PlannedTime)
		return nil
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <task-id>",
	Short: "Edit a task's type, description, doer or duration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a := mustOpenApp()
		defer func() { _ = a.Close() }()
		actor := a.mustActor()

		current, err := a.svc.ListTasks(rootCtx, actor, workflow.ListTasksInput{Filter: types.TaskFilter{IDs: []int64{id}}})
		if err != nil {
			return err
		}
		if len(current.Tasks) == 0 {
			return fmt.Errorf("task %d: %w", id, workflow.ErrNotFound)
		}
		task := current.Tasks[0].DelegationTask

		flags := cmd.Flags()
		in := workflow.EditTaskInput{
			TaskID:          id,
			TaskType:        string(task.TaskType),
			Description:     task.Description,
			DurationMinutes: fmt.Sprint(task.DurationMinutes),
		}
		if flags.Changed("type") {
			in.TaskType, _ = flags.GetString("type")
		}
		if flags.Changed("description") {
			in.Description, _ = flags.GetString("description")
		}
		if flags.Changed("doer") {
			in.Doer, _ = flags.GetString("doer")
		}
		if flags.Changed("duration") {
			in.DurationMinutes, _ = flags.GetString("duration")
		}

		updated, err := a.svc.EditTask(rootCtx, actor, in)
		if err != nil {
			return describeFieldErrors(err)
		}
		if jsonOutput {
			outputJSON(updated)
			return nil
		}
		fmt.Printf("%s Updated task %s\n", ui.RenderPass("✓"), updated.UniqueID)
		return nil
	},
}

// describeFieldErrors flattens validation errors into one readable error.
func describeFieldErrors(err error) error {
	var fe workflow.FieldErrors
	if !errors.As(err, &fe) {
		return err
	}
	if jsonOutput {
		outputJSON(map[string]interface{}{"status": "error", "errors": fe})
	}
	return fmt.Errorf("invalid input: %s", fe.Error())
}

func init() {
	lf := taskListCmd.Flags()
	lf.String("id", "", "Filter by unique id substring")
	lf.String("search", "", "Filter by description substring")
	lf.String("doer", "", "Filter by doer name substring")
	lf.String("department", "", "Filter by department substring")
	lf.String("status", "", "Filter by status (pending, completed, not_done, cant_be_done, shifted)")
	lf.String("from", "", "Planned on or after (YYYY-MM-DD)")
	lf.String("to", "", "Planned on or before (YYYY-MM-DD)")
	lf.String("doer-status", "", "Doer view: all, pending, completed or delayed")
	lf.String("sort", "planned_date", "Sort column")
	lf.String("dir", "desc", "Sort direction: asc or desc")
	lf.Int("page", 1, "Page number")
	lf.Int("page-size", 0, "Rows per page (default: page-size config)")

	cf := taskCreateCmd.Flags()
	cf.String("type", "delegation", "Task type: delegation or checklist")
	cf.StringP("description", "d", "", "Task description")
	cf.String("doer", "", "Doer user id or exact name")
	cf.String("date", "", "Planned date (YYYY-MM-DD)")
	cf.String("time", "", "Planned time (HH:MM)")
	cf.String("duration", "", "Duration in minutes")
	cf.BoolP("interactive", "i", false, "Fill in the task with a terminal form")

	sf := taskShiftCmd.Flags()
	sf.String("date", "", "New planned date (YYYY-MM-DD)")
	sf.String("time", "", "New planned time (HH:MM); defaults to the task's current time")
	sf.String("to", "", `New slot as words, a date or an offset, e.g. "next monday 9am", 2024-03-12, +2d`)

	ef := taskEditCmd.Flags()
	ef.String("type", "", "Task type: delegation or checklist")
	ef.StringP("description", "d", "", "Task description")
	ef.String("doer", "", "Reassign to user id or exact name")
	ef.String("duration", "", "Duration in minutes")

	taskCmd.AddCommand(taskListCmd, taskCreateCmd, taskStatusCmd, taskShiftCmd, taskEditCmd)
	rootCmd.AddCommand(taskCmd)
}
