package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"didathing/internal/bootstrap"
	prefsdto "didathing/internal/modules/preferences/dto"
	trackerdto "didathing/internal/modules/tracker/dto"
	"didathing/internal/platform/config"
	"didathing/internal/platform/timefmt"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	dataDir  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "didathing",
		Short:         "Track when you last did things",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "data directory (default: $"+config.EnvDataDir+" or the user config dir)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: trace|debug|info|warn|error")

	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newTaskCmd(opts))
	root.AddCommand(newDoneCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newRecomputeCmd(opts))
	root.AddCommand(newDoctorCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newWipeCmd(opts))
	root.AddCommand(newPrefsCmd(opts))
	return root
}

func loadApp(opts *rootOptions) (*bootstrap.App, error) {
	cfg, err := config.Load(opts.dataDir, opts.logLevel)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, bootstrap.NewLogger(cfg))
}

// withApp runs fn against a freshly wired app and releases the store after.
func withApp(opts *rootOptions, fn func(app *bootstrap.App) error) error {
	app, err := loadApp(opts)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, raw)
	}
	return id, nil
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(opts, bootstrap.RunTUI)
		},
	}
}

// ─── task ────────────────────────────────────────────────────────────────────

func newTaskCmd(opts *rootOptions) *cobra.Command {
	task := &cobra.Command{Use: "task", Short: "Task commands"}

	var phaseSpecs []string
	var kind string
	var force bool
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task; two or more --phase flags make it a cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				phases, err := app.TrackerCLI.ParsePhases(phaseSpecs)
				if err != nil {
					return fmt.Errorf("invalid --phase: %w", err)
				}
				out, err := app.TrackerCLI.CreateTask(context.Background(), args[0], kind, phases, force)
				if err != nil {
					return err
				}
				names := make([]string, len(out.Phases))
				for i, p := range out.Phases {
					names[i] = p.Name
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %d %q kind=%s phases=%s\n", out.Task.ID, out.Task.Title, out.Kind, strings.Join(names, ","))
				return nil
			})
		},
	}
	add.Flags().StringArrayVar(&phaseSpecs, "phase", nil, "phase as name[:days], repeat in cycle order")
	add.Flags().StringVar(&kind, "kind", "", "single|cycle (inferred from --phase when empty)")
	add.Flags().BoolVar(&force, "force", false, "add even when another task has the same title")

	var sortBy string
	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks with their current state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				ctx := context.Background()
				order := sortBy
				if order == "" {
					prefs, err := app.PrefsCLI.Get(ctx)
					if err != nil {
						return err
					}
					order = prefs.SortBy
				}
				tasks, err := app.TrackerCLI.ListTasks(ctx, order)
				if err != nil {
					return err
				}
				if len(tasks) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no tasks")
					return nil
				}
				now := time.Now()
				for _, t := range tasks {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", t.Task.ID, t.Kind, t.Task.Title, summaryState(now, t))
				}
				return nil
			})
		},
	}
	list.Flags().StringVar(&sortBy, "sort", "", "recent|alpha (defaults to the saved preference)")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task with its phases and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			return withApp(opts, func(app *bootstrap.App) error {
				d, err := app.TrackerCLI.GetTask(context.Background(), id)
				if err != nil {
					return err
				}
				printDetail(cmd.OutOrStdout(), time.Now(), d)
				return nil
			})
		},
	}

	rename := &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.TrackerCLI.RenameTask(context.Background(), id, args[1])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "renamed %d to %q\n", out.ID, out.Title)
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task with its phases and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			return withApp(opts, func(app *bootstrap.App) error {
				if err := app.TrackerCLI.DeleteTask(context.Background(), id); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", id)
				return nil
			})
		},
	}

	var days int
	phaseAdd := &cobra.Command{
		Use:   "phase-add <id> <name>",
		Short: "Append a phase to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			var duration *int
			if cmd.Flags().Changed("days") {
				duration = &days
			}
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.TrackerCLI.AddPhase(context.Background(), id, args[1], duration)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added phase %d %q to task %d\n", out.Index+1, out.Name, out.TaskID)
				return nil
			})
		},
	}
	phaseAdd.Flags().IntVar(&days, "days", 0, "expected duration in days")

	task.AddCommand(add, list, show, rename, del, phaseAdd)
	return task
}

func summaryState(now time.Time, t trackerdto.TaskSummaryOutput) string {
	if t.Kind == "cycle" {
		return fmt.Sprintf("%s since %s (next: %s)", t.CurrentPhaseName, timefmt.Ago(now, t.Task.CurrentPhaseSince), t.NextPhaseName)
	}
	if t.LastTransition == nil {
		return "never done"
	}
	return "done " + timefmt.Ago(now, t.LastTransition.TransitionedAt)
}

func printDetail(w io.Writer, now time.Time, d trackerdto.TaskDetailOutput) {
	_, _ = fmt.Fprintf(w, "id: %d\ntitle: %s\nkind: %s\n", d.Task.ID, d.Task.Title, d.Kind)
	if d.Kind == "cycle" {
		_, _ = fmt.Fprintf(w, "phase: %s since %s (%s)\nnext: %s\n", d.CurrentPhaseName,
			timefmt.DateTime(d.Task.CurrentPhaseSince), timefmt.Ago(now, d.Task.CurrentPhaseSince), d.NextPhaseName)
		_, _ = fmt.Fprintln(w, "phases:")
		for _, p := range d.Phases {
			line := fmt.Sprintf("  %d. %s", p.Index+1, p.Name)
			if p.DurationDays != nil {
				line += fmt.Sprintf(" (%dd)", *p.DurationDays)
			}
			_, _ = fmt.Fprintln(w, line)
		}
	}
	if len(d.Transitions) == 0 {
		_, _ = fmt.Fprintln(w, "history: none")
		return
	}
	_, _ = fmt.Fprintln(w, "history:")
	for _, t := range d.Transitions {
		_, _ = fmt.Fprintf(w, "  [%d] %s  %d -> %d\n", t.ID, t.TransitionedAt.Local().Format(time.RFC3339), t.FromPhaseIndex+1, t.ToPhaseIndex+1)
	}
}

// ─── history ─────────────────────────────────────────────────────────────────

func newDoneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Record doing a task now (advances a cycle)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.TrackerCLI.Advance(context.Background(), id)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "recorded [%d] task=%d phase=%d\n", out.Transition.ID, out.Task.ID, out.Task.CurrentPhaseIndex+1)
				return nil
			})
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Edit a task's history"}

	var at string
	var from, to int
	add := &cobra.Command{
		Use:   "add <id> --at <time>",
		Short: "Record a past transition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			if strings.TrimSpace(at) == "" {
				return fmt.Errorf("--at is required")
			}
			when, err := timefmt.ParseLocal(at)
			if err != nil {
				return err
			}
			return withApp(opts, func(app *bootstrap.App) error {
				ctx := context.Background()
				d, err := app.TrackerCLI.GetTask(ctx, id)
				if err != nil {
					return err
				}
				fromIdx, toIdx := 0, 0
				if d.Kind == "cycle" && len(d.Phases) > 0 {
					fromIdx = d.Task.CurrentPhaseIndex
					toIdx = (fromIdx + 1) % len(d.Phases)
				}
				if cmd.Flags().Changed("from") {
					fromIdx = from - 1
				}
				if cmd.Flags().Changed("to") {
					toIdx = to - 1
				}
				out, err := app.TrackerCLI.AddHistory(ctx, id, fromIdx, toIdx, when)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "recorded [%d] at %s; task %d is at phase %d since %s\n",
					out.Transition.ID, timefmt.DateTime(out.Transition.TransitionedAt),
					out.Task.ID, out.Task.CurrentPhaseIndex+1, timefmt.DateTime(out.Task.CurrentPhaseSince))
				return nil
			})
		},
	}
	add.Flags().StringVar(&at, "at", "", "when: RFC3339, 2006-01-02T15:04, 2006-01-02 15:04 or 2006-01-02 (local time)")
	add.Flags().IntVar(&from, "from", 0, "phase number moved from (1-based, default current)")
	add.Flags().IntVar(&to, "to", 0, "phase number moved to (1-based, default next)")

	del := &cobra.Command{
		Use:   "delete <transition-id>",
		Short: "Delete a history entry and recompute the task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transition")
			if err != nil {
				return err
			}
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.TrackerCLI.DeleteHistory(context.Background(), id)
				if err != nil {
					return err
				}
				if !out.Deleted {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "no history entry %d\n", id)
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted [%d]\n", id)
				if out.Task != nil {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "task %d is at phase %d since %s\n",
						out.Task.ID, out.Task.CurrentPhaseIndex+1, timefmt.DateTime(out.Task.CurrentPhaseSince))
				}
				return nil
			})
		},
	}

	history.AddCommand(add, del)
	return history
}

func newRecomputeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recompute <id>",
		Short: "Rebuild a task's current phase from its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.TrackerCLI.Recompute(context.Background(), id)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "task %d is at phase %d since %s\n",
					out.ID, out.CurrentPhaseIndex+1, timefmt.DateTime(out.CurrentPhaseSince))
				return nil
			})
		},
	}
}

func newDoctorCmd(opts *rootOptions) *cobra.Command {
	var repair bool
	doctor := &cobra.Command{
		Use:   "doctor",
		Short: "Check every task's current phase against its history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.TrackerCLI.Doctor(context.Background(), repair)
				if err != nil {
					return err
				}
				for _, d := range out.Drifts {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d %q cached=%d@%s expected=%d@%s\n",
						d.TaskID, d.Title,
						d.CachedIndex+1, d.CachedSince.Format(time.RFC3339),
						d.ExpectedIndex+1, d.ExpectedSince.Format(time.RFC3339))
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "checked=%d drifted=%d repaired=%t\n", out.Checked, len(out.Drifts), out.Repaired)
				return nil
			})
		},
	}
	doctor.Flags().BoolVar(&repair, "repair", false, "rewrite drifted tasks from their history")
	return doctor
}

// ─── backup ──────────────────────────────────────────────────────────────────

func newExportCmd(opts *rootOptions) *cobra.Command {
	var format, out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export every task, phase and history entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				res, err := app.BackupCLI.Export(context.Background(), format)
				if err != nil {
					return err
				}
				if out == "" {
					_, err := cmd.OutOrStdout().Write(res.Payload)
					return err
				}
				if err := os.WriteFile(out, res.Payload, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported tasks=%d phases=%d transitions=%d to %s\n",
					res.Tasks, res.Phases, res.Transitions, out)
				return nil
			})
		},
	}
	export.Flags().StringVar(&format, "format", "json", "json|yaml")
	export.Flags().StringVar(&out, "out", "", "write to a file instead of stdout")
	return export
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import an export document (JSON or YAML, - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload []byte
			var err error
			if args[0] == "-" {
				payload, err = io.ReadAll(cmd.InOrStdin())
			} else {
				payload, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			return withApp(opts, func(app *bootstrap.App) error {
				res, err := app.BackupCLI.Import(context.Background(), payload)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported tasks=%d phases=%d transitions=%d\n", res.Tasks, res.Phases, res.Transitions)
				if res.SortBy != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sort preference set to %s\n", res.SortBy)
				}
				return nil
			})
		},
	}
}

func newWipeCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	wipe := &cobra.Command{
		Use:   "wipe --yes",
		Short: "Delete all data and reset preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to wipe without --yes")
			}
			return withApp(opts, func(app *bootstrap.App) error {
				if err := app.BackupCLI.Wipe(context.Background()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "all data deleted")
				return nil
			})
		},
	}
	wipe.Flags().BoolVar(&yes, "yes", false, "confirm deleting everything")
	return wipe
}

// ─── prefs ───────────────────────────────────────────────────────────────────

func newPrefsCmd(opts *rootOptions) *cobra.Command {
	var sortBy, themeName string
	prefs := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				ctx := context.Background()
				get := app.PrefsCLI.Get
				if cmd.Flags().Changed("sort") || cmd.Flags().Changed("theme") {
					get = func(ctx context.Context) (prefsdto.PreferencesOutput, error) {
						return app.PrefsCLI.Set(ctx, sortBy, themeName)
					}
				}
				out, err := get(ctx)
				if err != nil {
					return err
				}
				theme := out.Theme
				if theme == "" {
					theme = "system"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sort: %s\ntheme: %s\n", out.SortBy, theme)
				return nil
			})
		},
	}
	prefs.Flags().StringVar(&sortBy, "sort", "", "recent|alpha")
	prefs.Flags().StringVar(&themeName, "theme", "", "system|dark|light")
	return prefs
}
