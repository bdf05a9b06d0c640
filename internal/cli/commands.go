package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/tui"
	"github.com/idilsaglam/tada/internal/ui"
)

func newAddCmd(a *app) *cobra.Command {
	var desc string
	cmd := &cobra.Command{
		Use:     "add <title...> -d <description>",
		Short:   "Add a task",
		Example: `  todo add Buy milk -d "2%, one liter"`,
		Args:    minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.repo.Create(strings.Join(args, " "), desc)
			if err != nil {
				return err
			}
			ui.OK(a.out, fmt.Sprintf("added %q (%d)", t.Title, a.repo.Len()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&desc, "description", "d", "", "task description (required)")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var group bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.out, ui.Panel(listLines(a.repo.Snapshot(), group)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&group, "group", false, "group output by pending/done")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var title, desc string
	cmd := &cobra.Command{
		Use:   "edit <ref> [--title <title>] [--description <description>]",
		Short: "Change a task's title or description",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveRef(a.repo.Snapshot(), args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("description") {
				return usagef("edit: nothing to change (use --title or --description)")
			}
			if cmd.Flags().Changed("title") {
				t.Title = title
			}
			if cmd.Flags().Changed("description") {
				t.Description = desc
			}
			if _, err := a.repo.Update(t.ID, t.Title, t.Description); err != nil {
				return err
			}
			ui.OK(a.out, "updated")
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&desc, "description", "d", "", "new description")
	return cmd
}

// newDoneCmd builds "done" (toggle) or "undone" (always pending).
func newDoneCmd(a *app, toggle bool) *cobra.Command {
	use, short := "done <ref>", "Toggle done for a task"
	if !toggle {
		use, short = "undone <ref>", "Mark a task as pending"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveRef(a.repo.Snapshot(), args[0])
			if err != nil {
				return err
			}
			if toggle {
				t, err = a.repo.Toggle(t.ID)
			} else {
				t, err = a.repo.SetDone(t.ID, false)
			}
			if err != nil {
				return err
			}
			if t.IsDone {
				ui.OK(a.out, "done: "+t.Title)
			} else {
				ui.OK(a.out, "pending: "+t.Title)
			}
			return nil
		},
	}
}

func newDupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dup <ref>",
		Short: "Duplicate a task",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveRef(a.repo.Snapshot(), args[0])
			if err != nil {
				return err
			}
			if _, err := a.repo.Duplicate(t.ID); err != nil {
				return err
			}
			ui.OK(a.out, fmt.Sprintf("duplicated %q (%d)", t.Title, a.repo.Len()))
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "rm <ref>",
		Aliases: []string{"remove"},
		Short:   "Remove a task",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveRef(a.repo.Snapshot(), args[0])
			if err != nil {
				return err
			}
			if !force && !a.confirm(fmt.Sprintf("Delete %q?", t.Title)) {
				fmt.Fprintln(a.out, "kept")
				return nil
			}
			a.repo.Delete(t.ID)
			ui.OK(a.out, "removed")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <text...>",
		Short: "Fuzzy search titles and descriptions",
		Args:  minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			found := a.repo.Search(text)
			if len(found) == 0 {
				fmt.Fprintln(a.out, "No results found.")
				return nil
			}
			pos := positions(a.repo.Snapshot())
			for _, t := range found {
				fmt.Fprintln(a.out, ui.TaskLine(pos[t.ID], t))
			}
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ref>",
		Short: "Show one task",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveRef(a.repo.Snapshot(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, ui.Panel(ui.TaskDetail(t)))
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print every task as JSON or YAML",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := a.repo.Snapshot()
			switch strings.ToLower(format) {
			case "json":
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			case "yaml", "yml":
				enc := yaml.NewEncoder(a.out)
				enc.SetIndent(2)
				if err := enc.Encode(all); err != nil {
					return err
				}
				return enc.Close()
			}
			return usagef("export: unknown format %q (want json or yaml)", format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	return cmd
}

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive list",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(a.repo, tui.Options{
				Delay:  a.cfg.DebounceDelay(),
				Theme:  a.cfg.Theme,
				Logger: a.logger,
			})
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.out, "# %s\n", config.Path(a.dataDir))
			return toml.NewEncoder(a.out).Encode(a.cfg)
		},
	})
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(a.dataDir)
			if _, err := os.Stat(path); err == nil && !force {
				return usagef("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(a.dataDir, config.Default()); err != nil {
				return err
			}
			ui.OK(a.out, "wrote "+path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}

// confirm asks a yes/no question on the input stream. Anything but y or
// yes is a no.
func (a *app) confirm(question string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", question)
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func positions(all []model.Task) map[string]int {
	pos := make(map[string]int, len(all))
	for i, t := range all {
		pos[t.ID] = i + 1
	}
	return pos
}

func exactArgs(n int) cobra.PositionalArgs {
	return usageArgs(cobra.ExactArgs(n))
}

func minArgs(n int) cobra.PositionalArgs {
	return usageArgs(cobra.MinimumNArgs(n))
}

var noArgs = usageArgs(cobra.NoArgs)

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &usageError{err: fmt.Errorf("%w\nusage: %s", err, cmd.UseLine())}
		}
		return nil
	}
}
