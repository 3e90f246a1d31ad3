package main

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elpatron68/focustasks/internal/app"
	"github.com/elpatron68/focustasks/internal/tasks"
)

func addCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tasks.NewTask(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return withStore(opts, func(s *tasks.Store) error {
				list, err := s.Add(t)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %d: %s\n", len(list), html.UnescapeString(t.Title))
				return nil
			})
		},
	}
}

func toggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle <ref>",
		Aliases: []string{"done", "undo"},
		Short:   "Flip a task between active and done",
		Long:    "The reference is either the number shown by 'ls' or the task id.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, func(s *tasks.Store) error {
				id, found := resolveRef(s.List(), args[0])
				list, err := s.Toggle(id)
				if err != nil {
					return err
				}
				report(cmd.OutOrStdout(), "toggled", args[0], found, list)
				return nil
			})
		},
	}
}

func rmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <ref>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, func(s *tasks.Store) error {
				id, found := resolveRef(s.List(), args[0])
				list, err := s.Remove(id)
				if err != nil {
					return err
				}
				report(cmd.OutOrStdout(), "removed", args[0], found, list)
				return nil
			})
		},
	}
}

func lsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, func(s *tasks.Store) error {
				list := s.List()
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(struct {
						Tasks   []tasks.Task  `json:"tasks"`
						Summary tasks.Summary `json:"summary"`
					}{list, tasks.Summarize(list)})
				}
				printList(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")
	return cmd
}

func summaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show active/done counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(opts, func(s *tasks.Store) error {
				fmt.Fprintln(cmd.OutOrStdout(), tasks.Summarize(s.List()))
				return nil
			})
		},
	}
}

func serveCmd(opts *rootOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Open(opts.configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(app.ResolveListenAddress(a.Config, listen))
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address, overrides FOCUS_LISTEN and config")
	return cmd
}

// resolveRef maps a 1-based list position to a task id. Anything else is
// taken as an id as-is.
func resolveRef(list []tasks.Task, ref string) (string, bool) {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(list) {
		return list[n-1].ID, true
	}
	for _, t := range list {
		if t.ID == ref {
			return ref, true
		}
	}
	return ref, false
}

func report(w io.Writer, verb, ref string, found bool, list []tasks.Task) {
	if !found {
		fmt.Fprintf(w, "no task %s; nothing changed\n", ref)
		return
	}
	fmt.Fprintf(w, "%s %s\n", verb, ref)
	fmt.Fprintln(w, tasks.Summarize(list))
}

func printList(w io.Writer, list []tasks.Task) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no tasks")
	}
	for i, t := range list {
		box := " "
		if t.Done {
			box = "x"
		}
		fmt.Fprintf(w, "%3d [%s] %s  (%s)\n", i+1, box, html.UnescapeString(t.Title), t.ID)
	}
	fmt.Fprintln(w, tasks.Summarize(list))
}
