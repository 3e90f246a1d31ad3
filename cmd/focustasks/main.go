package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/elpatron68/focustasks/internal/app"
	"github.com/elpatron68/focustasks/internal/tasks"
)

var Version = "dev"

type rootOptions struct {
	configPath string
	user       string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "focustasks",
		Short:         "FocusTasks - a small personal task list",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config.yaml")
	rootCmd.PersistentFlags().StringVarP(&opts.user, "user", "u", defaultUser(), "owner of the task list (slot id)")

	rootCmd.AddCommand(addCmd(opts))
	rootCmd.AddCommand(toggleCmd(opts))
	rootCmd.AddCommand(rmCmd(opts))
	rootCmd.AddCommand(lsCmd(opts))
	rootCmd.AddCommand(summaryCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))
	return rootCmd
}

func defaultUser() string {
	if v := os.Getenv("FOCUS_USER"); v != "" {
		return v
	}
	return "admin"
}

// withStore opens the configured storage and runs fn against the user's store.
func withStore(opts *rootOptions, fn func(*tasks.Store) error) error {
	a, err := app.Open(opts.configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a.Stores.For(opts.user))
}
