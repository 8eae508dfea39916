package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/riekert/todo/internal/client"
	"github.com/spf13/cobra"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"
)

func main() {
	c := &cobra.Command{
		Use:     "todoc",
		Short:   "Todo list client",
		Version: fmt.Sprintf("%s - build %.7s @ %s", version, revision, date),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.App(cmd.Context())
		},
	}
	c.AddCommand(signupCmd)
	c.AddCommand(loginCmd)
	c.AddCommand(logoutCmd)
	c.AddCommand(listCmd)
	c.AddCommand(addCmd)
	c.AddCommand(editCmd)
	c.AddCommand(rmCmd)
	c.AddCommand(backupCmd)
	c.AddCommand(appCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := c.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}

var (
	signupCmd = &cobra.Command{
		Use:   "signup",
		Short: "Register to a todo service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Signup(cmd.Context())
		},
	}

	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Login to a todo service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Login(cmd.Context())
		},
	}

	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Logout from a todo service session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Logout(cmd.Context())
		},
	}

	listCmd = &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your todos",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.List(cmd.Context())
		},
	}

	addCmd = &cobra.Command{
		Use:   "add DESCRIPTION...",
		Short: "Create a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Add(cmd.Context(), strings.Join(args, " "))
		},
	}

	editCmd = &cobra.Command{
		Use:   "edit ID DESCRIPTION...",
		Short: "Replace the description of a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Edit(cmd.Context(), args[0], strings.Join(args[1:], " "))
		},
	}

	rmCmd = &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Remove(cmd.Context(), args[0])
		},
	}

	backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Backup your todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Backup(cmd.Context())
		},
	}

	appCmd = &cobra.Command{
		Use:   "app",
		Short: "Text-based todo application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.App(cmd.Context())
		},
	}
)
