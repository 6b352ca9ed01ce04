package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/utafrali/productreview/internal/app"
	apperrors "github.com/utafrali/productreview/pkg/errors"
)

func newNotificationsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show the notification inbox",
		Long: `Show the notification inbox. The inbox lives in memory, so read and delete
only affect the listing printed by the same command.`,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(_ context.Context, a *app.App, out io.Writer) error {
				inbox := a.Notifications()
				return printNotifications(out, inbox.List(), inbox.UnreadCount())
			})
		},
	}

	read := &cobra.Command{
		Use:   "read ID",
		Short: "Mark a notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(_ context.Context, a *app.App, out io.Writer) error {
				inbox := a.Notifications()
				if !inbox.MarkAsRead(args[0]) {
					return apperrors.NotFound("notification", args[0])
				}
				return printNotifications(out, inbox.List(), inbox.UnreadCount())
			})
		},
	}

	readAll := &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(_ context.Context, a *app.App, out io.Writer) error {
				inbox := a.Notifications()
				inbox.MarkAllAsRead()
				return printNotifications(out, inbox.List(), inbox.UnreadCount())
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(_ context.Context, a *app.App, out io.Writer) error {
				inbox := a.Notifications()
				if !inbox.Delete(args[0]) {
					return apperrors.NotFound("notification", args[0])
				}
				fmt.Fprintf(out, "Deleted notification %s.\n", args[0])
				return printNotifications(out, inbox.List(), inbox.UnreadCount())
			})
		},
	}

	cmd.AddCommand(list, read, readAll, del)
	return cmd
}
