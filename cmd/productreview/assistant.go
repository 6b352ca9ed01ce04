package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/utafrali/productreview/internal/app"
	apperrors "github.com/utafrali/productreview/pkg/errors"
)

func newAssistantCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assistant",
		Short: "Chat with the shopping assistant",
	}

	ask := &cobra.Command{
		Use:   "ask TEXT...",
		Short: "Ask the assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return apperrors.InvalidInput("question must not be blank")
			}
			return c.run(cmd, func(ctx context.Context, a *app.App, out io.Writer) error {
				reply, err := a.Assistant().Send(ctx, text)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, reply.Text)
				return err
			})
		},
	}

	cmd.AddCommand(ask)
	return cmd
}
