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

func newThemeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the dark mode preference",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(_ context.Context, a *app.App, out io.Writer) error {
				return printTheme(out, a.Preferences().DarkMode())
			})
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd, func(_ context.Context, a *app.App, out io.Writer) error {
				on, err := a.Preferences().ToggleDarkMode()
				if err != nil {
					return err
				}
				return printTheme(out, on)
			})
		},
	}

	set := &cobra.Command{
		Use:       "set on|off",
		Short:     "Turn dark mode on or off",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var on bool
			switch strings.ToLower(args[0]) {
			case "on", "dark", "true":
				on = true
			case "off", "light", "false":
			default:
				return apperrors.InvalidInput(fmt.Sprintf("expected on or off, got %q", args[0]))
			}
			return c.run(cmd, func(_ context.Context, a *app.App, out io.Writer) error {
				if err := a.Preferences().SetDarkMode(on); err != nil {
					return err
				}
				return printTheme(out, on)
			})
		},
	}

	cmd.AddCommand(show, toggle, set)
	return cmd
}

func printTheme(out io.Writer, dark bool) error {
	theme := "light"
	if dark {
		theme = "dark"
	}
	_, err := fmt.Fprintf(out, "Theme: %s\n", theme)
	return err
}
