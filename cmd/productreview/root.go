package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/utafrali/productreview/internal/app"
	"github.com/utafrali/productreview/internal/config"
	"github.com/utafrali/productreview/pkg/logger"
)

// cli carries the global flags and the state built from them.
type cli struct {
	catalogURL string
	dataDir    string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "productreview",
		Short: "Browse products and reviews from the catalog",
		Long: `productreview browses a product catalog and its reviews, keeps a local
wishlist and display preferences, and talks to a scripted shopping assistant.

Configuration comes from the environment (PRODUCTREVIEW_CATALOG_URL,
PRODUCTREVIEW_DATA_DIR, LOG_LEVEL, ...); the flags below override it.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.catalogURL, "catalog-url", "", "catalog base URL (overrides PRODUCTREVIEW_CATALOG_URL)")
	flags.StringVar(&c.dataDir, "data-dir", "", "directory for local state (overrides PRODUCTREVIEW_DATA_DIR)")
	flags.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	flags.StringVar(&c.logFormat, "log-format", "", "text or json (overrides LOG_FORMAT)")

	root.AddCommand(
		newProductsCmd(c),
		newReviewsCmd(c),
		newWishlistCmd(c),
		newThemeCmd(c),
		newAssistantCmd(c),
		newNotificationsCmd(c),
		newStubCmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.catalogURL != "" {
		cfg.CatalogURL = c.catalogURL
	}
	if c.dataDir != "" {
		cfg.DataDir = c.dataDir
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.logFormat != "" {
		cfg.LogFormat = c.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = logger.NewWithWriter("productreview", cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	return nil
}

// run opens the application for the duration of fn.
func (c *cli) run(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, out io.Writer) error) error {
	ctx := cmd.Context()

	a, err := app.New(ctx, c.cfg, c.logger)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer func() {
		if cerr := a.Close(context.WithoutCancel(ctx)); cerr != nil {
			c.logger.Error("application close error", slog.String("error", cerr.Error()))
		}
	}()

	return fn(ctx, a, cmd.OutOrStdout())
}
