package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/utafrali/productreview/internal/app"
)

func newStubCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve the seeded demo catalog",
		Long: `Serve an in-memory demo catalog speaking the catalog REST API, for local
development. Data is reseeded on every start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = c.cfg.StubAddr
			}
			return app.NewStubServer(addr, time.Now(), c.logger).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides PRODUCTREVIEW_STUB_ADDR)")
	return cmd
}
