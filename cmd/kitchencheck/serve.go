package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dshills/kitchencheck/internal/api"
)

func newServeCmd(open opener) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, a *app) error {
				addr := listen
				if addr == "" {
					addr = a.settings.Server.Listen
				}
				srv := api.New(api.Config{
					Service:       a.svc,
					Log:           a.log,
					Metrics:       a.metrics,
					Meta:          a.meta(),
					DefaultTenant: a.settings.Company.ID,
				})
				return srv.Run(ctx, addr)
			})
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config)")
	return cmd
}

func newRenderCmd(open opener) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Render a stored report as markdown, json or pdf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, a *app) error {
				r, err := a.svc.Builder.Get(ctx, a.tenant, args[0])
				if err != nil {
					return err
				}
				return a.output(ctx, r, format, out)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown, json or pdf")
	cmd.Flags().StringVar(&out, "out", "", "output file for pdf (default <outputdir>/<name>.pdf)")
	return cmd
}
