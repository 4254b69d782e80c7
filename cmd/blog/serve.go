package main

import (
	"github.com/spf13/cobra"

	"github.com/luebbehusen/blog"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"dev"},
		Short:   "Serve the site, reloading content as it changes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.load()
			if err != nil {
				return err
			}
			app := blog.New(cfg, logger)
			defer app.Close()
			return app.Start(cmd.Context())
		},
	}
	cmd.Flags().StringP("addr", "a", "", "listen address (default :4321)")
	_ = c.v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	return cmd
}
