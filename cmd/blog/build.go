package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/luebbehusen/blog"
)

func newBuildCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the site into the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.load()
			if err != nil {
				return err
			}
			app := blog.New(cfg, logger)
			defer app.Close()

			report, err := app.Build(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "built %d posts, %d files into %s in %s\n",
				report.Posts, len(report.Files), report.OutDir, report.Duration.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "", "output directory (default dist)")
	_ = c.v.BindPFlag("out_dir", cmd.Flags().Lookup("out"))
	return cmd
}
