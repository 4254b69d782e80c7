package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/luebbehusen/blog/content"
	"github.com/luebbehusen/blog/scaffold"
)

func newNewCmd(c *cli) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a new post in the blog collection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := c.load()
			if err != nil {
				return err
			}
			published := time.Now()
			if date != "" {
				if published, err = content.ParseDate(date); err != nil {
					return err
				}
			}
			dir := filepath.Join(cfg.ContentDir, content.DefaultCollection)
			path, err := scaffold.NewPost(dir, strings.Join(args, " "), published)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "publish date (default today)")
	return cmd
}
