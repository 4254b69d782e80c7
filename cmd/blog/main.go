package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/luebbehusen/blog"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultConfigFile = "site.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// cli carries the state shared by every subcommand.
type cli struct {
	v          *viper.Viper
	configFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: blog.NewViper()}

	root := &cobra.Command{
		Use:   "blog",
		Short: "Build and preview a markdown blog",
		Long: `blog renders a collection of markdown posts into a static site with an
RSS feed and a sitemap, or serves it from a development server.

Configuration is read from site.yaml (or --config) and BLOG_* environment
variables, e.g. BLOG_FEED_MODE=links.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&c.configFile, "config", "c", blog.EnvOr("BLOG_CONFIG", ""), "config file (default ./site.yaml when present)")

	root.AddCommand(
		newBuildCmd(c),
		newServeCmd(c),
		newNewCmd(c),
		newVersionCmd(),
	)
	return root
}

// load reads the site config and builds a logger for it.
func (c *cli) load() (blog.SiteConfig, *zap.Logger, error) {
	path := c.configFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	cfg, err := blog.LoadConfig(c.v, path)
	if err != nil {
		return blog.SiteConfig{}, nil, err
	}
	logger, err := blog.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return blog.SiteConfig{}, nil, err
	}
	if path != "" {
		logger.Debug("loaded config", zap.String("path", path))
	}
	return cfg, logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blog %s\n", version)
		},
	}
}
