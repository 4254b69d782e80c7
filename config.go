package blog

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/luebbehusen/blog/markdown"
)

// Feed modes, from plain link items to full embedded content.
const (
	FeedModeLinks    = "links"    // title, date, description and link per item
	FeedModeMetadata = "metadata" // plus atom self link, managing editor, image
	FeedModeFull     = "full"     // plus rendered HTML content per item
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string `mapstructure:"name"`        // Site name, feed title
	URL         string `mapstructure:"url"`         // Canonical base URL
	Description string `mapstructure:"description"` // Feed and meta description
	Author      string `mapstructure:"author"`      // Author name for JSON-LD

	ContentDir string `mapstructure:"content_dir"` // Holds the blog/ collection (default "content")
	StaticDir  string `mapstructure:"static_dir"`  // Copied verbatim to the output (default "public")
	OutDir     string `mapstructure:"out_dir"`     // Static build output (default "dist")

	Addr         string        `mapstructure:"addr"`           // Dev server listen address (default ":4321")
	DatabasePath string        `mapstructure:"database_path"`  // Render cache SQLite path; empty disables it
	PostCacheTTL time.Duration `mapstructure:"post_cache_ttl"` // Dev server collection reload interval (default 5s)

	LogLevel  string `mapstructure:"log_level"`  // debug, info, warn, error
	LogFormat string `mapstructure:"log_format"` // console or json

	Markdown MarkdownConfig `mapstructure:"markdown"`
	Sitemap  SitemapConfig  `mapstructure:"sitemap"`
	Feed     FeedConfig     `mapstructure:"feed"`
}

// MarkdownConfig selects the markdown extensions.
type MarkdownConfig struct {
	Math           bool   `mapstructure:"math"`
	HighlightTheme string `mapstructure:"highlight_theme"`
}

// SitemapConfig toggles sitemap generation.
type SitemapConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// FeedConfig shapes the RSS feed.
type FeedConfig struct {
	Mode           string `mapstructure:"mode"`            // links, metadata or full (default full)
	ManagingEditor string `mapstructure:"managing_editor"` // e.g. "me@example.com (Me)"
	Icon           string `mapstructure:"icon"`            // Feed image, relative to StaticDir (default "icon.png")
}

// MarkdownOptions converts the markdown section for the renderer.
func (c SiteConfig) MarkdownOptions() markdown.Options {
	return markdown.Options{
		Math:           c.Markdown.Math,
		HighlightTheme: c.Markdown.HighlightTheme,
	}
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:4321"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.OutDir == "" {
		c.OutDir = "dist"
	}
	if c.Addr == "" {
		c.Addr = ":4321"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
	if c.Markdown.HighlightTheme == "" {
		c.Markdown.HighlightTheme = markdown.DefaultTheme
	}
	if c.Feed.Mode == "" {
		c.Feed.Mode = FeedModeFull
	}
	if c.Feed.Icon == "" {
		c.Feed.Icon = "icon.png"
	}
}

// Validate reports configuration the site cannot be built with.
func (c SiteConfig) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("blog: url %q must be absolute", c.URL)
	}
	switch c.Feed.Mode {
	case FeedModeLinks, FeedModeMetadata, FeedModeFull:
	default:
		return fmt.Errorf("blog: unknown feed mode %q", c.Feed.Mode)
	}
	if !markdown.ValidTheme(c.Markdown.HighlightTheme) {
		return fmt.Errorf("blog: unknown highlight theme %q", c.Markdown.HighlightTheme)
	}
	return nil
}

// NewViper returns a viper instance that reads site.yaml style files and
// BLOG_-prefixed environment variables, with the site defaults registered.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("blog")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Registered so AutomaticEnv can resolve every key during Unmarshal.
	v.SetDefault("name", "")
	v.SetDefault("url", "")
	v.SetDefault("description", "")
	v.SetDefault("author", "")
	v.SetDefault("content_dir", "")
	v.SetDefault("static_dir", "")
	v.SetDefault("out_dir", "")
	v.SetDefault("addr", "")
	v.SetDefault("database_path", "")
	v.SetDefault("post_cache_ttl", 0)
	v.SetDefault("log_level", "")
	v.SetDefault("log_format", "")
	v.SetDefault("markdown.math", true)
	v.SetDefault("markdown.highlight_theme", markdown.DefaultTheme)
	v.SetDefault("sitemap.enabled", true)
	v.SetDefault("feed.mode", FeedModeFull)
	v.SetDefault("feed.managing_editor", "")
	v.SetDefault("feed.icon", "")
	return v
}

// LoadConfig reads the config file at path (when non-empty) through v,
// applies defaults and validates the result.
func LoadConfig(v *viper.Viper, path string) (SiteConfig, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return SiteConfig{}, fmt.Errorf("blog: read config %s: %w", path, err)
		}
	}
	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("blog: decode config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithViews replaces the default page components.
func WithViews(views ViewFuncs) Option {
	return func(a *App) {
		a.Views = views
	}
}
