package blog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
name: Connor Luebbehusen
url: https://luebbehusen.dev
description: A blog
post_cache_ttl: 30s
markdown:
  math: false
  highlight_theme: monokai
feed:
  mode: metadata
  managing_editor: connor@example.com (Connor)
`)
	cfg, err := LoadConfig(NewViper(), path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "Connor Luebbehusen" || cfg.URL != "https://luebbehusen.dev" {
		t.Errorf("site = %q %q", cfg.Name, cfg.URL)
	}
	if cfg.PostCacheTTL != 30*time.Second {
		t.Errorf("post_cache_ttl = %v", cfg.PostCacheTTL)
	}
	if cfg.Markdown.Math || cfg.Markdown.HighlightTheme != "monokai" {
		t.Errorf("markdown = %+v", cfg.Markdown)
	}
	if cfg.Feed.Mode != FeedModeMetadata || cfg.Feed.ManagingEditor != "connor@example.com (Connor)" {
		t.Errorf("feed = %+v", cfg.Feed)
	}
	if !cfg.Sitemap.Enabled {
		t.Error("sitemap should default to enabled")
	}
	if cfg.OutDir != "dist" || cfg.Addr != ":4321" || cfg.Feed.Icon != "icon.png" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(NewViper(), "")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Feed.Mode != FeedModeFull {
		t.Errorf("feed mode = %q, want full", cfg.Feed.Mode)
	}
	if !cfg.Markdown.Math {
		t.Error("math should default to enabled")
	}
	if cfg.Markdown.HighlightTheme != "github-dark" {
		t.Errorf("theme = %q", cfg.Markdown.HighlightTheme)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("BLOG_FEED_MODE", "links")
	t.Setenv("BLOG_URL", "https://env.example.com")
	path := writeConfig(t, "url: https://file.example.com\n")

	cfg, err := LoadConfig(NewViper(), path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Feed.Mode != FeedModeLinks {
		t.Errorf("feed mode = %q, want links", cfg.Feed.Mode)
	}
	if cfg.URL != "https://env.example.com" {
		t.Errorf("url = %q, want the environment value", cfg.URL)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, body, want string
	}{
		{"relative url", "url: /blog\n", "must be absolute"},
		{"feed mode", "feed:\n  mode: everything\n", "unknown feed mode"},
		{"theme", "markdown:\n  highlight_theme: no-such-theme\n", "unknown highlight theme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(NewViper(), writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(NewViper(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
