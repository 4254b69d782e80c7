// Package blog builds a personal static blog with Go, Echo, and templ.
// It loads a markdown post collection, renders pages, an RSS feed and a
// sitemap, and either writes them to an output directory or serves them
// from a development server.
//
// Page templates are supplied through the ViewFuncs struct; the defaults
// live in the views package.
package blog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/luebbehusen/blog/content"
	"github.com/luebbehusen/blog/markdown"
	"github.com/luebbehusen/blog/views"
)

// ViewFuncs holds the templ components the app calls when rendering pages.
type ViewFuncs struct {
	Home        func(site views.Site, posts []content.Post) templ.Component
	Post        func(site views.Site, post content.Post, html string) templ.Component
	NotFound    func(site views.Site) templ.Component
	ServerError func(site views.Site) templ.Component
}

// DefaultViews returns the components from the views package.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		Post:        views.Post,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

// App is the central blog application. It wires together the content
// loader, caches, renderer, handlers, and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Logger   *zap.Logger
	Store    *Store
	Cache    *PostCache
	Markdown *markdown.Renderer
	Views    ViewFuncs

	loader       *content.Loader
	icon         *feedIcon
	customRoutes []func(*App)
	initialized  bool
}

// New creates an App for the given configuration. A nil logger disables logging.
func New(cfg SiteConfig, logger *zap.Logger, opts ...Option) *App {
	cfg.setDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	loader := content.NewLoader(os.DirFS(cfg.ContentDir), content.DefaultCollection)
	a := &App{
		Config:   cfg,
		Echo:     echo.New(),
		Logger:   logger,
		Markdown: markdown.New(cfg.MarkdownOptions()),
		Views:    DefaultViews(),
		loader:   loader,
		Cache:    NewPostCache(loader, cfg.PostCacheTTL),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens the render cache and loads the feed icon. It is called by
// Build and Start and is safe to call more than once.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Config.DatabasePath != "" && a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("blog: init store: %w", err)
		}
		a.Store = store
	}
	icon, err := a.loadFeedIcon()
	if err != nil {
		return err
	}
	if icon == nil {
		a.Logger.Debug("no feed icon", zap.String("path", a.Config.Feed.Icon))
	}
	a.icon = icon
	a.initialized = true
	return nil
}

// Start initializes the app, registers middleware and routes, and serves
// until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(); err != nil {
		return err
	}

	a.setupMiddleware()
	a.setupRoutes()

	errc := make(chan error, 1)
	go func() {
		a.Logger.Info("serving", zap.String("addr", a.Config.Addr), zap.String("url", a.Config.URL))
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("blog: shutdown: %w", err)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET(views.StylesheetPath, a.handleStylesheet)
	if a.icon != nil {
		e.GET("/"+a.Config.Feed.Icon, a.handleIcon)
	}
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/"+sitemapPath, a.handleSitemap)
	e.GET("/"+feedPath, a.handleFeed)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/blog/", handleBlogRedirect)
	e.GET("/", a.handleHome)
	// Slugs may be nested, e.g. /blog/series/part-one/.
	e.GET("/blog/*", a.handlePost)

	for _, fn := range a.customRoutes {
		fn(a)
	}

	// The static directory is published at the site root, like the build output.
	e.Static("/", a.Config.StaticDir)
}

// RenderBody returns the HTML for a post's markdown. Renders are memoized in
// the store, keyed by renderer settings and the post checksum.
func (a *App) RenderBody(p content.Post) (string, error) {
	key := a.Markdown.Fingerprint() + ":" + p.Checksum
	if a.Store != nil {
		html, err := a.Store.GetRender(p.Slug, key)
		if err == nil {
			return html, nil
		}
		if !errors.Is(err, ErrNotFound) {
			a.Logger.Warn("render cache read failed", zap.String("slug", p.Slug), zap.Error(err))
		}
	}

	html, err := a.Markdown.RenderString(p.Body)
	if err != nil {
		return "", fmt.Errorf("blog: render %s: %w", p.Slug, err)
	}
	if a.Store != nil {
		if err := a.Store.SaveRender(p.Slug, key, html); err != nil {
			a.Logger.Warn("render cache write failed", zap.String("slug", p.Slug), zap.Error(err))
		}
	}
	return html, nil
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			return err
		}
		a.Store = nil
	}
	_ = a.Logger.Sync()
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
