package blog

import (
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (a *App) handleHome(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(a.Config.siteView(), posts))
}

// handlePost serves /blog/<slug>/. Paths without a trailing slash reach it
// only when they look like files, which are looked up under StaticDir/blog.
func (a *App) handlePost(c echo.Context) error {
	rest := c.Param("*")
	if !strings.HasSuffix(rest, "/") {
		return c.File(filepath.Join(a.Config.StaticDir, "blog", filepath.FromSlash(path.Clean("/"+rest))))
	}
	post, err := a.Cache.GetPost(c.Request().Context(), strings.Trim(rest, "/"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config.siteView()))
		}
		return err
	}
	html, err := a.RenderBody(post)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Post(a.Config.siteView(), post, html))
}

func (a *App) handleSitemap(c echo.Context) error {
	if !a.Config.Sitemap.Enabled {
		return echo.ErrNotFound
	}
	posts, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleIcon(c echo.Context) error {
	return c.Blob(http.StatusOK, a.icon.ContentType, a.icon.Data)
}

// handleStylesheet prefers a stylesheet in the static directory over the
// embedded default, matching what the build writes.
func (a *App) handleStylesheet(c echo.Context) error {
	override := filepath.Join(a.Config.StaticDir, filepath.FromSlash(stylesheetFile))
	if _, err := os.Stat(override); err == nil {
		return c.File(override)
	}
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", defaultStylesheet())
}

func (a *App) handleRobots(c echo.Context) error {
	file := filepath.Join(a.Config.StaticDir, "robots.txt")
	if _, err := os.Stat(file); err == nil {
		return c.File(file)
	}
	return c.String(http.StatusOK, a.robots())
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	site := a.Config.siteView()
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(site))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
		_ = RenderStatus(c, code, a.Views.ServerError(site))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
