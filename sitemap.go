package blog

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/luebbehusen/blog/content"
)

const sitemapPath = "sitemap.xml"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func buildSitemap(base string, posts []content.Post) sitemapURLSet {
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "blog", p.Slug),
			LastMod: p.LastModified().UTC().Format("2006-01-02"),
		})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

func writeSitemap(w io.Writer, sitemap sitemapURLSet) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(sitemap)
}

// WriteSitemap loads the collection and writes the sitemap to w.
func (a *App) WriteSitemap(ctx context.Context, w io.Writer) error {
	posts, err := a.Cache.ListPosts(ctx)
	if err != nil {
		return err
	}
	return writeSitemap(w, buildSitemap(a.Config.URL, posts))
}

func (a *App) renderSitemap(c echo.Context, posts []content.Post) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeSitemap(c.Response(), buildSitemap(a.Config.URL, posts))
}

// robots is served when the static directory has no robots.txt of its own.
func (a *App) robots() string {
	s := "User-agent: *\nAllow: /\n"
	if a.Config.Sitemap.Enabled {
		s += "\nSitemap: " + AssetURL(a.Config.URL, sitemapPath) + "\n"
	}
	return s
}
