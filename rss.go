package blog

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/luebbehusen/blog/content"
	"github.com/luebbehusen/blog/markdown"
)

const (
	feedPath    = "rss.xml"
	atomNS      = "http://www.w3.org/2005/Atom"
	contentNS   = "http://purl.org/rss/1.0/modules/content/"
	rssMIMEType = "application/rss+xml; charset=utf-8"
)

type rssXML struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	AtomNS    string     `xml:"xmlns:atom,attr,omitempty"`
	ContentNS string     `xml:"xmlns:content,attr,omitempty"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title          string    `xml:"title"`
	Description    string    `xml:"description"`
	Link           string    `xml:"link"`
	AtomLink       *atomLink `xml:"atom:link"`
	ManagingEditor string    `xml:"managingEditor,omitempty"`
	Image          *rssImage `xml:"image"`
	Items          []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssImage struct {
	URL    string `xml:"url"`
	Title  string `xml:"title"`
	Link   string `xml:"link"`
	Width  int    `xml:"width,omitempty"`
	Height int    `xml:"height,omitempty"`
}

type rssItem struct {
	Title       string      `xml:"title"`
	Link        string      `xml:"link"`
	GUID        rssGUID     `xml:"guid"`
	Description string      `xml:"description,omitempty"`
	PubDate     string      `xml:"pubDate"`
	Content     *rssContent `xml:"content:encoded"`

	permalink string
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssContent struct {
	Value string `xml:",cdata"`
}

// feedSource supplies what the feed needs beyond the posts themselves.
type feedSource struct {
	// body renders a post's markdown; only called in full mode.
	body func(content.Post) (string, error)
	// icon is the processed feed image, nil when the site has none.
	icon *feedIcon
}

// buildFeed maps posts to an RSS 2.0 document, newest first. Posts with the
// same publish date keep their collection order.
func buildFeed(cfg SiteConfig, posts []content.Post, src feedSource) (rssXML, error) {
	sorted := append([]content.Post(nil), posts...)
	content.SortByPublished(sorted)

	base := cfg.URL
	full := cfg.Feed.Mode == FeedModeFull
	withMeta := cfg.Feed.Mode == FeedModeMetadata || full

	items := make([]rssItem, 0, len(sorted))
	for _, p := range sorted {
		link := BuildURL(base, "blog", p.Slug)
		item := rssItem{
			Title:       p.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: "true", Value: link},
			Description: p.Description,
			PubDate:     p.Published.UTC().Format(http.TimeFormat),
			permalink:   p.Permalink(),
		}
		if full && src.body != nil {
			html, err := src.body(p)
			if err != nil {
				return rssXML{}, fmt.Errorf("blog: feed content for %s: %w", p.Slug, err)
			}
			item.Content = &rssContent{Value: markdown.AbsolutizeSources(html, base)}
		}
		items = append(items, item)
	}

	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Description: cfg.Description,
			Link:        BuildURL(base),
			Items:       items,
		},
	}
	if withMeta {
		feed.AtomNS = atomNS
		feed.Channel.AtomLink = &atomLink{
			Href: AssetURL(base, feedPath),
			Rel:  "self",
			Type: "application/rss+xml",
		}
		feed.Channel.ManagingEditor = cfg.Feed.ManagingEditor
		if src.icon != nil {
			feed.Channel.Image = &rssImage{
				URL:    AssetURL(base, cfg.Feed.Icon),
				Title:  cfg.Name,
				Link:   BuildURL(base),
				Width:  src.icon.Width,
				Height: src.icon.Height,
			}
		}
	}
	if full {
		feed.ContentNS = contentNS
	}
	return feed, nil
}

func writeFeed(w io.Writer, feed rssXML) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(feed)
}

// WriteFeed loads the collection and writes the RSS document to w.
func (a *App) WriteFeed(ctx context.Context, w io.Writer) error {
	posts, err := a.Cache.ListPosts(ctx)
	if err != nil {
		return err
	}
	feed, err := a.feed(posts)
	if err != nil {
		return err
	}
	return writeFeed(w, feed)
}

func (a *App) feed(posts []content.Post) (rssXML, error) {
	return buildFeed(a.Config, posts, feedSource{body: a.RenderBody, icon: a.icon})
}

func (a *App) renderRSS(c echo.Context, posts []content.Post) error {
	feed, err := a.feed(posts)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, rssMIMEType)
	c.Response().WriteHeader(http.StatusOK)
	return writeFeed(c.Response(), feed)
}
