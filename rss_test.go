package blog

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/luebbehusen/blog/content"
)

// parsedFeed decodes the namespaced elements the encoder writes with prefixes.
type parsedFeed struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel struct {
		// AtomLink precedes Link: an unqualified tag matches any namespace.
		AtomLink *struct {
			Href string `xml:"href,attr"`
			Rel  string `xml:"rel,attr"`
			Type string `xml:"type,attr"`
		} `xml:"http://www.w3.org/2005/Atom link"`
		Title          string `xml:"title"`
		Description    string `xml:"description"`
		Link           string `xml:"link"`
		ManagingEditor string `xml:"managingEditor"`
		Image          *struct {
			URL    string `xml:"url"`
			Title  string `xml:"title"`
			Link   string `xml:"link"`
			Width  int    `xml:"width"`
			Height int    `xml:"height"`
		} `xml:"image"`
		Items []struct {
			Title       string  `xml:"title"`
			Link        string  `xml:"link"`
			GUID        string  `xml:"guid"`
			Description *string `xml:"description"`
			PubDate     string  `xml:"pubDate"`
			Content     *string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
		} `xml:"item"`
	} `xml:"channel"`
}

func testConfig(mode string) SiteConfig {
	cfg := SiteConfig{
		Name:        "Connor Luebbehusen",
		URL:         "https://luebbehusen.dev",
		Description: "A blog about software and other things",
		Feed:        FeedConfig{Mode: mode},
	}
	cfg.setDefaults()
	return cfg
}

func testPosts() []content.Post {
	return []content.Post{
		{Slug: "post-a", Title: "Post A", Published: date(2024, 1, 1), Description: "First", Body: "A body"},
		{Slug: "post-b", Title: "Post B", Published: date(2024, 6, 1), Body: "![pic](/pic.png)"},
		{Slug: "post-c", Title: "Post C & more", Published: date(2024, 3, 15), Description: "Third"},
	}
}

func encodeFeed(t *testing.T, cfg SiteConfig, posts []content.Post, src feedSource) (string, parsedFeed) {
	t.Helper()
	feed, err := buildFeed(cfg, posts, src)
	if err != nil {
		t.Fatalf("buildFeed failed: %v", err)
	}
	var buf bytes.Buffer
	if err := writeFeed(&buf, feed); err != nil {
		t.Fatalf("writeFeed failed: %v", err)
	}
	var parsed parsedFeed
	if err := xml.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("feed is not well-formed XML: %v\n%s", err, buf.String())
	}
	return buf.String(), parsed
}

func TestFeedOrdersNewestFirst(t *testing.T) {
	_, feed := encodeFeed(t, testConfig(FeedModeLinks), testPosts(), feedSource{})

	want := []string{"Post B", "Post C & more", "Post A"}
	if len(feed.Channel.Items) != len(want) {
		t.Fatalf("items = %d, want %d", len(feed.Channel.Items), len(want))
	}
	for i, item := range feed.Channel.Items {
		if item.Title != want[i] {
			t.Errorf("item %d = %q, want %q", i, item.Title, want[i])
		}
	}
	var prev time.Time
	for i, item := range feed.Channel.Items {
		got, err := time.Parse(time.RFC1123, item.PubDate)
		if err != nil {
			t.Fatalf("pubDate %q: %v", item.PubDate, err)
		}
		if i > 0 && got.After(prev) {
			t.Errorf("item %d published %v after previous %v", i, got, prev)
		}
		prev = got
	}
}

func TestFeedTwoPostsExample(t *testing.T) {
	posts := []content.Post{
		{Slug: "a", Title: "A", Published: date(2024, 1, 1)},
		{Slug: "b", Title: "B", Published: date(2024, 6, 1)},
	}
	_, feed := encodeFeed(t, testConfig(FeedModeLinks), posts, feedSource{})
	if feed.Channel.Items[0].Title != "B" || feed.Channel.Items[1].Title != "A" {
		t.Errorf("order = %q, %q; want B, A", feed.Channel.Items[0].Title, feed.Channel.Items[1].Title)
	}
}

func TestFeedDoesNotReorderInput(t *testing.T) {
	posts := testPosts()
	if _, err := buildFeed(testConfig(FeedModeLinks), posts, feedSource{}); err != nil {
		t.Fatalf("buildFeed failed: %v", err)
	}
	if posts[0].Slug != "post-a" {
		t.Errorf("input slice was reordered: first = %q", posts[0].Slug)
	}
}

func TestFeedItemLinks(t *testing.T) {
	feed, err := buildFeed(testConfig(FeedModeLinks), testPosts(), feedSource{})
	if err != nil {
		t.Fatalf("buildFeed failed: %v", err)
	}
	for _, item := range feed.Channel.Items {
		slug := strings.TrimSuffix(strings.TrimPrefix(item.permalink, "/blog/"), "/")
		if item.permalink != "/blog/"+slug+"/" {
			t.Errorf("permalink = %q, want /blog/<slug>/", item.permalink)
		}
		if item.Link != "https://luebbehusen.dev"+item.permalink {
			t.Errorf("link = %q, want absolute form of %q", item.Link, item.permalink)
		}
		if item.GUID.Value != item.Link || item.GUID.IsPermaLink != "true" {
			t.Errorf("guid = %+v, want permalink guid %q", item.GUID, item.Link)
		}
	}
}

func TestFeedOmitsMissingDescription(t *testing.T) {
	raw, feed := encodeFeed(t, testConfig(FeedModeLinks), testPosts(), feedSource{})
	for _, item := range feed.Channel.Items {
		switch item.Title {
		case "Post B":
			if item.Description != nil {
				t.Errorf("Post B should have no description element, got %q", *item.Description)
			}
		case "Post A":
			if item.Description == nil || *item.Description != "First" {
				t.Errorf("Post A description = %v, want First", item.Description)
			}
		}
	}
	if strings.Count(raw, "<description>") != 3 { // channel + two items
		t.Errorf("expected 3 description elements:\n%s", raw)
	}
}

func TestFeedPubDateFormat(t *testing.T) {
	feed, err := buildFeed(testConfig(FeedModeLinks), testPosts()[:1], feedSource{})
	if err != nil {
		t.Fatalf("buildFeed failed: %v", err)
	}
	if got, want := feed.Channel.Items[0].PubDate, "Mon, 01 Jan 2024 00:00:00 GMT"; got != want {
		t.Errorf("pubDate = %q, want %q", got, want)
	}
}

func TestFeedLinksModeHasNoExtras(t *testing.T) {
	body := func(content.Post) (string, error) { return "<p>x</p>", nil }
	raw, feed := encodeFeed(t, testConfig(FeedModeLinks), testPosts(), feedSource{body: body, icon: &feedIcon{Width: 64, Height: 64}})

	if feed.Channel.Title != "Connor Luebbehusen" || feed.Channel.Link != "https://luebbehusen.dev/" {
		t.Errorf("channel = %q %q", feed.Channel.Title, feed.Channel.Link)
	}
	if feed.Version != "2.0" {
		t.Errorf("version = %q, want 2.0", feed.Version)
	}
	if feed.Channel.AtomLink != nil || feed.Channel.Image != nil {
		t.Error("links mode should not carry atom link or image")
	}
	if strings.Contains(raw, "content:encoded") || strings.Contains(raw, "xmlns:atom") {
		t.Errorf("links mode should not declare extensions:\n%s", raw)
	}
}

func TestFeedMetadataMode(t *testing.T) {
	cfg := testConfig(FeedModeMetadata)
	cfg.Feed.ManagingEditor = "connor@luebbehusen.dev (Connor Luebbehusen)"
	_, feed := encodeFeed(t, cfg, testPosts(), feedSource{icon: &feedIcon{Width: 144, Height: 72}})

	al := feed.Channel.AtomLink
	if al == nil {
		t.Fatal("missing atom:link")
	}
	if al.Href != "https://luebbehusen.dev/rss.xml" || al.Rel != "self" || al.Type != "application/rss+xml" {
		t.Errorf("atom:link = %+v", *al)
	}
	if feed.Channel.ManagingEditor != cfg.Feed.ManagingEditor {
		t.Errorf("managingEditor = %q", feed.Channel.ManagingEditor)
	}
	img := feed.Channel.Image
	if img == nil {
		t.Fatal("missing image block")
	}
	if img.URL != "https://luebbehusen.dev/icon.png" || img.Title != cfg.Name || img.Link != "https://luebbehusen.dev/" {
		t.Errorf("image = %+v", *img)
	}
	if img.Width != 144 || img.Height != 72 {
		t.Errorf("image size = %dx%d, want 144x72", img.Width, img.Height)
	}
	for _, item := range feed.Channel.Items {
		if item.Content != nil {
			t.Errorf("metadata mode should not embed content for %q", item.Title)
		}
	}
}

func TestFeedMetadataModeWithoutIconOrEditor(t *testing.T) {
	raw, feed := encodeFeed(t, testConfig(FeedModeMetadata), testPosts(), feedSource{})
	if feed.Channel.Image != nil {
		t.Error("image block should be omitted without an icon")
	}
	if strings.Contains(raw, "managingEditor") {
		t.Errorf("managingEditor should be omitted when unset:\n%s", raw)
	}
}

func TestFeedFullModeEmbedsContent(t *testing.T) {
	body := func(p content.Post) (string, error) {
		return `<p><img src="/pic.png" alt="pic"></p><p><img src="/img/two.jpg"></p><a href="/blog/x/">x</a>`, nil
	}
	raw, feed := encodeFeed(t, testConfig(FeedModeFull), testPosts(), feedSource{body: body})

	if !strings.Contains(raw, `xmlns:content="http://purl.org/rss/1.0/modules/content/"`) {
		t.Errorf("full mode should declare the content namespace:\n%s", raw)
	}
	if !strings.Contains(raw, "<![CDATA[") {
		t.Errorf("content should be CDATA:\n%s", raw)
	}
	for _, item := range feed.Channel.Items {
		if item.Content == nil {
			t.Fatalf("item %q missing content:encoded", item.Title)
		}
		html := *item.Content
		if strings.Contains(html, `src="/`) {
			t.Errorf("root-relative src left in %q: %s", item.Title, html)
		}
		if !strings.Contains(html, `src="https://luebbehusen.dev/pic.png"`) ||
			!strings.Contains(html, `src="https://luebbehusen.dev/img/two.jpg"`) {
			t.Errorf("sources not absolutized: %s", html)
		}
		if !strings.Contains(html, `href="/blog/x/"`) {
			t.Errorf("href should be left alone: %s", html)
		}
	}
	if feed.Channel.AtomLink == nil {
		t.Error("full mode includes metadata")
	}
}

func TestFeedFullModePropagatesRenderErrors(t *testing.T) {
	boom := errors.New("boom")
	body := func(content.Post) (string, error) { return "", boom }
	if _, err := buildFeed(testConfig(FeedModeFull), testPosts(), feedSource{body: body}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestFeedEscapesText(t *testing.T) {
	raw, feed := encodeFeed(t, testConfig(FeedModeLinks), testPosts(), feedSource{})
	if !strings.Contains(raw, "Post C &amp; more") {
		t.Errorf("ampersand should be escaped:\n%s", raw)
	}
	if feed.Channel.Items[1].Title != "Post C & more" {
		t.Errorf("round-tripped title = %q", feed.Channel.Items[1].Title)
	}
}

func TestFeedEmptyCollection(t *testing.T) {
	_, feed := encodeFeed(t, testConfig(FeedModeFull), nil, feedSource{})
	if len(feed.Channel.Items) != 0 {
		t.Errorf("items = %d, want 0", len(feed.Channel.Items))
	}
}
