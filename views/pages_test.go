package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/luebbehusen/blog/content"
)

var testSite = Site{
	Name:        "Connor Luebbehusen",
	URL:         "https://luebbehusen.dev",
	Description: "A blog about software and other things",
	Author:      "Connor Luebbehusen",
	FeedURL:     "https://luebbehusen.dev/rss.xml",
}

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return buf.String()
}

func TestHomeListsPosts(t *testing.T) {
	posts := []content.Post{
		{Slug: "newer", Title: "Newer <post>", Published: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Description: "Fresh"},
		{Slug: "older", Title: "Older", Published: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	got := renderString(t, Home(testSite, posts))

	if !strings.Contains(got, `<a href="/blog/newer/">Newer &lt;post&gt;</a>`) {
		t.Errorf("post link missing or unescaped: %s", got)
	}
	if strings.Index(got, "/blog/newer/") > strings.Index(got, "/blog/older/") {
		t.Error("posts should render in the given order")
	}
	if !strings.Contains(got, "June 1, 2024") {
		t.Errorf("formatted date missing: %s", got)
	}
	if !strings.Contains(got, `type="application/rss+xml"`) || !strings.Contains(got, testSite.FeedURL) {
		t.Errorf("feed discovery link missing: %s", got)
	}
	if strings.Contains(got, "katex") {
		t.Error("katex assets should only load when math is enabled")
	}
}

func TestHomeEmpty(t *testing.T) {
	got := renderString(t, Home(testSite, nil))
	if !strings.Contains(got, "No posts yet.") {
		t.Errorf("empty state missing: %s", got)
	}
}

func TestPostPage(t *testing.T) {
	updated := time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC)
	post := content.Post{
		Slug:        "hello",
		Title:       "Hello",
		Published:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Updated:     &updated,
		Description: "Greeting",
		Image:       "/hello.png",
	}
	site := testSite
	site.Math = true
	got := renderString(t, Post(site, post, "<p>rendered <strong>body</strong></p>"))

	for _, want := range []string{
		"<title>Hello | Connor Luebbehusen</title>",
		`<link rel="canonical" href="https://luebbehusen.dev/blog/hello/">`,
		`<meta property="og:image" content="https://luebbehusen.dev/hello.png">`,
		"<p>rendered <strong>body</strong></p>",
		"July 4, 2024",
		`"@type":"BlogPosting"`,
		"katex.min.css",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("post page missing %q", want)
		}
	}
}

func TestErrorPages(t *testing.T) {
	if got := renderString(t, NotFound(testSite)); !strings.Contains(got, "Page not found") {
		t.Errorf("404 page: %s", got)
	}
	if got := renderString(t, ServerError(testSite)); !strings.Contains(got, "Something went wrong") {
		t.Errorf("500 page: %s", got)
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	post := content.Post{
		Slug:      "hello",
		Title:     "Hello",
		Published: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Image:     "https://cdn.example.com/a.png",
	}
	got := BlogPostingJsonLD(testSite, post)
	for _, want := range []string{
		`"url":"https://luebbehusen.dev/blog/hello/"`,
		`"datePublished":"2024-06-01"`,
		`"dateModified":"2024-06-01"`,
		`"image":"https://cdn.example.com/a.png"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("JSON-LD %s missing %s", got, want)
		}
	}
	if strings.Contains(got, `"description"`) {
		t.Errorf("description should be omitted when empty: %s", got)
	}
}

func TestHomeCanonicalMatchesFeedLink(t *testing.T) {
	got := renderString(t, Home(testSite, nil))
	for _, want := range []string{
		`<link rel="canonical" href="https://luebbehusen.dev/">`,
		`<meta property="og:url" content="https://luebbehusen.dev/">`,
		`<script type="application/ld+json">`,
		`"url":"https://luebbehusen.dev/"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("home page missing %q", want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://luebbehusen.dev", nil, "https://luebbehusen.dev/"},
		{"https://luebbehusen.dev/", nil, "https://luebbehusen.dev/"},
		{"https://luebbehusen.dev", []string{"blog", "hello"}, "https://luebbehusen.dev/blog/hello/"},
		{"https://luebbehusen.dev/sub", []string{"blog", "series/part-one"}, "https://luebbehusen.dev/sub/blog/series/part-one/"},
	}
	for _, tt := range tests {
		if got := buildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("buildURL(%q, %q) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestAttributesAreEscaped(t *testing.T) {
	post := content.Post{
		Slug:      "quotes",
		Title:     `Say "hi"`,
		Published: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Image:     `/a.png" onerror="alert(1)`,
	}
	got := renderString(t, Post(testSite, post, ""))
	if strings.Contains(got, `onerror="alert(1)"`) {
		t.Errorf("image attribute not escaped: %s", got)
	}
	if !strings.Contains(got, `<h1>Say &#34;hi&#34;</h1>`) {
		t.Errorf("title not escaped: %s", got)
	}
}
