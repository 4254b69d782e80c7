package views

//go:generate templ generate

// StylesheetPath is where the embedded stylesheet is served.
const StylesheetPath = "/assets/style.css"

const katexBase = "https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/"

// Site holds the site-wide settings templates read. Handlers build it from
// the site configuration so nothing is hardcoded in markup.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
	FeedURL     string // absolute URL of the RSS feed
	Math        bool   // include KaTeX assets
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image, absolute
	JSONLD      string
}
