package blog

import (
	"net/url"
	"path"
	"strings"

	"github.com/luebbehusen/blog/views"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// AssetURL joins a base URL with a file path, without a trailing slash.
func AssetURL(base string, file string) string {
	u, err := url.Parse(base)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(file, "/")
	}
	u.Path = path.Join("/", u.Path, file)
	return u.String()
}

// siteView is the subset of the config templates see.
func (c SiteConfig) siteView() views.Site {
	return views.Site{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
		Math:        c.Markdown.Math,
		FeedURL:     AssetURL(c.URL, feedPath),
	}
}
