// Package content loads the blog collection: markdown files with YAML
// frontmatter, validated against the post schema at build time.
package content

import (
	"sort"
	"time"
)

// Post is a single blog entry read from the content directory.
type Post struct {
	Slug        string
	Title       string
	Published   time.Time
	Updated     *time.Time
	Description string
	Image       string

	Body     string // markdown source without frontmatter
	Path     string // source path relative to the content root
	Checksum string // hex sha256 of Body
}

// Permalink returns the root-relative URL path of the post.
func (p Post) Permalink() string {
	return "/blog/" + p.Slug + "/"
}

// LastModified returns the update date when present, else the publish date.
func (p Post) LastModified() time.Time {
	if p.Updated != nil && !p.Updated.IsZero() {
		return *p.Updated
	}
	return p.Published
}

// SortByPublished orders posts newest first. Posts with equal publish dates
// keep their collection order.
func SortByPublished(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Published.After(posts[j].Published)
	})
}

// Collection is an immutable set of posts loaded in one pass.
type Collection struct {
	posts  []Post
	bySlug map[string]int
}

// NewCollection indexes posts by slug. The slice is copied and sorted newest
// first; duplicate slugs must have been rejected by the loader.
func NewCollection(posts []Post) *Collection {
	sorted := append([]Post(nil), posts...)
	SortByPublished(sorted)
	idx := make(map[string]int, len(sorted))
	for i, p := range sorted {
		idx[p.Slug] = i
	}
	return &Collection{posts: sorted, bySlug: idx}
}

// All returns every post, newest first.
func (c *Collection) All() []Post {
	return append([]Post(nil), c.posts...)
}

// Len reports the number of posts.
func (c *Collection) Len() int {
	return len(c.posts)
}

// Get returns the post with the given slug.
func (c *Collection) Get(slug string) (Post, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Post{}, false
	}
	return c.posts[i], true
}
