package content

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"
)

// DefaultCollection is the directory under the content root holding posts.
const DefaultCollection = "blog"

var markdownExts = map[string]struct{}{
	".md":       {},
	".markdown": {},
}

// Loader reads a collection of markdown posts from a filesystem.
type Loader struct {
	fs         fs.FS
	collection string
}

// NewLoader returns a Loader for the named collection directory inside fsys.
// An empty collection name selects DefaultCollection.
func NewLoader(fsys fs.FS, collection string) *Loader {
	collection = strings.Trim(path.Clean("/"+collection), "/")
	if collection == "" {
		collection = DefaultCollection
	}
	return &Loader{fs: fsys, collection: collection}
}

// Load walks the collection directory and returns every post in path order.
// The first file that fails to parse or validate aborts the load.
func (l *Loader) Load(ctx context.Context) ([]Post, error) {
	var posts []Post
	seen := make(map[string]string)

	err := fs.WalkDir(l.fs, l.collection, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == l.collection && errors.Is(walkErr, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := markdownExts[strings.ToLower(path.Ext(p))]; !ok {
			return nil
		}
		// Files starting with an underscore are ignored, matching the
		// convention for drafts and partials.
		if strings.HasPrefix(path.Base(p), "_") {
			return nil
		}

		post, err := l.LoadFile(p)
		if err != nil {
			return err
		}
		if prev, dup := seen[post.Slug]; dup {
			return &SchemaError{Path: p, Err: fmt.Errorf("%w %q (also used by %s)", ErrDuplicateSlug, post.Slug, prev)}
		}
		seen[post.Slug] = p
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// LoadCollection loads and indexes the collection.
func (l *Loader) LoadCollection(ctx context.Context) (*Collection, error) {
	posts, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewCollection(posts), nil
}

// LoadFile parses and validates a single content file. p is relative to the
// loader's filesystem root.
func (l *Loader) LoadFile(p string) (Post, error) {
	data, err := fs.ReadFile(l.fs, p)
	if err != nil {
		return Post{}, fmt.Errorf("content: read %s: %w", p, err)
	}
	return l.parse(p, data)
}

func (l *Loader) parse(p string, data []byte) (Post, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return Post{}, &SchemaError{Path: p, Err: fmt.Errorf("parse frontmatter: %w", err)}
	}

	post := fm.post()
	post.Path = p
	post.Body = string(body)
	sum := sha256.Sum256(body)
	post.Checksum = hex.EncodeToString(sum[:])

	if override := strings.Trim(strings.TrimSpace(fm.Slug), "/"); override != "" {
		post.Slug = override
	} else {
		post.Slug = l.slugFor(p)
	}

	if err := post.Validate(); err != nil {
		return Post{}, &SchemaError{Path: p, Err: err}
	}
	return post, nil
}

// slugFor derives a slug from the file path relative to the collection:
// the extension is dropped, a trailing "index" collapses into its directory,
// and every segment is normalized.
func (l *Loader) slugFor(p string) string {
	rel := strings.TrimPrefix(p, l.collection+"/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))

	segments := strings.Split(rel, "/")
	if len(segments) > 1 && strings.EqualFold(segments[len(segments)-1], "index") {
		segments = segments[:len(segments)-1]
	}

	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		normalized, err := slug.Normalize(seg)
		if err != nil || normalized == "" {
			normalized = strings.ToLower(strings.TrimSpace(seg))
		}
		if normalized != "" {
			out = append(out, normalized)
		}
	}
	return strings.Join(out, "/")
}
