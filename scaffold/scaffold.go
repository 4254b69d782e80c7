// Package scaffold writes new content files from embedded templates.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/goliatone/go-slug"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

var postTemplate = template.Must(
	template.New("post.md.tmpl").
		Funcs(template.FuncMap{"quote": strconv.Quote}).
		ParseFS(Templates, "templates/post.md.tmpl"),
)

// ErrExists is returned when the target file is already present.
var ErrExists = errors.New("scaffold: file already exists")

// PostData holds the template variables for a new post.
type PostData struct {
	Title     string
	Published time.Time
}

// NewPost writes dir/<slug>.md for title and returns its path. Existing
// files are never overwritten.
func NewPost(dir, title string, published time.Time) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("scaffold: title is required")
	}
	s, err := slug.Normalize(title)
	if err != nil || s == "" {
		return "", fmt.Errorf("scaffold: cannot derive a slug from %q", title)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, s+".md")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err != nil {
		return "", err
	}

	if err := postTemplate.Execute(f, PostData{Title: title, Published: published}); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("scaffold: execute template: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
