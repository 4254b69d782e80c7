// Package markdown renders post bodies to HTML with goldmark, including math
// notation and syntax highlighting, and exposes the result as templ components.
package markdown

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/a-h/templ"
	"github.com/alecthomas/chroma/v2/styles"
	mathjax "github.com/litao91/goldmark-mathjax"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// DefaultTheme is the chroma style used when no highlight theme is configured.
const DefaultTheme = "github-dark"

// Options selects the markdown extensions.
type Options struct {
	Math           bool   // $inline$ and $$display$$ math
	HighlightTheme string // chroma style name
}

// Renderer converts markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md   goldmark.Markdown
	opts Options
}

// New builds a Renderer for opts.
func New(opts Options) *Renderer {
	if strings.TrimSpace(opts.HighlightTheme) == "" {
		opts.HighlightTheme = DefaultTheme
	}

	exts := []goldmark.Extender{
		extension.GFM,
		extension.Footnote,
		highlighting.NewHighlighting(
			highlighting.WithStyle(opts.HighlightTheme),
		),
	}
	if opts.Math {
		exts = append(exts, mathjax.MathJax)
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		// Posts are authored by the site owner; raw HTML in markdown is kept.
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Renderer{md: md, opts: opts}
}

// Options returns the options the renderer was built with.
func (r *Renderer) Options() Options {
	return r.opts
}

// Render converts src to HTML.
func (r *Renderer) Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderString is Render for string input and output.
func (r *Renderer) RenderString(src string) (string, error) {
	out, err := r.Render([]byte(src))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Fingerprint identifies the render options. Output rendered under one
// fingerprint is not valid under another.
func (r *Renderer) Fingerprint() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("goldmark|math=%t|theme=%s", r.opts.Math, r.opts.HighlightTheme)))
	return hex.EncodeToString(sum[:8])
}

// ValidTheme reports whether name is a registered chroma style.
func ValidTheme(name string) bool {
	_, ok := styles.Registry[name]
	return ok
}

// Markdown returns a templ.Component that writes already-rendered HTML.
func Markdown(rendered string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, rendered)
		return err
	})
}

// matches src="/..." but not protocol-relative src="//..."
var reRootSrc = regexp.MustCompile(`src="/(?:[^/"][^"]*)?"`)

// AbsolutizeSources rewrites every root-relative src attribute in rendered
// HTML to an absolute URL on base, e.g. src="/a.png" -> src="https://x.dev/a.png".
func AbsolutizeSources(rendered, base string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return rendered
	}
	return reRootSrc.ReplaceAllStringFunc(rendered, func(m string) string {
		return `src="` + base + m[len(`src="`):]
	})
}
