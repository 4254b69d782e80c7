package blog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/luebbehusen/blog/content"
)

// BuildReport summarizes a static build.
type BuildReport struct {
	OutDir   string
	Posts    int
	Files    []string // paths written, relative to OutDir, slash separated
	Pruned   int64    // stale render cache rows removed
	Duration time.Duration
}

// Build renders the whole site into Config.OutDir. Posts are loaded and
// rendered before the output directory is wiped, so a content or render
// error aborts the build and leaves the previous output in place.
func (a *App) Build(ctx context.Context) (BuildReport, error) {
	start := time.Now()
	report := BuildReport{OutDir: a.Config.OutDir}

	if err := a.Init(); err != nil {
		return report, err
	}

	a.Cache.Invalidate()
	posts, err := a.Cache.ListPosts(ctx)
	if err != nil {
		return report, err
	}
	report.Posts = len(posts)

	bodies := make(map[string]string, len(posts))
	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		html, err := a.RenderBody(p)
		if err != nil {
			return report, err
		}
		bodies[p.Slug] = html
	}
	feed, err := a.feed(posts)
	if err != nil {
		return report, err
	}

	if err := a.prepareOutDir(); err != nil {
		return report, err
	}

	b := &siteBuilder{app: a, report: &report}
	if err := b.writeFile(stylesheetFile, func(w io.Writer) error {
		_, err := w.Write(defaultStylesheet())
		return err
	}); err != nil {
		return report, err
	}
	if err := b.copyStatic(); err != nil {
		return report, err
	}
	if a.icon != nil {
		if err := b.writeFile(a.Config.Feed.Icon, func(w io.Writer) error {
			_, err := w.Write(a.icon.Data)
			return err
		}); err != nil {
			return report, err
		}
	}

	site := a.Config.siteView()
	if err := b.writeFile("index.html", func(w io.Writer) error {
		return a.Views.Home(site, posts).Render(ctx, w)
	}); err != nil {
		return report, err
	}
	for _, p := range posts {
		if err := b.writeFile(postFile(p), func(w io.Writer) error {
			return a.Views.Post(site, p, bodies[p.Slug]).Render(ctx, w)
		}); err != nil {
			return report, err
		}
	}
	if err := b.writeFile("404.html", func(w io.Writer) error {
		return a.Views.NotFound(site).Render(ctx, w)
	}); err != nil {
		return report, err
	}

	if err := b.writeFile(feedPath, func(w io.Writer) error {
		return writeFeed(w, feed)
	}); err != nil {
		return report, err
	}
	if a.Config.Sitemap.Enabled {
		if err := b.writeFile(sitemapPath, func(w io.Writer) error {
			return writeSitemap(w, buildSitemap(a.Config.URL, posts))
		}); err != nil {
			return report, err
		}
	}
	if !b.wrote("robots.txt") {
		if err := b.writeFile("robots.txt", func(w io.Writer) error {
			_, err := io.WriteString(w, a.robots())
			return err
		}); err != nil {
			return report, err
		}
	}

	if a.Store != nil {
		keep := make([]string, len(posts))
		for i, p := range posts {
			keep[i] = p.Slug
		}
		n, err := a.Store.Prune(keep)
		if err != nil {
			a.Logger.Warn("render cache prune failed", zap.Error(err))
		}
		report.Pruned = n
	}

	report.Duration = time.Since(start)
	a.Logger.Info("build complete",
		zap.String("out", report.OutDir),
		zap.Int("posts", report.Posts),
		zap.Int("files", len(report.Files)),
		zap.Duration("took", report.Duration),
	)
	return report, nil
}

func postFile(p content.Post) string {
	return "blog/" + p.Slug + "/index.html"
}

// prepareOutDir empties the output directory, refusing paths whose removal
// would take the project or its sources with it.
func (a *App) prepareOutDir() error {
	out, err := filepath.Abs(a.Config.OutDir)
	if err != nil {
		return fmt.Errorf("blog: out dir: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("blog: out dir: %w", err)
	}
	if out == filepath.Dir(out) || within(out, cwd) {
		return fmt.Errorf("blog: refusing to use %s as the output directory", a.Config.OutDir)
	}
	for _, dir := range []string{a.Config.ContentDir, a.Config.StaticDir} {
		src, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("blog: out dir: %w", err)
		}
		if within(out, src) || within(src, out) {
			return fmt.Errorf("blog: output directory %s overlaps %s", a.Config.OutDir, dir)
		}
	}
	if err := os.RemoveAll(out); err != nil {
		return fmt.Errorf("blog: clean %s: %w", out, err)
	}
	return os.MkdirAll(out, 0o755)
}

// within reports whether path is dir or lies beneath it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

type siteBuilder struct {
	app    *App
	report *BuildReport
}

func (b *siteBuilder) wrote(rel string) bool {
	for _, f := range b.report.Files {
		if f == rel {
			return true
		}
	}
	return false
}

func (b *siteBuilder) writeFile(rel string, fn func(io.Writer) error) error {
	dst := filepath.Join(b.app.Config.OutDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("blog: create %s: %w", rel, err)
	}
	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		f.Close()
		return fmt.Errorf("blog: write %s: %w", rel, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("blog: write %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("blog: write %s: %w", rel, err)
	}
	if !b.wrote(rel) {
		b.report.Files = append(b.report.Files, rel)
	}
	return nil
}

// copyStatic copies the static directory verbatim into the output root.
func (b *siteBuilder) copyStatic() error {
	root := b.app.Config.StaticDir
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		src, err := os.Open(p)
		if err != nil {
			return err
		}
		defer src.Close()
		return b.writeFile(filepath.ToSlash(rel), func(w io.Writer) error {
			_, err := io.Copy(w, src)
			return err
		})
	})
}
