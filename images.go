package blog

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// RSS 2.0 caps the channel image at 144x400 pixels.
const (
	maxFeedIconWidth  = 144
	maxFeedIconHeight = 400
	jpegQuality       = 80
)

// feedIcon is the channel image after it has been fitted to the RSS limits.
type feedIcon struct {
	Width       int
	Height      int
	ContentType string
	Data        []byte
}

// processFeedIcon decodes an image from src, scales it down to fit the RSS
// channel image limits while keeping its aspect ratio, and re-encodes it in
// the format implied by name.
func processFeedIcon(src io.Reader, name string) (feedIcon, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return feedIcon{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := fitWithin(bounds.Dx(), bounds.Dy(), maxFeedIconWidth, maxFeedIconHeight)
	if w != bounds.Dx() || h != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	icon := feedIcon{Width: w, Height: h}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return feedIcon{}, fmt.Errorf("encode jpeg: %w", err)
		}
		icon.ContentType = "image/jpeg"
	default:
		if err := png.Encode(&buf, img); err != nil {
			return feedIcon{}, fmt.Errorf("encode png: %w", err)
		}
		icon.ContentType = "image/png"
	}
	icon.Data = buf.Bytes()
	return icon, nil
}

// fitWithin scales w x h down, never up, so it fits inside maxW x maxH.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	if w > maxW {
		h = h * maxW / w
		w = maxW
	}
	if h > maxH {
		w = w * maxH / h
		h = maxH
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// loadFeedIcon reads the configured feed icon from the static directory.
// A missing file is not an error: the feed just has no image block.
func (a *App) loadFeedIcon() (*feedIcon, error) {
	if a.Config.Feed.Icon == "" {
		return nil, nil
	}
	path := filepath.Join(a.Config.StaticDir, filepath.FromSlash(a.Config.Feed.Icon))
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	icon, err := processFeedIcon(f, path)
	if err != nil {
		return nil, fmt.Errorf("blog: feed icon %s: %w", path, err)
	}
	return &icon, nil
}
