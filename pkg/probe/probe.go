// Package probe reads source image dimensions from the file header without
// decoding pixel data.
package probe

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/dixieflatline76/UltimateThumb/pkg/geometry"
)

// Prober returns the pixel size of an image file.
type Prober interface {
	Size(ctx context.Context, path string) (geometry.Size, error)
}

// Header probes by decoding the image config only.
type Header struct{}

// Size implements Prober.
func (Header) Size(ctx context.Context, path string) (geometry.Size, error) {
	if err := ctx.Err(); err != nil {
		return geometry.Size{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("opening source: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("reading image header of %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return geometry.Size{}, fmt.Errorf("%s image %s has no pixels", format, path)
	}
	return geometry.Size{Width: cfg.Width, Height: cfg.Height}, nil
}

type cacheKey struct {
	path  string
	mtime time.Time
	size  int64
}

// Cached memoizes another prober. Entries are keyed by path, modification
// time and file size so a replaced source is probed again.
type Cached struct {
	next  Prober
	cache *lru.Cache[cacheKey, geometry.Size]
}

// NewCached wraps next with an LRU of the given size.
func NewCached(next Prober, size int) (*Cached, error) {
	cache, err := lru.New[cacheKey, geometry.Size](size)
	if err != nil {
		return nil, fmt.Errorf("creating probe cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

// Size implements Prober.
func (c *Cached) Size(ctx context.Context, path string) (geometry.Size, error) {
	info, err := os.Stat(path)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("opening source: %w", err)
	}

	key := cacheKey{path: path, mtime: info.ModTime(), size: info.Size()}
	if s, ok := c.cache.Get(key); ok {
		return s, nil
	}

	s, err := c.next.Size(ctx, path)
	if err != nil {
		return geometry.Size{}, err
	}
	c.cache.Add(key, s)
	return s, nil
}
