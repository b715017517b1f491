package thumbnail

import (
	"context"
	"fmt"
	"math"
	"mime"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/dixieflatline76/UltimateThumb/pkg/geometry"
	"github.com/dixieflatline76/UltimateThumb/pkg/storage"
)

// Thumbnail is a single source and options pair.
type Thumbnail struct {
	engine *Engine
	source string
	opts   Options

	mu   sync.Mutex
	name string
}

func (t *Thumbnail) String() string {
	return fmt.Sprintf("<Thumbnail: %s %s>", t.source, t.opts)
}

// Source returns the source reference.
func (t *Thumbnail) Source() string {
	return t.source
}

// Options returns the thumbnail options.
func (t *Thumbnail) Options() Options {
	return t.opts
}

// Name returns the thumbnail name and registers it for later lookup.
func (t *Thumbnail) Name(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.name != "" {
		return t.name, nil
	}
	name, err := t.engine.registry.Name(ctx, t.source, t.opts.identity())
	if err != nil {
		return "", err
	}
	t.name = name
	return name, nil
}

// RequestedSize returns the size as requested.
func (t *Thumbnail) RequestedSize() geometry.SizeRequest {
	return t.opts.Size
}

// EstimatedSize returns the size the rendered 1x thumbnail will have. Only
// the header of the source is read.
func (t *Thumbnail) EstimatedSize(ctx context.Context) (geometry.Size, error) {
	src, err := t.engine.sourceSize(ctx, t.source)
	if err != nil {
		return geometry.Size{}, err
	}
	size, err := geometry.Estimate(src, t.opts.Size, t.opts.Crop.Enabled(), t.opts.Upscale)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("estimating %s: %w", t.source, err)
	}
	return size, nil
}

// Viewport returns the layout size the thumbnail is meant for. Without a
// requested viewport this is the estimated size. A zero side is unspecified;
// percentages are relative to the estimated size.
func (t *Thumbnail) Viewport(ctx context.Context) (geometry.Size, error) {
	vp := t.opts.Size.Viewport
	if vp == nil || vp.Width.Percent || vp.Height.Percent {
		est, err := t.EstimatedSize(ctx)
		if err != nil || vp == nil {
			return est, err
		}
		return geometry.Size{
			Width:  viewportSide(vp.Width, est.Width),
			Height: viewportSide(vp.Height, est.Height),
		}, nil
	}
	return geometry.Size{Width: vp.Width.Value, Height: vp.Height.Value}, nil
}

func viewportSide(d geometry.Dimension, estimated int) int {
	if !d.Percent {
		return d.Value
	}
	return int(math.Round(float64(estimated) * float64(d.Value) / 100))
}

// ResizeOptions returns the resize parameters for the given density factor.
func (t *Thumbnail) ResizeOptions(ctx context.Context, factor int) (geometry.ResizeOptions, error) {
	size, err := t.EstimatedSize(ctx)
	if err != nil {
		return nil, err
	}
	return geometry.BuildResizeOptions(size, factor, t.opts.Crop, t.opts.Upscale, t.opts.Quality), nil
}

// StorageName returns the file name in storage: the name, below "<factor>x/"
// for factors other than 1, with the extension replaced by suffix if given.
func (t *Thumbnail) StorageName(ctx context.Context, factor int, suffix string) (string, error) {
	name, err := t.Name(ctx)
	if err != nil {
		return "", err
	}
	if factor != 1 {
		name = strconv.Itoa(factor) + "x/" + name
	}
	if suffix != "" {
		name = strings.TrimSuffix(name, path.Ext(name)) + "." + suffix
	}
	return name, nil
}

// MimeType returns the content type derived from the file extension.
func (t *Thumbnail) MimeType() string {
	return MimeType(t.source)
}

// URL returns the public URL of the thumbnail.
func (t *Thumbnail) URL(ctx context.Context) (string, error) {
	return t.url(ctx, 1)
}

// URL2x returns the public URL of the 2x variant, or "" when the thumbnail
// has none.
func (t *Thumbnail) URL2x(ctx context.Context) (string, error) {
	if !t.opts.Factor2x {
		return "", nil
	}
	return t.url(ctx, 2)
}

func (t *Thumbnail) url(ctx context.Context, factor int) (string, error) {
	name, err := t.Name(ctx)
	if err != nil {
		return "", err
	}
	return storage.BuildURL(t.engine.cfg.Domain, t.engine.cfg.URLPrefix, name, factor), nil
}

func (t *Thumbnail) factors() []int {
	if t.opts.Factor2x {
		return []int{1, 2}
	}
	return []int{1}
}

// MimeType returns the content type for a file name, falling back to
// application/octet-stream.
func MimeType(name string) string {
	typ := mime.TypeByExtension(path.Ext(name))
	if typ == "" {
		return "application/octet-stream"
	}
	typ, _, _ = strings.Cut(typ, ";")
	return typ
}
