// Package thumbnail builds thumbnails from source images: it plans size
// families, names them, and renders them on demand.
package thumbnail

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dixieflatline76/UltimateThumb/pkg/geometry"
	"github.com/dixieflatline76/UltimateThumb/pkg/metrics"
	"github.com/dixieflatline76/UltimateThumb/util/log"
)

// Namer computes thumbnail names and resolves them back.
type Namer interface {
	Name(ctx context.Context, source string, opts map[string]any) (string, error)
	Resolve(ctx context.Context, name string) (string, map[string]any, error)
}

// Prober returns the pixel size of a source image.
type Prober interface {
	Size(ctx context.Context, path string) (geometry.Size, error)
}

// Renderer writes a thumbnail of in to out.
type Renderer interface {
	Render(ctx context.Context, in, out string, opts geometry.ResizeOptions) error
}

// Optimizer post-processes PNG thumbnails in place.
type Optimizer interface {
	Optimize(ctx context.Context, path, quality string) error
}

// Storage holds generated files.
type Storage interface {
	Path(name string) string
	URL(name string) string
	Exists(name string) bool
	TempPath(name string) (string, error)
	Save(tmp, name string) error
	WriteFile(name string, data []byte) error
}

// SourceResolver maps a source reference to a file path.
type SourceResolver func(source string) (string, error)

// Deps are the collaborators of an Engine. Optimizer and Sources are
// optional.
type Deps struct {
	Registry  Namer
	Prober    Prober
	Renderer  Renderer
	Optimizer Optimizer
	Storage   Storage
	Sources   SourceResolver
}

// Config holds the engine settings.
type Config struct {
	// Defaults apply to every option not given explicitly.
	Defaults Options
	// Domain is prepended to thumbnail URLs, e.g. "statichost" or
	// "https://cdn.example.com".
	Domain string
	// URLPrefix is the path the thumbnail handler is mounted on.
	URLPrefix string
	// Workers bounds concurrent renders in Pregenerate.
	Workers int
}

// Engine creates and renders thumbnails.
type Engine struct {
	registry  Namer
	prober    Prober
	renderer  Renderer
	optimizer Optimizer
	storage   Storage
	sources   SourceResolver
	cfg       Config
}

// NewEngine creates an engine.
func NewEngine(deps Deps, cfg Config) *Engine {
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = "/"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Defaults.Quality == 0 {
		cfg.Defaults.Quality = DefaultOptions().Quality
	}

	sources := deps.Sources
	if sources == nil {
		sources = func(source string) (string, error) { return source, nil }
	}

	return &Engine{
		registry:  deps.Registry,
		prober:    deps.Prober,
		renderer:  deps.Renderer,
		optimizer: deps.Optimizer,
		storage:   deps.Storage,
		sources:   sources,
		cfg:       cfg,
	}
}

// Defaults returns the configured default options.
func (e *Engine) Defaults() Options {
	return e.cfg.Defaults
}

// New creates a single thumbnail of source.
func (e *Engine) New(source string, opts Options) (*Thumbnail, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("thumbnail of %s: %w", source, err)
	}
	return &Thumbnail{engine: e, source: source, opts: opts}, nil
}

// Set plans the thumbnails for a comma separated size list.
//
// Unless upscaling is allowed, the family stops at the first size that
// reaches the source, which is clamped to the source. Percentage sizes are
// never clamped. With Factor2x the source counts as half its size so every
// thumbnail also has a full resolution 2x variant.
func (e *Engine) Set(ctx context.Context, source, sizes string, opts Options) ([]*Thumbnail, error) {
	reqs, err := geometry.Parse(sizes)
	if err != nil {
		return nil, err
	}
	for _, req := range reqs {
		if err := checkSize(req); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
	}

	srcSize, err := e.sourceSize(ctx, source)
	if err != nil {
		return nil, err
	}
	if opts.Factor2x {
		srcSize = srcSize.Half()
	}

	family := geometry.ClampFamily(srcSize, reqs, opts.Crop.Enabled(), opts.Upscale)
	if dropped := len(reqs) - len(family); dropped > 0 {
		log.Debugf("%s: dropped %d of %d sizes larger than the source (%s)", source, dropped, len(reqs), srcSize)
		metrics.RecordDropped(dropped)
	}

	thumbs := make([]*Thumbnail, 0, len(family))
	for _, req := range family {
		o := opts
		o.Size = req
		t, err := e.New(source, o)
		if err != nil {
			return nil, err
		}
		thumbs = append(thumbs, t)
	}
	return thumbs, nil
}

// FromName rebuilds the thumbnail a name was computed for.
func (e *Engine) FromName(ctx context.Context, name string) (*Thumbnail, error) {
	source, raw, err := e.registry.Resolve(ctx, name)
	if err != nil {
		metrics.RecordResolve("miss")
		return nil, err
	}

	opts, err := Decode(e.cfg.Defaults, raw)
	if err != nil {
		metrics.RecordResolve("error")
		return nil, fmt.Errorf("registry entry %s: %w", name, err)
	}

	t, err := e.New(source, opts)
	if err != nil {
		metrics.RecordResolve("error")
		return nil, err
	}
	metrics.RecordResolve("hit")
	t.name = name
	return t, nil
}

// Pregenerate renders all missing files of thumbs, including the 2x variants.
func (e *Engine) Pregenerate(ctx context.Context, thumbs []*Thumbnail) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for _, t := range thumbs {
		for _, factor := range t.factors() {
			g.Go(func() error {
				_, err := e.StoragePath(gctx, t, factor)
				return err
			})
		}
	}
	return g.Wait()
}

func (e *Engine) sourceSize(ctx context.Context, source string) (geometry.Size, error) {
	path, err := e.sources(source)
	if err != nil {
		return geometry.Size{}, err
	}
	size, err := e.prober.Size(ctx, path)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("size of %s: %w", source, err)
	}
	return size, nil
}
