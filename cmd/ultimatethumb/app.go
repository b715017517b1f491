package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dixieflatline76/UltimateThumb/config"
	"github.com/dixieflatline76/UltimateThumb/pkg/identity"
	"github.com/dixieflatline76/UltimateThumb/pkg/probe"
	"github.com/dixieflatline76/UltimateThumb/pkg/render"
	"github.com/dixieflatline76/UltimateThumb/pkg/storage"
	"github.com/dixieflatline76/UltimateThumb/pkg/thumbnail"
	"github.com/dixieflatline76/UltimateThumb/util/log"
)

// app holds the wired services of one command run.
type app struct {
	engine  *thumbnail.Engine
	storage *storage.FileStorage
	closers []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	store, err := newStore(ctx, cfg.Registry)
	if err != nil {
		return nil, err
	}
	if c, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	prober, err := probe.NewCached(probe.Header{}, cfg.Render.ProbeCache)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.storage, err = storage.NewFileStorage(cfg.Storage.Root, cfg.Storage.URL, cfg.Storage.Domain)
	if err != nil {
		a.Close()
		return nil, err
	}

	sources := storage.Sources{
		MediaRoot:  cfg.Sources.MediaRoot,
		StaticRoot: cfg.Sources.StaticRoot,
	}

	defaults := thumbnail.DefaultOptions()
	defaults.Quality = cfg.Thumbnail.Quality
	defaults.Pngquant = cfg.Thumbnail.Pngquant
	defaults.Factor2x = cfg.Thumbnail.Factor2x

	a.engine = thumbnail.NewEngine(thumbnail.Deps{
		Registry:  identity.NewRegistry(store, cfg.Registry.Prefix),
		Prober:    prober,
		Renderer:  newRenderer(cfg.Render),
		Optimizer: render.Pngquant{Binary: cfg.Render.PngquantBinary},
		Storage:   a.storage,
		Sources:   sources.Resolve,
	}, thumbnail.Config{
		Defaults:  defaults,
		Domain:    cfg.Storage.Domain,
		URLPrefix: cfg.Server.Prefix,
		Workers:   cfg.Thumbnail.Workers,
	})
	return a, nil
}

func newStore(ctx context.Context, cfg config.RegistryConfig) (identity.Store, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		store, err := identity.NewRedisStoreWithURL(cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("connecting to registry: %w", err)
		}
		return store, nil
	default:
		log.Debugf("using an in-memory registry of %d names, names are lost on exit", cfg.Size)
		return identity.NewMemoryStore(cfg.Size)
	}
}

func newRenderer(cfg config.RenderConfig) thumbnail.Renderer {
	if cfg.Engine == config.EngineNative {
		return render.Native{SmartCrop: cfg.SmartCrop}
	}
	return render.GraphicsMagick{Binary: cfg.GMBinary}
}

// Close releases the registry connection.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			log.Printf("Failed to close: %v", err)
		}
	}
}
