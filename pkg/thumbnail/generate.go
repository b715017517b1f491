package thumbnail

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/dixieflatline76/UltimateThumb/pkg/metrics"
	"github.com/dixieflatline76/UltimateThumb/util/log"
)

// Exists reports whether the file for factor has been generated.
func (e *Engine) Exists(ctx context.Context, t *Thumbnail, factor int) (bool, error) {
	name, err := t.StorageName(ctx, factor, "")
	if err != nil {
		return false, err
	}
	return e.storage.Exists(name), nil
}

// StoragePath returns the file path for factor, generating the file first if
// it does not exist yet.
func (e *Engine) StoragePath(ctx context.Context, t *Thumbnail, factor int) (string, error) {
	name, err := t.StorageName(ctx, factor, "")
	if err != nil {
		return "", err
	}
	if !e.storage.Exists(name) {
		if err := e.Generate(ctx, t, factor); err != nil {
			return "", err
		}
	}
	return e.storage.Path(name), nil
}

// StorageURL returns the storage URL of the file for factor.
func (e *Engine) StorageURL(ctx context.Context, t *Thumbnail, factor int) (string, error) {
	name, err := t.StorageName(ctx, factor, "")
	if err != nil {
		return "", err
	}
	return e.storage.URL(name), nil
}

// Generate renders the file for factor into storage, replacing an existing
// one. PNG thumbnails with a pngquant range are optimized before they are
// stored.
func (e *Engine) Generate(ctx context.Context, t *Thumbnail, factor int) (err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RecordGenerate(strconv.Itoa(factor), status, time.Since(start).Seconds())
	}()

	name, err := t.StorageName(ctx, factor, "")
	if err != nil {
		return err
	}
	src, err := e.sources(t.source)
	if err != nil {
		return err
	}
	opts, err := t.ResizeOptions(ctx, factor)
	if err != nil {
		return err
	}

	tmp, err := e.storage.TempPath(name)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := e.renderer.Render(ctx, src, tmp, opts); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}

	if t.opts.Pngquant != "" && path.Ext(name) == ".png" {
		if e.optimizer == nil {
			log.Debugf("no optimizer configured, storing %s unoptimized", name)
		} else if err := e.optimizer.Optimize(ctx, tmp, t.opts.Pngquant); err != nil {
			return fmt.Errorf("optimizing %s: %w", name, err)
		}
	}

	if err := e.storage.Save(tmp, name); err != nil {
		return err
	}
	log.Debugf("generated %s from %s in %s", name, t.source, time.Since(start))
	return nil
}

// Base64 returns the 1x thumbnail as a data URI. The encoded content is
// stored next to the thumbnail and reused.
func (e *Engine) Base64(ctx context.Context, t *Thumbnail) (string, error) {
	name, err := t.StorageName(ctx, 1, "base64")
	if err != nil {
		return "", err
	}

	if !e.storage.Exists(name) {
		file, err := e.StoragePath(ctx, t, 1)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", file, err)
		}
		if err := e.storage.WriteFile(name, []byte(base64.StdEncoding.EncodeToString(data))); err != nil {
			return "", err
		}
	}

	content, err := os.ReadFile(e.storage.Path(name))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return "data:" + t.MimeType() + ";base64," + string(content), nil
}
