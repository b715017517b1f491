package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dixieflatline76/UltimateThumb/pkg/identity"
	"github.com/dixieflatline76/UltimateThumb/pkg/storage"
	"github.com/dixieflatline76/UltimateThumb/pkg/thumbnail"
	"github.com/dixieflatline76/UltimateThumb/util/log"
)

// Thumbnail paths: an optional "2x/" factor, a 40 character hash and the
// file name.
var thumbnailPath = regexp.MustCompile(`^(?:([2])x/)?([\w\-]{40}/[\w\-.]+\.\w{3,4})$`)

var errThrottled = errors.New("render rate exceeded")

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":  "running",
		"version": s.opts.Version,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleThumbnail serves a thumbnail file by name, rendering it first when
// it does not exist yet.
func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	match := thumbnailPath.FindStringSubmatch(strings.TrimPrefix(r.URL.Path, s.opts.Prefix))
	if match == nil {
		http.NotFound(w, r)
		return
	}
	factor := 1
	if match[1] != "" {
		factor, _ = strconv.Atoi(match[1])
	}
	name := match[2]

	ctx := r.Context()
	t, err := s.thumbs.FromName(ctx, name)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("Failed to resolve thumbnail %s: %v", name, err)
		http.Error(w, "Invalid thumbnail", http.StatusInternalServerError)
		return
	}

	path, err := s.storagePath(ctx, t, factor)
	if err != nil {
		if errors.Is(err, errThrottled) || errors.Is(err, context.Canceled) {
			http.Error(w, "Too many renders, try again later", http.StatusServiceUnavailable)
			return
		}
		log.Printf("Failed to render thumbnail %s at %dx: %v", name, factor, err)
		http.Error(w, "Failed to render thumbnail", http.StatusInternalServerError)
		return
	}

	stat, err := os.Stat(path)
	if err != nil {
		log.Printf("Failed to stat %s: %v", path, err)
		http.Error(w, "Thumbnail not available", http.StatusInternalServerError)
		return
	}

	if !modifiedSince(r.Header.Get("If-Modified-Since"), stat.ModTime()) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", thumbnail.MimeType(path))
	w.Header().Set("Last-Modified", stat.ModTime().UTC().Format(http.TimeFormat))

	if s.opts.XAccelRedirect {
		u, err := s.thumbs.StorageURL(ctx, t, factor)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		// The proxy sets the length of the file it sends.
		w.Header().Set("X-Accel-Redirect", storage.URLPath(u))
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Header().Set("Content-Length", strconv.FormatInt(stat.Size(), 10))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		log.Printf("Failed to open %s: %v", path, err)
		return
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		log.Debugf("Failed to send %s: %v", path, err)
	}
}

// storagePath returns the file of t for factor. Concurrent requests for the
// same missing file share one render, and renders wait for the rate limiter.
func (s *Server) storagePath(ctx context.Context, t *thumbnail.Thumbnail, factor int) (string, error) {
	exists, err := s.thumbs.Exists(ctx, t, factor)
	if err != nil {
		return "", err
	}
	if exists {
		return s.thumbs.StoragePath(ctx, t, factor)
	}

	name, err := t.StorageName(ctx, factor, "")
	if err != nil {
		return "", err
	}

	ch := s.renders.DoChan(name, func() (any, error) {
		// The render outlives the request that started it; others may be waiting.
		rctx := context.WithoutCancel(ctx)
		if s.limiter != nil {
			wctx, cancel := context.WithTimeout(rctx, time.Minute)
			defer cancel()
			if err := s.limiter.Wait(wctx); err != nil {
				return "", fmt.Errorf("%w: %w", errThrottled, err)
			}
		}
		return s.thumbs.StoragePath(rctx, t, factor)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// modifiedSince reports whether a file changed at mtime is newer than the
// If-Modified-Since header. A missing or unparsable header counts as
// modified.
func modifiedSince(header string, mtime time.Time) bool {
	if header == "" {
		return true
	}
	since, err := http.ParseTime(header)
	if err != nil {
		return true
	}
	return mtime.Unix() > since.Unix()
}
