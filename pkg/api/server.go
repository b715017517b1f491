package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/dixieflatline76/UltimateThumb/pkg/metrics"
	"github.com/dixieflatline76/UltimateThumb/pkg/thumbnail"
	"github.com/dixieflatline76/UltimateThumb/util/log"
)

// Thumbnails finds thumbnails by name and makes sure their files exist.
type Thumbnails interface {
	FromName(ctx context.Context, name string) (*thumbnail.Thumbnail, error)
	Exists(ctx context.Context, t *thumbnail.Thumbnail, factor int) (bool, error)
	StoragePath(ctx context.Context, t *thumbnail.Thumbnail, factor int) (string, error)
	StorageURL(ctx context.Context, t *thumbnail.Thumbnail, factor int) (string, error)
}

// Options configures a Server.
type Options struct {
	Addr string
	// Prefix is the path thumbnails are served under, "/" by default.
	Prefix string
	// XAccelRedirect hands the file to the front proxy instead of streaming it.
	XAccelRedirect bool
	// AllowedOrigins lists the CORS origins, "*" allows all. Empty disables CORS.
	AllowedOrigins []string
	// RenderRate limits renders per second, 0 disables the limit.
	RenderRate  float64
	RenderBurst int
	// H2C accepts cleartext HTTP/2 from the front proxy.
	H2C     bool
	Version string
}

// Server serves thumbnails over HTTP, rendering missing files on demand.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	handler    http.Handler
	thumbs     Thumbnails
	opts       Options

	renders singleflight.Group
	limiter *rate.Limiter
}

// NewServer creates a new API server.
func NewServer(thumbs Thumbnails, opts Options) *Server {
	if opts.Prefix == "" {
		opts.Prefix = "/"
	}
	if !strings.HasSuffix(opts.Prefix, "/") {
		opts.Prefix += "/"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		thumbs: thumbs,
		opts:   opts,
	}
	if opts.RenderRate > 0 {
		burst := max(opts.RenderBurst, 1)
		s.limiter = rate.NewLimiter(rate.Limit(opts.RenderRate), burst)
	}
	s.setupRoutes()

	s.handler = s.mux
	if opts.H2C {
		s.handler = h2c.NewHandler(s.mux, &http2.Server{})
	}
	s.httpServer = &http.Server{
		Addr:    opts.Addr,
		Handler: s.handler,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.enableCORS(s.handleHealth))
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc(s.opts.Prefix, s.instrument(s.enableCORS(s.handleThumbnail)))
}

// enableCORS adds CORS headers to the handler.
func (s *Server) enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "If-Modified-Since")
		}

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (s *Server) allowedOrigin(origin string) string {
	if slices.Contains(s.opts.AllowedOrigins, "*") {
		return "*"
	}
	if origin != "" && slices.Contains(s.opts.AllowedOrigins, origin) {
		return origin
	}
	return ""
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.code == 0 {
		w.code = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.code == 0 {
		w.code = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// instrument counts responses by status code.
func (s *Server) instrument(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		next(sw, r)
		if sw.code == 0 {
			sw.code = http.StatusOK
		}
		metrics.RecordRequest(strconv.Itoa(sw.code))
	}
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the server. It blocks until the server is stopped.
func (s *Server) Start() error {
	log.Printf("Serving thumbnails on %s%s", s.opts.Addr, s.opts.Prefix)
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the server, waiting for active requests until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
