package preview

import (
	"context"
	"encoding/json"
	derrors "errors"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

// NewHandler serves the site in root, /healthz from status and, when reg is
// non-nil, /metrics.
func NewHandler(root string, reg *prom.Registry, status *Status) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", &siteHandler{root: root, files: http.FileServer(http.Dir(root))})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		snap := status.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		if !snap.Healthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(snap)
	})
	if reg != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(reg))
	}
	return logRequests(mux)
}

// siteHandler serves the output directory, preferring pre-compressed .br
// files for clients that accept brotli.
type siteHandler struct {
	root  string
	files http.Handler
}

func (h *siteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if acceptsBrotli(r) {
		name := path.Clean("/" + r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/") {
			name = path.Join(name, "index.html")
		}
		if h.serveBrotli(w, r, name) {
			return
		}
	}
	h.files.ServeHTTP(w, r)
}

func (h *siteHandler) serveBrotli(w http.ResponseWriter, r *http.Request, name string) bool {
	full := filepath.Join(h.root, filepath.FromSlash(name)+build.BrotliSuffix)
	f, err := os.Open(full) // #nosec G304 -- name is cleaned and rooted
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()
	st, err := f.Stat()
	if err != nil || st.IsDir() {
		return false
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Content-Encoding", "br")
	w.Header().Add("Vary", "Accept-Encoding")
	http.ServeContent(w, r, name, st.ModTime(), f)
	return true
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		enc, params, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if enc == "br" && strings.ReplaceAll(params, " ", "") != "q=0" {
			return true
		}
	}
	return false
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		slog.Debug("HTTP request",
			logfields.Method(r.Method),
			logfields.Path(r.URL.Path),
			logfields.Status(wrapped.statusCode),
			slog.Duration("duration", time.Since(start)))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Server is an HTTP server bound to its address.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// Listen binds addr so port conflicts surface before anything else starts.
func Listen(addr string, h http.Handler) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.NetworkError("listen").
			WithCause(err).
			WithContext("addr", addr).
			UserAction().
			Build()
	}
	return &Server{
		srv: &http.Server{
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ln: ln,
	}, nil
}

// Addr is the bound address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Serve blocks until ctx is done and then shuts the server down.
func (s *Server) Serve(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- s.srv.Serve(s.ln) }()

	select {
	case err := <-errc:
		if derrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.NetworkError("http server stopped").WithCause(err).Build()
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(sctx); err != nil {
		return errors.NetworkError("http server shutdown").WithCause(err).Build()
	}
	return nil
}
