package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bastiangx/usersuggest/internal/logger"
	"github.com/bastiangx/usersuggest/pkg/config"
	"github.com/bastiangx/usersuggest/pkg/directory"
	"github.com/bastiangx/usersuggest/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server answers user_suggest lookups from a Directory.
type Server struct {
	dir          *directory.Directory
	limit        int
	listen       string
	log          *log.Logger
	requestCount atomic.Int64
}

// NewServer creates a server over dir using the [server] config section.
func NewServer(dir *directory.Directory, cfg config.ServerConfig) *Server {
	limit := cfg.Limit
	if limit < 1 {
		limit = directory.DefaultLimit
	}
	dir.SetMinPrefix(cfg.MinPrefix)

	return &Server{
		dir:    dir,
		limit:  limit,
		listen: cfg.Listen,
		log:    logger.New("server"),
	}
}

// APIPrefix is the versioned mount point the client config points at by default.
const APIPrefix = "/api/v1"

// Handler returns the routes of the server. The endpoint is served both at
// the root and under APIPrefix.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, base := range []string{"", APIPrefix} {
		mux.HandleFunc(base+"/"+suggest.EndpointPath, s.handleSuggest)
		mux.HandleFunc(base+"/"+suggest.EndpointPath+"/", s.handleSuggest)
	}
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start listens on the configured address until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving user suggestions", "addr", ln.Addr().String(), "users", s.dir.Len())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Debug("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// handleSuggest answers [] for short prefixes, else the first matching names.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		s.sendError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.requestCount.Add(1)

	start := time.Now()
	prefix := r.URL.Query().Get("prefix")
	names := s.dir.Suggest(prefix, s.limit)
	s.log.Debugf("Took [ %v ] for prefix '%s' (%d names)", time.Since(start), prefix, len(names))

	if wantsMsgpack(r.Header.Get("Accept")) {
		body, err := msgpack.Marshal(names)
		if err != nil {
			s.log.Errorf("Marshaling msgpack response: %v", err)
			s.sendError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", suggest.ContentTypeMsgpack)
		_, _ = w.Write(body)
		return
	}
	s.sendJSON(w, http.StatusOK, names)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Users:    s.dir.Len(),
		Requests: s.requestCount.Load(),
	})
}

// RequestCount returns the number of user_suggest requests served.
func (s *Server) RequestCount() int64 {
	return s.requestCount.Load()
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Errorf("Marshaling response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", suggest.ContentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) sendError(w http.ResponseWriter, message string, code int) {
	s.sendJSON(w, code, ErrorResponse{Error: message, Status: code})
}

func wantsMsgpack(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == suggest.ContentTypeMsgpack {
			return true
		}
	}
	return false
}
