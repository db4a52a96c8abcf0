// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET /healthz
//	GET /api/version
//	GET /api/network?repo=&ref=&target=&primary_ref=&max_commits=&format=&save=
//	GET /api/network/{id}?format=
//	GET /api/runs?limit=
//
// Repositories are opened relative to a configured root directory, except
// "github.com/owner/repo", which is read through the GitHub API. Errors
// are JSON objects {code, message} with a status derived from the code.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/gitnetwork/pkg/buildinfo"
	gnerrors "github.com/matzehuels/gitnetwork/pkg/errors"
	"github.com/matzehuels/gitnetwork/pkg/graph"
	"github.com/matzehuels/gitnetwork/pkg/pipeline"
	"github.com/matzehuels/gitnetwork/pkg/source"
	"github.com/matzehuels/gitnetwork/pkg/store"
)

// Defaults.
const (
	DefaultRunLimit = 50
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server serves layouts computed by a pipeline runner.
type Server struct {
	Runner *pipeline.Runner
	Store  store.Store
	Root   string // repositories are opened under this directory
	Logger *log.Logger

	// Defaults applied when a request leaves them out.
	MaxCommits int
	PrimaryRef string
}

// New creates a server. A nil store disables saving and /api/runs.
func New(runner *pipeline.Runner, st store.Store, root string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{Runner: runner, Store: st, Root: root, Logger: logger}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, buildinfo.Get())
		})
		r.Get("/network", s.handleNetwork)
		r.Get("/network/{id}", s.handleStored)
		r.Get("/runs", s.handleRuns)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	repo := q.Get("repo")
	if repo == "" {
		repo = "."
	}
	path := repo
	if !source.IsRemote(repo) {
		if repo != "." {
			if err := gnerrors.ValidatePath(repo); err != nil {
				writeError(w, err)
				return
			}
		}
		path = filepath.Join(s.Root, repo)
	}

	opts := pipeline.Options{
		Repo:       path,
		Ref:        q.Get("ref"),
		Target:     q.Get("target"),
		PrimaryRef: q.Get("primary_ref"),
		MaxCommits: s.MaxCommits,
		Detailed:   true,
		Logger:     s.Logger,
	}
	if opts.PrimaryRef == "" {
		opts.PrimaryRef = s.PrimaryRef
	}
	if v := q.Get("max_commits"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, gnerrors.New(gnerrors.ErrCodeInvalidInput, "max_commits must be a number"))
			return
		}
		opts.MaxCommits = n
	}
	format, err := formatParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts.Formats = []string{format}
	if save, _ := strconv.ParseBool(q.Get("save")); save {
		if s.Store == nil {
			writeError(w, gnerrors.New(gnerrors.ErrCodeUnsupported, "saving is not enabled"))
			return
		}
		opts.Save = true
	}

	res, err := s.Runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.RunID != "" {
		w.Header().Set("X-Run-ID", res.RunID)
	}
	writeArtifact(w, format, res.Artifacts[format])
}

func (s *Server) handleStored(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, gnerrors.New(gnerrors.ErrCodeUnsupported, "layout storage is not enabled"))
		return
	}
	id := chi.URLParam(r, "id")
	if err := store.ValidateID(id); err != nil {
		writeError(w, err)
		return
	}
	format, err := formatParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	l, err := s.Store.Load(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := s.Runner.Render(r.Context(), *l, pipeline.Options{
		Formats:  []string{format},
		Detailed: true,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeArtifact(w, format, data[format])
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		writeError(w, gnerrors.New(gnerrors.ErrCodeUnsupported, "layout storage is not enabled"))
		return
	}
	limit := DefaultRunLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, gnerrors.New(gnerrors.ErrCodeInvalidInput, "limit must be a non-negative number"))
			return
		}
		limit = n
	}
	metas, err := s.Store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if metas == nil {
		metas = []graph.Meta{}
	}
	writeJSON(w, http.StatusOK, metas)
}

func formatParam(r *http.Request) (string, error) {
	format := r.URL.Query().Get("format")
	if format == "" {
		return graph.FormatJSON, nil
	}
	return format, pipeline.ValidateFormat(format)
}

var contentTypes = map[string]string{
	graph.FormatJSON: "application/json",
	graph.FormatSVG:  "image/svg+xml",
	graph.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	graph.FormatText: "text/plain; charset=utf-8",
}

func writeArtifact(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// errorBody is the JSON error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := gnerrors.GetCode(err)
	if code == "" {
		code = gnerrors.ErrCodeInternal
	}
	writeJSON(w, gnerrors.HTTPStatus(err), errorBody{Code: string(code), Message: gnerrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestID tags each request with a uuid, keeping one supplied by the
// client in X-Request-ID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
