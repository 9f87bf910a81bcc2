// Package web is the HTTP surface of the assistant.
package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ia-assistant/server/internal/artifacts"
	"github.com/ia-assistant/server/internal/metrics"
	"github.com/ia-assistant/server/internal/pipeline/graph"
	"github.com/ia-assistant/server/internal/pipeline/model"
)

const recentRuns = 10

// Config holds the HTTP settings read at startup.
type Config struct {
	Addr         string        `envconfig:"HTTP_ADDR" default:":5000"`
	SecretKey    string        `envconfig:"SECRET_KEY" default:"your-secret-key"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"120s"`
}

// Deps are the collaborators the handlers use.
type Deps struct {
	Runner  graph.Runner
	Runs    model.RunRepository
	Store   *artifacts.Store
	Metrics *metrics.Metrics
}

type Handler struct {
	deps    Deps
	flashes *flashes
	views   *views
	now     func() time.Time
}

// NewRouter builds the router with every route and middleware attached.
func NewRouter(cfg Config, deps Deps) (*mux.Router, error) {
	if deps.Runner == nil || deps.Runs == nil || deps.Store == nil {
		return nil, errors.New("web: runner, run repository and artifact store are required")
	}
	v, err := newViews()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		deps:    deps,
		flashes: newFlashes(cfg.SecretKey),
		views:   v,
		now:     time.Now,
	}

	router := mux.NewRouter()
	router.Use(recoverMiddleware, requestLogger, metricsMiddleware(deps.Metrics))

	router.HandleFunc("/", h.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/process", h.handleProcess).Methods(http.MethodPost)
	router.HandleFunc("/download/{filename}", h.handleDownload).Methods(http.MethodGet)
	router.HandleFunc("/results/{id}", h.handleResult).Methods(http.MethodGet)
	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	return router, nil
}

// NewServer wraps the router in an http.Server with the configured timeouts.
func NewServer(cfg Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, message string) {
	h.flashes.add(w, r, "error", message)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) fail(w http.ResponseWriter, status int, err error) {
	http.Error(w, fmt.Sprintf("%d %s", status, http.StatusText(status)), status)
	requestError(err)
}
