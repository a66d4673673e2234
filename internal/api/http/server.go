package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	appLifecycle "github.com/execution-hub/contest-hub/internal/application/lifecycle"
	"github.com/execution-hub/contest-hub/internal/domain/contest"
	"github.com/execution-hub/contest-hub/internal/domain/notification"
)

// EntrantRegistrar records entrants on an announcement.
type EntrantRegistrar interface {
	Register(ctx context.Context, ref contest.AnnouncementRef, e contest.Entrant) error
}

// Options toggles optional surfaces.
type Options struct {
	// OperatorTokenHash is a bcrypt hash of the operator bearer token. Empty
	// disables operator auth.
	OperatorTokenHash string
	StreamEnabled     bool
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	lifecycleSvc *appLifecycle.Service
	registrar    EntrantRegistrar
	sseHub       notification.SSEHub
	auth         *operatorAuth
	opts         Options
	logger       zerolog.Logger
}

func NewServer(
	lifecycleSvc *appLifecycle.Service,
	registrar EntrantRegistrar,
	sseHub notification.SSEHub,
	opts Options,
	logger zerolog.Logger,
) *Server {
	return &Server{
		lifecycleSvc: lifecycleSvc,
		registrar:    registrar,
		sseHub:       sseHub,
		auth:         newOperatorAuth(opts.OperatorTokenHash),
		opts:         opts,
		logger:       logger.With().Str("service", "http").Logger(),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)

	r.Route("/v1", func(r chi.Router) {
		if s.opts.StreamEnabled {
			r.Get("/stream", s.streamEndpoint)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))

			r.Post("/contests/{contestId}/entrants", s.registerEntrant)

			r.Group(func(r chi.Router) {
				r.Use(s.requireOperator)

				r.Route("/contests", func(r chi.Router) {
					r.Post("/", s.createContest)
					r.Get("/", s.listContests)
					r.Get("/{contestId}", s.getContest)
					r.Patch("/{contestId}", s.editContest)
					r.Delete("/{contestId}", s.removeContest)
					r.Post("/{contestId}/end", s.endContest)
					r.Post("/{contestId}/reroll", s.rerollContest)
					r.Get("/{contestId}/logs", s.contestLogs)
				})
			})
		})
	})

	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

// decodeBody decodes a JSON body. An empty body leaves v untouched when
// allowEmpty is set.
func decodeBody(r *http.Request, v interface{}, allowEmpty bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func contextFromRequest(r *http.Request) context.Context {
	return r.Context()
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := []string{}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
