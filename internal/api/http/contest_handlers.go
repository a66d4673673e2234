package httpapi

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	appLifecycle "github.com/execution-hub/contest-hub/internal/application/lifecycle"
	"github.com/execution-hub/contest-hub/internal/domain/contest"
	"github.com/execution-hub/contest-hub/internal/infrastructure/announcer"
)

type rerollRequest struct {
	Count int `json:"count"`
}

func (s *Server) createContest(w http.ResponseWriter, r *http.Request) {
	var req appLifecycle.CreateParams
	if err := decodeBody(r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if req.HostID == "" {
		if op := operatorFromContext(r.Context()); op != nil {
			req.HostID = op.Name
		}
	}
	c, err := s.lifecycleSvc.Create(contextFromRequest(r), req)
	if err != nil {
		s.respondLifecycleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) listContests(w http.ResponseWriter, r *http.Request) {
	filter := appLifecycle.Filter{}
	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" {
		status := contest.Status(strings.ToLower(v))
		if status != contest.StatusActive && status != contest.StatusEnded {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "status must be active or ended")
			return
		}
		filter.Status = status
	}
	items, err := s.lifecycleSvc.List(contextFromRequest(r), filter)
	if err != nil {
		s.respondLifecycleError(w, err)
		return
	}
	limit, offset := parseLimitOffset(r, 50, 500)
	total := len(items)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": items[offset:end],
		"total": total,
	})
}

func (s *Server) getContest(w http.ResponseWriter, r *http.Request) {
	c, err := s.lifecycleSvc.Get(contextFromRequest(r), chi.URLParam(r, "contestId"))
	if err != nil {
		s.respondLifecycleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) editContest(w http.ResponseWriter, r *http.Request) {
	var patch contest.Patch
	if err := decodeBody(r, &patch, false); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	c, err := s.lifecycleSvc.Edit(contextFromRequest(r), chi.URLParam(r, "contestId"), patch)
	if err != nil {
		s.respondLifecycleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) endContest(w http.ResponseWriter, r *http.Request) {
	c, err := s.lifecycleSvc.End(contextFromRequest(r), chi.URLParam(r, "contestId"), contest.ReasonManual)
	if err != nil {
		s.respondLifecycleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) rerollContest(w http.ResponseWriter, r *http.Request) {
	var req rerollRequest
	if err := decodeBody(r, &req, true); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	rec, err := s.lifecycleSvc.Reroll(contextFromRequest(r), chi.URLParam(r, "contestId"), req.Count)
	if err != nil {
		s.respondLifecycleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) removeContest(w http.ResponseWriter, r *http.Request) {
	if err := s.lifecycleSvc.Remove(contextFromRequest(r), chi.URLParam(r, "contestId")); err != nil {
		s.respondLifecycleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// contestLogs reports where the journal lives; ?raw=1 serves the document.
func (s *Server) contestLogs(w http.ResponseWriter, r *http.Request) {
	target, err := s.lifecycleSvc.LogsTarget(chi.URLParam(r, "contestId"))
	if err != nil {
		s.respondLifecycleError(w, err)
		return
	}
	if r.URL.Query().Get("raw") == "" {
		respondJSON(w, http.StatusOK, map[string]interface{}{"target": target})
		return
	}
	if _, err := os.Stat(target); err != nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no journal written yet")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeFile(w, r, target)
}

// registerEntrant is public. Bot flags and attributes feed requirement
// checks, so only an operator token may set them.
func (s *Server) registerEntrant(w http.ResponseWriter, r *http.Request) {
	var entrant contest.Entrant
	if err := decodeBody(r, &entrant, false); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if (entrant.Bot || len(entrant.Attributes) > 0) && !s.trustedCaller(r) {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "bot and attributes require an operator token")
		return
	}
	entrant.ID = strings.TrimSpace(entrant.ID)
	if entrant.ID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "id is required")
		return
	}
	ctx := contextFromRequest(r)
	c, err := s.lifecycleSvc.Get(ctx, chi.URLParam(r, "contestId"))
	if err != nil {
		s.respondLifecycleError(w, err)
		return
	}
	if !c.IsActive() {
		s.respondLifecycleError(w, contest.ErrNotActive)
		return
	}
	if err := s.registrar.Register(ctx, c.Announcement, entrant); err != nil {
		s.respondLifecycleError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]interface{}{"contestId": c.ID, "entrantId": entrant.ID})
}

func (s *Server) respondLifecycleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contest.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, contest.ErrMissingID),
		errors.Is(err, contest.ErrMissingTitle),
		errors.Is(err, contest.ErrInvalidWinnerCount),
		errors.Is(err, contest.ErrInvalidDeadline),
		errors.Is(err, contest.ErrInvalidRequirement),
		errors.Is(err, announcer.ErrMissingEntrant),
		errors.Is(err, announcer.ErrReservedID):
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
	case errors.Is(err, contest.ErrNotActive),
		errors.Is(err, contest.ErrNotEnded),
		errors.Is(err, contest.ErrNoAnnouncement),
		errors.Is(err, announcer.ErrClosed):
		respondError(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, contest.ErrAnnouncementRejected):
		respondError(w, http.StatusBadGateway, "ANNOUNCEMENT_FAILED", err.Error())
	case errors.Is(err, appLifecycle.ErrIncomplete):
		respondError(w, http.StatusServiceUnavailable, "INCOMPLETE", err.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}
