package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
)

// sessionHeader carries the live session id a client believes it is
// editing. Mutations addressed to another session are rejected.
const sessionHeader = "X-Session-ID"

type sessionView struct {
	Running        bool            `json:"running"`
	ElapsedSeconds int64           `json:"elapsed_seconds"`
	Session        *session.Active `json:"session,omitempty"`
}

// view must be called with s.mu held.
func (s *Server) view() sessionView {
	if !s.engine.Running() {
		return sessionView{}
	}
	return sessionView{
		Running:        true,
		ElapsedSeconds: int64(s.engine.Elapsed().Seconds()),
		Session:        s.engine.Current().Snapshot(),
	}
}

// requireLive must be called with s.mu held. It writes the error response
// and returns false when there is no live session or the request names a
// different one.
func (s *Server) requireLive(w http.ResponseWriter, r *http.Request) bool {
	if !s.engine.Running() {
		writeError(w, http.StatusConflict, "no workout session is running")
		return false
	}
	if id := r.Header.Get(sessionHeader); id != "" && id != s.engine.Current().ID.String() {
		writeError(w, http.StatusConflict, "stale session id")
		return false
	}
	return true
}

func setIndex(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "index"))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.view())
}

type startRequest struct {
	RoutineID *int64 `json:"routine_id"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.engine.Start(r.Context(), req.RoutineID); err != nil {
		switch {
		case errors.Is(err, session.ErrSessionRunning):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "routine not found")
		default:
			s.log.Error("starting session", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, s.view())
}

type addSetRequest struct {
	ExerciseID   int64  `json:"exercise_id"`
	ExerciseName string `json:"exercise_name"`
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	var req addSetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireLive(w, r) {
		return
	}

	name := req.ExerciseName
	if name == "" {
		n, err := s.catalog.Name(r.Context(), req.ExerciseID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		name = n
	}
	index := s.engine.AddSet(r.Context(), req.ExerciseID, name)
	writeJSON(w, http.StatusCreated, map[string]any{
		"index":   index,
		"session": s.engine.Current().Snapshot(),
	})
}

type updateSetRequest struct {
	Field session.Field `json:"field"`
	Value string        `json:"value"`
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	index, err := setIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid set index")
		return
	}
	var req updateSetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch req.Field {
	case session.FieldWeight, session.FieldReps:
	case session.FieldType:
		if _, ok := models.ParseSetType(req.Value); !ok {
			writeError(w, http.StatusBadRequest, "unknown set type "+strconv.Quote(req.Value))
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "unknown field "+strconv.Quote(string(req.Field)))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireLive(w, r) {
		return
	}
	if !s.engine.UpdateSet(index, req.Field, req.Value) {
		writeError(w, http.StatusNotFound, "set not found")
		return
	}
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	s.mutateSet(w, r, s.engine.RemoveSet)
}

func (s *Server) handleToggleSet(w http.ResponseWriter, r *http.Request) {
	s.mutateSet(w, r, s.engine.ToggleComplete)
}

func (s *Server) mutateSet(w http.ResponseWriter, r *http.Request, op func(int) bool) {
	index, err := setIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid set index")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireLive(w, r) {
		return
	}
	if !op(index) {
		writeError(w, http.StatusNotFound, "set not found")
		return
	}
	writeJSON(w, http.StatusOK, s.view())
}

type finishRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	var req finishRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireLive(w, r) {
		return
	}

	id, err := s.engine.Finish(r.Context(), req.Notes)
	if err != nil {
		s.log.Error("finishing session", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"session_id": id})
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.requireLive(w, r) {
		return
	}
	s.engine.Cancel()
	w.WriteHeader(http.StatusNoContent)
}
