package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps storage sentinels to status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrSeededExercise):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

func queryLimit(r *http.Request) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			return parsed
		}
	}
	return 0
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.db.ListExercises(r.Context(), r.URL.Query().Get("muscle_group"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if exercises == nil {
		exercises = []models.Exercise{}
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ex, err := s.catalog.GetExercise(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func validateExercise(ex models.Exercise) error {
	if strings.TrimSpace(ex.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var ex models.Exercise
	if err := decodeJSON(r, &ex); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateExercise(ex); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ex.Custom = true
	id, err := s.db.CreateExercise(r.Context(), ex)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	ex.ID = id
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var ex models.Exercise
	if err := decodeJSON(r, &ex); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateExercise(ex); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ex.ID = id
	ex.Custom = true
	if err := s.db.UpdateCustomExercise(r.Context(), ex); err != nil {
		writeStoreError(w, err)
		return
	}
	s.catalog.Invalidate(id)
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.db.DeleteCustomExercise(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.catalog.Invalidate(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sets, err := s.history.ExerciseHistory(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if sets == nil {
		sets = []models.ExerciseSet{}
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	routines, err := s.db.ListRoutines(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if routines == nil {
		routines = []models.Routine{}
	}
	writeJSON(w, http.StatusOK, routines)
}

func (s *Server) handleGetRoutine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	routine, err := s.db.GetRoutine(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func validateRoutine(rt models.Routine) error {
	if strings.TrimSpace(rt.Name) == "" {
		return errors.New("name is required")
	}
	for _, re := range rt.Exercises {
		if re.ExerciseID <= 0 {
			return fmt.Errorf("invalid exercise id %d", re.ExerciseID)
		}
		if re.TargetSets < 0 || re.TargetReps < 0 {
			return errors.New("targets must not be negative")
		}
	}
	return nil
}

func (s *Server) handleCreateRoutine(w http.ResponseWriter, r *http.Request) {
	var rt models.Routine
	if err := decodeJSON(r, &rt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateRoutine(rt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.db.CreateRoutine(r.Context(), rt)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	created, err := s.db.GetRoutine(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRoutine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var rt models.Routine
	if err := decodeJSON(r, &rt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateRoutine(rt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rt.ID = id
	if err := s.db.UpdateRoutine(r.Context(), rt); err != nil {
		writeStoreError(w, err)
		return
	}
	updated, err := s.db.GetRoutine(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.db.DeleteRoutine(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
