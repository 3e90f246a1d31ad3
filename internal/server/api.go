package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	applog "github.com/elpatron68/focustasks/internal/log"
	"github.com/elpatron68/focustasks/internal/slot"
	"github.com/elpatron68/focustasks/internal/tasks"
)

type apiResponse struct {
	Tasks   []tasks.Task  `json:"tasks"`
	Summary tasks.Summary `json:"summary"`
}

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.Warnf("encode response: %v", err)
	}
}

func writeTasks(w http.ResponseWriter, status int, list []tasks.Task) {
	writeJSON(w, status, apiResponse{Tasks: list, Summary: tasks.Summarize(list)})
}

// writeStoreError maps a failed persist to a status code.
func writeStoreError(w http.ResponseWriter, op string, err error) {
	applog.Errorf("api %s failed: %v", op, err)
	status := http.StatusInternalServerError
	if errors.Is(err, slot.ErrQuotaExceeded) {
		status = http.StatusInsufficientStorage
	}
	writeJSON(w, status, apiError{Error: err.Error()})
}

// withJSON only admits application/json bodies. Cross-site HTML forms cannot
// send that content type, which keeps Basic-auth browsers safe from CSRF.
func (s *Server) withJSON(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mt != "application/json" {
			writeJSON(w, http.StatusUnsupportedMediaType, apiError{Error: "content type must be application/json"})
			return
		}
		next(w, r)
	}
}

func (s *Server) apiList(w http.ResponseWriter, r *http.Request) {
	_, store := s.storeFor(r)
	writeTasks(w, http.StatusOK, store.List())
}

func (s *Server) apiAdd(w http.ResponseWriter, r *http.Request) {
	username, store := s.storeFor(r)
	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"})
		return
	}
	t, err := tasks.NewTask(body.Title)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	list, err := store.Add(t)
	s.activity.Append(username, "add", err, plainTitle(t.Title))
	if err != nil {
		writeStoreError(w, "add", err)
		return
	}
	writeTasks(w, http.StatusCreated, list)
}

func (s *Server) apiToggle(w http.ResponseWriter, r *http.Request) {
	username, store := s.storeFor(r)
	id := r.PathValue("id")
	list, err := store.Toggle(id)
	s.activity.Append(username, "toggle", err, id)
	if err != nil {
		writeStoreError(w, "toggle", err)
		return
	}
	writeTasks(w, http.StatusOK, list)
}

func (s *Server) apiRemove(w http.ResponseWriter, r *http.Request) {
	username, store := s.storeFor(r)
	id := r.PathValue("id")
	list, err := store.Remove(id)
	s.activity.Append(username, "remove", err, id)
	if err != nil {
		writeStoreError(w, "remove", err)
		return
	}
	writeTasks(w, http.StatusOK, list)
}
