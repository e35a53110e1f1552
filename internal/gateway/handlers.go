package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskfolk/tasklistd/internal/auth"
	"github.com/taskfolk/tasklistd/internal/events"
	"github.com/taskfolk/tasklistd/internal/workers"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"error": detail})
}

// decodeBody parses a JSON request body. A malformed body is an
// InvalidArgument at the boundary; it never reaches the workers.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "request body format error")
		return false
	}
	return true
}

// writeWorkerError maps a worker result code onto an HTTP status.
func writeWorkerError(w http.ResponseWriter, err error) {
	var detail string
	var we *workers.Error
	if errors.As(err, &we) {
		detail = we.Detail
	} else {
		detail = "internal error"
	}

	switch workers.CodeOf(err) {
	case workers.CodeInvalidArgument:
		writeError(w, http.StatusBadRequest, detail)
	case workers.CodeNotFound:
		writeError(w, http.StatusNotFound, detail)
	case workers.CodeConflict:
		writeError(w, http.StatusConflict, detail)
	default:
		writeError(w, http.StatusInternalServerError, detail)
	}
}

// --- users ---

type registerBody struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Passwd string `json:"passwd"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if !decodeBody(w, r, &body) {
		return
	}

	err := s.users.Register(body.Name, body.Email, body.Passwd)
	if errors.Is(err, auth.ErrDuplicateEmail) {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"msg": "success"})
}

type loginBody struct {
	Email  string `json:"email"`
	Passwd string `json:"passwd"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !decodeBody(w, r, &body) {
		return
	}

	user, err := s.users.Authenticate(body.Email, body.Passwd)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.tokens.Mint(user.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "mint token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "success", "token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	const bearer = "Bearer "
	if len(header) > len(bearer) && header[:len(bearer)] == bearer {
		claims, err := s.tokens.Verify(header[len(bearer):])
		if err == nil {
			if err := s.tokens.Revoke(claims); err != nil {
				writeError(w, http.StatusInternalServerError, "revoke token")
				return
			}
		}
	}
	// Basic-auth sessions have nothing to revoke.
	writeJSON(w, http.StatusOK, map[string]string{"msg": "success"})
}

// --- task lists ---

func (s *Server) handleTasklistIndex(w http.ResponseWriter, r *http.Request) {
	names, err := s.lists.GetAllTasklist(workers.Request{Owner: identity(r)})
	if err != nil {
		writeWorkerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"task_lists": names})
}

func (s *Server) handleTasklistCreate(w http.ResponseWriter, r *http.Request) {
	var content workers.Content
	if !decodeBody(w, r, &content) {
		return
	}

	owner := identity(r)
	assigned, err := s.lists.Create(workers.Request{Owner: owner}, content)
	if err != nil {
		writeWorkerError(w, err)
		return
	}

	s.bus.Publish(events.NewEvent(events.EventTasklistCreated, owner, assigned, ""))
	writeJSON(w, http.StatusCreated, map[string]string{"name": assigned})
}

func (s *Server) handleTasklistGet(w http.ResponseWriter, r *http.Request) {
	req := workers.Request{Owner: identity(r), List: chi.URLParam(r, "list")}
	content, err := s.lists.Query(req)
	if err != nil {
		writeWorkerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (s *Server) handleTasklistRevise(w http.ResponseWriter, r *http.Request) {
	var content workers.Content
	if !decodeBody(w, r, &content) {
		return
	}

	req := workers.Request{Owner: identity(r), List: chi.URLParam(r, "list")}
	if err := s.lists.Revise(req, content); err != nil {
		writeWorkerError(w, err)
		return
	}

	s.bus.Publish(events.NewEvent(events.EventTasklistRevised, req.Owner, req.List, ""))
	writeJSON(w, http.StatusOK, map[string]string{"msg": "success"})
}

func (s *Server) handleTasklistDelete(w http.ResponseWriter, r *http.Request) {
	req := workers.Request{Owner: identity(r), List: chi.URLParam(r, "list")}
	if err := s.lists.Delete(req); err != nil {
		writeWorkerError(w, err)
		return
	}

	s.bus.Publish(events.NewEvent(events.EventTasklistDeleted, req.Owner, req.List, ""))
	writeJSON(w, http.StatusOK, map[string]string{"msg": "success"})
}

// --- tasks ---

func (s *Server) handleTaskIndex(w http.ResponseWriter, r *http.Request) {
	req := workers.Request{Owner: identity(r), List: chi.URLParam(r, "list")}
	names, err := s.tasks.GetAllTasksName(req)
	if err != nil {
		writeWorkerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tasks": names})
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var content workers.Content
	if !decodeBody(w, r, &content) {
		return
	}

	req := workers.Request{Owner: identity(r), List: chi.URLParam(r, "list")}
	assigned, err := s.tasks.Create(req, content)
	if err != nil {
		writeWorkerError(w, err)
		return
	}

	s.bus.Publish(events.NewEvent(events.EventTaskCreated, req.Owner, req.List, assigned))
	writeJSON(w, http.StatusCreated, map[string]string{"name": assigned})
}

func taskRequest(r *http.Request) workers.Request {
	return workers.Request{
		Owner: identity(r),
		List:  chi.URLParam(r, "list"),
		Item:  chi.URLParam(r, "task"),
	}
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	content, err := s.tasks.Query(taskRequest(r))
	if err != nil {
		writeWorkerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (s *Server) handleTaskRevise(w http.ResponseWriter, r *http.Request) {
	var content workers.Content
	if !decodeBody(w, r, &content) {
		return
	}

	req := taskRequest(r)
	if err := s.tasks.Revise(req, content); err != nil {
		writeWorkerError(w, err)
		return
	}

	s.bus.Publish(events.NewEvent(events.EventTaskRevised, req.Owner, req.List, req.Item))
	writeJSON(w, http.StatusOK, map[string]string{"msg": "success"})
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	req := taskRequest(r)
	if err := s.tasks.Delete(req); err != nil {
		writeWorkerError(w, err)
		return
	}

	s.bus.Publish(events.NewEvent(events.EventTaskDeleted, req.Owner, req.List, req.Item))
	writeJSON(w, http.StatusOK, map[string]string{"msg": "success"})
}
