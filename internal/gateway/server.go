// Package gateway is the HTTP transport for tasklistd. It authenticates
// requests, dispatches them to the resource workers and translates worker
// result codes into status codes. No resource semantics live here.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taskfolk/tasklistd/internal/auth"
	"github.com/taskfolk/tasklistd/internal/events"
	"github.com/taskfolk/tasklistd/internal/workers"
)

// Server is the tasklistd HTTP server.
type Server struct {
	httpServer *http.Server
	hub        *hub
	bus        *events.Bus
	users      *auth.Users
	tokens     *auth.Tokens
	lists      *workers.TaskListWorker
	tasks      *workers.TaskWorker
}

// NewServer wires the routes. The workers share one store; the tasks
// worker checks parent-list existence through the lists worker.
func NewServer(bus *events.Bus, users *auth.Users, tokens *auth.Tokens,
	lists *workers.TaskListWorker, tasks *workers.TaskWorker, host string, port int) *Server {

	s := &Server{
		hub:    newHub(bus),
		bus:    bus,
		users:  users,
		tokens: tokens,
		lists:  lists,
		tasks:  tasks,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/v1/health", s.handleHealth)

	r.Post("/v1/users/register", s.handleRegister)
	r.Post("/v1/users/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Post("/v1/users/logout", s.handleLogout)
		r.Get("/v1/events", s.hub.serveWS)

		r.Route("/v1/task_lists", func(r chi.Router) {
			r.Get("/", s.handleTasklistIndex)
			r.Post("/", s.handleTasklistCreate)
			r.Route("/{list}", func(r chi.Router) {
				r.Get("/", s.handleTasklistGet)
				r.Patch("/", s.handleTasklistRevise)
				r.Delete("/", s.handleTasklistDelete)

				r.Route("/tasks", func(r chi.Router) {
					r.Get("/", s.handleTaskIndex)
					r.Post("/", s.handleTaskCreate)
					r.Route("/{task}", func(r chi.Router) {
						r.Get("/", s.handleTaskGet)
						r.Patch("/", s.handleTaskRevise)
						r.Delete("/", s.handleTaskDelete)
					})
				})
			})
		})
	})

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("tasklistd gateway listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
