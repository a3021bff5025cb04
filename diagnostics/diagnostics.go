// Package diagnostics exposes a read-only HTTP introspection endpoint over
// a registry of live columns. It performs no query execution or predicate
// evaluation — only static reporting of state the caller already holds.
package diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"columnstore/column"
	"columnstore/logger"
)

// Registry holds named columns for introspection. Registration is the
// caller's responsibility; nothing in this module auto-discovers columns.
type Registry struct {
	columns sync.Map // name -> column.Inspectable
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds or replaces c under its own Name().
func (r *Registry) Register(c column.Inspectable) {
	r.columns.Store(c.Name(), c)
}

// Unregister removes the column named name, if present.
func (r *Registry) Unregister(name string) {
	r.columns.Delete(name)
}

func (r *Registry) lookup(name string) (column.Inspectable, bool) {
	v, ok := r.columns.Load(name)
	if !ok {
		return nil, false
	}
	return v.(column.Inspectable), true
}

// columnView is the JSON shape returned by GET /columns/{name}.
type columnView struct {
	Name        string `json:"name"`
	ElementType string `json:"element_type"`
	Size        int    `json:"size"`
	BytesUsed   int    `json:"bytes_used"`
	Print       string `json:"print"`
}

// Server wraps a Registry behind one gorilla/mux route.
type Server struct {
	registry *Registry
	router   *mux.Router
	http     *http.Server
}

// NewServer builds a Server listening on addr, serving registry's columns.
func NewServer(addr string, registry *Registry) *Server {
	s := &Server{registry: registry, router: mux.NewRouter()}
	s.router.HandleFunc("/columns/{name}", s.handleGetColumn).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:     addr,
		Handler:  s.router,
		ErrorLog: logger.SetHTTPServerErrorLog(),
	}
	return s
}

func (s *Server) handleGetColumn(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	col, ok := s.registry.lookup(name)
	if !ok {
		http.Error(w, fmt.Sprintf("column %q not found", name), http.StatusNotFound)
		return
	}

	var printed bytes.Buffer
	col.Print(&printed)

	view := columnView{
		Name:        col.Name(),
		ElementType: col.ElementType().String(),
		Size:        col.Size(),
		BytesUsed:   col.BytesUsed(),
		Print:       printed.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		logger.Error("diagnostics: encoding response for %q: %v", name, err)
	}
}

// ListenAndServe starts the HTTP server. It blocks until the server stops
// or fails; callers that want a background server should run it in a
// goroutine and use Shutdown to stop it.
func (s *Server) ListenAndServe() error {
	logger.Info("diagnostics server listening on %s", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.http.Shutdown(context.Background())
}
