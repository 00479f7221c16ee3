package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chinspect/chinspect/internal/errs"
	"github.com/chinspect/chinspect/internal/gen"
	"github.com/chinspect/chinspect/internal/inspect"
)

// Handler builds the route tree. Exposed so tests can drive the routes
// through httptest without opening a listener.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/tables", s.handleListTables)
		r.Get("/tables/{table}", s.handleTable)
		r.Get("/models", s.handleModels)
		r.Get("/settings", s.handleSettings)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.cat.Ping(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type tableEntry struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	rows, err := s.cat.ListTables(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	entries := make([]tableEntry, len(rows))
	for i, row := range rows {
		entries[i] = tableEntry{Name: row.Name, Kind: string(row.Kind)}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleTable inspects exactly one table, addressed by name. The
// configured table selection does not apply here.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")

	one := inspect.New(s.cat, s.log, inspect.Options{Tables: []string{name}})
	res, err := one.Run(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	desc := res.Table(name)
	if desc == nil {
		if len(res.Problems) > 0 {
			writeError(w, res.Problems[0])
			return
		}
		writeError(w, errs.New(errs.ErrKindNotFound, "table not found"))
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	res, err := s.ins.Run(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	src, err := gen.Render(res, gen.Options{Package: r.URL.Query().Get("package")})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(src)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	names, err := s.ins.SettingNames(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(names),
		"settings": names,
	})
}
