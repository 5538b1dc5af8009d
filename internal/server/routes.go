package server

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth())

	r.Route("/schemas/{schema}", func(sr chi.Router) {
		sr.Get("/tables", s.handleListTables())
		sr.Get("/tables/names", s.handleListTableNames())
		sr.Get("/tables/exists", s.handleTableExists())

		if s.deps.Store != nil {
			sr.Get("/snapshots", s.handleListSnapshots())
			sr.Post("/snapshots", s.handleTakeSnapshot())
			sr.Get("/snapshots/latest/diff", s.handleSnapshotDiff())
		}
	})

	s.router = r
}
