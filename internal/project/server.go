package project

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sortbox/backend/internal/user"
	"github.com/sortbox/backend/pkg/cerr"
)

type Server struct {
	users    user.Repository
	projects Repository
}

func NewServer(users user.Repository, projects Repository) *Server {
	return &Server{
		users:    users,
		projects: projects,
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/projects/{projectID}", s.handleGetProject)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := chi.URLParam(r, "projectID")
	externalID := r.URL.Query().Get("external_id")
	if externalID == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "external_id is required", nil)
		return
	}

	u, err := s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		cerr.SetJSONError(ctx, cerr.WrapStorageReadError("user", err))
		return
	}
	p, err := s.projects.Get(ctx, projectID, u.ID)
	if err != nil {
		cerr.SetJSONError(ctx, cerr.WrapStorageReadError("project", err))
		return
	}
	cerr.SetJSONResponse(ctx, p)
}
