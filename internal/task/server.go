package task

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/sortbox/backend/internal/project"
	"github.com/sortbox/backend/internal/user"
	"github.com/sortbox/backend/pkg/cerr"
	"github.com/sortbox/backend/pkg/storage"
)

// Repos bundles the repositories one coordinator operation touches.
// The factory binds them all to the same sqlx.ExtContext, so a bundle
// built inside storage.DB.InTx commits or rolls back as one unit.
type Repos struct {
	Users    user.Repository
	Tasks    Repository
	Projects project.Repository
}

type RepoFactory func(db sqlx.ExtContext) Repos

type Server struct {
	db     *storage.DB
	engine *Engine
	repos  RepoFactory
	now    func() time.Time
}

func NewServer(db *storage.DB, engine *Engine, repos RepoFactory) *Server {
	return &Server{
		db:     db,
		engine: engine,
		repos:  repos,
		now:    time.Now,
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Post("/tasks", s.handleCreateTask)
	r.Get("/tasks", s.handleListTasks)
	r.Post("/tasks/{taskID}/sort", s.handleSortTask)
	r.Post("/tasks/{taskID}/complete", s.handleCompleteTask)
}

type createTaskRequest struct {
	Text          string     `json:"text"`
	Status        Status     `json:"status"`
	IsKey         bool       `json:"is_key"`
	IsGolden      bool       `json:"is_golden"`
	Responsible   *string    `json:"responsible,omitempty"`
	DueDatetime   *time.Time `json:"due_datetime,omitempty"`
	ProjectID     *string    `json:"project_id,omitempty"`
	Collaborators []string   `json:"collaborators"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	externalID := r.URL.Query().Get("external_id")
	if externalID == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "external_id is required", nil)
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid request body", err)
		return
	}
	if req.Text == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "text is required", nil)
		return
	}
	if req.Status == "" {
		req.Status = StatusInbox
	}
	if !req.Status.Valid() {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "unknown status", nil)
		return
	}

	var name, goldenHours *string
	if n := r.URL.Query().Get("name"); n != "" {
		name = &n
	}
	if g := r.URL.Query().Get("golden_hours"); g != "" {
		goldenHours = &g
	}

	var created *Task
	err := s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		repos := s.repos(tx)
		u, err := repos.Users.Upsert(ctx, &user.User{ExternalID: externalID, Name: name, GoldenHours: goldenHours})
		if err != nil {
			return err
		}
		t := &Task{
			UserID:      u.ID,
			ProjectID:   req.ProjectID,
			Text:        req.Text,
			Status:      req.Status,
			IsKey:       req.IsKey,
			IsGolden:    req.IsGolden,
			Responsible: req.Responsible,
			DueDatetime: req.DueDatetime,
			CreatedAt:   s.now().UTC(),
		}
		if err := repos.Tasks.Create(ctx, t); err != nil {
			return err
		}
		if len(req.Collaborators) > 0 {
			if err := repos.Tasks.AddCollaborators(ctx, t.ID, req.Collaborators); err != nil {
				return err
			}
		}
		t.Collaborators = req.Collaborators
		if t.Collaborators == nil {
			t.Collaborators = []string{}
		}
		created = t
		return nil
	})
	if err != nil {
		cerr.SetJSONError(ctx, cerr.WrapStorageWriteError("task", err))
		return
	}
	cerr.SetJSONResponse(ctx, created)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	externalID := r.URL.Query().Get("external_id")
	if externalID == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "external_id is required", nil)
		return
	}

	var statusFilter *Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := Status(raw)
		if !st.Valid() {
			cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "unknown status", nil)
			return
		}
		statusFilter = &st
	}

	repos := s.repos(s.db.Ext())
	u, err := repos.Users.GetByExternalID(ctx, externalID)
	if errors.Is(err, storage.ErrNotFound) {
		// Unknown users simply have no tasks yet.
		cerr.SetJSONResponse(ctx, []*Task{})
		return
	}
	if err != nil {
		cerr.SetJSONError(ctx, cerr.WrapStorageReadError("user", err))
		return
	}

	tasks, err := repos.Tasks.List(ctx, u.ID, statusFilter)
	if err != nil {
		cerr.SetJSONError(ctx, cerr.WrapStorageReadError("tasks", err))
		return
	}
	for _, t := range tasks {
		collabs, err := repos.Tasks.ListCollaborators(ctx, t.ID)
		if err != nil {
			cerr.SetJSONError(ctx, cerr.WrapStorageReadError("collaborators", err))
			return
		}
		t.Collaborators = collabs
		if t.Collaborators == nil {
			t.Collaborators = []string{}
		}
	}
	if tasks == nil {
		tasks = []*Task{}
	}
	cerr.SetJSONResponse(ctx, tasks)
}

func (s *Server) handleSortTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := chi.URLParam(r, "taskID")
	externalID := r.URL.Query().Get("external_id")
	if externalID == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "external_id is required", nil)
		return
	}

	var answers Answers
	if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "invalid answer set", err)
		return
	}

	var sorted *Task
	err := s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		repos := s.repos(tx)
		u, err := repos.Users.GetByExternalID(ctx, externalID)
		if err != nil {
			return cerr.WrapStorageReadError("user", err)
		}
		t, err := repos.Tasks.Get(ctx, taskID, u.ID)
		if err != nil {
			return cerr.WrapStorageReadError("task", err)
		}

		decision, err := s.engine.Decide(t, &answers, s.now().UTC())
		switch {
		case errors.Is(err, ErrMissingProjectData), errors.Is(err, ErrResponsibleRequired):
			return cerr.NewError(cerr.InvalidArgument, err.Error(), err)
		case errors.Is(err, ErrAlreadyTriaged):
			return cerr.NewError(cerr.FailedPrecondition, err.Error(), err)
		case err != nil:
			return cerr.NewError(cerr.Internal, "server error", err)
		}

		var projectID *string
		if spec := decision.NewProject; spec != nil {
			p := &project.Project{
				UserID:    u.ID,
				Title:     spec.Title,
				Outcome:   spec.Outcome,
				Steps:     spec.Steps,
				FirstStep: &spec.FirstStep,
			}
			if err := repos.Projects.Create(ctx, p); err != nil {
				return cerr.WrapStorageWriteError("project", err)
			}
			projectID = &p.ID

			firstStep := &Task{
				UserID:    u.ID,
				ProjectID: &p.ID,
				Text:      spec.FirstStep,
				Status:    StatusToday,
				IsKey:     t.IsKey,
				IsGolden:  t.IsGolden,
				CreatedAt: s.now().UTC(),
			}
			if err := repos.Tasks.Create(ctx, firstStep); err != nil {
				return cerr.WrapStorageWriteError("task", err)
			}
		}

		decision.Apply(t, projectID)
		if err := repos.Tasks.Update(ctx, t); err != nil {
			return cerr.WrapStorageWriteError("task", err)
		}
		if err := loadCollaborators(ctx, repos.Tasks, t); err != nil {
			return err
		}
		sorted = t
		return nil
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, sorted)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskID := chi.URLParam(r, "taskID")
	externalID := r.URL.Query().Get("external_id")
	if externalID == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "external_id is required", nil)
		return
	}

	var completed *Task
	err := s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		repos := s.repos(tx)
		u, err := repos.Users.GetByExternalID(ctx, externalID)
		if err != nil {
			return cerr.WrapStorageReadError("user", err)
		}
		t, err := repos.Tasks.Get(ctx, taskID, u.ID)
		if err != nil {
			return cerr.WrapStorageReadError("task", err)
		}

		now := s.now().UTC()
		t.Status = StatusDone
		t.CompletedAt = &now
		if err := repos.Tasks.Update(ctx, t); err != nil {
			return cerr.WrapStorageWriteError("task", err)
		}
		if err := loadCollaborators(ctx, repos.Tasks, t); err != nil {
			return err
		}
		completed = t
		return nil
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, completed)
}

func loadCollaborators(ctx context.Context, repo Repository, t *Task) error {
	collabs, err := repo.ListCollaborators(ctx, t.ID)
	if err != nil {
		return cerr.WrapStorageReadError("collaborators", err)
	}
	if collabs == nil {
		collabs = []string{}
	}
	t.Collaborators = collabs
	return nil
}
