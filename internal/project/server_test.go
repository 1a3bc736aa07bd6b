package project_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sortbox/backend/internal/project"
	projectrepo "github.com/sortbox/backend/internal/project/repositoryimpl"
	"github.com/sortbox/backend/internal/user"
	userrepo "github.com/sortbox/backend/internal/user/repositoryimpl"
	"github.com/sortbox/backend/pkg/cerr"
	"github.com/sortbox/backend/pkg/storage"
)

func newTestHandler(t *testing.T) (http.Handler, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := project.NewServer(
		userrepo.NewSQLRepository(db.Ext()),
		projectrepo.NewSQLRepository(db.Ext()),
	)

	r := chi.NewRouter()
	r.Use(cerr.NewJSONResponseChiMiddleware())
	srv.RegisterRoutes(r)
	return r, db
}

func TestGetProject(t *testing.T) {
	h, db := newTestHandler(t)
	ctx := context.Background()

	users := userrepo.NewSQLRepository(db.Ext())
	owner, err := users.Upsert(ctx, &user.User{ExternalID: "u1"})
	require.NoError(t, err)
	_, err = users.Upsert(ctx, &user.User{ExternalID: "u2"})
	require.NoError(t, err)

	steps := "outline, draft, review"
	firstStep := "write the outline"
	p := &project.Project{
		UserID:    owner.ID,
		Title:     "write the report",
		Outcome:   "report submitted",
		Steps:     &steps,
		FirstStep: &firstStep,
	}
	require.NoError(t, projectrepo.NewSQLRepository(db.Ext()).Create(ctx, p))

	t.Run("owner reads it", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/"+p.ID+"?external_id=u1", nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "report submitted")
	})

	t.Run("other user gets not found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/"+p.ID+"?external_id=u2", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing external_id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/"+p.ID, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
