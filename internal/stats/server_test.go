package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sortbox/backend/internal/motivation"
	motivationrepo "github.com/sortbox/backend/internal/motivation/repositoryimpl"
	"github.com/sortbox/backend/internal/task"
	taskrepo "github.com/sortbox/backend/internal/task/repositoryimpl"
	"github.com/sortbox/backend/internal/user"
	userrepo "github.com/sortbox/backend/internal/user/repositoryimpl"
	"github.com/sortbox/backend/pkg/cerr"
	"github.com/sortbox/backend/pkg/storage"
)

type testEnv struct {
	handler http.Handler
	server  *Server
	db      *storage.DB
	userID  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	u, err := userrepo.NewSQLRepository(db.Ext()).Upsert(context.Background(), &user.User{ExternalID: "u1"})
	require.NoError(t, err)

	srv := NewServer(
		userrepo.NewSQLRepository(db.Ext()),
		taskrepo.NewSQLRepository(db.Ext()),
		motivationrepo.NewSQLRepository(db.Ext()),
	)

	r := chi.NewRouter()
	r.Use(cerr.NewJSONResponseChiMiddleware())
	srv.RegisterRoutes(r)
	return &testEnv{handler: r, server: srv, db: db, userID: u.ID}
}

func (e *testEnv) insertDone(t *testing.T, completedAt time.Time, isKey bool) {
	t.Helper()
	repo := taskrepo.NewSQLRepository(e.db.Ext())
	completed := completedAt.UTC()
	err := repo.Create(context.Background(), &task.Task{
		UserID:      e.userID,
		Text:        "done task",
		Status:      task.StatusDone,
		IsKey:       isKey,
		CreatedAt:   completed.Add(-time.Hour),
		CompletedAt: &completed,
	})
	require.NoError(t, err)
}

func (e *testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestWeeklyStats(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	env.server.now = func() time.Time { return now }

	// Three completions today, two of them key; one eight days ago
	// falls outside both windows.
	env.insertDone(t, now.Add(-time.Hour), true)
	env.insertDone(t, now.Add(-2*time.Hour), true)
	env.insertDone(t, now.Add(-3*time.Hour), false)
	env.insertDone(t, now.AddDate(0, 0, -8), true)

	rec := env.get(t, "/stats/weekly?external_id=u1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got weeklyStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, weeklyStats{
		TodayDone:    3,
		TodayKeyDone: 2,
		WeekDone:     3,
		WeekKeyDone:  2,
	}, got)
}

func TestWeeklyStatsUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get(t, "/stats/weekly?external_id=stranger")
	require.Equal(t, http.StatusOK, rec.Code)

	var got weeklyStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, weeklyStats{}, got)
}

func TestWeeklyStatsWindowBoundary(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	env.server.now = func() time.Time { return now }

	// Completed yesterday: inside the week window, outside today's.
	env.insertDone(t, now.AddDate(0, 0, -1), false)

	rec := env.get(t, "/stats/weekly?external_id=u1")
	require.Equal(t, http.StatusOK, rec.Code)

	var got weeklyStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, weeklyStats{WeekDone: 1}, got)
}

func seedMessages(t *testing.T, env *testEnv) {
	t.Helper()
	repo := motivationrepo.NewSQLRepository(env.db.Ext())
	for _, m := range []motivation.Message{
		{Kind: motivation.KindPraise, Text: "praise one"},
		{Kind: motivation.KindPraise, Text: "praise two"},
		{Kind: motivation.KindNudge, Text: "nudge one"},
	} {
		msg := m
		require.NoError(t, repo.Ensure(context.Background(), &msg))
	}
}

func decodeText(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp motivationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Text
}

func TestMotivation(t *testing.T) {
	env := newTestEnv(t)
	seedMessages(t, env)
	env.server.intN = func(n int) int { return 0 }

	// Zero completions biases to nudge.
	rec := env.get(t, "/stats/motivation?external_id=u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nudge one", decodeText(t, rec))

	// Five or more completions bias to praise.
	now := time.Now()
	for i := 0; i < 5; i++ {
		env.insertDone(t, now.Add(-time.Duration(i+1)*time.Hour), false)
	}
	rec = env.get(t, "/stats/motivation?external_id=u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "praise one", decodeText(t, rec))
}

func TestMotivationFallbacks(t *testing.T) {
	env := newTestEnv(t)

	// Unknown user gets the starter nudge.
	rec := env.get(t, "/stats/motivation?external_id=stranger")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultNudgeText, decodeText(t, rec))

	// Known user but nothing seeded gets the keep-going default.
	rec = env.get(t, "/stats/motivation?external_id=u1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultKeepGoingText, decodeText(t, rec))
}
