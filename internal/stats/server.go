package stats

import (
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sortbox/backend/internal/motivation"
	"github.com/sortbox/backend/internal/task"
	"github.com/sortbox/backend/internal/user"
	"github.com/sortbox/backend/pkg/cerr"
	"github.com/sortbox/backend/pkg/storage"
)

const (
	// Fallback texts when the user is unknown or no phrase of the
	// chosen kind is seeded.
	defaultNudgeText     = "Start with one small task."
	defaultKeepGoingText = "Keep going, you're already making progress."

	// Users with at least this many completions always get praise.
	praiseThreshold = 5
)

// Server is the read-only aggregation reporter: completion counts over
// the trailing day and week, and a motivational phrase biased by the
// user's all-time completion count.
type Server struct {
	users user.Repository
	tasks task.Repository
	msgs  motivation.Repository
	now   func() time.Time
	intN  func(n int) int
}

func NewServer(users user.Repository, tasks task.Repository, msgs motivation.Repository) *Server {
	return &Server{
		users: users,
		tasks: tasks,
		msgs:  msgs,
		now:   time.Now,
		intN:  rand.Intn,
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/stats/weekly", s.handleWeekly)
	r.Get("/stats/motivation", s.handleMotivation)
}

type weeklyStats struct {
	TodayDone    int `json:"today_done"`
	TodayKeyDone int `json:"today_key_done"`
	WeekDone     int `json:"week_done"`
	WeekKeyDone  int `json:"week_key_done"`
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	externalID := r.URL.Query().Get("external_id")
	if externalID == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "external_id is required", nil)
		return
	}

	u, err := s.users.GetByExternalID(ctx, externalID)
	if errors.Is(err, storage.ErrNotFound) {
		cerr.SetJSONResponse(ctx, weeklyStats{})
		return
	}
	if err != nil {
		cerr.SetJSONError(ctx, cerr.WrapStorageReadError("user", err))
		return
	}

	now := s.now().UTC()
	startToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startWeek := startToday.AddDate(0, 0, -7)

	todayTotal, todayKey, err := s.tasks.CountCompletedSince(ctx, u.ID, startToday)
	if err != nil {
		cerr.SetJSONError(ctx, cerr.WrapStorageReadError("stats", err))
		return
	}
	weekTotal, weekKey, err := s.tasks.CountCompletedSince(ctx, u.ID, startWeek)
	if err != nil {
		cerr.SetJSONError(ctx, cerr.WrapStorageReadError("stats", err))
		return
	}

	cerr.SetJSONResponse(ctx, weeklyStats{
		TodayDone:    todayTotal,
		TodayKeyDone: todayKey,
		WeekDone:     weekTotal,
		WeekKeyDone:  weekKey,
	})
}

type motivationResponse struct {
	Text string `json:"text"`
}

func (s *Server) handleMotivation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	externalID := r.URL.Query().Get("external_id")
	if externalID == "" {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "external_id is required", nil)
		return
	}

	u, err := s.users.GetByExternalID(ctx, externalID)
	if errors.Is(err, storage.ErrNotFound) {
		cerr.SetJSONResponse(ctx, motivationResponse{Text: defaultNudgeText})
		return
	}
	if err != nil {
		cerr.SetJSONError(ctx, cerr.WrapStorageReadError("user", err))
		return
	}

	doneTotal, err := s.tasks.CountDone(ctx, u.ID)
	if err != nil {
		cerr.SetJSONError(ctx, cerr.WrapStorageReadError("stats", err))
		return
	}

	var kind motivation.Kind
	switch {
	case doneTotal == 0:
		kind = motivation.KindNudge
	case doneTotal >= praiseThreshold:
		kind = motivation.KindPraise
	default:
		kinds := []motivation.Kind{motivation.KindPraise, motivation.KindNudge}
		kind = kinds[s.intN(len(kinds))]
	}

	msgs, err := s.msgs.ListByKind(ctx, kind)
	if err != nil {
		cerr.SetJSONError(ctx, cerr.WrapStorageReadError("motivation messages", err))
		return
	}
	if len(msgs) == 0 {
		cerr.SetJSONResponse(ctx, motivationResponse{Text: defaultKeepGoingText})
		return
	}
	cerr.SetJSONResponse(ctx, motivationResponse{Text: msgs[s.intN(len(msgs))].Text})
}
