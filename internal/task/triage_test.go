package task

import (
	"errors"
	"testing"
	"time"
)

func boolPtr(b bool) *bool           { return &b }
func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

func TestDecide(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)
	due := time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		answers    Answers
		wantStatus Status
	}{
		{
			name:       "no action needed goes to storage",
			answers:    Answers{NeedAction: false},
			wantStatus: StatusStorage,
		},
		{
			name: "no action wins over every other answer",
			answers: Answers{
				NeedAction:     false,
				UrgentThisWeek: boolPtr(true),
				DoByMe:         boolPtr(false),
				OneStep:        boolPtr(false),
				CanDoNow:       boolPtr(true),
				Responsible:    strPtr("someone"),
			},
			wantStatus: StatusStorage,
		},
		{
			name:       "not urgent goes to someday",
			answers:    Answers{NeedAction: true, UrgentThisWeek: boolPtr(false)},
			wantStatus: StatusSomeday,
		},
		{
			name:       "unanswered urgency falls through to later branches",
			answers:    Answers{NeedAction: true},
			wantStatus: StatusToday,
		},
		{
			name: "not mine goes to delegated",
			answers: Answers{
				NeedAction:     true,
				UrgentThisWeek: boolPtr(true),
				DoByMe:         boolPtr(false),
				Responsible:    strPtr("alice"),
			},
			wantStatus: StatusDelegated,
		},
		{
			name: "doable now goes to done",
			answers: Answers{
				NeedAction:     true,
				UrgentThisWeek: boolPtr(true),
				DoByMe:         boolPtr(true),
				OneStep:        boolPtr(true),
				CanDoNow:       boolPtr(true),
			},
			wantStatus: StatusDone,
		},
		{
			name: "scheduled goes to calendar",
			answers: Answers{
				NeedAction:  true,
				OneStep:     boolPtr(true),
				CanDoNow:    boolPtr(false),
				HasDatetime: boolPtr(true),
				Datetime:    timePtr(due),
			},
			wantStatus: StatusCalendar,
		},
		{
			name: "has datetime answered but no value falls back to today",
			answers: Answers{
				NeedAction:  true,
				OneStep:     boolPtr(true),
				HasDatetime: boolPtr(true),
			},
			wantStatus: StatusToday,
		},
		{
			name: "single step not doable now goes to today",
			answers: Answers{
				NeedAction: true,
				OneStep:    boolPtr(true),
				CanDoNow:   boolPtr(false),
			},
			wantStatus: StatusToday,
		},
	}

	engine := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{ID: "t1", Status: StatusInbox, Text: "buy milk"}
			d, err := engine.Decide(task, &tt.answers, now)
			if err != nil {
				t.Fatalf("Decide() error = %v", err)
			}
			if d.Status != tt.wantStatus {
				t.Errorf("Decide() status = %q, want %q", d.Status, tt.wantStatus)
			}
			if !d.SortedAt.Equal(now) {
				t.Errorf("Decide() sortedAt = %v, want %v", d.SortedAt, now)
			}
		})
	}
}

func TestDecideDelegate(t *testing.T) {
	now := time.Now().UTC()
	answers := Answers{
		NeedAction:     true,
		UrgentThisWeek: boolPtr(true),
		DoByMe:         boolPtr(false),
		Responsible:    strPtr("bob"),
	}

	d, err := NewEngine().Decide(&Task{Status: StatusInbox}, &answers, now)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if d.Status != StatusDelegated {
		t.Fatalf("Decide() status = %q, want %q", d.Status, StatusDelegated)
	}
	if d.Responsible == nil || *d.Responsible != "bob" {
		t.Errorf("Decide() responsible = %v, want bob", d.Responsible)
	}

	// Permissive by default: delegating with nobody named succeeds.
	answers.Responsible = nil
	if _, err := NewEngine().Decide(&Task{Status: StatusInbox}, &answers, now); err != nil {
		t.Errorf("Decide() without responsible error = %v, want nil", err)
	}

	// Strict mode rejects it.
	_, err = NewEngine(WithRequireResponsible()).Decide(&Task{Status: StatusInbox}, &answers, now)
	if !errors.Is(err, ErrResponsibleRequired) {
		t.Errorf("Decide() strict error = %v, want ErrResponsibleRequired", err)
	}
}

func TestDecideMultiStep(t *testing.T) {
	now := time.Now().UTC()
	task := &Task{Status: StatusInbox, Text: "plan the move", IsKey: true, IsGolden: true}

	answers := Answers{
		NeedAction:       true,
		UrgentThisWeek:   boolPtr(true),
		DoByMe:           boolPtr(true),
		OneStep:          boolPtr(false),
		ProjectOutcome:   strPtr("moved into the new flat"),
		ProjectSteps:     strPtr("pack\nbook movers\nhand over keys"),
		ProjectFirstStep: strPtr("order boxes"),
	}

	d, err := NewEngine().Decide(task, &answers, now)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if d.Status != StatusProject {
		t.Fatalf("Decide() status = %q, want %q", d.Status, StatusProject)
	}
	if d.NewProject == nil {
		t.Fatal("Decide() NewProject = nil, want spec")
	}
	if d.NewProject.Title != "plan the move" {
		t.Errorf("project title = %q, want task text", d.NewProject.Title)
	}
	if d.NewProject.Outcome != "moved into the new flat" {
		t.Errorf("project outcome = %q", d.NewProject.Outcome)
	}
	if d.NewProject.FirstStep != "order boxes" {
		t.Errorf("project first step = %q", d.NewProject.FirstStep)
	}

	for _, tt := range []struct {
		name   string
		mutate func(a *Answers)
	}{
		{"missing outcome", func(a *Answers) { a.ProjectOutcome = nil }},
		{"empty outcome", func(a *Answers) { a.ProjectOutcome = strPtr("") }},
		{"missing first step", func(a *Answers) { a.ProjectFirstStep = nil }},
		{"empty first step", func(a *Answers) { a.ProjectFirstStep = strPtr("") }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			a := answers
			tt.mutate(&a)
			_, err := NewEngine().Decide(task, &a, now)
			if !errors.Is(err, ErrMissingProjectData) {
				t.Errorf("Decide() error = %v, want ErrMissingProjectData", err)
			}
		})
	}
}

func TestDecideCompletionStamp(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)
	answers := Answers{NeedAction: true, OneStep: boolPtr(true), CanDoNow: boolPtr(true)}

	d, err := NewEngine().Decide(&Task{Status: StatusInbox}, &answers, now)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if d.CompletedAt == nil || !d.CompletedAt.Equal(now) {
		t.Errorf("Decide() completedAt = %v, want %v", d.CompletedAt, now)
	}
}

func TestDecideTerminalGuard(t *testing.T) {
	now := time.Now().UTC()
	answers := Answers{NeedAction: true}

	guarded := NewEngine(WithTerminalGuard())
	for _, status := range []Status{StatusDone, StatusProject} {
		if _, err := guarded.Decide(&Task{Status: status}, &answers, now); !errors.Is(err, ErrAlreadyTriaged) {
			t.Errorf("Decide() on %s task error = %v, want ErrAlreadyTriaged", status, err)
		}
	}
	for _, status := range []Status{StatusInbox, StatusToday, StatusSomeday, StatusDelegated, StatusCalendar, StatusStorage} {
		if _, err := guarded.Decide(&Task{Status: status}, &answers, now); err != nil {
			t.Errorf("Decide() on %s task error = %v, want nil", status, err)
		}
	}

	// Without the guard every status stays triageable.
	if _, err := NewEngine().Decide(&Task{Status: StatusDone}, &answers, now); err != nil {
		t.Errorf("Decide() unguarded error = %v, want nil", err)
	}
}

func TestDecisionApply(t *testing.T) {
	now := time.Now().UTC()
	projectID := "p1"
	task := &Task{Status: StatusInbox}
	d := &Decision{Status: StatusProject, SortedAt: now}

	d.Apply(task, &projectID)

	if task.Status != StatusProject {
		t.Errorf("status = %q, want %q", task.Status, StatusProject)
	}
	if task.SortedAt == nil || !task.SortedAt.Equal(now) {
		t.Errorf("sortedAt = %v, want %v", task.SortedAt, now)
	}
	if task.ProjectID == nil || *task.ProjectID != projectID {
		t.Errorf("projectID = %v, want %q", task.ProjectID, projectID)
	}
}
