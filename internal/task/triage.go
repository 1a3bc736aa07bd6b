package task

import (
	"errors"
	"time"
)

var (
	// ErrMissingProjectData is returned when the multi-step branch is
	// taken without a project outcome or first step.
	ErrMissingProjectData = errors.New("project outcome and first step are required")
	// ErrResponsibleRequired is returned by the delegate branch when
	// the engine was built with WithRequireResponsible and the answer
	// set names nobody.
	ErrResponsibleRequired = errors.New("responsible is required when delegating")
	// ErrAlreadyTriaged is returned when the task's current status
	// forbids re-triage.
	ErrAlreadyTriaged = errors.New("task can no longer be triaged")
)

// ProjectSpec describes the project (and its first actionable step)
// that a multi-step decision spawns. The coordinator turns it into a
// Project row plus a first-step Task in the same transaction that
// persists the decision.
type ProjectSpec struct {
	Title     string
	Outcome   string
	Steps     *string
	FirstStep string
}

// Decision is the outcome of one triage call: the task's next status,
// the field mutations that go with it, and an optional spawned
// project. SortedAt is always stamped, whatever branch resolved.
type Decision struct {
	Status      Status
	Responsible *string
	DueDatetime *time.Time
	CompletedAt *time.Time
	SortedAt    time.Time
	NewProject  *ProjectSpec
}

type Engine struct {
	requireResponsible bool
	guardTerminal      bool
}

type EngineOption func(*Engine)

// WithRequireResponsible makes the delegate branch fail when no
// responsible party is named instead of delegating into the void.
func WithRequireResponsible() EngineOption {
	return func(e *Engine) {
		e.requireResponsible = true
	}
}

// WithTerminalGuard rejects triage of tasks already done or converted
// to a project. Re-running the multi-step branch would spawn a second
// project, and re-sorting a done task would resurrect it, so the
// server enables this.
func WithTerminalGuard() EngineOption {
	return func(e *Engine) {
		e.guardTerminal = true
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// rule is one row of the triage decision table. Rules are evaluated in
// order and the first match wins; order and exclusivity live in the
// table itself rather than in nested conditionals.
type rule struct {
	name  string
	match func(a *Answers) bool
	apply func(e *Engine, t *Task, a *Answers, d *Decision) error
}

var triageRules = []rule{
	{
		name:  "store away",
		match: func(a *Answers) bool { return !a.NeedAction },
		apply: func(e *Engine, t *Task, a *Answers, d *Decision) error {
			d.Status = StatusStorage
			return nil
		},
	},
	{
		name:  "someday",
		match: func(a *Answers) bool { return a.UrgentThisWeek != nil && !*a.UrgentThisWeek },
		apply: func(e *Engine, t *Task, a *Answers, d *Decision) error {
			d.Status = StatusSomeday
			return nil
		},
	},
	{
		name:  "delegate",
		match: func(a *Answers) bool { return a.DoByMe != nil && !*a.DoByMe },
		apply: func(e *Engine, t *Task, a *Answers, d *Decision) error {
			if e.requireResponsible && (a.Responsible == nil || *a.Responsible == "") {
				return ErrResponsibleRequired
			}
			d.Status = StatusDelegated
			d.Responsible = a.Responsible
			return nil
		},
	},
	{
		name:  "multi-step project",
		match: func(a *Answers) bool { return a.OneStep != nil && !*a.OneStep },
		apply: func(e *Engine, t *Task, a *Answers, d *Decision) error {
			if a.ProjectOutcome == nil || *a.ProjectOutcome == "" ||
				a.ProjectFirstStep == nil || *a.ProjectFirstStep == "" {
				return ErrMissingProjectData
			}
			d.Status = StatusProject
			d.NewProject = &ProjectSpec{
				Title:     t.Text,
				Outcome:   *a.ProjectOutcome,
				Steps:     a.ProjectSteps,
				FirstStep: *a.ProjectFirstStep,
			}
			return nil
		},
	},
	{
		name:  "single step",
		match: func(a *Answers) bool { return true },
		apply: func(e *Engine, t *Task, a *Answers, d *Decision) error {
			switch {
			case a.CanDoNow != nil && *a.CanDoNow:
				d.Status = StatusDone
				completedAt := d.SortedAt
				d.CompletedAt = &completedAt
			case a.HasDatetime != nil && *a.HasDatetime && a.Datetime != nil:
				d.Status = StatusCalendar
				d.DueDatetime = a.Datetime
			default:
				d.Status = StatusToday
			}
			return nil
		},
	},
}

// Decide classifies t according to the answer set. It is a pure
// function of its inputs: now is the single timestamp used for both
// the sorted-at stamp and, on the do-it-now branch, completion.
func (e *Engine) Decide(t *Task, a *Answers, now time.Time) (*Decision, error) {
	if e.guardTerminal && (t.Status == StatusDone || t.Status == StatusProject) {
		return nil, ErrAlreadyTriaged
	}
	d := &Decision{SortedAt: now}
	for _, r := range triageRules {
		if !r.match(a) {
			continue
		}
		if err := r.apply(e, t, a, d); err != nil {
			return nil, err
		}
		return d, nil
	}
	// The last rule matches unconditionally.
	panic("triage: no rule matched")
}

// Apply writes the decision onto t. Entity creation for d.NewProject
// is the coordinator's job; Apply only mutates the task itself.
func (d *Decision) Apply(t *Task, projectID *string) {
	t.Status = d.Status
	sortedAt := d.SortedAt
	t.SortedAt = &sortedAt
	if d.Responsible != nil {
		t.Responsible = d.Responsible
	}
	if d.DueDatetime != nil {
		t.DueDatetime = d.DueDatetime
	}
	if d.CompletedAt != nil {
		t.CompletedAt = d.CompletedAt
	}
	if projectID != nil {
		t.ProjectID = projectID
	}
}
