package task

import "time"

// Status is the triage output alphabet. Every status is set directly
// by the triage engine or the complete shortcut; none auto-advances.
type Status string

const (
	StatusInbox     Status = "inbox"
	StatusSomeday   Status = "someday"
	StatusToday     Status = "today"
	StatusCalendar  Status = "calendar"
	StatusDelegated Status = "delegated"
	StatusStorage   Status = "storage"
	StatusDone      Status = "done"
	StatusProject   Status = "project"
)

// Valid reports whether s is one of the known lifecycle statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusInbox, StatusSomeday, StatusToday, StatusCalendar,
		StatusDelegated, StatusStorage, StatusDone, StatusProject:
		return true
	}
	return false
}

type Task struct {
	ID            string     `db:"id" json:"id"`
	UserID        string     `db:"user_id" json:"-"`
	ProjectID     *string    `db:"project_id" json:"project_id,omitempty"`
	Text          string     `db:"text" json:"text"`
	Status        Status     `db:"status" json:"status"`
	IsKey         bool       `db:"is_key" json:"is_key"`
	IsGolden      bool       `db:"is_golden" json:"is_golden"`
	Responsible   *string    `db:"responsible" json:"responsible,omitempty"`
	DueDatetime   *time.Time `db:"due_datetime" json:"due_datetime,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	SortedAt      *time.Time `db:"sorted_at" json:"sorted_at,omitempty"`
	CompletedAt   *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	Collaborators []string   `db:"-" json:"collaborators"`
}

// Answers is the structured answer set driving one triage decision.
// Pointer fields distinguish "answered no" from "not asked": the
// cascade only takes a branch on an explicit answer.
type Answers struct {
	NeedAction       bool       `json:"need_action"`
	UrgentThisWeek   *bool      `json:"urgent_this_week,omitempty"`
	DoByMe           *bool      `json:"do_by_me,omitempty"`
	OneStep          *bool      `json:"one_step,omitempty"`
	CanDoNow         *bool      `json:"can_do_now,omitempty"`
	HasDatetime      *bool      `json:"has_datetime,omitempty"`
	Datetime         *time.Time `json:"datetime,omitempty"`
	Responsible      *string    `json:"responsible,omitempty"`
	ProjectOutcome   *string    `json:"project_outcome,omitempty"`
	ProjectSteps     *string    `json:"project_steps,omitempty"`
	ProjectFirstStep *string    `json:"project_first_step,omitempty"`
}
