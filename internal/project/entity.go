package project

// Project is a multi-step outcome spun off a task the triage engine
// judged not completable in one step. Immutable once created.
type Project struct {
	ID        string  `db:"id" json:"id"`
	UserID    string  `db:"user_id" json:"-"`
	Title     string  `db:"title" json:"title"`
	Outcome   string  `db:"outcome" json:"outcome"`
	Steps     *string `db:"steps" json:"steps,omitempty"`
	FirstStep *string `db:"first_step" json:"first_step,omitempty"`
}
