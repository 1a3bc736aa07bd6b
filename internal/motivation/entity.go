package motivation

type Kind string

const (
	KindPraise Kind = "praise"
	KindNudge  Kind = "nudge"
)

// Message is a static lookup row picked at random by the stats
// reporter. Rows are seeded at process start and never mutated by
// user action.
type Message struct {
	ID   string `db:"id"`
	Kind Kind   `db:"kind"`
	Text string `db:"text"`
}
