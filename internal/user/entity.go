package user

// User anchors ownership of tasks and projects. ExternalID is the
// stable identifier assigned by the chat platform; users are created
// lazily on the first request that names a new one.
type User struct {
	ID          string  `db:"id" json:"id"`
	ExternalID  string  `db:"external_id" json:"external_id"`
	Name        *string `db:"name" json:"name,omitempty"`
	GoldenHours *string `db:"golden_hours" json:"golden_hours,omitempty"`
}
