package model

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Registration is the ambassador-mode attribution of a user to the
// ambassador whose link brought them in. One row per user, ever.
type Registration struct {
	UserID      int64
	ReferrerID  string
	Status      Status
	CreatedAt   time.Time
	CompletedAt *time.Time
}

type Ambassador struct {
	UserID    int64
	Username  string
	Points    int
	CreatedAt time.Time
}

type Enrollment struct {
	Ambassador *Ambassador
	Link       string
	Created    bool
}
