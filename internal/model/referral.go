package model

import "time"

type Mode string

const (
	ModeNone       Mode = ""
	ModeAmbassador Mode = "amb"
	ModeContest    Mode = "ref"
)

func (m Mode) Valid() bool {
	return m == ModeAmbassador || m == ModeContest
}

// Referral is a monthly contest entry. Unique per (UserID, Period).
type Referral struct {
	UserID      int64
	ReferrerID  string
	Username    string
	Status      Status
	Period      string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

type Attribution struct {
	UserID     int64
	Username   string
	ReferrerID string
	Mode       Mode
}

type Verification struct {
	UserID     int64
	ReferrerID string
	Mode       Mode
}

type VerificationResult struct {
	Mode       Mode
	ReferrerID string
	// Credited is true when an ambassador row received the referral point.
	Credited bool
}

// Completion is what storage reports after a pending row moved to completed.
type Completion struct {
	ReferrerID string
	// Period is set for contest entries.
	Period      string
	CompletedAt time.Time
	Credited    bool
}
