package model

import "time"

type Engagement struct {
	UserID        int64
	Username      string
	MessageCount  int
	Period        string
	LastMessageAt time.Time
}

// ChatMessage is the slice of an inbound message the engagement counter needs.
type ChatMessage struct {
	ChatID    int64
	ChatType  string
	UserID    int64
	Username  string
	Text      string
	IsCommand bool
	IsBot     bool
}

type PersonalStats struct {
	UserID           int64
	AmbassadorPoints *int
	WeeklyMessages   *int
	Week             string
	ContestReferrals int
	Month            string
}
