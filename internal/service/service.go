package service

import (
	"context"
	"errors"
	"time"

	"cerulean_ambassador_bot/internal/model"
)

var (
	ErrSelfReferral      = errors.New("users cannot refer themselves")
	ErrAlreadyRegistered = errors.New("user is already registered")
	ErrAlreadyJoined     = errors.New("user already joined the contest this period")
	ErrAlreadyVerified   = errors.New("referral is already verified")
	ErrNothingToVerify   = errors.New("no pending referral to verify")
	ErrInvalidMode       = errors.New("invalid referral mode")
	ErrNotAdmin          = errors.New("admin access required")
)

// Options carries the program settings the services need.
type Options struct {
	BotUsername string
	AdminIDs    []int64
	GroupID     int64
}

type Service struct {
	*ReferralService
	*AmbassadorService
	*EngagementService
	*StatsService
}

func NewService(repo Repository, opts Options) *Service {
	return &Service{
		ReferralService:   NewReferralService(repo),
		AmbassadorService: NewAmbassadorService(repo, opts.BotUsername),
		EngagementService: NewEngagementService(repo, opts.GroupID),
		StatsService:      NewStatsService(repo, opts.AdminIDs),
	}
}

type ServiceI interface {
	ReferralServiceI
	AmbassadorServiceI
	EngagementServiceI
	StatsServiceI
}

type ReferralServiceI interface {
	RecordAttribution(ctx context.Context, attribution *model.Attribution) error
	Verify(ctx context.Context, verification *model.Verification) (*model.VerificationResult, error)
}

type ReferralRepository interface {
	CreateRegistration(ctx context.Context, reg *model.Registration) error
	CreateReferral(ctx context.Context, ref *model.Referral) error
	CompleteRegistration(ctx context.Context, userID int64, points int, at time.Time) (*model.Completion, error)
	CompleteReferral(ctx context.Context, userID int64, at time.Time) (*model.Completion, error)
}

type AmbassadorServiceI interface {
	Enroll(ctx context.Context, userID int64, username string) (*model.Enrollment, error)
	AmbassadorLink(userID int64) string
	ReferralLink(userID int64) string
}

type AmbassadorRepository interface {
	CreateAmbassador(ctx context.Context, amb *model.Ambassador) error
}

type EngagementServiceI interface {
	CountMessage(ctx context.Context, msg *model.ChatMessage) (bool, error)
}

type EngagementRepository interface {
	IncrementEngagement(ctx context.Context, userID int64, username, period string, at time.Time) (int, error)
}

type StatsServiceI interface {
	PersonalStats(ctx context.Context, userID int64) (*model.PersonalStats, error)
	ExportAmbassadors(ctx context.Context, requesterID int64) ([]byte, error)
	IsAdmin(userID int64) bool
}

type StatsRepository interface {
	GetAmbassador(ctx context.Context, userID int64) (*model.Ambassador, error)
	GetEngagement(ctx context.Context, userID int64, period string) (*model.Engagement, error)
	CountCompletedReferrals(ctx context.Context, referrerID string, period string) (int, error)
	ListAmbassadors(ctx context.Context) ([]*model.Ambassador, error)
}

type Repository interface {
	ReferralRepository
	AmbassadorRepository
	EngagementRepository
	StatsRepository
}
