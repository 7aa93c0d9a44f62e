package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cerulean_ambassador_bot/internal/model"
	"cerulean_ambassador_bot/internal/period"
	"cerulean_ambassador_bot/internal/repository"
)

// ReferralReward is what an ambassador earns per verified registration.
const ReferralReward = 1

type ReferralService struct {
	repo ReferralRepository
	now  func() time.Time
}

func NewReferralService(repo ReferralRepository) *ReferralService {
	return &ReferralService{
		repo: repo,
		now:  time.Now,
	}
}

// RecordAttribution stores a pending registration (ambassador mode) or a
// pending contest entry for the current month (contest mode). Existing rows
// are terminal: they are never re-created or overwritten.
func (s *ReferralService) RecordAttribution(ctx context.Context, a *model.Attribution) error {
	if !a.Mode.Valid() {
		return ErrInvalidMode
	}

	if isSelfReferral(a.UserID, a.ReferrerID) {
		return ErrSelfReferral
	}

	now := s.now().UTC()

	switch a.Mode {
	case model.ModeAmbassador:
		err := s.repo.CreateRegistration(ctx, &model.Registration{
			UserID:     a.UserID,
			ReferrerID: a.ReferrerID,
			Status:     model.StatusPending,
			CreatedAt:  now,
		})
		if err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("failed to record registration: %w", err)
		}

	case model.ModeContest:
		err := s.repo.CreateReferral(ctx, &model.Referral{
			UserID:     a.UserID,
			ReferrerID: a.ReferrerID,
			Username:   a.Username,
			Status:     model.StatusPending,
			Period:     period.Month(now),
			CreatedAt:  now,
		})
		if err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				return ErrAlreadyJoined
			}
			return fmt.Errorf("failed to record referral: %w", err)
		}
	}

	return nil
}

// Verify completes the caller's pending referral. In ambassador mode the
// stored referrer gains ReferralReward points in the same storage
// transaction. In contest mode the user's newest pending entry is completed,
// whatever month it was recorded in; the completed row itself is the score.
func (s *ReferralService) Verify(ctx context.Context, v *model.Verification) (*model.VerificationResult, error) {
	now := s.now().UTC()

	var (
		completion *model.Completion
		err        error
	)

	switch v.Mode {
	case model.ModeAmbassador:
		completion, err = s.repo.CompleteRegistration(ctx, v.UserID, ReferralReward, now)
	case model.ModeContest:
		completion, err = s.repo.CompleteReferral(ctx, v.UserID, now)
	default:
		return nil, ErrInvalidMode
	}

	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNothingToVerify
		case errors.Is(err, repository.ErrAlreadyCompleted):
			return nil, ErrAlreadyVerified
		default:
			return nil, fmt.Errorf("failed to verify referral: %w", err)
		}
	}

	return &model.VerificationResult{
		Mode:       v.Mode,
		ReferrerID: completion.ReferrerID,
		Credited:   completion.Credited,
	}, nil
}

func isSelfReferral(userID int64, referrerID string) bool {
	referrerID = strings.TrimSpace(referrerID)
	if referrerID == strconv.FormatInt(userID, 10) {
		return true
	}

	id, err := strconv.ParseInt(referrerID, 10, 64)
	return err == nil && id == userID
}
