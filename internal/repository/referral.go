package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cerulean_ambassador_bot/internal/model"

	"github.com/Masterminds/squirrel"
)

type Referral struct {
	UserID      int64      `db:"user_id"`
	ReferrerID  string     `db:"referrer_id"`
	Username    string     `db:"username"`
	Status      string     `db:"status"`
	Period      string     `db:"period"`
	CreatedAt   time.Time  `db:"created_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

func createReferralQuery(ref *model.Referral) squirrel.InsertBuilder {
	return squirrel.
		Insert("referrals").
		SetMap(map[string]interface{}{
			"user_id":     ref.UserID,
			"referrer_id": ref.ReferrerID,
			"username":    ref.Username,
			"status":      string(model.StatusPending),
			"period":      ref.Period,
			"created_at":  ref.CreatedAt,
		}).
		Suffix("ON CONFLICT (user_id, period) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)
}

// CreateReferral records a pending contest entry for the referral's period.
// ErrAlreadyExists means the user already has an entry for that period.
func (r *Repository) CreateReferral(ctx context.Context, ref *model.Referral) error {
	query, args, err := createReferralQuery(ref).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build referral insert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert referral: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrAlreadyExists
	}

	return nil
}

// latestReferral returns the user's contest entry with the most recent period.
func (r *Repository) latestReferral(ctx context.Context, userID int64) (*model.Referral, error) {
	query, args, err := squirrel.
		Select("user_id", "referrer_id", "username", "status", "period", "created_at", "completed_at").
		From("referrals").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("period DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var ref Referral
	err = r.db.GetContext(ctx, &ref, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.Referral{
		UserID:      ref.UserID,
		ReferrerID:  ref.ReferrerID,
		Username:    ref.Username,
		Status:      model.Status(ref.Status),
		Period:      ref.Period,
		CreatedAt:   ref.CreatedAt,
		CompletedAt: ref.CompletedAt,
	}, nil
}

// completeReferralQuery targets the user's newest pending entry, so a verify
// pressed after the month rolled over still finds last month's row.
func completeReferralQuery(userID int64, at time.Time) squirrel.UpdateBuilder {
	return squirrel.
		Update("referrals").
		Set("status", string(model.StatusCompleted)).
		Set("completed_at", at).
		Where(squirrel.Eq{
			"user_id": userID,
			"status":  string(model.StatusPending),
		}).
		Where("period = (SELECT MAX(period) FROM referrals WHERE user_id = ? AND status = ?)",
			userID, string(model.StatusPending)).
		Suffix("RETURNING referrer_id, period").
		PlaceholderFormat(squirrel.Dollar)
}

// CompleteReferral marks the user's newest pending contest entry completed.
// It does not touch ambassador points.
func (r *Repository) CompleteReferral(ctx context.Context, userID int64, at time.Time) (*model.Completion, error) {
	query, args, err := completeReferralQuery(userID, at).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build referral update query: %w", err)
	}

	var completed struct {
		ReferrerID string `db:"referrer_id"`
		Period     string `db:"period"`
	}
	err = r.db.GetContext(ctx, &completed, query, args...)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to complete referral: %w", err)
		}

		ref, err := r.latestReferral(ctx, userID)
		if err != nil {
			return nil, err
		}
		if ref.Status == model.StatusCompleted {
			return nil, ErrAlreadyCompleted
		}
		return nil, ErrNotFound
	}

	return &model.Completion{
		ReferrerID:  completed.ReferrerID,
		Period:      completed.Period,
		CompletedAt: at,
	}, nil
}

func (r *Repository) CountCompletedReferrals(ctx context.Context, referrerID string, period string) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("referrals").
		Where(squirrel.Eq{
			"referrer_id": referrerID,
			"period":      period,
			"status":      string(model.StatusCompleted),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build referral count query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", err)
	}

	return count, nil
}
