package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cerulean_ambassador_bot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type Registration struct {
	UserID      int64      `db:"user_id"`
	ReferrerID  string     `db:"referrer_id"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

func createRegistrationQuery(reg *model.Registration) squirrel.InsertBuilder {
	return squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"user_id":     reg.UserID,
			"referrer_id": reg.ReferrerID,
			"status":      string(model.StatusPending),
			"created_at":  reg.CreatedAt,
		}).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)
}

// CreateRegistration inserts a pending registration. An existing row for the
// user is never overwritten; ErrAlreadyExists is returned instead.
func (r *Repository) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	query, args, err := createRegistrationQuery(reg).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build registration insert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert registration: %w", err)
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

func (r *Repository) GetRegistration(ctx context.Context, userID int64) (*model.Registration, error) {
	return r.getRegistration(ctx, r.db, userID)
}

func (r *Repository) getRegistration(ctx context.Context, q sqlx.QueryerContext, userID int64) (*model.Registration, error) {
	query, args, err := squirrel.
		Select("user_id", "referrer_id", "status", "created_at", "completed_at").
		From("users").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var reg Registration
	err = sqlx.GetContext(ctx, q, &reg, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.Registration{
		UserID:      reg.UserID,
		ReferrerID:  reg.ReferrerID,
		Status:      model.Status(reg.Status),
		CreatedAt:   reg.CreatedAt,
		CompletedAt: reg.CompletedAt,
	}, nil
}

func completeRegistrationQuery(userID int64, at time.Time) squirrel.UpdateBuilder {
	return squirrel.
		Update("users").
		Set("status", string(model.StatusCompleted)).
		Set("completed_at", at).
		Where(squirrel.Eq{
			"user_id": userID,
			"status":  string(model.StatusPending),
		}).
		Suffix("RETURNING referrer_id").
		PlaceholderFormat(squirrel.Dollar)
}

func creditAmbassadorQuery(referrerID string, points int) squirrel.UpdateBuilder {
	return squirrel.
		Update("ambassadors").
		Set("points", squirrel.Expr("points + ?", points)).
		Where(squirrel.Expr("user_id::text = ?", referrerID)).
		PlaceholderFormat(squirrel.Dollar)
}

// CompleteRegistration moves a pending registration to completed and, in the
// same transaction, credits the referring ambassador with points. The status
// guard in the UPDATE makes a repeated call a no-op that reports
// ErrAlreadyCompleted, so the referrer is credited at most once.
func (r *Repository) CompleteRegistration(ctx context.Context, userID int64, points int, at time.Time) (*model.Completion, error) {
	var completion *model.Completion

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := completeRegistrationQuery(userID, at).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build registration update query: %w", err)
		}

		var referrerID string
		err = tx.GetContext(ctx, &referrerID, query, args...)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to complete registration: %w", err)
			}

			reg, err := r.getRegistration(ctx, tx, userID)
			if err != nil {
				return err
			}
			if reg.Status == model.StatusCompleted {
				return ErrAlreadyCompleted
			}
			return ErrNotFound
		}

		creditQuery, creditArgs, err := creditAmbassadorQuery(referrerID, points).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build ambassador credit query: %w", err)
		}

		result, err := tx.ExecContext(ctx, creditQuery, creditArgs...)
		if err != nil {
			return fmt.Errorf("failed to credit ambassador: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}

		completion = &model.Completion{
			ReferrerID:  referrerID,
			CompletedAt: at,
			Credited:    rows > 0,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return completion, nil
}
