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

type Engagement struct {
	UserID        int64     `db:"user_id"`
	Username      string    `db:"username"`
	MessageCount  int       `db:"message_count"`
	Period        string    `db:"period"`
	LastMessageAt time.Time `db:"last_message_at"`
}

func incrementEngagementQuery(userID int64, username, period string, at time.Time) squirrel.InsertBuilder {
	return squirrel.
		Insert("engagement").
		Columns("user_id", "username", "message_count", "period", "last_message_at").
		Values(userID, username, 1, period, at).
		Suffix("ON CONFLICT (user_id, period) DO UPDATE SET " +
			"message_count = engagement.message_count + 1, " +
			"last_message_at = EXCLUDED.last_message_at, " +
			"username = EXCLUDED.username " +
			"RETURNING message_count").
		PlaceholderFormat(squirrel.Dollar)
}

// IncrementEngagement bumps the (user, period) message counter by one,
// creating the row on first use, and returns the new count.
func (r *Repository) IncrementEngagement(ctx context.Context, userID int64, username, period string, at time.Time) (int, error) {
	query, args, err := incrementEngagementQuery(userID, username, period, at).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build engagement upsert query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to increment engagement: %w", err)
	}

	return count, nil
}

func (r *Repository) GetEngagement(ctx context.Context, userID int64, period string) (*model.Engagement, error) {
	query, args, err := squirrel.
		Select("user_id", "username", "message_count", "period", "last_message_at").
		From("engagement").
		Where(squirrel.Eq{
			"user_id": userID,
			"period":  period,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var e Engagement
	err = r.db.GetContext(ctx, &e, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.Engagement{
		UserID:        e.UserID,
		Username:      e.Username,
		MessageCount:  e.MessageCount,
		Period:        e.Period,
		LastMessageAt: e.LastMessageAt,
	}, nil
}
