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

type Ambassador struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Points    int       `db:"points"`
	CreatedAt time.Time `db:"created_at"`
}

func (a Ambassador) toModel() *model.Ambassador {
	return &model.Ambassador{
		UserID:    a.UserID,
		Username:  a.Username,
		Points:    a.Points,
		CreatedAt: a.CreatedAt,
	}
}

func (r *Repository) CreateAmbassador(ctx context.Context, amb *model.Ambassador) error {
	query, args, err := squirrel.
		Insert("ambassadors").
		SetMap(map[string]interface{}{
			"user_id":    amb.UserID,
			"username":   amb.Username,
			"points":     0,
			"created_at": amb.CreatedAt,
		}).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build ambassador insert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert ambassador: %w", err)
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

func (r *Repository) GetAmbassador(ctx context.Context, userID int64) (*model.Ambassador, error) {
	query, args, err := squirrel.
		Select("user_id", "username", "points", "created_at").
		From("ambassadors").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var amb Ambassador
	err = r.db.GetContext(ctx, &amb, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return amb.toModel(), nil
}

func (r *Repository) ListAmbassadors(ctx context.Context) ([]*model.Ambassador, error) {
	query, args, err := squirrel.
		Select("user_id", "username", "points", "created_at").
		From("ambassadors").
		OrderBy("points DESC", "user_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var ambassadors []Ambassador
	if err := r.db.SelectContext(ctx, &ambassadors, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list ambassadors: %w", err)
	}

	out := make([]*model.Ambassador, len(ambassadors))
	for i, a := range ambassadors {
		out[i] = a.toModel()
	}

	return out, nil
}
