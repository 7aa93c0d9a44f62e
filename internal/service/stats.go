package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cerulean_ambassador_bot/internal/model"
	"cerulean_ambassador_bot/internal/period"
	"cerulean_ambassador_bot/internal/repository"
)

var exportHeader = []string{"User ID", "Username", "Points"}

type StatsService struct {
	repo   StatsRepository
	admins map[int64]struct{}
	now    func() time.Time
}

func NewStatsService(repo StatsRepository, adminIDs []int64) *StatsService {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}

	return &StatsService{
		repo:   repo,
		admins: admins,
		now:    time.Now,
	}
}

func (s *StatsService) IsAdmin(userID int64) bool {
	_, ok := s.admins[userID]
	return ok
}

// PersonalStats gathers what is known about the user. Missing rows leave the
// corresponding field nil (or zero) rather than failing.
func (s *StatsService) PersonalStats(ctx context.Context, userID int64) (*model.PersonalStats, error) {
	now := s.now().UTC()
	stats := &model.PersonalStats{
		UserID: userID,
		Week:   period.Week(now),
		Month:  period.Month(now),
	}

	amb, err := s.repo.GetAmbassador(ctx, userID)
	switch {
	case err == nil:
		points := amb.Points
		stats.AmbassadorPoints = &points
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to get ambassador: %w", err)
	}

	engagement, err := s.repo.GetEngagement(ctx, userID, stats.Week)
	switch {
	case err == nil:
		count := engagement.MessageCount
		stats.WeeklyMessages = &count
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to get engagement: %w", err)
	}

	referrals, err := s.repo.CountCompletedReferrals(ctx, strconv.FormatInt(userID, 10), stats.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to count contest referrals: %w", err)
	}
	stats.ContestReferrals = referrals

	return stats, nil
}

// ExportAmbassadors renders every ambassador as CSV. The allow-list is
// checked before storage is touched.
func (s *StatsService) ExportAmbassadors(ctx context.Context, requesterID int64) ([]byte, error) {
	if !s.IsAdmin(requesterID) {
		return nil, ErrNotAdmin
	}

	ambassadors, err := s.repo.ListAmbassadors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ambassadors: %w", err)
	}

	return EncodeAmbassadorsCSV(ambassadors)
}

func EncodeAmbassadorsCSV(ambassadors []*model.Ambassador) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, a := range ambassadors {
		record := []string{
			strconv.FormatInt(a.UserID, 10),
			a.Username,
			strconv.Itoa(a.Points),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}

	return buf.Bytes(), nil
}
