package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cerulean_ambassador_bot/internal/deeplink"
	"cerulean_ambassador_bot/internal/model"
	"cerulean_ambassador_bot/internal/repository"
)

type AmbassadorService struct {
	repo        AmbassadorRepository
	botUsername string
	now         func() time.Time
}

func NewAmbassadorService(repo AmbassadorRepository, botUsername string) *AmbassadorService {
	return &AmbassadorService{
		repo:        repo,
		botUsername: botUsername,
		now:         time.Now,
	}
}

// Enroll opts the user into the ambassador program with zero points. An
// existing ambassador is left untouched and gets Created == false.
func (s *AmbassadorService) Enroll(ctx context.Context, userID int64, username string) (*model.Enrollment, error) {
	amb := &model.Ambassador{
		UserID:    userID,
		Username:  username,
		CreatedAt: s.now().UTC(),
	}

	enrollment := &model.Enrollment{
		Ambassador: amb,
		Link:       s.AmbassadorLink(userID),
		Created:    true,
	}

	err := s.repo.CreateAmbassador(ctx, amb)
	if err != nil {
		if !errors.Is(err, repository.ErrAlreadyExists) {
			return nil, fmt.Errorf("failed to enroll ambassador: %w", err)
		}
		enrollment.Created = false
	}

	return enrollment, nil
}

func (s *AmbassadorService) AmbassadorLink(userID int64) string {
	return deeplink.StartLink(s.botUsername, deeplink.AmbassadorToken(userID))
}

func (s *AmbassadorService) ReferralLink(userID int64) string {
	return deeplink.StartLink(s.botUsername, deeplink.ContestToken(userID))
}
