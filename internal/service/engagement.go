package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cerulean_ambassador_bot/internal/model"
	"cerulean_ambassador_bot/internal/period"
)

const (
	chatTypeGroup      = "group"
	chatTypeSupergroup = "supergroup"
)

type EngagementService struct {
	repo    EngagementRepository
	groupID int64
	now     func() time.Time
}

// NewEngagementService counts activity in every group the bot sits in, or
// only in groupID when it is non-zero.
func NewEngagementService(repo EngagementRepository, groupID int64) *EngagementService {
	return &EngagementService{
		repo:    repo,
		groupID: groupID,
		now:     time.Now,
	}
}

// CountMessage adds one to the sender's counter for the current ISO week if
// the message qualifies. It reports whether anything was written.
func (s *EngagementService) CountMessage(ctx context.Context, msg *model.ChatMessage) (bool, error) {
	if !s.qualifies(msg) {
		return false, nil
	}

	now := s.now().UTC()
	if _, err := s.repo.IncrementEngagement(ctx, msg.UserID, msg.Username, period.Week(now), now); err != nil {
		return false, fmt.Errorf("failed to count message: %w", err)
	}

	return true, nil
}

func (s *EngagementService) qualifies(msg *model.ChatMessage) bool {
	if msg == nil || msg.UserID == 0 || msg.IsBot || msg.IsCommand {
		return false
	}
	if msg.ChatType != chatTypeGroup && msg.ChatType != chatTypeSupergroup {
		return false
	}
	if s.groupID != 0 && msg.ChatID != s.groupID {
		return false
	}
	return strings.TrimSpace(msg.Text) != ""
}
