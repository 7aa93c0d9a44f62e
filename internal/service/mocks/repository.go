package mocks

import (
	"context"
	"time"

	"cerulean_ambassador_bot/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

func (m *MockRepository) CreateReferral(ctx context.Context, ref *model.Referral) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockRepository) CompleteRegistration(ctx context.Context, userID int64, points int, at time.Time) (*model.Completion, error) {
	args := m.Called(ctx, userID, points, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Completion), args.Error(1)
}

func (m *MockRepository) CompleteReferral(ctx context.Context, userID int64, at time.Time) (*model.Completion, error) {
	args := m.Called(ctx, userID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Completion), args.Error(1)
}

func (m *MockRepository) CreateAmbassador(ctx context.Context, amb *model.Ambassador) error {
	args := m.Called(ctx, amb)
	return args.Error(0)
}

func (m *MockRepository) GetAmbassador(ctx context.Context, userID int64) (*model.Ambassador, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ambassador), args.Error(1)
}

func (m *MockRepository) ListAmbassadors(ctx context.Context) ([]*model.Ambassador, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ambassador), args.Error(1)
}

func (m *MockRepository) IncrementEngagement(ctx context.Context, userID int64, username, period string, at time.Time) (int, error) {
	args := m.Called(ctx, userID, username, period, at)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetEngagement(ctx context.Context, userID int64, period string) (*model.Engagement, error) {
	args := m.Called(ctx, userID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Engagement), args.Error(1)
}

func (m *MockRepository) CountCompletedReferrals(ctx context.Context, referrerID string, period string) (int, error) {
	args := m.Called(ctx, referrerID, period)
	return args.Int(0), args.Error(1)
}
