package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"cerulean_ambassador_bot/internal/model"
	"cerulean_ambassador_bot/internal/repository"
	"cerulean_ambassador_bot/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestStatsService_PersonalStats(t *testing.T) {
	tests := []struct {
		name          string
		mockSetup     func(mockRepo *mocks.MockRepository)
		expected      *model.PersonalStats
		expectedError error
	}{
		{
			name: "Ambassador with weekly activity",
			mockSetup: func(mockRepo *mocks.MockRepository) {
				mockRepo.On("GetAmbassador", mock.Anything, int64(7)).
					Return(&model.Ambassador{UserID: 7, Points: 12}, nil)
				mockRepo.On("GetEngagement", mock.Anything, int64(7), "2026-W03").
					Return(&model.Engagement{UserID: 7, MessageCount: 40}, nil)
				mockRepo.On("CountCompletedReferrals", mock.Anything, "7", "2026-M01").Return(3, nil)
			},
			expected: &model.PersonalStats{
				UserID:           7,
				AmbassadorPoints: intPtr(12),
				WeeklyMessages:   intPtr(40),
				Week:             "2026-W03",
				ContestReferrals: 3,
				Month:            "2026-M01",
			},
		},
		{
			name: "Unknown user",
			mockSetup: func(mockRepo *mocks.MockRepository) {
				mockRepo.On("GetAmbassador", mock.Anything, int64(7)).Return(nil, repository.ErrNotFound)
				mockRepo.On("GetEngagement", mock.Anything, int64(7), "2026-W03").Return(nil, repository.ErrNotFound)
				mockRepo.On("CountCompletedReferrals", mock.Anything, "7", "2026-M01").Return(0, nil)
			},
			expected: &model.PersonalStats{
				UserID: 7,
				Week:   "2026-W03",
				Month:  "2026-M01",
			},
		},
		{
			name: "Ambassador lookup fails",
			mockSetup: func(mockRepo *mocks.MockRepository) {
				mockRepo.On("GetAmbassador", mock.Anything, int64(7)).Return(nil, assert.AnError)
			},
			expectedError: assert.AnError,
		},
		{
			name: "Referral count fails",
			mockSetup: func(mockRepo *mocks.MockRepository) {
				mockRepo.On("GetAmbassador", mock.Anything, int64(7)).Return(nil, repository.ErrNotFound)
				mockRepo.On("GetEngagement", mock.Anything, int64(7), "2026-W03").Return(nil, repository.ErrNotFound)
				mockRepo.On("CountCompletedReferrals", mock.Anything, "7", "2026-M01").Return(0, assert.AnError)
			},
			expectedError: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockRepository{}
			service := NewStatsService(mockRepo, nil)
			service.now = fixedClock

			tt.mockSetup(mockRepo)

			stats, err := service.PersonalStats(context.Background(), 7)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, stats)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, stats)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestStatsService_ExportAmbassadors(t *testing.T) {
	ambassadors := []*model.Ambassador{
		{UserID: 1, Username: "alice", Points: 5},
		{UserID: 2, Username: "bob", Points: 0},
		{UserID: 3, Username: "", Points: 2},
	}

	t.Run("Admin receives header and one row per ambassador", func(t *testing.T) {
		mockRepo := &mocks.MockRepository{}
		service := NewStatsService(mockRepo, []int64{99})

		mockRepo.On("ListAmbassadors", mock.Anything).Return(ambassadors, nil)

		data, err := service.ExportAmbassadors(context.Background(), 99)
		require.NoError(t, err)

		assert.Equal(t, "User ID,Username,Points\n1,alice,5\n2,bob,0\n3,,2\n", string(data))

		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		require.NoError(t, err)
		assert.Len(t, records, len(ambassadors)+1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Non-admin never touches storage", func(t *testing.T) {
		mockRepo := &mocks.MockRepository{}
		service := NewStatsService(mockRepo, []int64{99})

		data, err := service.ExportAmbassadors(context.Background(), 100)

		assert.ErrorIs(t, err, ErrNotAdmin)
		assert.Nil(t, data)
		mockRepo.AssertNotCalled(t, "ListAmbassadors", mock.Anything)
	})

	t.Run("Empty program exports only the header", func(t *testing.T) {
		mockRepo := &mocks.MockRepository{}
		service := NewStatsService(mockRepo, []int64{99})

		mockRepo.On("ListAmbassadors", mock.Anything).Return([]*model.Ambassador{}, nil)

		data, err := service.ExportAmbassadors(context.Background(), 99)
		require.NoError(t, err)
		assert.Equal(t, "User ID,Username,Points\n", string(data))
	})

	t.Run("Storage failure", func(t *testing.T) {
		mockRepo := &mocks.MockRepository{}
		service := NewStatsService(mockRepo, []int64{99})

		mockRepo.On("ListAmbassadors", mock.Anything).Return(nil, assert.AnError)

		_, err := service.ExportAmbassadors(context.Background(), 99)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestEncodeAmbassadorsCSV_QuotesUsernames(t *testing.T) {
	data, err := EncodeAmbassadorsCSV([]*model.Ambassador{{UserID: 4, Username: "a,b", Points: 1}})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"User ID", "Username", "Points"}, {"4", "a,b", "1"}}, records)
}

func TestStatsService_IsAdmin(t *testing.T) {
	service := NewStatsService(&mocks.MockRepository{}, []int64{1, 2})

	assert.True(t, service.IsAdmin(1))
	assert.True(t, service.IsAdmin(2))
	assert.False(t, service.IsAdmin(3))
}
