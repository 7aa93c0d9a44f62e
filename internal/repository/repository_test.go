package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"cerulean_ambassador_bot/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	completeRegistrationSQL = regexp.QuoteMeta("UPDATE users SET status = $1, completed_at = $2 WHERE status = $3 AND user_id = $4 RETURNING referrer_id")
	selectRegistrationSQL   = regexp.QuoteMeta("SELECT user_id, referrer_id, status, created_at, completed_at FROM users WHERE user_id = $1")
	creditAmbassadorSQL     = regexp.QuoteMeta("UPDATE ambassadors SET points = points + $1 WHERE user_id::text = $2")
	completeReferralSQL     = regexp.QuoteMeta("UPDATE referrals SET status = $1, completed_at = $2")
	latestReferralSQL       = regexp.QuoteMeta("FROM referrals WHERE user_id = $1 ORDER BY period DESC LIMIT 1")

	registrationColumns = []string{"user_id", "referrer_id", "status", "created_at", "completed_at"}
	referralColumns     = []string{"user_id", "referrer_id", "username", "status", "period", "created_at", "completed_at"}
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &Repository{db: sqlx.NewDb(db, "pgx")}, mock
}

func TestRepository_CompleteRegistration(t *testing.T) {
	at := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)
	created := at.Add(-time.Hour)

	tests := []struct {
		name          string
		mockSetup     func(mock sqlmock.Sqlmock)
		expected      *model.Completion
		expectedError error
	}{
		{
			name: "Pending registration credits the ambassador",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(completeRegistrationSQL).
					WithArgs("completed", at, "pending", int64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"referrer_id"}).AddRow("2"))
				mock.ExpectExec(creditAmbassadorSQL).
					WithArgs(1, "2").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			expected: &model.Completion{ReferrerID: "2", CompletedAt: at, Credited: true},
		},
		{
			name: "Referrer who is not an ambassador completes without credit",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(completeRegistrationSQL).
					WillReturnRows(sqlmock.NewRows([]string{"referrer_id"}).AddRow("garbage"))
				mock.ExpectExec(creditAmbassadorSQL).
					WithArgs(1, "garbage").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
			expected: &model.Completion{ReferrerID: "garbage", CompletedAt: at, Credited: false},
		},
		{
			name: "Second verify issues no credit and rolls back",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(completeRegistrationSQL).
					WillReturnRows(sqlmock.NewRows([]string{"referrer_id"}))
				mock.ExpectQuery(selectRegistrationSQL).
					WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows(registrationColumns).AddRow(int64(1), "2", "completed", created, at))
				mock.ExpectRollback()
			},
			expectedError: ErrAlreadyCompleted,
		},
		{
			name: "No registration",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(completeRegistrationSQL).
					WillReturnRows(sqlmock.NewRows([]string{"referrer_id"}))
				mock.ExpectQuery(selectRegistrationSQL).
					WillReturnRows(sqlmock.NewRows(registrationColumns))
				mock.ExpectRollback()
			},
			expectedError: ErrNotFound,
		},
		{
			name: "Credit failure rolls back the completion",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(completeRegistrationSQL).
					WillReturnRows(sqlmock.NewRows([]string{"referrer_id"}).AddRow("2"))
				mock.ExpectExec(creditAmbassadorSQL).
					WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			expectedError: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.mockSetup(mock)

			completion, err := repo.CompleteRegistration(context.Background(), 1, 1, at)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, completion)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, completion)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_CompleteRegistration_TwiceCreditsOnce(t *testing.T) {
	at := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(completeRegistrationSQL).
		WillReturnRows(sqlmock.NewRows([]string{"referrer_id"}).AddRow("2"))
	mock.ExpectExec(creditAmbassadorSQL).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(completeRegistrationSQL).
		WillReturnRows(sqlmock.NewRows([]string{"referrer_id"}))
	mock.ExpectQuery(selectRegistrationSQL).
		WillReturnRows(sqlmock.NewRows(registrationColumns).AddRow(int64(1), "2", "completed", at, at))
	mock.ExpectRollback()

	first, err := repo.CompleteRegistration(context.Background(), 1, 1, at)
	require.NoError(t, err)
	assert.True(t, first.Credited)

	second, err := repo.CompleteRegistration(context.Background(), 1, 1, at)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Nil(t, second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CompleteReferral(t *testing.T) {
	at := time.Date(2026, time.February, 1, 0, 1, 0, 0, time.UTC)
	created := time.Date(2026, time.January, 31, 23, 59, 0, 0, time.UTC)

	tests := []struct {
		name          string
		mockSetup     func(mock sqlmock.Sqlmock)
		expected      *model.Completion
		expectedError error
	}{
		{
			name: "Entry from the previous month is completed",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(completeReferralSQL).
					WithArgs("completed", at, "pending", int64(3), int64(3), "pending").
					WillReturnRows(sqlmock.NewRows([]string{"referrer_id", "period"}).AddRow("9", "2026-M01"))
			},
			expected: &model.Completion{ReferrerID: "9", Period: "2026-M01", CompletedAt: at},
		},
		{
			name: "Already verified",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(completeReferralSQL).
					WillReturnRows(sqlmock.NewRows([]string{"referrer_id", "period"}))
				mock.ExpectQuery(latestReferralSQL).
					WithArgs(int64(3)).
					WillReturnRows(sqlmock.NewRows(referralColumns).
						AddRow(int64(3), "9", "carol", "completed", "2026-M01", created, at))
			},
			expectedError: ErrAlreadyCompleted,
		},
		{
			name: "No contest entry",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(completeReferralSQL).
					WillReturnRows(sqlmock.NewRows([]string{"referrer_id", "period"}))
				mock.ExpectQuery(latestReferralSQL).
					WillReturnRows(sqlmock.NewRows(referralColumns))
			},
			expectedError: ErrNotFound,
		},
		{
			name: "Storage failure",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(completeReferralSQL).WillReturnError(assert.AnError)
			},
			expectedError: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			tt.mockSetup(mock)

			completion, err := repo.CompleteReferral(context.Background(), 3, at)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, completion)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, completion)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_CreateNeverOverwrites(t *testing.T) {
	now := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)

	creates := []struct {
		name   string
		insert string
		create func(repo *Repository) error
	}{
		{
			name:   "Registration",
			insert: "INSERT INTO users",
			create: func(repo *Repository) error {
				return repo.CreateRegistration(context.Background(), &model.Registration{UserID: 1, ReferrerID: "2", CreatedAt: now})
			},
		},
		{
			name:   "Contest referral",
			insert: "INSERT INTO referrals",
			create: func(repo *Repository) error {
				return repo.CreateReferral(context.Background(), &model.Referral{UserID: 1, ReferrerID: "2", Period: "2026-M01", CreatedAt: now})
			},
		},
		{
			name:   "Ambassador",
			insert: "INSERT INTO ambassadors",
			create: func(repo *Repository) error {
				return repo.CreateAmbassador(context.Background(), &model.Ambassador{UserID: 1, Username: "alice", CreatedAt: now})
			},
		},
	}

	for _, c := range creates {
		t.Run(c.name+" inserted", func(t *testing.T) {
			repo, mock := newMockRepository(t)
			mock.ExpectExec(regexp.QuoteMeta(c.insert) + ".*ON CONFLICT .* DO NOTHING").
				WillReturnResult(sqlmock.NewResult(0, 1))

			assert.NoError(t, c.create(repo))
			assert.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run(c.name+" already exists", func(t *testing.T) {
			repo, mock := newMockRepository(t)
			mock.ExpectExec(regexp.QuoteMeta(c.insert) + ".*ON CONFLICT .* DO NOTHING").
				WillReturnResult(sqlmock.NewResult(0, 0))

			assert.ErrorIs(t, c.create(repo), ErrAlreadyExists)
			assert.NoError(t, mock.ExpectationsWereMet())
		})

		t.Run(c.name+" storage failure", func(t *testing.T) {
			repo, mock := newMockRepository(t)
			mock.ExpectExec(regexp.QuoteMeta(c.insert)).WillReturnError(assert.AnError)

			err := c.create(repo)
			assert.ErrorIs(t, err, assert.AnError)
			assert.NotErrorIs(t, err, ErrAlreadyExists)
		})
	}
}
