package db

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	md "github.com/JMURv/session-keeper/internal/models"
	"github.com/JMURv/session-keeper/internal/repo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRepository_CreateSession(t *testing.T) {
	r, mock := newMockRepo(t)
	sid := uuid.New()
	now := time.Now()
	s := &md.Session{
		UserID:     uuid.New(),
		Name:       "Windows 10 - Windows",
		DeviceType: "desktop",
		OS:         "Windows 10",
		Browser:    "Chrome",
		UA:         "Mozilla/5.0",
		IP:         "10.0.0.1",
		Token:      "token",
	}

	mock.ExpectQuery(regexp.QuoteMeta(sessionCreateQ)).
		WithArgs(s.UserID, s.Name, s.DeviceType, s.OS, s.Browser, s.UA, s.IP, s.Token).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(sid.String(), now))

	assert.NoError(t, r.CreateSession(context.Background(), s))
	assert.Equal(t, sid, s.ID)
	assert.Equal(t, now, s.CreatedAt)
	assert.True(t, s.IsValid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListSessions(t *testing.T) {
	r, mock := newMockRepo(t)
	uid := uuid.New()
	cols := []string{"id", "user_id", "name", "device_type", "os", "browser", "user_agent", "ip", "is_valid", "created_at"}
	first, second := uuid.New(), uuid.New()
	now := time.Now()

	tests := []struct {
		name        string
		mock        func()
		expected    []uuid.UUID
		expectedErr error
	}{
		{
			name: "Success",
			mock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(sessionListQ)).
					WithArgs(uid).
					WillReturnRows(
						sqlmock.NewRows(cols).
							AddRow(first.String(), uid.String(), "a", "desktop", "Linux", "Firefox", "ua", "1.1.1.1", true, now).
							AddRow(second.String(), uid.String(), "b", "mobile", "iOS", "Safari", "ua", "1.1.1.2", true, now.Add(time.Second)),
					)
			},
			expected: []uuid.UUID{first, second},
		},
		{
			name: "Empty",
			mock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(sessionListQ)).
					WithArgs(uid).
					WillReturnRows(sqlmock.NewRows(cols))
			},
			expected: []uuid.UUID{},
		},
		{
			name: "Error",
			mock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(sessionListQ)).
					WithArgs(uid).
					WillReturnError(errors.New("db error"))
			},
			expectedErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				tt.mock()
				res, err := r.ListSessions(context.Background(), uid)
				if tt.expectedErr != nil {
					assert.EqualError(t, err, tt.expectedErr.Error())
					assert.Nil(t, res)
					return
				}

				assert.NoError(t, err)
				assert.NotNil(t, res)
				ids := make([]uuid.UUID, 0, len(res))
				for _, s := range res {
					ids = append(ids, s.ID)
				}
				assert.Equal(t, tt.expected, ids)
			},
		)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_RevokeSession(t *testing.T) {
	r, mock := newMockRepo(t)
	uid, sid := uuid.New(), uuid.New()

	tests := []struct {
		name        string
		affected    int64
		expectedErr error
	}{
		{name: "Revoked", affected: 1},
		{name: "NotFoundOrForeign", affected: 0, expectedErr: repo.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				mock.ExpectExec(regexp.QuoteMeta(sessionRevokeQ)).
					WithArgs(sid, uid).
					WillReturnResult(sqlmock.NewResult(0, tt.affected))

				err := r.RevokeSession(context.Background(), uid, sid)
				assert.ErrorIs(t, err, tt.expectedErr)
			},
		)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_RevokeAllSessions(t *testing.T) {
	r, mock := newMockRepo(t)
	uid := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(sessionRevokeAllQ)).
		WithArgs(uid).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, r.RevokeAllSessions(context.Background(), uid))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_IsSessionLive(t *testing.T) {
	r, mock := newMockRepo(t)
	token := "token"

	tests := []struct {
		name        string
		mock        func()
		expected    bool
		expectedErr error
	}{
		{
			name: "Live",
			mock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(sessionIsLiveQ)).
					WithArgs(token).
					WillReturnRows(sqlmock.NewRows([]string{"is_valid"}).AddRow(true))
			},
			expected: true,
		},
		{
			name: "Revoked",
			mock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(sessionIsLiveQ)).
					WithArgs(token).
					WillReturnRows(sqlmock.NewRows([]string{"is_valid"}).AddRow(false))
			},
			expected: false,
		},
		{
			name: "Unknown",
			mock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(sessionIsLiveQ)).
					WithArgs(token).
					WillReturnError(sql.ErrNoRows)
			},
			expected: false,
		},
		{
			name: "StorageUnavailable",
			mock: func() {
				mock.ExpectQuery(regexp.QuoteMeta(sessionIsLiveQ)).
					WithArgs(token).
					WillReturnError(errConnRefused)
				mock.ExpectQuery(regexp.QuoteMeta(sessionIsLiveQ)).
					WithArgs(token).
					WillReturnError(errConnRefused)
			},
			expected:    false,
			expectedErr: repo.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				tt.mock()
				live, err := r.IsSessionLive(context.Background(), token)
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Equal(t, tt.expected, live)
			},
		)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}
