package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JMURv/session-keeper/internal/auth/jwt"
	"github.com/JMURv/session-keeper/internal/ctrl"
	"github.com/JMURv/session-keeper/internal/dto"
	md "github.com/JMURv/session-keeper/internal/models"
	"github.com/JMURv/session-keeper/tests/mocks"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHandler_Register(t *testing.T) {
	mock := gomock.NewController(t)
	mctrl := mocks.NewMockAppCtrl(mock)
	h := New(mctrl)

	payload := map[string]any{
		"email":       "ann@example.com",
		"password":    "password123",
		"fullName":    "Ann Example",
		"dateOfBirth": "1990-01-02T00:00:00Z",
		"address":     "1 Main St",
	}

	tests := []struct {
		name    string
		payload any
		status  int
		expect  func()
	}{
		{
			name:    "MissingFields",
			payload: map[string]any{"email": "ann@example.com"},
			status:  http.StatusBadRequest,
			expect:  func() {},
		},
		{
			name:    "DuplicateIdentity",
			payload: payload,
			status:  http.StatusBadRequest,
			expect: func() {
				mctrl.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, ctrl.ErrDuplicateIdentity)
			},
		},
		{
			name:    "Created",
			payload: payload,
			status:  http.StatusCreated,
			expect: func() {
				mctrl.EXPECT().Register(gomock.Any(), gomock.Any()).Return(&dto.CreateUserResponse{ID: uuid.New()}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				tt.expect()
				w := httptest.NewRecorder()
				h.ServeHTTP(w, newRequest(t, http.MethodPost, "/register", tt.payload, ""))
				assert.Equal(t, tt.status, w.Code)
			},
		)
	}
}

func TestHandler_Users(t *testing.T) {
	mock := gomock.NewController(t)
	mctrl := mocks.NewMockAppCtrl(mock)
	h := New(mctrl)

	uid := uuid.New()
	uri := "/users/" + uid.String()
	authorized := func() {
		mctrl.EXPECT().Validate(gomock.Any(), testToken).Return(jwt.Claims{UID: uid}, nil)
	}

	t.Run(
		"Get", func(t *testing.T) {
			authorized()
			mctrl.EXPECT().GetUserByID(gomock.Any(), uid).Return(
				&md.User{ID: uid, Email: "ann@example.com", Password: "$2a$hash"}, nil,
			)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, newRequest(t, http.MethodGet, uri, nil, testToken))
			require.Equal(t, http.StatusOK, w.Code)
			assert.NotContains(t, w.Body.String(), "$2a$hash")
		},
	)

	t.Run(
		"GetNotFound", func(t *testing.T) {
			authorized()
			mctrl.EXPECT().GetUserByID(gomock.Any(), uid).Return(nil, ctrl.ErrUserNotFound)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, newRequest(t, http.MethodGet, uri, nil, testToken))
			assert.Equal(t, http.StatusNotFound, w.Code)
		},
	)

	t.Run(
		"UpdateForeignProfile", func(t *testing.T) {
			mctrl.EXPECT().Validate(gomock.Any(), testToken).Return(jwt.Claims{UID: uuid.New()}, nil)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, newRequest(t, http.MethodPut, uri, map[string]any{}, testToken))
			assert.Equal(t, http.StatusForbidden, w.Code)
		},
	)

	t.Run(
		"Update", func(t *testing.T) {
			authorized()
			mctrl.EXPECT().UpdateUser(gomock.Any(), uid, gomock.Any()).Return(nil)

			w := httptest.NewRecorder()
			h.ServeHTTP(
				w, newRequest(
					t, http.MethodPut, uri, map[string]any{
						"fullName":    "Ann Updated",
						"dateOfBirth": "1990-01-02T00:00:00Z",
						"address":     "2 Main St",
					}, testToken,
				),
			)
			assert.Equal(t, http.StatusOK, w.Code)
		},
	)
}

func TestHandler_Accounts(t *testing.T) {
	mock := gomock.NewController(t)
	mctrl := mocks.NewMockAppCtrl(mock)
	h := New(mctrl)

	uid, aid := uuid.New(), uuid.New()
	authorized := func() {
		mctrl.EXPECT().Validate(gomock.Any(), testToken).Return(jwt.Claims{UID: uid}, nil)
	}

	t.Run(
		"Create", func(t *testing.T) {
			authorized()
			mctrl.EXPECT().CreateAccount(
				gomock.Any(), uid,
				&dto.CreateAccountRequest{AccountType: "bank", Email: "ann@bank.example", Secret: "s3cret"},
			).Return(&dto.CreateAccountResponse{ID: aid}, nil)

			w := httptest.NewRecorder()
			h.ServeHTTP(
				w, newRequest(
					t, http.MethodPost, "/accounts",
					map[string]any{"accountType": "bank", "email": "ann@bank.example", "secret": "s3cret"}, testToken,
				),
			)
			assert.Equal(t, http.StatusCreated, w.Code)
		},
	)

	t.Run(
		"List", func(t *testing.T) {
			authorized()
			mctrl.EXPECT().ListAccounts(gomock.Any(), uid).Return(
				[]md.Account{{ID: aid, UserID: uid, AccountType: "bank", Secret: "ciphertext"}}, nil,
			)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, newRequest(t, http.MethodGet, "/accounts", nil, testToken))
			require.Equal(t, http.StatusOK, w.Code)
			assert.NotContains(t, w.Body.String(), "ciphertext")
		},
	)

	t.Run(
		"Reveal", func(t *testing.T) {
			authorized()
			mctrl.EXPECT().RevealAccount(gomock.Any(), uid, aid).Return(&dto.RevealAccountResponse{Secret: "s3cret"}, nil)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, newRequest(t, http.MethodPost, "/accounts/"+aid.String()+"/reveal", nil, testToken))
			require.Equal(t, http.StatusOK, w.Code)

			res := struct {
				Data dto.RevealAccountResponse `json:"data"`
			}{}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
			assert.Equal(t, "s3cret", res.Data.Secret)
		},
	)

	t.Run(
		"DeleteNotFound", func(t *testing.T) {
			authorized()
			mctrl.EXPECT().DeleteAccount(gomock.Any(), uid, aid).Return(ctrl.ErrNotFound)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, newRequest(t, http.MethodDelete, "/accounts/"+aid.String(), nil, testToken))
			assert.Equal(t, http.StatusNotFound, w.Code)
		},
	)

	t.Run(
		"Unauthorized", func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, newRequest(t, http.MethodGet, "/accounts", nil, ""))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		},
	)
}
