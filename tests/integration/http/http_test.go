package http

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/JMURv/session-keeper/internal/dto"
	md "github.com/JMURv/session-keeper/internal/models"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	desktopUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	mobileUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
)

type client struct {
	t  *testing.T
	ts *httptest.Server
}

func (c client) do(method, path string, payload any, token, ua string) *http.Response {
	c.t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(c.t, json.NewEncoder(&body).Encode(payload))
	}

	req, err := http.NewRequest(method, c.ts.URL+path, &body)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.ts.Client().Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	res := struct {
		Data T `json:"data"`
	}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res.Data
}

func (c client) register(email, pswd string) uuid.UUID {
	c.t.Helper()
	resp := c.do(
		http.MethodPost, "/register", map[string]any{
			"email":       email,
			"password":    pswd,
			"fullName":    gofakeit.Name(),
			"dateOfBirth": "1990-01-02T00:00:00Z",
			"address":     gofakeit.Street(),
		}, "", "",
	)
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)

	return decode[dto.CreateUserResponse](c.t, resp).ID
}

func (c client) login(email, pswd, ua string) (*http.Response, *dto.LoginResponse) {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/login", map[string]any{"email": email, "password": pswd}, "", ua)
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	res := decode[dto.LoginResponse](c.t, resp)
	return resp, &res
}

func (c client) live(token string) bool {
	c.t.Helper()
	resp := c.do(http.MethodGet, "/validate/"+token, nil, "", "")
	res := &dto.ValidateResponse{}
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(res))

	if res.Live {
		assert.Equal(c.t, http.StatusOK, resp.StatusCode)
	} else {
		assert.Equal(c.t, http.StatusUnauthorized, resp.StatusCode)
	}
	return res.Live
}

func resetToken(t *testing.T, box *outbox) string {
	t.Helper()
	body := box.last().body
	idx := strings.Index(body, "http://")
	require.GreaterOrEqual(t, idx, 0)

	link, err := url.Parse(strings.TrimSpace(body[idx:]))
	require.NoError(t, err)
	return link.Query().Get("token")
}

func TestSessionLifecycle(t *testing.T) {
	ts, _ := setupTestServer(t)
	c := client{t: t, ts: ts}

	email, pswd := strings.ToLower(gofakeit.Email()), "password123"
	uid := c.register(email, pswd)

	resp := c.do(
		http.MethodPost, "/register", map[string]any{
			"email":       strings.ToUpper(email),
			"password":    "password456",
			"fullName":    "Someone Else",
			"dateOfBirth": "1990-01-02T00:00:00Z",
			"address":     "Elsewhere",
		}, "", "",
	)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = c.login(email, "wrong-password", desktopUA)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = c.login("nobody@example.com", pswd, desktopUA)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, desktop := c.login(email, pswd, desktopUA)
	require.NotNil(t, desktop)
	assert.Equal(t, uid, desktop.UserID)

	_, mobile := c.login(email, pswd, mobileUA)
	require.NotNil(t, mobile)
	assert.NotEqual(t, desktop.Token, mobile.Token)

	assert.True(t, c.live(desktop.Token))
	assert.True(t, c.live(mobile.Token))

	resp = c.do(http.MethodGet, "/sessions/"+uid.String(), nil, desktop.Token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sessions := decode[[]md.Session](t, resp)
	require.Len(t, sessions, 2)

	var mobileID uuid.UUID
	for _, s := range sessions {
		if s.DeviceType == "mobile" {
			mobileID = s.ID
		}
	}
	require.NotEqual(t, uuid.Nil, mobileID)

	resp = c.do(http.MethodGet, "/sessions/"+uuid.NewString(), nil, desktop.Token, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = c.do(http.MethodDelete, fmt.Sprintf("/sessions/%s/%s", uid, uuid.New()), nil, desktop.Token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = c.do(http.MethodDelete, fmt.Sprintf("/sessions/%s/%s", uid, mobileID), nil, desktop.Token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, c.live(mobile.Token))
	assert.True(t, c.live(desktop.Token))

	resp = c.do(http.MethodDelete, fmt.Sprintf("/sessions/%s/%s", uid, mobileID), nil, desktop.Token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.do(
		http.MethodPut, "/password",
		map[string]any{"currentPassword": "wrong-password", "newPassword": "password456"},
		desktop.Token, "",
	)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.True(t, c.live(desktop.Token))

	resp = c.do(
		http.MethodPut, "/password",
		map[string]any{"currentPassword": pswd, "newPassword": "password456"},
		desktop.Token, "",
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, c.live(desktop.Token))

	resp = c.do(http.MethodPost, "/logout-all", nil, desktop.Token, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = c.login(email, pswd, desktopUA)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, fresh := c.login(email, "password456", desktopUA)
	require.NotNil(t, fresh)
	assert.True(t, c.live(fresh.Token))

	resp = c.do(http.MethodPost, "/logout-all", nil, fresh.Token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, c.live(fresh.Token))
}

func TestPasswordResetFlow(t *testing.T) {
	ts, box := setupTestServer(t)
	c := client{t: t, ts: ts}

	email := strings.ToLower(gofakeit.Email())
	c.register(email, "password123")

	_, before := c.login(email, "password123", desktopUA)
	require.NotNil(t, before)

	resp := c.do(http.MethodPost, "/reset/request", map[string]any{"email": "ghost@example.com"}, "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.do(http.MethodPost, "/reset/request", map[string]any{"email": email}, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, email, box.last().to)

	token := resetToken(t, box)
	require.NotEmpty(t, token)
	assert.False(t, c.live(token))

	resp = c.do(
		http.MethodPost, "/reset/complete",
		map[string]any{"resetToken": token, "newPassword": "password789"}, "", "",
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.do(
		http.MethodPost, "/reset/complete",
		map[string]any{"resetToken": token, "newPassword": "password000"}, "", "",
	)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.do(
		http.MethodPost, "/reset/complete",
		map[string]any{"resetToken": before.Token, "newPassword": "password000"}, "", "",
	)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.False(t, c.live(before.Token))

	_, after := c.login(email, "password789", desktopUA)
	require.NotNil(t, after)
}

func TestAccounts(t *testing.T) {
	ts, _ := setupTestServer(t)
	c := client{t: t, ts: ts}

	email := strings.ToLower(gofakeit.Email())
	c.register(email, "password123")
	_, sess := c.login(email, "password123", desktopUA)
	require.NotNil(t, sess)

	resp := c.do(
		http.MethodPost, "/accounts",
		map[string]any{"accountType": "bank", "email": "me@bank.example", "secret": "hunter22"},
		sess.Token, "",
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.CreateAccountResponse](t, resp)

	resp = c.do(http.MethodGet, "/accounts", nil, sess.Token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed bytes.Buffer
	_, err := listed.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, listed.String(), "hunter22")

	resp = c.do(http.MethodPost, "/accounts/"+created.ID.String()+"/reveal", nil, sess.Token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	revealed := decode[dto.RevealAccountResponse](t, resp)
	assert.Equal(t, "hunter22", revealed.Secret)

	resp = c.do(http.MethodDelete, "/accounts/"+created.ID.String(), nil, sess.Token, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = c.do(http.MethodPost, "/accounts/"+created.ID.String()+"/reveal", nil, sess.Token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOversizedUserAgent(t *testing.T) {
	ts, _ := setupTestServer(t)
	c := client{t: t, ts: ts}

	email := strings.ToLower(gofakeit.Email())
	uid := c.register(email, "password123")

	ua := "Mozilla/5.0 (" + strings.Repeat("Windows NT 10.0; Win64; x64; ", 12) + ") AppleWebKit/537.36 Chrome/" +
		strings.Repeat("120.0.", 20) + " Safari/537.36"
	require.Greater(t, len(ua), 300)

	resp, sess := c.login(email, "password123", ua)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, sess)
	assert.True(t, c.live(sess.Token))

	resp = c.do(http.MethodGet, "/sessions/"+uid.String(), nil, sess.Token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sessions := decode[[]md.Session](t, resp)
	require.Len(t, sessions, 1)
	assert.Equal(t, ua, sessions[0].UA)
}
