package http

import (
	"errors"
	"net/http"

	"github.com/JMURv/session-keeper/internal/auth"
	"github.com/JMURv/session-keeper/internal/auth/jwt"
	"github.com/JMURv/session-keeper/internal/dto"
	"github.com/JMURv/session-keeper/internal/hdl"
	mid "github.com/JMURv/session-keeper/internal/hdl/http/middleware"
	"github.com/JMURv/session-keeper/internal/hdl/http/utils"
	metrics "github.com/JMURv/session-keeper/internal/observability/metrics/prometheus"
	"github.com/JMURv/session-keeper/internal/repo"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var ErrNoDeviceInfo = errors.New("no device info")

func (h *Handler) RegisterSessionRoutes() {
	h.router.With(mid.Device).Post("/login", h.login)
	h.router.With(mid.Auth(h.ctrl, mid.AuthOpts{CheckAuthor: true, Param: "userId"})).Get("/sessions/{userId}", h.listSessions)
	h.router.With(mid.Auth(h.ctrl, mid.AuthOpts{CheckAuthor: true, Param: "userId"})).Delete(
		"/sessions/{userId}/{recordId}", h.revokeSession,
	)
	h.router.With(mid.Auth(h.ctrl, mid.AuthOpts{})).Post("/logout-all", h.logoutAll)
	h.router.Get("/validate/{token}", h.validate)
}

// login godoc
//
//	@Summary		Authenticate using email & password
//	@Description	Verify credentials, record the device session and return a session token
//	@Tags			Sessions
//	@Accept			json
//	@Produce		json
//	@Param			User-Agent	header		string				false	"Client User-Agent"
//	@Param			body		body		dto.LoginRequest	true	"Login credentials"
//	@Success		200			{object}	dto.LoginResponse
//	@Failure		400			{object}	utils.ErrorsResponse	"invalid credentials"
//	@Failure		503			{object}	utils.ErrorsResponse	"storage unavailable"
//	@Failure		500			{object}	utils.ErrorsResponse	"internal error"
//	@Router			/login [post]
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	const op = "sessions.login.hdl"
	d, ok := utils.ParseDeviceByRequest(r.Context())
	if !ok {
		utils.ErrResponse(w, http.StatusBadRequest, ErrNoDeviceInfo)
		return
	}

	req := &dto.LoginRequest{}
	if ok = utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	res, err := h.ctrl.Authenticate(r.Context(), &d, req)
	if err != nil {
		errResponse(w, op, err)
		return
	}

	metrics.SessionIssued()
	utils.SuccessResponse(w, http.StatusOK, res)
}

// listSessions godoc
//
//	@Summary		List device sessions
//	@Description	Live sessions of the user in login order
//	@Tags			Sessions
//	@Produce		json
//	@Param			Authorization	header		string	true	"Bearer token"
//	@Param			userId			path		string	true	"User UUID"
//	@Success		200				{array}		models.Session
//	@Failure		401				{object}	utils.ErrorsResponse	"unauthorized"
//	@Failure		403				{object}	utils.ErrorsResponse	"forbidden"
//	@Failure		500				{object}	utils.ErrorsResponse	"internal error"
//	@Router			/sessions/{userId} [get]
func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	const op = "sessions.listSessions.hdl"
	uid, ok := uidFromCtx(w, r)
	if !ok {
		return
	}

	res, err := h.ctrl.ListSessions(r.Context(), uid)
	if err != nil {
		errResponse(w, op, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, res)
}

// revokeSession godoc
//
//	@Summary		Revoke a single device session
//	@Tags			Sessions
//	@Produce		json
//	@Param			Authorization	header	string	true	"Bearer token"
//	@Param			userId			path	string	true	"User UUID"
//	@Param			recordId		path	string	true	"Session record UUID"
//	@Success		200				"Revoked"
//	@Failure		400				{object}	utils.ErrorsResponse	"invalid UUID"
//	@Failure		401				{object}	utils.ErrorsResponse	"unauthorized"
//	@Failure		403				{object}	utils.ErrorsResponse	"forbidden"
//	@Failure		404				{object}	utils.ErrorsResponse	"session record not found"
//	@Failure		500				{object}	utils.ErrorsResponse	"internal error"
//	@Router			/sessions/{userId}/{recordId} [delete]
func (h *Handler) revokeSession(w http.ResponseWriter, r *http.Request) {
	const op = "sessions.revokeSession.hdl"
	uid, ok := uidFromCtx(w, r)
	if !ok {
		return
	}

	id, ok := uuidParam(w, r, chi.URLParam(r, "recordId"))
	if !ok {
		return
	}

	if err := h.ctrl.RevokeSession(r.Context(), uid, id); err != nil {
		errResponse(w, op, err)
		return
	}

	utils.StatusResponse(w, http.StatusOK)
}

// logoutAll godoc
//
//	@Summary		Revoke every session of the caller
//	@Tags			Sessions
//	@Param			Authorization	header	string	true	"Bearer token"
//	@Success		200				"Revoked"
//	@Failure		401				{object}	utils.ErrorsResponse	"unauthorized"
//	@Failure		500				{object}	utils.ErrorsResponse	"internal error"
//	@Router			/logout-all [post]
func (h *Handler) logoutAll(w http.ResponseWriter, r *http.Request) {
	const op = "sessions.logoutAll.hdl"
	uid, ok := uidFromCtx(w, r)
	if !ok {
		return
	}

	if err := h.ctrl.LogoutAll(r.Context(), uid); err != nil {
		errResponse(w, op, err)
		return
	}

	utils.StatusResponse(w, http.StatusOK)
}

// validate godoc
//
//	@Summary		Check whether a session token is usable
//	@Tags			Sessions
//	@Produce		json
//	@Param			token	path		string	true	"Session token"
//	@Success		200		{object}	dto.ValidateResponse
//	@Failure		401		{object}	dto.ValidateResponse
//	@Failure		503		{object}	utils.ErrorsResponse	"storage unavailable"
//	@Router			/validate/{token} [get]
func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	_, err := h.ctrl.Validate(r.Context(), chi.URLParam(r, "token"))
	switch {
	case err == nil:
		metrics.TokenValidated(true)
		utils.RawResponse(w, http.StatusOK, &dto.ValidateResponse{Live: true})
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenRevoked):
		metrics.TokenValidated(false)
		utils.RawResponse(w, http.StatusUnauthorized, &dto.ValidateResponse{Live: false})
	case errors.Is(err, repo.ErrStorageUnavailable):
		utils.ErrResponse(w, http.StatusServiceUnavailable, hdl.ErrStorageUnavailable)
	default:
		zap.L().Error("failed to validate token", zap.Error(err))
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
	}
}
