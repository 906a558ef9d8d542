package http

import (
	"net/http"

	"github.com/JMURv/session-keeper/internal/dto"
	mid "github.com/JMURv/session-keeper/internal/hdl/http/middleware"
	"github.com/JMURv/session-keeper/internal/hdl/http/utils"
)

func (h *Handler) RegisterPasswordRoutes() {
	h.router.With(mid.Auth(h.ctrl, mid.AuthOpts{})).Put("/password", h.changePassword)
	h.router.Post("/reset/request", h.requestReset)
	h.router.Post("/reset/complete", h.completeReset)
}

// changePassword godoc
//
//	@Summary		Change password
//	@Description	Replaces the password and signs the user out of every device
//	@Tags			Password
//	@Accept			json
//	@Param			Authorization	header	string						true	"Bearer token"
//	@Param			body			body	dto.ChangePasswordRequest	true	"Current and new password"
//	@Success		200				"Changed"
//	@Failure		400				{object}	utils.ErrorsResponse	"invalid credentials"
//	@Failure		401				{object}	utils.ErrorsResponse	"unauthorized"
//	@Failure		500				{object}	utils.ErrorsResponse	"internal error"
//	@Router			/password [put]
func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	const op = "password.changePassword.hdl"
	uid, ok := uidFromCtx(w, r)
	if !ok {
		return
	}

	req := &dto.ChangePasswordRequest{}
	if ok = utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	if err := h.ctrl.ChangePassword(r.Context(), uid, req); err != nil {
		errResponse(w, op, err)
		return
	}

	utils.StatusResponse(w, http.StatusOK)
}

// requestReset godoc
//
//	@Summary		Request a password reset link
//	@Description	Always succeeds for a well-formed email so account existence is not disclosed
//	@Tags			Password
//	@Accept			json
//	@Param			body	body	dto.ResetRequest	true	"Email"
//	@Success		200		"Accepted"
//	@Failure		400		{object}	utils.ErrorsResponse	"bad request"
//	@Failure		500		{object}	utils.ErrorsResponse	"internal error"
//	@Router			/reset/request [post]
func (h *Handler) requestReset(w http.ResponseWriter, r *http.Request) {
	const op = "password.requestReset.hdl"
	req := &dto.ResetRequest{}
	if ok := utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	if err := h.ctrl.RequestReset(r.Context(), req); err != nil {
		errResponse(w, op, err)
		return
	}

	utils.StatusResponse(w, http.StatusOK)
}

// completeReset godoc
//
//	@Summary		Complete a password reset
//	@Tags			Password
//	@Accept			json
//	@Param			body	body	dto.CompleteResetRequest	true	"Reset token and new password"
//	@Success		200		"Password replaced"
//	@Failure		400		{object}	utils.ErrorsResponse	"link expired or token malformed"
//	@Failure		404		{object}	utils.ErrorsResponse	"user not found"
//	@Failure		500		{object}	utils.ErrorsResponse	"internal error"
//	@Router			/reset/complete [post]
func (h *Handler) completeReset(w http.ResponseWriter, r *http.Request) {
	const op = "password.completeReset.hdl"
	req := &dto.CompleteResetRequest{}
	if ok := utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	if err := h.ctrl.CompleteReset(r.Context(), req); err != nil {
		errResponse(w, op, err)
		return
	}

	utils.StatusResponse(w, http.StatusOK)
}
