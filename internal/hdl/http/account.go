package http

import (
	"net/http"

	"github.com/JMURv/session-keeper/internal/dto"
	mid "github.com/JMURv/session-keeper/internal/hdl/http/middleware"
	"github.com/JMURv/session-keeper/internal/hdl/http/utils"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) RegisterAccountRoutes() {
	h.router.Route(
		"/accounts", func(r chi.Router) {
			r.Use(mid.Auth(h.ctrl, mid.AuthOpts{}))
			r.Post("/", h.createAccount)
			r.Get("/", h.listAccounts)
			r.Put("/{id}", h.updateAccount)
			r.Delete("/{id}", h.deleteAccount)
			r.Post("/{id}/reveal", h.revealAccount)
		},
	)
}

// createAccount godoc
//
//	@Summary		Link an account
//	@Description	Stores the secret encrypted
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			Authorization	header		string						true	"Bearer token"
//	@Param			body			body		dto.CreateAccountRequest	true	"Account"
//	@Success		201				{object}	dto.CreateAccountResponse
//	@Failure		400				{object}	utils.ErrorsResponse	"bad request"
//	@Failure		401				{object}	utils.ErrorsResponse	"unauthorized"
//	@Failure		500				{object}	utils.ErrorsResponse	"internal error"
//	@Router			/accounts [post]
func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	const op = "accounts.createAccount.hdl"
	uid, ok := uidFromCtx(w, r)
	if !ok {
		return
	}

	req := &dto.CreateAccountRequest{}
	if ok = utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	res, err := h.ctrl.CreateAccount(r.Context(), uid, req)
	if err != nil {
		errResponse(w, op, err)
		return
	}

	utils.SuccessResponse(w, http.StatusCreated, res)
}

// listAccounts godoc
//
//	@Summary		List linked accounts
//	@Tags			Accounts
//	@Produce		json
//	@Param			Authorization	header		string	true	"Bearer token"
//	@Success		200				{array}		models.Account
//	@Failure		401				{object}	utils.ErrorsResponse	"unauthorized"
//	@Failure		500				{object}	utils.ErrorsResponse	"internal error"
//	@Router			/accounts [get]
func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	const op = "accounts.listAccounts.hdl"
	uid, ok := uidFromCtx(w, r)
	if !ok {
		return
	}

	res, err := h.ctrl.ListAccounts(r.Context(), uid)
	if err != nil {
		errResponse(w, op, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, res)
}

// updateAccount godoc
//
//	@Summary		Update a linked account
//	@Description	An empty secret keeps the stored one
//	@Tags			Accounts
//	@Accept			json
//	@Param			Authorization	header	string						true	"Bearer token"
//	@Param			id				path	string						true	"Account UUID"
//	@Param			body			body	dto.UpdateAccountRequest	true	"Account"
//	@Success		200				"OK"
//	@Failure		400				{object}	utils.ErrorsResponse	"bad request"
//	@Failure		404				{object}	utils.ErrorsResponse	"not found"
//	@Failure		500				{object}	utils.ErrorsResponse	"internal error"
//	@Router			/accounts/{id} [put]
func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	const op = "accounts.updateAccount.hdl"
	uid, ok := uidFromCtx(w, r)
	if !ok {
		return
	}

	id, ok := uuidParam(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	req := &dto.UpdateAccountRequest{}
	if ok = utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	if err := h.ctrl.UpdateAccount(r.Context(), uid, id, req); err != nil {
		errResponse(w, op, err)
		return
	}

	utils.StatusResponse(w, http.StatusOK)
}

// deleteAccount godoc
//
//	@Summary		Delete a linked account
//	@Tags			Accounts
//	@Param			Authorization	header	string	true	"Bearer token"
//	@Param			id				path	string	true	"Account UUID"
//	@Success		204				"No Content"
//	@Failure		404				{object}	utils.ErrorsResponse	"not found"
//	@Failure		500				{object}	utils.ErrorsResponse	"internal error"
//	@Router			/accounts/{id} [delete]
func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	const op = "accounts.deleteAccount.hdl"
	uid, ok := uidFromCtx(w, r)
	if !ok {
		return
	}

	id, ok := uuidParam(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.ctrl.DeleteAccount(r.Context(), uid, id); err != nil {
		errResponse(w, op, err)
		return
	}

	utils.StatusResponse(w, http.StatusNoContent)
}

// revealAccount godoc
//
//	@Summary		Decrypt the secret of a linked account
//	@Tags			Accounts
//	@Produce		json
//	@Param			Authorization	header		string	true	"Bearer token"
//	@Param			id				path		string	true	"Account UUID"
//	@Success		200				{object}	dto.RevealAccountResponse
//	@Failure		404				{object}	utils.ErrorsResponse	"not found"
//	@Failure		500				{object}	utils.ErrorsResponse	"internal error"
//	@Router			/accounts/{id}/reveal [post]
func (h *Handler) revealAccount(w http.ResponseWriter, r *http.Request) {
	const op = "accounts.revealAccount.hdl"
	uid, ok := uidFromCtx(w, r)
	if !ok {
		return
	}

	id, ok := uuidParam(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	res, err := h.ctrl.RevealAccount(r.Context(), uid, id)
	if err != nil {
		errResponse(w, op, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, res)
}
