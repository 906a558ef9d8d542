package http

import (
	"net/http"

	"github.com/JMURv/session-keeper/internal/dto"
	mid "github.com/JMURv/session-keeper/internal/hdl/http/middleware"
	"github.com/JMURv/session-keeper/internal/hdl/http/utils"
	_ "github.com/JMURv/session-keeper/internal/models"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) RegisterUserRoutes() {
	h.router.Post("/register", h.register)
	h.router.With(mid.Auth(h.ctrl, mid.AuthOpts{CheckAuthor: true})).Get("/users/{id}", h.getUser)
	h.router.With(mid.Auth(h.ctrl, mid.AuthOpts{CheckAuthor: true})).Put("/users/{id}", h.updateUser)
}

// register godoc
//
//	@Summary		Register a new user
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Param			body	body		dto.CreateUserRequest	true	"Registration payload"
//	@Success		201		{object}	dto.CreateUserResponse
//	@Failure		400		{object}	utils.ErrorsResponse	"validation error or duplicate identity"
//	@Failure		500		{object}	utils.ErrorsResponse	"internal error"
//	@Router			/register [post]
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	const op = "users.register.hdl"
	req := &dto.CreateUserRequest{}
	if ok := utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	res, err := h.ctrl.Register(r.Context(), req)
	if err != nil {
		errResponse(w, op, err)
		return
	}

	utils.SuccessResponse(w, http.StatusCreated, res)
}

// getUser godoc
//
//	@Summary		Get own profile
//	@Tags			User
//	@Produce		json
//	@Param			Authorization	header		string	true	"Bearer token"
//	@Param			id				path		string	true	"User UUID"
//	@Success		200				{object}	models.User
//	@Failure		401				{object}	utils.ErrorsResponse	"unauthorized"
//	@Failure		403				{object}	utils.ErrorsResponse	"forbidden"
//	@Failure		404				{object}	utils.ErrorsResponse	"user not found"
//	@Failure		500				{object}	utils.ErrorsResponse	"internal error"
//	@Router			/users/{id} [get]
func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	const op = "users.getUser.hdl"
	uid, ok := uuidParam(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	res, err := h.ctrl.GetUserByID(r.Context(), uid)
	if err != nil {
		errResponse(w, op, err)
		return
	}

	utils.SuccessResponse(w, http.StatusOK, res)
}

// updateUser godoc
//
//	@Summary		Update own profile
//	@Tags			User
//	@Accept			json
//	@Param			Authorization	header	string					true	"Bearer token"
//	@Param			id				path	string					true	"User UUID"
//	@Param			body			body	dto.UpdateUserRequest	true	"Profile fields"
//	@Success		200				"OK"
//	@Failure		400				{object}	utils.ErrorsResponse	"bad request"
//	@Failure		401				{object}	utils.ErrorsResponse	"unauthorized"
//	@Failure		403				{object}	utils.ErrorsResponse	"forbidden"
//	@Failure		404				{object}	utils.ErrorsResponse	"user not found"
//	@Failure		500				{object}	utils.ErrorsResponse	"internal error"
//	@Router			/users/{id} [put]
func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	const op = "users.updateUser.hdl"
	uid, ok := uuidParam(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	req := &dto.UpdateUserRequest{}
	if ok = utils.ParseAndValidate(w, r, req); !ok {
		return
	}

	if err := h.ctrl.UpdateUser(r.Context(), uid, req); err != nil {
		errResponse(w, op, err)
		return
	}

	utils.StatusResponse(w, http.StatusOK)
}
