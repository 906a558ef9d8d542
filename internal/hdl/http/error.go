package http

import (
	"errors"
	"net/http"

	"github.com/JMURv/session-keeper/internal/auth"
	"github.com/JMURv/session-keeper/internal/auth/jwt"
	"github.com/JMURv/session-keeper/internal/config"
	"github.com/JMURv/session-keeper/internal/ctrl"
	"github.com/JMURv/session-keeper/internal/hdl"
	"github.com/JMURv/session-keeper/internal/hdl/http/utils"
	"github.com/JMURv/session-keeper/internal/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// errResponse maps controller errors to status codes.
func errResponse(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repo.ErrStorageUnavailable):
		zap.L().Warn("storage unavailable", zap.String("op", op), zap.Error(err))
		utils.ErrResponse(w, http.StatusServiceUnavailable, hdl.ErrStorageUnavailable)
	case errors.Is(err, ctrl.ErrDuplicateIdentity),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, ctrl.ErrLinkExpired),
		errors.Is(err, ctrl.ErrCaptchaFailed),
		errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenExpired):
		utils.ErrResponse(w, http.StatusBadRequest, err)
	case errors.Is(err, ctrl.ErrRecordNotFound),
		errors.Is(err, ctrl.ErrUserNotFound),
		errors.Is(err, ctrl.ErrNotFound):
		utils.ErrResponse(w, http.StatusNotFound, err)
	case errors.Is(err, auth.ErrTokenRevoked):
		utils.ErrResponse(w, http.StatusUnauthorized, err)
	default:
		zap.L().Error("unexpected error", zap.String("op", op), zap.Error(err))
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
	}
}

func uidFromCtx(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	uid, ok := r.Context().Value(config.UidKey).(uuid.UUID)
	if !ok || uid == uuid.Nil {
		zap.L().Error(
			hdl.ErrFailedToGetUUID.Error(),
			zap.Any("uid", r.Context().Value(config.UidKey)),
		)
		utils.ErrResponse(w, http.StatusInternalServerError, hdl.ErrInternal)
		return uuid.Nil, false
	}
	return uid, true
}

func uuidParam(w http.ResponseWriter, r *http.Request, id string) (uuid.UUID, bool) {
	res, err := uuid.Parse(id)
	if err != nil || res == uuid.Nil {
		zap.L().Debug(
			hdl.ErrFailedToParseUUID.Error(),
			zap.String("param", id),
			zap.Error(err),
		)
		utils.ErrResponse(w, http.StatusBadRequest, hdl.ErrFailedToParseUUID)
		return uuid.Nil, false
	}
	return res, true
}
