package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JMURv/session-keeper/internal/config"
	"github.com/JMURv/session-keeper/internal/dto"
	"github.com/JMURv/session-keeper/internal/hdl"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Response struct {
	Data any `json:"data"`
}

type ErrorsResponse struct {
	Errors []string `json:"errors"`
}

func SuccessResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(&Response{Data: data}); err != nil {
		zap.L().Debug("failed to encode response", zap.Error(err))
	}
}

// RawResponse writes data without the {"data": ...} envelope.
func RawResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Debug("failed to encode response", zap.Error(err))
	}
}

func StatusResponse(w http.ResponseWriter, statusCode int) {
	w.WriteHeader(statusCode)
}

func ErrResponse(w http.ResponseWriter, statusCode int, err error) {
	ErrsResponse(w, statusCode, err.Error())
}

func ErrsResponse(w http.ResponseWriter, statusCode int, errs ...string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(&ErrorsResponse{Errors: errs}); err != nil {
		zap.L().Debug("failed to encode error response", zap.Error(err))
	}
}

// ParseAndValidate decodes the JSON body into dst and runs struct validation.
// On failure it writes a 400 response and returns false.
func ParseAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		zap.L().Debug(hdl.ErrDecodeRequest.Error(), zap.Error(err))
		ErrResponse(w, http.StatusBadRequest, hdl.ErrDecodeRequest)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed on the '%s' rule", fe.Field(), fe.Tag()))
			}
			ErrsResponse(w, http.StatusBadRequest, msgs...)
			return false
		}

		ErrResponse(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func ParseDeviceByRequest(ctx context.Context) (dto.DeviceRequest, bool) {
	ip, ok := ctx.Value(config.IpKey).(string)
	if !ok {
		return dto.DeviceRequest{}, false
	}

	ua, ok := ctx.Value(config.UaKey).(string)
	if !ok {
		return dto.DeviceRequest{}, false
	}

	return dto.DeviceRequest{IP: ip, UA: ua}, true
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, config.BearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(h, config.BearerPrefix))
	return token, token != ""
}
