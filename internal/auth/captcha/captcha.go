package captcha

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JMURv/session-keeper/internal/config"
	"github.com/goccy/go-json"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

type Port interface {
	VerifyRecaptcha(ctx context.Context, token string, action Actions) (bool, error)
}

type Actions string

const (
	PassAuth  Actions = "pass_auth"
	PassReset Actions = "pass_reset"
)

const (
	captchaScore   = 0.1
	verifyURL      = "https://www.google.com/recaptcha/api/siteverify"
	defaultTimeout = 5 * time.Second
)

type recaptchaResponse struct {
	Success     bool      `json:"success"`
	Score       float64   `json:"score"`
	Action      string    `json:"action"`
	ChallengeTS time.Time `json:"challenge_ts"`
	Hostname    string    `json:"hostname"`
	ErrorCodes  []string  `json:"error-codes"`
}

type Core struct {
	enabled bool
	secret  string
	url     string
	cli     *http.Client
}

func New(conf config.Config) *Core {
	timeout := conf.Auth.Captcha.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Core{
		enabled: conf.Auth.Captcha.Enabled,
		secret:  conf.Auth.Captcha.Secret,
		url:     verifyURL,
		cli:     &http.Client{Timeout: timeout},
	}
}

func (c *Core) VerifyRecaptcha(ctx context.Context, token string, action Actions) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "VerifyRecaptcha")
	defer span.Finish()

	// Use for testing purposes
	if !c.enabled {
		return true, nil
	}

	form := url.Values{
		"secret":   {c.secret},
		"response": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.cli.Do(req)
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to verify recaptcha", zap.Error(err))
		return false, ErrVerificationFailed
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			zap.L().Error("failed to close body", zap.Error(err))
		}
	}(resp.Body)

	var result recaptchaResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to unmarshal body", zap.Error(err))
		return false, ErrValidationFailed
	}

	score := result.Success && result.Score > captchaScore
	if !score {
		zap.L().Debug("not enough score", zap.Float64("score", result.Score), zap.Strings("codes", result.ErrorCodes))
	}
	return score && result.Action == string(action), nil
}
