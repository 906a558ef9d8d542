package smtp

import (
	"context"

	"github.com/JMURv/session-keeper/internal/config"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type EmailServer struct {
	user string
	send func(m ...*gomail.Message) error
}

func New(conf config.Config) *EmailServer {
	d := gomail.NewDialer(conf.Email.Server, conf.Email.Port, conf.Email.User, conf.Email.Pass)
	return &EmailServer{
		user: conf.Email.User,
		send: d.DialAndSend,
	}
}

func (s *EmailServer) GetMessageBase(subject, toEmail string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.user)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	return m
}

// Send delivers a plain-text mail. It returns ctx.Err() once ctx is done even
// if the dial is still in flight.
func (s *EmailServer) Send(ctx context.Context, to, subject, body string) error {
	const op = "smtp.Send"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	m := s.GetMessageBase(subject, to)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- s.send(m)
	}()

	select {
	case <-ctx.Done():
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("Email send timed out", zap.String("op", op), zap.Error(ctx.Err()))
		return ctx.Err()
	case err := <-done:
		if err != nil {
			span.SetTag(config.ErrorSpanTag, true)
			zap.L().Error(
				"Failed to send an email",
				zap.String("op", op),
				zap.Error(err),
			)
			return err
		}
		return nil
	}
}

func (s *EmailServer) Close() error {
	return nil
}
