// Package email delivers account notifications through the Resend API.
// Without an API key the service logs and drops messages, so local
// development needs no external account.
package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/eventura/server/internal/config"
)

type Service struct {
	config config.EmailConfig
	client *resend.Client
	logger zerolog.Logger
}

func NewService(cfg config.EmailConfig, logger zerolog.Logger) (*Service, error) {
	svc := &Service{
		config: cfg,
		logger: logger.With().Str("component", "email").Logger(),
	}

	if cfg.ResendAPIKey != "" {
		if err := validateAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender address: %w", err)
		}
		svc.client = resend.NewClient(cfg.ResendAPIKey)
	}
	return svc, nil
}

func (s *Service) Enabled() bool {
	return s.client != nil
}

// AccountVerified tells a collaborator their account passed review and they
// can now log in.
func (s *Service) AccountVerified(ctx context.Context, to, name string) error {
	if err := validateAddress(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}

	if !s.Enabled() {
		s.logger.Info().Str("to", to).Msg("email disabled, skipping verification notice")
		return nil
	}

	subject := "Tu cuenta ha sido verificada"
	html := fmt.Sprintf(
		"<p>Hola %s,</p><p>Tu cuenta de colaborador ha sido verificada. Ya puedes iniciar sesión y publicar eventos.</p>",
		name)

	return s.send(ctx, to, subject, html)
}

func (s *Service) send(ctx context.Context, to, subject, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    s.config.From,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			s.logger.Warn().
				Str("limit", rateLimitErr.Limit).
				Str("reset", rateLimitErr.Reset).
				Msg("resend rate limit exceeded")
			return fmt.Errorf("email rate limit exceeded: %w", err)
		}
		return fmt.Errorf("resend API error: %w", err)
	}

	s.logger.Info().Str("email_id", sent.Id).Str("to", to).Msg("email sent")
	return nil
}

func validateAddress(address string) error {
	addr, err := mail.ParseAddress(address)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	if strings.ContainsAny(addr.Address, "\r\n") {
		return fmt.Errorf("address contains newline characters")
	}
	return nil
}
