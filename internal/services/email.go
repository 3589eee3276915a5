package services

import (
	"context"
	"fmt"
	"log/slog"

	"membershipevents/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendRegistrationReceipt sends the "registration_receipt" template.
func (s *emailService) SendRegistrationReceipt(ctx context.Context, data *domain.RegistrationEmailData) error {
	if data == nil {
		return fmt.Errorf("registration email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("registration_receipt", data)
	if err != nil {
		return fmt.Errorf("failed to render registration_receipt template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send registration receipt: %w", err)
	}
	s.logger.InfoContext(ctx, "registration receipt sent", "to", data.Email, "waitlisted", data.Waitlisted)
	return nil
}

// SendPromotion sends the "promotion" template to a member who left the waitlist.
func (s *emailService) SendPromotion(ctx context.Context, data *domain.PromotionEmailData) error {
	if data == nil {
		return fmt.Errorf("promotion email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("promotion", data)
	if err != nil {
		return fmt.Errorf("failed to render promotion template: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send promotion email: %w", err)
	}
	s.logger.InfoContext(ctx, "promotion email sent", "to", data.Email)
	return nil
}
