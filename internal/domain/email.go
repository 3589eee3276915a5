package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationEmailData holds data for the registration receipt email.
type RegistrationEmailData struct {
	Email            string
	FirstName        string
	EventTitle       string
	StartDate        time.Time
	Waitlisted       bool
	WaitlistPosition int
}

// PromotionEmailData holds data for the email sent when a waitlisted member gets a seat.
type PromotionEmailData struct {
	Email      string
	FirstName  string
	EventTitle string
	StartDate  time.Time
}

// EmailService defines the contract for sending registration emails.
type EmailService interface {
	SendRegistrationReceipt(ctx context.Context, data *RegistrationEmailData) error
	SendPromotion(ctx context.Context, data *PromotionEmailData) error
}
