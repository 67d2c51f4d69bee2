package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeMessageEmailData holds data for the welcome email.
type WelcomeMessageEmailData struct {
	Email string
	Name  string
}

// EventStatusEmailData holds data for the email a host receives when their event is reviewed.
type EventStatusEmailData struct {
	Email     string
	HostName  string
	EventName string
	Date      string
	StartTime string
	EndTime   string
	VenueName string
	Status    string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcomeMessage(ctx context.Context, data *WelcomeMessageEmailData) error
	SendEventStatus(ctx context.Context, data *EventStatusEmailData) error
}
