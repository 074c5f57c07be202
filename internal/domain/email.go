package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
// It returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) (messageID string, err error)
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InvitationEmailService renders and sends invitation emails on the email function side.
type InvitationEmailService interface {
	SendInvitationEmail(ctx context.Context, req *DeliveryRequest) (messageID string, err error)
}
