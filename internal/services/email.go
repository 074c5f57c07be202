package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"synathrozo/internal/domain"
)

// Surface colors layered on top of a template palette.
var (
	lightSurface = EmailSurface{Panel: "#f7f4f2", Border: "#eeeeee", Muted: "#999999", ButtonText: "#ffffff"}
	darkSurface  = EmailSurface{Panel: "#24243e", Border: "#33334d", Muted: "#8a8aa0", ButtonText: "#1a1a2e"}
)

type EmailSurface struct {
	Panel      string
	Border     string
	Muted      string
	ButtonText string
}

// InvitationEmailData is the view model handed to the invitation and confirmation templates.
type InvitationEmailData struct {
	GuestName      string
	HostName       string
	EventTitle     string
	FormattedDate  string
	Location       string
	Description    string
	RSVPLink       string
	CustomImageURL string
	RegistryLinks  []domain.RegistryLink
	Palette        domain.Palette
	Surface        EmailSurface
}

type invitationEmailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewInvitationEmailService returns an InvitationEmailService that renders with renderer and sends with mailer.
func NewInvitationEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.InvitationEmailService {
	return &invitationEmailService{mailer: mailer, renderer: renderer, logger: logger}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// formattedDate prefers the caller's pre-formatted string and falls back to the raw date in UTC.
func formattedDate(req *domain.DeliveryRequest) string {
	if req.FormattedEventDate != "" {
		return req.FormattedEventDate
	}
	if t, err := time.Parse(time.RFC3339, req.EventDate); err == nil {
		return t.UTC().Format(EventDateLayout)
	}
	return req.EventDate
}

func newInvitationEmailData(req *domain.DeliveryRequest) *InvitationEmailData {
	tmpl := domain.TemplateOrDefault(req.TemplateID)
	s := lightSurface
	if tmpl.Dark {
		s = darkSurface
	}
	return &InvitationEmailData{
		GuestName:      deref(req.GuestName),
		HostName:       deref(req.HostName),
		EventTitle:     req.EventTitle,
		FormattedDate:  formattedDate(req),
		Location:       deref(req.EventLocation),
		Description:    deref(req.EventDescription),
		RSVPLink:       req.RSVPLink,
		CustomImageURL: deref(req.CustomImageURL),
		RegistryLinks:  req.RegistryLinks,
		Palette:        tmpl.Palette,
		Surface:        s,
	}
}

func (s *invitationEmailService) SendInvitationEmail(ctx context.Context, req *domain.DeliveryRequest) (string, error) {
	if req == nil {
		return "", domain.ErrMissingFields
	}
	if err := req.Validate(); err != nil {
		return "", err
	}
	name := "invitation"
	if req.IsConfirmation {
		name = "confirmation"
	}
	subject, htmlBody, textBody, err := s.renderer.Render(name, newInvitationEmailData(req))
	if err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", name, err)
	}
	id, err := s.mailer.Send(ctx, req.To, subject, htmlBody, textBody)
	if err != nil {
		return "", fmt.Errorf("failed to send %s email: %w", name, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", name, "to", req.To, "message_id", id)
	return id, nil
}
