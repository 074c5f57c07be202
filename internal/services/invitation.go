package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"synathrozo/internal/domain"
)

// MaxGuestCount is the largest party a single invitation may answer for.
const MaxGuestCount = 20

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type invitationService struct {
	eventRepo         domain.EventRepository
	invRepo           domain.InvitationRepository
	aggregator        domain.StatusAggregator
	dispatcher        domain.NotificationDispatcher
	sendConfirmations bool
	contextTimeout    time.Duration
	logger            *slog.Logger
	now               func() time.Time
}

// InvitationServiceConfig holds the InvitationService settings.
type InvitationServiceConfig struct {
	SendConfirmations bool
	Timeout           time.Duration
}

func NewInvitationService(
	eventRepo domain.EventRepository,
	invRepo domain.InvitationRepository,
	aggregator domain.StatusAggregator,
	dispatcher domain.NotificationDispatcher,
	cfg InvitationServiceConfig,
	logger *slog.Logger,
) domain.InvitationService {
	return &invitationService{
		eventRepo:         eventRepo,
		invRepo:           invRepo,
		aggregator:        aggregator,
		dispatcher:        dispatcher,
		sendConfirmations: cfg.SendConfirmations,
		contextTimeout:    cfg.Timeout,
		logger:            logger,
		now:               time.Now,
	}
}

func validEmail(email string) bool {
	return emailRegexp.MatchString(strings.TrimSpace(email))
}

func (s *invitationService) CreateInvitations(ctx context.Context, eventID, ownerID string, emails []string) ([]*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := ownedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return nil, err
	}

	now := s.now()
	invs := make([]*domain.Invitation, 0, len(emails))
	for _, email := range emails {
		if strings.TrimSpace(email) == "" {
			continue
		}
		if !validEmail(email) {
			return nil, fmt.Errorf("%w: invalid email %q", domain.ErrInvalidInput, strings.TrimSpace(email))
		}
		invs = append(invs, domain.NewInvitation(eventID, email, now))
	}
	if len(invs) == 0 {
		return nil, fmt.Errorf("%w: at least one email is required", domain.ErrInvalidInput)
	}
	if err := s.invRepo.CreateBatch(ctx, invs); err != nil {
		return nil, fmt.Errorf("create invitations: %w", err)
	}
	return invs, nil
}

func (s *invitationService) CreateInvitation(ctx context.Context, eventID, ownerID, email string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := ownedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(email) != "" && !validEmail(email) {
		return nil, fmt.Errorf("%w: invalid email %q", domain.ErrInvalidInput, strings.TrimSpace(email))
	}
	inv := domain.NewInvitation(eventID, email, s.now())
	if err := s.invRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	return inv, nil
}

func (s *invitationService) ListInvitations(ctx context.Context, eventID, ownerID string) ([]*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := ownedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return nil, err
	}
	invs, err := s.invRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, nil
}

func (s *invitationService) DeleteInvitation(ctx context.Context, invitationID, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if ownerID == "" {
		return domain.ErrUnauthorized
	}
	return s.invRepo.Delete(ctx, invitationID, ownerID)
}

func (s *invitationService) Stats(ctx context.Context, eventID, ownerID string) (*domain.InvitationStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := ownedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return nil, err
	}
	return s.aggregator.Summarize(ctx, eventID)
}

// SendInvitations starts a bulk dispatch for the event. With no ids it targets every
// invitation that has not been sent yet. The batch outlives ctx's cancellation.
func (s *invitationService) SendInvitations(ctx context.Context, eventID, ownerID string, invitationIDs []string, opts domain.DispatchOptions) (*domain.BulkDispatch, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := ownedEvent(lookupCtx, s.eventRepo, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	all, err := s.invRepo.ListByEventID(lookupCtx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	var batch []*domain.Invitation
	if len(invitationIDs) > 0 {
		want := make(map[string]bool, len(invitationIDs))
		for _, id := range invitationIDs {
			want[id] = true
		}
		for _, inv := range all {
			if want[inv.ID] {
				batch = append(batch, inv)
			}
		}
		if len(batch) != len(want) {
			return nil, domain.ErrNotFound
		}
	} else {
		for _, inv := range all {
			if inv.SentAt == nil {
				batch = append(batch, inv)
			}
		}
	}

	opts.Confirmation = false
	return s.dispatcher.StartBulk(context.WithoutCancel(ctx), batch, event, opts), nil
}

func (s *invitationService) GetByToken(ctx context.Context, token string) (*domain.InvitationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrNotFound
	}
	return s.invRepo.GetByToken(ctx, token)
}

func (s *invitationService) MarkOpened(ctx context.Context, token string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrNotFound
	}
	return s.invRepo.MarkOpened(ctx, token, s.now())
}

func validateResponse(r domain.RSVPResponse) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if r.Attending && r.GuestCount != nil && (*r.GuestCount < 1 || *r.GuestCount > MaxGuestCount) {
		return fmt.Errorf("%w: guest count must be between 1 and %d", domain.ErrInvalidInput, MaxGuestCount)
	}
	if strings.TrimSpace(r.Email) != "" && !validEmail(r.Email) {
		return fmt.Errorf("%w: invalid email %q", domain.ErrInvalidInput, strings.TrimSpace(r.Email))
	}
	return nil
}

// Respond stores the guest's answer. Accepting with a known address also sends a confirmation
// email when enabled; a failed confirmation is logged and does not fail the response.
func (s *invitationService) Respond(ctx context.Context, token string, resp domain.RSVPResponse) (*domain.Invitation, error) {
	if err := validateResponse(resp); err != nil {
		return nil, err
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.GetByToken(lookupCtx, token)
	if err != nil {
		return nil, err
	}
	inv, err := s.invRepo.Respond(lookupCtx, token, domain.ResolveResponse(resp, s.now()))
	if err != nil {
		return nil, err
	}

	if s.sendConfirmations && inv.Status == domain.StatusAccepted && inv.HasEmail() && current.Event != nil {
		opts := domain.DispatchOptions{Confirmation: true}
		if _, err := s.dispatcher.DispatchOne(context.WithoutCancel(ctx), inv, current.Event, opts); err != nil {
			s.logger.WarnContext(ctx, "confirmation email failed", "invitation_id", inv.ID, "err", err)
		}
	}
	return inv, nil
}
