package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the RSVP lifecycle state of an invitation.
type InvitationStatus string

const (
	StatusPending  InvitationStatus = "pending"
	StatusOpened   InvitationStatus = "opened"
	StatusAccepted InvitationStatus = "accepted"
	StatusDeclined InvitationStatus = "declined"
)

// transitions is the legal lifecycle graph. opened may be skipped; accepted and declined have no exits.
var transitions = map[InvitationStatus][]InvitationStatus{
	StatusPending: {StatusOpened, StatusAccepted, StatusDeclined},
	StatusOpened:  {StatusAccepted, StatusDeclined},
}

var statusLabels = map[InvitationStatus]string{
	StatusPending:  "Pending",
	StatusOpened:   "Opened",
	StatusAccepted: "Attending",
	StatusDeclined: "Declined",
}

// Valid reports whether s is one of the four known states.
func (s InvitationStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsTerminal reports whether the guest has answered.
func (s InvitationStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusDeclined
}

// CanTransition reports whether the graph allows moving from s to next.
func (s InvitationStatus) CanTransition(next InvitationStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Label returns the host-facing display name of the status.
func (s InvitationStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Invitation is a single guest invitation for an event. Token is assigned once and never changes.
// swagger:model Invitation
type Invitation struct {
	ID          string           `json:"id"`
	EventID     string           `json:"event_id"`
	Email       *string          `json:"email"`
	Name        *string          `json:"name"`
	Phone       *string          `json:"phone"`
	Token       string           `json:"token"`
	Status      InvitationStatus `json:"status"`
	GuestCount  *int             `json:"guest_count"`
	Message     *string          `json:"message"`
	CreatedAt   time.Time        `json:"created_at"`
	SentAt      *time.Time       `json:"sent_at"`
	OpenedAt    *time.Time       `json:"opened_at"`
	RespondedAt *time.Time       `json:"responded_at"`
}

// NewInvitation returns a pending invitation with a fresh token. email may be empty.
func NewInvitation(eventID, email string, createdAt time.Time) *Invitation {
	return &Invitation{
		EventID:   eventID,
		Email:     NormalizeEmail(email),
		Token:     uuid.NewString(),
		Status:    StatusPending,
		CreatedAt: createdAt,
	}
}

// NormalizeEmail trims and lower-cases email; empty input yields nil.
func NormalizeEmail(email string) *string {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return nil
	}
	return &e
}

// HasEmail reports whether the invitation has a contact address.
func (i *Invitation) HasEmail() bool {
	return i.Email != nil && *i.Email != ""
}

// MarkOpened applies the tracking transition. It returns false and leaves the
// invitation untouched unless the current status is exactly pending.
func (i *Invitation) MarkOpened(at time.Time) bool {
	if i.Status != StatusPending {
		return false
	}
	i.Status = StatusOpened
	i.OpenedAt = &at
	return true
}

// ApplyResponse overwrites the response fields. Repeated answers replace earlier ones.
func (i *Invitation) ApplyResponse(r ResolvedResponse) {
	name, phone := r.Name, r.Phone
	count := r.GuestCount
	at := r.RespondedAt
	i.Name = &name
	i.Phone = &phone
	if r.Email != nil {
		i.Email = r.Email
	}
	i.Status = r.Status
	i.GuestCount = &count
	i.Message = r.Message
	i.RespondedAt = &at
}

// InvitationWithEvent is an invitation joined with the event fields needed to render it.
// swagger:model InvitationWithEvent
type InvitationWithEvent struct {
	*Invitation
	Event *Event `json:"event"`
}

// RSVPResponse is a guest's answer as submitted.
type RSVPResponse struct {
	Name       string
	Phone      string
	Email      string
	Attending  bool
	GuestCount *int
	Message    string
}

// ResolvedResponse is an RSVPResponse with defaults applied, ready to store.
type ResolvedResponse struct {
	Name        string
	Phone       string
	Email       *string
	Status      InvitationStatus
	GuestCount  int
	Message     *string
	RespondedAt time.Time
}

// DefaultGuestCount is the head count assumed for an accepted invitation without one.
const DefaultGuestCount = 1

// ResolveResponse applies the response rules: accepting defaults the guest count to 1,
// declining forces it to 0 whatever was submitted.
func ResolveResponse(r RSVPResponse, now time.Time) ResolvedResponse {
	out := ResolvedResponse{
		Name:        strings.TrimSpace(r.Name),
		Phone:       strings.TrimSpace(r.Phone),
		Email:       NormalizeEmail(r.Email),
		RespondedAt: now,
	}
	if r.Attending {
		out.Status = StatusAccepted
		out.GuestCount = DefaultGuestCount
		if r.GuestCount != nil && *r.GuestCount > 0 {
			out.GuestCount = *r.GuestCount
		}
	} else {
		out.Status = StatusDeclined
		out.GuestCount = 0
	}
	if m := strings.TrimSpace(r.Message); m != "" {
		out.Message = &m
	}
	return out
}

// InvitationRepository defines storage operations for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	CreateBatch(ctx context.Context, invs []*Invitation) error
	ListByEventID(ctx context.Context, eventID string) ([]*Invitation, error)
	GetByToken(ctx context.Context, token string) (*InvitationWithEvent, error)
	// MarkOpened moves a pending invitation to opened. For any other status it returns the
	// current row unchanged.
	MarkOpened(ctx context.Context, token string, at time.Time) (*Invitation, error)
	Respond(ctx context.Context, token string, resp ResolvedResponse) (*Invitation, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id, ownerID string) error
	ListStatusByEventID(ctx context.Context, eventID string) ([]StatusTally, error)
}

// InvitationService defines invitation operations for hosts and guests.
type InvitationService interface {
	CreateInvitations(ctx context.Context, eventID, ownerID string, emails []string) ([]*Invitation, error)
	CreateInvitation(ctx context.Context, eventID, ownerID, email string) (*Invitation, error)
	ListInvitations(ctx context.Context, eventID, ownerID string) ([]*Invitation, error)
	DeleteInvitation(ctx context.Context, invitationID, ownerID string) error
	Stats(ctx context.Context, eventID, ownerID string) (*InvitationStats, error)
	SendInvitations(ctx context.Context, eventID, ownerID string, invitationIDs []string, opts DispatchOptions) (*BulkDispatch, error)

	GetByToken(ctx context.Context, token string) (*InvitationWithEvent, error)
	MarkOpened(ctx context.Context, token string) (*Invitation, error)
	Respond(ctx context.Context, token string, resp RSVPResponse) (*Invitation, error)
}
