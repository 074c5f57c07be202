package domain

import (
	"context"
	"time"
)

// RegistryLink is a gift registry entry shown to guests who accepted.
// swagger:model RegistryLink
type RegistryLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Event represents a hosted event that guests are invited to.
// swagger:model Event
type Event struct {
	ID             string         `json:"id"`
	OwnerID        string         `json:"user_id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	EventDate      time.Time      `json:"event_date"`
	Location       string         `json:"location"`
	Template       string         `json:"template"`
	CustomImageURL *string        `json:"custom_image_url"`
	RegistryLinks  []RegistryLink `json:"registry_links"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// NewEvent returns a new Event owned by ownerID. ID is set by the repository on create.
func NewEvent(ownerID, title, description, location, template string, eventDate, createdAt time.Time) *Event {
	return &Event{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Location:    location,
		Template:    template,
		EventDate:   eventDate,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// EventRepository defines the interface for event storage.
// Update and Delete are qualified by the owner id; a row owned by someone else is reported as ErrNotFound.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id, ownerID string) error
}

// EventUpdate carries the editable event fields. Nil fields are left unchanged.
type EventUpdate struct {
	Title          *string
	Description    *string
	EventDate      *time.Time
	Location       *string
	Template       *string
	CustomImageURL *string
	RegistryLinks  []RegistryLink
}

// EventService defines host-facing event operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	ListEvents(ctx context.Context, ownerID string) ([]*Event, error)
	GetEvent(ctx context.Context, eventID, ownerID string) (*Event, error)
	UpdateEvent(ctx context.Context, eventID, ownerID string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, ownerID string) error
	Templates() []Template
}
