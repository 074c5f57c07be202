package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"synathrozo/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func validateTemplate(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.DefaultTemplateID, nil
	}
	if _, ok := domain.LookupTemplate(id); !ok {
		return "", fmt.Errorf("%w: unknown template %q", domain.ErrInvalidInput, id)
	}
	return id, nil
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OwnerID == "" {
		return domain.ErrUnauthorized
	}
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if event.EventDate.IsZero() {
		return fmt.Errorf("%w: event_date is required", domain.ErrInvalidInput)
	}
	tmpl, err := validateTemplate(event.Template)
	if err != nil {
		return err
	}
	event.Template = tmpl

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) ListEvents(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	events, err := s.eventRepo.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

// ownedEvent loads the event and checks that ownerID owns it.
func ownedEvent(ctx context.Context, repo domain.EventRepository, eventID, ownerID string) (*domain.Event, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	event, err := repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return ownedEvent(ctx, s.eventRepo, eventID, ownerID)
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, ownerID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := ownedEvent(ctx, s.eventRepo, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
		event.Title = title
	}
	if upd.Description != nil {
		event.Description = *upd.Description
	}
	if upd.EventDate != nil {
		event.EventDate = *upd.EventDate
	}
	if upd.Location != nil {
		event.Location = *upd.Location
	}
	if upd.Template != nil {
		tmpl, err := validateTemplate(*upd.Template)
		if err != nil {
			return nil, err
		}
		event.Template = tmpl
	}
	if upd.CustomImageURL != nil {
		event.CustomImageURL = optional(strings.TrimSpace(*upd.CustomImageURL))
	}
	if upd.RegistryLinks != nil {
		event.RegistryLinks = upd.RegistryLinks
	}
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if ownerID == "" {
		return domain.ErrUnauthorized
	}
	if err := s.eventRepo.Delete(ctx, eventID, ownerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) Templates() []domain.Template {
	return domain.Templates()
}
