package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"synathrozo/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_CreateEvent(t *testing.T) {
	date := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		name         string
		event        *domain.Event
		wantErr      error
		wantTemplate string
	}{
		{
			name:         "defaults template",
			event:        domain.NewEvent("owner-1", " Wedding ", "", "", "", date, time.Time{}),
			wantTemplate: domain.DefaultTemplateID,
		},
		{
			name:         "keeps known template",
			event:        domain.NewEvent("owner-1", "Gala", "", "", "classic-formal", date, time.Time{}),
			wantTemplate: "classic-formal",
		},
		{
			name:    "unknown template",
			event:   domain.NewEvent("owner-1", "Gala", "", "", "neon", date, time.Time{}),
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing owner",
			event:   domain.NewEvent("", "Gala", "", "", "", date, time.Time{}),
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "blank title",
			event:   domain.NewEvent("owner-1", "  ", "", "", "", date, time.Time{}),
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "missing date",
			event:   domain.NewEvent("owner-1", "Gala", "", "", "", time.Time{}, time.Time{}),
			wantErr: domain.ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeEventRepo()
			svc := NewEventService(repo, 5*time.Second)

			err := svc.CreateEvent(context.Background(), tt.event)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Empty(t, repo.byID)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tt.event.ID)
			assert.Equal(t, tt.wantTemplate, tt.event.Template)
			assert.False(t, tt.event.CreatedAt.IsZero())
			assert.NotContains(t, tt.event.Title, " ")
		})
	}
}

func TestEventService_CreateEvent_RepoError(t *testing.T) {
	repo := newFakeEventRepo()
	repo.err = errors.New("connection refused")
	svc := NewEventService(repo, 5*time.Second)

	err := svc.CreateEvent(context.Background(), domain.NewEvent("owner-1", "Gala", "", "", "", time.Now(), time.Time{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestEventService_ListEvents(t *testing.T) {
	repo := newFakeEventRepo()
	repo.add("ev-1", "owner-1", "Mine")
	repo.add("ev-2", "owner-2", "Theirs")
	svc := NewEventService(repo, 5*time.Second)

	events, err := svc.ListEvents(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev-1", events[0].ID)

	events, err = svc.ListEvents(context.Background(), "owner-3")
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)

	_, err = svc.ListEvents(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEventService_GetEvent(t *testing.T) {
	repo := newFakeEventRepo()
	repo.add("ev-1", "owner-1", "Mine")
	svc := NewEventService(repo, 5*time.Second)

	e, err := svc.GetEvent(context.Background(), "ev-1", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "Mine", e.Title)

	_, err = svc.GetEvent(context.Background(), "ev-1", "owner-2")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.GetEvent(context.Background(), "ev-404", "owner-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_UpdateEvent(t *testing.T) {
	repo := newFakeEventRepo()
	repo.add("ev-1", "owner-1", "Mine")
	svc := NewEventService(repo, 5*time.Second)
	newDate := time.Date(2027, 1, 1, 20, 0, 0, 0, time.UTC)

	e, err := svc.UpdateEvent(context.Background(), "ev-1", "owner-1", domain.EventUpdate{
		Title:          strPtr("Renamed"),
		EventDate:      &newDate,
		Template:       strPtr("garden-party"),
		CustomImageURL: strPtr("https://img.example.com/a.png"),
		RegistryLinks:  []domain.RegistryLink{{Name: "Store", URL: "https://store.example.com"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", e.Title)
	assert.Equal(t, newDate, e.EventDate)
	assert.Equal(t, "garden-party", e.Template)
	assert.Equal(t, "https://img.example.com/a.png", *e.CustomImageURL)
	assert.Len(t, e.RegistryLinks, 1)

	e, err = svc.UpdateEvent(context.Background(), "ev-1", "owner-1", domain.EventUpdate{CustomImageURL: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, e.CustomImageURL, "empty image url clears it")
	assert.Equal(t, "Renamed", e.Title, "nil fields are untouched")

	_, err = svc.UpdateEvent(context.Background(), "ev-1", "owner-1", domain.EventUpdate{Title: strPtr(" ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateEvent(context.Background(), "ev-1", "owner-1", domain.EventUpdate{Template: strPtr("neon")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateEvent(context.Background(), "ev-1", "owner-2", domain.EventUpdate{Title: strPtr("Hijack")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEventService_DeleteEvent(t *testing.T) {
	repo := newFakeEventRepo()
	repo.add("ev-1", "owner-1", "Mine")
	svc := NewEventService(repo, 5*time.Second)

	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), "ev-1", "owner-2"), domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), "ev-1", ""), domain.ErrUnauthorized)
	require.NoError(t, svc.DeleteEvent(context.Background(), "ev-1", "owner-1"))
	assert.Empty(t, repo.byID)
}

func TestEventService_Templates(t *testing.T) {
	svc := NewEventService(newFakeEventRepo(), time.Second)
	ids := make([]string, 0, 4)
	for _, tmpl := range svc.Templates() {
		ids = append(ids, tmpl.ID)
	}
	assert.Equal(t, []string{"shabby-chic", "modern-dark", "garden-party", "classic-formal"}, ids)
}
