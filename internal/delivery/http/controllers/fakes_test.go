package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"synathrozo/internal/delivery/http/helpers"
	"synathrozo/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) helpers.APIResponse {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw), "response must be valid JSON envelope")
	if data != nil && raw.Error == nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return helpers.APIResponse{Data: data, Error: raw.Error}
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err          error
	event        *domain.Event
	events       []*domain.Event
	lastCreate   *domain.Event
	lastEventID  string
	lastOwnerID  string
	lastUpdate   domain.EventUpdate
	deleteCalled bool
}

func (f *fakeEventService) CreateEvent(ctx context.Context, e *domain.Event) error {
	f.lastCreate = e
	if f.err != nil {
		return f.err
	}
	e.ID = "ev-created"
	return nil
}

func (f *fakeEventService) ListEvents(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	f.lastOwnerID = ownerID
	return f.events, f.err
}

func (f *fakeEventService) GetEvent(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	f.lastEventID, f.lastOwnerID = eventID, ownerID
	return f.event, f.err
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, eventID, ownerID string, upd domain.EventUpdate) (*domain.Event, error) {
	f.lastEventID, f.lastOwnerID, f.lastUpdate = eventID, ownerID, upd
	return f.event, f.err
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, eventID, ownerID string) error {
	f.lastEventID, f.lastOwnerID = eventID, ownerID
	f.deleteCalled = true
	return f.err
}

func (f *fakeEventService) Templates() []domain.Template {
	return domain.Templates()
}

// fakeInvitationService implements domain.InvitationService for handler tests.
type fakeInvitationService struct {
	err         error
	invs        []*domain.Invitation
	inv         *domain.Invitation
	withEvent   *domain.InvitationWithEvent
	stats       *domain.InvitationStats
	run         *domain.BulkDispatch
	lastEventID string
	lastOwnerID string
	lastEmails  []string
	lastEmail   *string
	lastIDs     []string
	lastOpts    domain.DispatchOptions
	lastToken   string
	lastResp    domain.RSVPResponse
}

func (f *fakeInvitationService) CreateInvitations(ctx context.Context, eventID, ownerID string, emails []string) ([]*domain.Invitation, error) {
	f.lastEventID, f.lastOwnerID, f.lastEmails = eventID, ownerID, emails
	return f.invs, f.err
}

func (f *fakeInvitationService) CreateInvitation(ctx context.Context, eventID, ownerID, email string) (*domain.Invitation, error) {
	f.lastEventID, f.lastOwnerID, f.lastEmail = eventID, ownerID, &email
	return f.inv, f.err
}

func (f *fakeInvitationService) ListInvitations(ctx context.Context, eventID, ownerID string) ([]*domain.Invitation, error) {
	f.lastEventID, f.lastOwnerID = eventID, ownerID
	return f.invs, f.err
}

func (f *fakeInvitationService) DeleteInvitation(ctx context.Context, invitationID, ownerID string) error {
	f.lastEventID, f.lastOwnerID = invitationID, ownerID
	return f.err
}

func (f *fakeInvitationService) Stats(ctx context.Context, eventID, ownerID string) (*domain.InvitationStats, error) {
	f.lastEventID, f.lastOwnerID = eventID, ownerID
	return f.stats, f.err
}

func (f *fakeInvitationService) SendInvitations(ctx context.Context, eventID, ownerID string, ids []string, opts domain.DispatchOptions) (*domain.BulkDispatch, error) {
	f.lastEventID, f.lastOwnerID, f.lastIDs, f.lastOpts = eventID, ownerID, ids, opts
	return f.run, f.err
}

func (f *fakeInvitationService) GetByToken(ctx context.Context, token string) (*domain.InvitationWithEvent, error) {
	f.lastToken = token
	return f.withEvent, f.err
}

func (f *fakeInvitationService) MarkOpened(ctx context.Context, token string) (*domain.Invitation, error) {
	f.lastToken = token
	return f.inv, f.err
}

func (f *fakeInvitationService) Respond(ctx context.Context, token string, resp domain.RSVPResponse) (*domain.Invitation, error) {
	f.lastToken, f.lastResp = token, resp
	return f.inv, f.err
}

// fakeDispatcher implements the parts of domain.NotificationDispatcher controllers use.
type fakeDispatcher struct {
	domain.NotificationDispatcher
	reachable bool
}

func (f *fakeDispatcher) RSVPLink(token string) string {
	return "https://invites.example.com/rsvp.html?token=" + token
}

func (f *fakeDispatcher) CheckConfiguration(ctx context.Context) bool {
	return f.reachable
}

// finishedRun returns a completed bulk dispatch with the given snapshots and result.
func finishedRun(progress []domain.BulkProgress, res domain.BulkResult) *domain.BulkDispatch {
	run := domain.NewBulkDispatch(len(progress))
	for _, p := range progress {
		run.Report(p)
	}
	run.Finish(res)
	return run
}

func sampleInvitation(id, token string, status domain.InvitationStatus) *domain.Invitation {
	email := id + "@example.com"
	return &domain.Invitation{
		ID:        id,
		EventID:   "ev-1",
		Email:     &email,
		Token:     token,
		Status:    status,
		CreatedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}
