package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"synathrozo/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, Create returns this error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	cur, ok := f.byID[e.ID]
	if !ok || cur.OwnerID != e.OwnerID {
		return domain.ErrNotFound
	}
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id, ownerID string) error {
	e, ok := f.byID[id]
	if !ok || e.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) add(id, ownerID, title string) *domain.Event {
	e := domain.NewEvent(ownerID, title, "", "", "", time.Date(2026, 6, 20, 17, 0, 0, 0, time.UTC), time.Now())
	e.ID = id
	f.byID[id] = e
	return e
}

// fakeInvitationRepo is an in-memory InvitationRepository for tests. MarkSent is called from
// the bulk dispatch goroutine, so access is guarded.
type fakeInvitationRepo struct {
	mu        sync.Mutex
	invs      []*domain.Invitation
	events    *fakeEventRepo
	nextID    int
	createErr error
	sentErr   error
	sent      []string
}

func newFakeInvitationRepo(events *fakeEventRepo) *fakeInvitationRepo {
	return &fakeInvitationRepo{events: events, nextID: 1}
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	return f.CreateBatch(ctx, []*domain.Invitation{inv})
}

func (f *fakeInvitationRepo) CreateBatch(ctx context.Context, invs []*domain.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, inv := range invs {
		inv.ID = fmt.Sprintf("inv-%d", f.nextID)
		f.nextID++
		f.invs = append(f.invs, inv)
	}
	return nil
}

func (f *fakeInvitationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Invitation
	for _, inv := range f.invs {
		if inv.EventID == eventID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) find(token string) *domain.Invitation {
	for _, inv := range f.invs {
		if inv.Token == token {
			return inv
		}
	}
	return nil
}

func (f *fakeInvitationRepo) GetByToken(ctx context.Context, token string) (*domain.InvitationWithEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv := f.find(token)
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &domain.InvitationWithEvent{Invitation: &cp, Event: f.events.byID[inv.EventID]}, nil
}

func (f *fakeInvitationRepo) MarkOpened(ctx context.Context, token string, at time.Time) (*domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv := f.find(token)
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	inv.MarkOpened(at)
	cp := *inv
	return &cp, nil
}

func (f *fakeInvitationRepo) Respond(ctx context.Context, token string, resp domain.ResolvedResponse) (*domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv := f.find(token)
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	inv.ApplyResponse(resp)
	cp := *inv
	return &cp, nil
}

func (f *fakeInvitationRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sentErr != nil {
		return f.sentErr
	}
	for _, inv := range f.invs {
		if inv.ID == id {
			f.sent = append(f.sent, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeInvitationRepo) Delete(ctx context.Context, id, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, inv := range f.invs {
		if inv.ID != id {
			continue
		}
		if e := f.events.byID[inv.EventID]; e == nil || e.OwnerID != ownerID {
			return domain.ErrNotFound
		}
		f.invs = append(f.invs[:i], f.invs[i+1:]...)
		return nil
	}
	return domain.ErrNotFound
}

func (f *fakeInvitationRepo) ListStatusByEventID(ctx context.Context, eventID string) ([]domain.StatusTally, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.StatusTally
	for _, inv := range f.invs {
		if inv.EventID == eventID {
			out = append(out, domain.StatusTally{Status: inv.Status, GuestCount: inv.GuestCount})
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) sentIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// fakeDeliveryClient records requests and fails for addresses listed in failFor.
type fakeDeliveryClient struct {
	mu        sync.Mutex
	requests  []*domain.DeliveryRequest
	failFor   map[string]string
	reachable bool
}

func (f *fakeDeliveryClient) Send(ctx context.Context, req *domain.DeliveryRequest) (*domain.DeliveryReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if msg, ok := f.failFor[req.To]; ok {
		return nil, errors.New(msg)
	}
	return &domain.DeliveryReceipt{ID: fmt.Sprintf("msg-%d", len(f.requests))}, nil
}

func (f *fakeDeliveryClient) Probe(ctx context.Context) bool {
	return f.reachable
}

func (f *fakeDeliveryClient) calls() []*domain.DeliveryRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.DeliveryRequest(nil), f.requests...)
}

// fakeMailer records sent mail.
type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.to, f.subject, f.html, f.text = to, subject, html, text
	return "mail-1", nil
}

// fakeRenderer records the template name and data it was asked to render.
type fakeRenderer struct {
	name string
	data any
	err  error
}

func (f *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	if f.err != nil {
		return "", "", "", f.err
	}
	f.name, f.data = name, data
	return "subject " + name, "<p>" + name + "</p>", name, nil
}
