package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"synathrozo/internal/domain"
)

// DefaultDispatchDelay is the pause between successive delivery calls of a bulk dispatch.
const DefaultDispatchDelay = 200 * time.Millisecond

// EventDateLayout renders event dates the way the invitation page shows them.
const EventDateLayout = "Monday, January 2, 2006 at 03:04 PM"

const (
	noEmailRecipient = "No email"
	noEmailReason    = "No email address"
)

var errNoEmail = errors.New(noEmailReason)

// DispatcherConfig holds the settings a Dispatcher needs.
type DispatcherConfig struct {
	PublicBaseURL string
	Location      *time.Location
	Delay         time.Duration
}

type dispatcher struct {
	client   domain.DeliveryClient
	invRepo  domain.InvitationRepository
	baseURL  string
	location *time.Location
	delay    time.Duration
	logger   *slog.Logger

	sleep func(time.Duration)
	now   func() time.Time
}

// NewDispatcher returns a NotificationDispatcher that sends through client and records
// sent_at through invRepo. A nil Location formats dates in UTC.
func NewDispatcher(client domain.DeliveryClient, invRepo domain.InvitationRepository, cfg DispatcherConfig, logger *slog.Logger) domain.NotificationDispatcher {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &dispatcher{
		client:   client,
		invRepo:  invRepo,
		baseURL:  cfg.PublicBaseURL,
		location: loc,
		delay:    cfg.Delay,
		logger:   logger,
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// RSVPLink returns the public response page URL for token.
func (d *dispatcher) RSVPLink(token string) string {
	return d.baseURL + "/rsvp.html?" + url.Values{"token": {token}}.Encode()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (d *dispatcher) buildRequest(inv *domain.Invitation, event *domain.Event, opts domain.DispatchOptions) *domain.DeliveryRequest {
	loc := opts.Location
	if loc == nil {
		loc = d.location
	}
	templateID := event.Template
	if templateID == "" {
		templateID = domain.DefaultTemplateID
	}
	req := &domain.DeliveryRequest{
		To:                 *inv.Email,
		GuestName:          inv.Name,
		EventTitle:         event.Title,
		EventDate:          event.EventDate.UTC().Format(time.RFC3339),
		FormattedEventDate: event.EventDate.In(loc).Format(EventDateLayout),
		EventLocation:      optional(event.Location),
		EventDescription:   optional(event.Description),
		RSVPLink:           d.RSVPLink(inv.Token),
		TemplateID:         templateID,
		CustomImageURL:     event.CustomImageURL,
		IsConfirmation:     opts.Confirmation,
	}
	if opts.Confirmation {
		req.RegistryLinks = event.RegistryLinks
	}
	return req
}

func (d *dispatcher) DispatchOne(ctx context.Context, inv *domain.Invitation, event *domain.Event, opts domain.DispatchOptions) (*domain.DeliveryReceipt, error) {
	if inv == nil || event == nil {
		return nil, fmt.Errorf("%w: invitation and event are required", domain.ErrInvalidInput)
	}
	if !inv.HasEmail() {
		return nil, errNoEmail
	}
	receipt, err := d.client.Send(ctx, d.buildRequest(inv, event, opts))
	if err != nil {
		return nil, err
	}
	if opts.Confirmation {
		return receipt, nil
	}
	sentAt := d.now()
	if err := d.invRepo.MarkSent(ctx, inv.ID, sentAt); err != nil {
		// The email is already out; a missing sent_at only affects display.
		d.logger.WarnContext(ctx, "record sent_at failed", "invitation_id", inv.ID, "err", err)
	} else {
		inv.SentAt = &sentAt
	}
	return receipt, nil
}

func (d *dispatcher) StartBulk(ctx context.Context, invs []*domain.Invitation, event *domain.Event, opts domain.DispatchOptions) *domain.BulkDispatch {
	run := domain.NewBulkDispatch(len(invs))
	go func() {
		run.Finish(d.runBulk(ctx, invs, event, opts, run))
	}()
	return run
}

func (d *dispatcher) DispatchBulk(ctx context.Context, invs []*domain.Invitation, event *domain.Event, opts domain.DispatchOptions) domain.BulkResult {
	return d.StartBulk(ctx, invs, event, opts).Wait()
}

// runBulk walks invs strictly in order. Entries without an address fail without a delivery
// attempt; every delivery after the first is preceded by the configured delay.
func (d *dispatcher) runBulk(ctx context.Context, invs []*domain.Invitation, event *domain.Event, opts domain.DispatchOptions, run *domain.BulkDispatch) domain.BulkResult {
	res := domain.BulkResult{Errors: []domain.BulkError{}}
	attempted := false
	for i, inv := range invs {
		switch {
		case inv == nil || !inv.HasEmail():
			res.Failed++
			res.Errors = append(res.Errors, domain.BulkError{Email: noEmailRecipient, Error: noEmailReason})
		default:
			if attempted && d.delay > 0 {
				d.sleep(d.delay)
			}
			attempted = true
			if _, err := d.DispatchOne(ctx, inv, event, opts); err != nil {
				res.Failed++
				res.Errors = append(res.Errors, domain.BulkError{Email: *inv.Email, Error: err.Error()})
			} else {
				res.Success++
			}
		}
		run.Report(domain.BulkProgress{
			Current: i + 1,
			Total:   len(invs),
			Success: res.Success,
			Failed:  res.Failed,
		})
	}
	eventID := ""
	if event != nil {
		eventID = event.ID
	}
	d.logger.InfoContext(ctx, "bulk dispatch finished",
		"event_id", eventID, "total", len(invs), "success", res.Success, "failed", res.Failed)
	return res
}

func (d *dispatcher) CheckConfiguration(ctx context.Context) bool {
	return d.client.Probe(ctx)
}
