package domain

import (
	"context"
	"time"
)

// DeliveryRequest is the payload the email function accepts.
// swagger:model DeliveryRequest
type DeliveryRequest struct {
	To                 string         `json:"to"`
	GuestName          *string        `json:"guestName"`
	EventTitle         string         `json:"eventTitle"`
	EventDate          string         `json:"eventDate"`
	FormattedEventDate string         `json:"formattedEventDate"`
	EventLocation      *string        `json:"eventLocation"`
	EventDescription   *string        `json:"eventDescription"`
	RSVPLink           string         `json:"rsvpLink"`
	TemplateID         string         `json:"templateId"`
	CustomImageURL     *string        `json:"customImageUrl"`
	HostName           *string        `json:"hostName,omitempty"`
	IsConfirmation     bool           `json:"isConfirmation"`
	RegistryLinks      []RegistryLink `json:"registryLinks"`
}

// Validate reports ErrMissingFields when a field the email cannot be built without is empty.
func (r *DeliveryRequest) Validate() error {
	if r.To == "" || r.EventTitle == "" || r.EventDate == "" || r.RSVPLink == "" {
		return ErrMissingFields
	}
	return nil
}

// DeliveryReceipt is returned by the delivery collaborator on success.
type DeliveryReceipt struct {
	ID string `json:"id"`
}

// DeliveryClient hands a rendered-email request to the email function.
type DeliveryClient interface {
	Send(ctx context.Context, req *DeliveryRequest) (*DeliveryReceipt, error)
	// Probe reports whether the email function answers a preflight request.
	Probe(ctx context.Context) bool
}

// DispatchOptions controls how a notification is composed.
type DispatchOptions struct {
	// Location is the time zone the event date is formatted in. Nil uses the configured default.
	Location     *time.Location
	Confirmation bool
}

// BulkProgress is a running snapshot emitted after each item of a bulk dispatch.
type BulkProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// BulkError records one failed item of a bulk dispatch.
type BulkError struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// BulkResult is the outcome of a bulk dispatch. Success+Failed equals the batch size.
// swagger:model BulkResult
type BulkResult struct {
	Success int         `json:"success"`
	Failed  int         `json:"failed"`
	Errors  []BulkError `json:"errors"`
}

// BulkDispatch is a running bulk dispatch. Progress yields one snapshot per item and is
// closed when the batch ends; it cannot be replayed. Wait blocks for the final result.
type BulkDispatch struct {
	progress chan BulkProgress
	done     chan struct{}
	result   BulkResult
}

// NewBulkDispatch returns a run for a batch of total items. The progress buffer holds every
// snapshot so the producer never blocks on a slow or absent reader.
func NewBulkDispatch(total int) *BulkDispatch {
	return &BulkDispatch{
		progress: make(chan BulkProgress, total),
		done:     make(chan struct{}),
		result:   BulkResult{Errors: []BulkError{}},
	}
}

// Report queues a snapshot. Only the producer calls it.
func (b *BulkDispatch) Report(p BulkProgress) {
	b.progress <- p
}

// Finish stores the result and closes the progress sequence. Only the producer calls it, once.
func (b *BulkDispatch) Finish(res BulkResult) {
	if res.Errors == nil {
		res.Errors = []BulkError{}
	}
	b.result = res
	close(b.progress)
	close(b.done)
}

// Progress returns the snapshot sequence.
func (b *BulkDispatch) Progress() <-chan BulkProgress {
	return b.progress
}

// Wait blocks until the batch has finished and returns its result.
func (b *BulkDispatch) Wait() BulkResult {
	<-b.done
	return b.result
}

// NotificationDispatcher composes invitation notifications and hands them to the delivery collaborator.
type NotificationDispatcher interface {
	// DispatchOne sends one notification. Invitations (not confirmations) record sent_at on success.
	DispatchOne(ctx context.Context, inv *Invitation, event *Event, opts DispatchOptions) (*DeliveryReceipt, error)
	// StartBulk dispatches invs sequentially in the background and returns the running batch.
	StartBulk(ctx context.Context, invs []*Invitation, event *Event, opts DispatchOptions) *BulkDispatch
	// DispatchBulk is StartBulk followed by Wait.
	DispatchBulk(ctx context.Context, invs []*Invitation, event *Event, opts DispatchOptions) BulkResult
	CheckConfiguration(ctx context.Context) bool
	RSVPLink(token string) string
}
