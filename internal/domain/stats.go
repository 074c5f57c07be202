package domain

import "context"

// StatusTally is the per-invitation projection the aggregator reads.
type StatusTally struct {
	Status     InvitationStatus
	GuestCount *int
}

// InvitationStats summarizes invitation states for an event.
// swagger:model InvitationStats
type InvitationStats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Opened      int `json:"opened"`
	Accepted    int `json:"accepted"`
	Declined    int `json:"declined"`
	TotalGuests int `json:"totalGuests"`
}

// Tally counts rows per status. Head count sums only accepted rows, with a null count as 1.
func Tally(rows []StatusTally) InvitationStats {
	s := InvitationStats{Total: len(rows)}
	for _, r := range rows {
		switch r.Status {
		case StatusPending:
			s.Pending++
		case StatusOpened:
			s.Opened++
		case StatusAccepted:
			s.Accepted++
			if r.GuestCount != nil && *r.GuestCount > 0 {
				s.TotalGuests += *r.GuestCount
			} else {
				s.TotalGuests += DefaultGuestCount
			}
		case StatusDeclined:
			s.Declined++
		}
	}
	return s
}

// StatusAggregator derives summary counts for an event.
type StatusAggregator interface {
	Summarize(ctx context.Context, eventID string) (*InvitationStats, error)
}
