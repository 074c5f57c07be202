package services

import (
	"context"
	"fmt"

	"synathrozo/internal/domain"
)

type statusAggregator struct {
	invRepo domain.InvitationRepository
}

// NewStatusAggregator returns a read-only StatusAggregator over invRepo.
func NewStatusAggregator(invRepo domain.InvitationRepository) domain.StatusAggregator {
	return &statusAggregator{invRepo: invRepo}
}

func (a *statusAggregator) Summarize(ctx context.Context, eventID string) (*domain.InvitationStats, error) {
	rows, err := a.invRepo.ListStatusByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list invitation statuses: %w", err)
	}
	stats := domain.Tally(rows)
	return &stats, nil
}
