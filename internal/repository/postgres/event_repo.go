package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"synathrozo/internal/domain"
)

const eventColumns = `id, user_id, title, description, event_date, location, template, custom_image_url, registry_links, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var descNull, locNull, imageNull sql.NullString
	var links []byte
	if err := row.Scan(
		&e.ID, &e.OwnerID, &e.Title, &descNull, &e.EventDate, &locNull, &e.Template,
		&imageNull, &links, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Description = descNull.String
	e.Location = locNull.String
	if imageNull.Valid {
		e.CustomImageURL = &imageNull.String
	}
	parsed, err := decodeRegistryLinks(links)
	if err != nil {
		return nil, err
	}
	e.RegistryLinks = parsed
	return e, nil
}

func decodeRegistryLinks(raw []byte) ([]domain.RegistryLink, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var links []domain.RegistryLink
	if err := json.Unmarshal(raw, &links); err != nil {
		return nil, fmt.Errorf("decode registry_links: %w", err)
	}
	return links, nil
}

// registryLinksArg returns the jsonb argument for links, or NULL when there are none.
func registryLinksArg(links []domain.RegistryLink) (any, error) {
	if len(links) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(links)
	if err != nil {
		return nil, fmt.Errorf("encode registry_links: %w", err)
	}
	return string(b), nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	links, err := registryLinksArg(e.RegistryLinks)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO events (user_id, title, description, event_date, location, template, custom_image_url, registry_links, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.OwnerID, e.Title, nullIfEmpty(e.Description), e.EventDate, nullIfEmpty(e.Location), e.Template,
		e.CustomImageURL, links, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1 ORDER BY event_date ASC`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update writes every editable field of e. The row must belong to e.OwnerID.
func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	links, err := registryLinksArg(e.RegistryLinks)
	if err != nil {
		return err
	}
	query := `
		UPDATE events
		SET title = $1, description = $2, event_date = $3, location = $4, template = $5,
		    custom_image_url = $6, registry_links = $7, updated_at = $8
		WHERE id = $9 AND user_id = $10
		RETURNING created_at
	`
	err = r.DB.QueryRowContext(ctx, query,
		e.Title, nullIfEmpty(e.Description), e.EventDate, nullIfEmpty(e.Location), e.Template,
		e.CustomImageURL, links, e.UpdatedAt, e.ID, e.OwnerID,
	).Scan(&e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes the event and, through the foreign key, its invitations.
func (r *eventRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := `DELETE FROM events WHERE id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
