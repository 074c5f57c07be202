package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"synathrozo/internal/domain"
)

const invitationColumns = `id, event_id, email, name, phone, token, status, guest_count, message, created_at, sent_at, opened_at, responded_at`

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{
		DB: db,
	}
}

// prefixed qualifies a column list with a table alias.
func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// invitationDest returns scan destinations for invitationColumns and a func that copies
// the nullable values into inv once Scan has run.
func invitationDest(inv *domain.Invitation) ([]any, func()) {
	var email, name, phone, message sql.NullString
	var guestCount sql.NullInt64
	var sentAt, openedAt, respondedAt sql.NullTime
	var status string
	dest := []any{
		&inv.ID, &inv.EventID, &email, &name, &phone, &inv.Token, &status,
		&guestCount, &message, &inv.CreatedAt, &sentAt, &openedAt, &respondedAt,
	}
	fill := func() {
		inv.Status = domain.InvitationStatus(status)
		inv.Email = nullString(email)
		inv.Name = nullString(name)
		inv.Phone = nullString(phone)
		inv.Message = nullString(message)
		if guestCount.Valid {
			n := int(guestCount.Int64)
			inv.GuestCount = &n
		}
		inv.SentAt = nullTime(sentAt)
		inv.OpenedAt = nullTime(openedAt)
		inv.RespondedAt = nullTime(respondedAt)
	}
	return dest, fill
}

func scanInvitation(row rowScanner) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	dest, fill := invitationDest(inv)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	fill()
	return inv, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

const insertInvitation = `
	INSERT INTO invitations (event_id, email, token, status, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
`

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	return r.DB.QueryRowContext(ctx, insertInvitation,
		inv.EventID, inv.Email, inv.Token, string(inv.Status), inv.CreatedAt,
	).Scan(&inv.ID)
}

// CreateBatch inserts all invitations in one transaction; either all rows are created or none.
func (r *invitationRepository) CreateBatch(ctx context.Context, invs []*domain.Invitation) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, inv := range invs {
		if err := tx.QueryRowContext(ctx, insertInvitation,
			inv.EventID, inv.Email, inv.Token, string(inv.Status), inv.CreatedAt,
		).Scan(&inv.ID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *invitationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE event_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invs, nil
}

func (r *invitationRepository) GetByToken(ctx context.Context, token string) (*domain.InvitationWithEvent, error) {
	query := `
		SELECT ` + prefixed("i", invitationColumns) + `,
		       e.id, e.user_id, e.title, e.description, e.event_date, e.location, e.template, e.custom_image_url, e.registry_links
		FROM invitations i
		JOIN events e ON e.id = i.event_id
		WHERE i.token = $1
	`
	inv := &domain.Invitation{}
	dest, fill := invitationDest(inv)
	ev := &domain.Event{}
	var descNull, locNull, imageNull sql.NullString
	var links []byte
	dest = append(dest, &ev.ID, &ev.OwnerID, &ev.Title, &descNull, &ev.EventDate, &locNull, &ev.Template, &imageNull, &links)

	if err := r.DB.QueryRowContext(ctx, query, token).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	fill()
	ev.Description = descNull.String
	ev.Location = locNull.String
	ev.CustomImageURL = nullString(imageNull)
	parsed, err := decodeRegistryLinks(links)
	if err != nil {
		return nil, err
	}
	ev.RegistryLinks = parsed
	return &domain.InvitationWithEvent{Invitation: inv, Event: ev}, nil
}

func (r *invitationRepository) getByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

// MarkOpened is guarded by status = 'pending' in the statement itself, so a repeated
// tracking signal cannot move an invitation twice.
func (r *invitationRepository) MarkOpened(ctx context.Context, token string, at time.Time) (*domain.Invitation, error) {
	query := `
		UPDATE invitations SET status = $2, opened_at = $3
		WHERE token = $1 AND status = $4
		RETURNING ` + invitationColumns
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query,
		token, string(domain.StatusOpened), at, string(domain.StatusPending)))
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return r.getByToken(ctx, token)
}

// Respond overwrites the response fields. The email is only replaced when an override is given.
func (r *invitationRepository) Respond(ctx context.Context, token string, resp domain.ResolvedResponse) (*domain.Invitation, error) {
	query := `
		UPDATE invitations
		SET name = $2, phone = $3, email = COALESCE($4, email), status = $5,
		    guest_count = $6, message = $7, responded_at = $8
		WHERE token = $1
		RETURNING ` + invitationColumns
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query,
		token, resp.Name, nullIfEmpty(resp.Phone), resp.Email, string(resp.Status),
		resp.GuestCount, resp.Message, resp.RespondedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE invitations SET sent_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the invitation only if its event is owned by ownerID.
func (r *invitationRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := `
		DELETE FROM invitations i
		USING events e
		WHERE i.id = $1 AND i.event_id = e.id AND e.user_id = $2
	`
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

func (r *invitationRepository) ListStatusByEventID(ctx context.Context, eventID string) ([]domain.StatusTally, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, guest_count FROM invitations WHERE event_id = $1`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.StatusTally, 0)
	for rows.Next() {
		var status string
		var count sql.NullInt64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		t := domain.StatusTally{Status: domain.InvitationStatus(status)}
		if count.Valid {
			n := int(count.Int64)
			t.GuestCount = &n
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
