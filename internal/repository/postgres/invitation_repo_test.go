package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"synathrozo/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var invitationCols = []string{"id", "event_id", "email", "name", "phone", "token", "status", "guest_count", "message", "created_at", "sent_at", "opened_at", "responded_at"}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func TestInvitationRepository_Create(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	inv := &domain.Invitation{EventID: "ev-1", Email: strPtr("guest@example.com"), Token: "tok-1", Status: domain.StatusPending, CreatedAt: created}
	mock.ExpectQuery(`INSERT INTO invitations \(event_id, email, token, status, created_at\)`).
		WithArgs("ev-1", "guest@example.com", "tok-1", "pending", created).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inv-1"))

	require.NoError(t, NewInvitationRepository(db).Create(ctx, inv))
	assert.Equal(t, "inv-1", inv.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_CreateBatch(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("commits all rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		invs := []*domain.Invitation{
			{EventID: "ev-1", Email: strPtr("a@example.com"), Token: "tok-a", Status: domain.StatusPending, CreatedAt: created},
			{EventID: "ev-1", Email: strPtr("b@example.com"), Token: "tok-b", Status: domain.StatusPending, CreatedAt: created},
		}
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO invitations`).WithArgs("ev-1", "a@example.com", "tok-a", "pending", created).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inv-a"))
		mock.ExpectQuery(`INSERT INTO invitations`).WithArgs("ev-1", "b@example.com", "tok-b", "pending", created).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inv-b"))
		mock.ExpectCommit()

		require.NoError(t, NewInvitationRepository(db).CreateBatch(ctx, invs))
		assert.Equal(t, "inv-a", invs[0].ID)
		assert.Equal(t, "inv-b", invs[1].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		invs := []*domain.Invitation{
			{EventID: "ev-1", Token: "tok-a", Status: domain.StatusPending, CreatedAt: created},
		}
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO invitations`).WillReturnError(errors.New("duplicate key"))
		mock.ExpectRollback()

		err = NewInvitationRepository(db).CreateBatch(ctx, invs)
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInvitationRepository_ListByEventID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	responded := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM invitations WHERE event_id = \$1 ORDER BY created_at DESC`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows(invitationCols).
			AddRow("inv-2", "ev-1", "b@example.com", "Bea", "555", "tok-2", "accepted", int64(3), "yay", created, created, nil, responded).
			AddRow("inv-1", "ev-1", nil, nil, nil, "tok-1", "pending", nil, nil, created, nil, nil, nil))

	got, err := NewInvitationRepository(db).ListByEventID(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.StatusAccepted, got[0].Status)
	require.NotNil(t, got[0].GuestCount)
	assert.Equal(t, 3, *got[0].GuestCount)
	assert.Equal(t, "Bea", *got[0].Name)
	assert.Equal(t, responded, *got[0].RespondedAt)
	assert.Nil(t, got[0].OpenedAt)

	assert.Nil(t, got[1].Email)
	assert.Nil(t, got[1].GuestCount)
	assert.Equal(t, domain.StatusPending, got[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_GetByToken(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	when := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	cols := append(append([]string{}, invitationCols...), "id", "user_id", "title", "description", "event_date", "location", "template", "custom_image_url", "registry_links")

	t.Run("joins event fields", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`JOIN events e ON e.id = i.event_id`).
			WithArgs("tok-1").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("inv-1", "ev-1", "g@example.com", nil, nil, "tok-1", "opened", nil, nil, created, created, created, nil,
					"ev-1", "user-1", "Gala", "Black tie", when, "Hall", "classic-formal", nil, nil))

		got, err := NewInvitationRepository(db).GetByToken(ctx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, "inv-1", got.ID)
		assert.Equal(t, domain.StatusOpened, got.Status)
		assert.Equal(t, "Gala", got.Event.Title)
		assert.Equal(t, "Black tie", got.Event.Description)
		assert.Equal(t, when, got.Event.EventDate)
		assert.Nil(t, got.Event.CustomImageURL)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown token", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM invitations i`).WithArgs("nope").WillReturnError(sql.ErrNoRows)
		_, err = NewInvitationRepository(db).GetByToken(ctx, "nope")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInvitationRepository_MarkOpened(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	opened := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		mock       func(mock sqlmock.Sqlmock)
		wantStatus domain.InvitationStatus
		wantErr    error
	}{
		{
			name: "pending moves to opened",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE invitations SET status = \$2, opened_at = \$3\s+WHERE token = \$1 AND status = \$4`).
					WithArgs("tok-1", "opened", opened, "pending").
					WillReturnRows(sqlmock.NewRows(invitationCols).
						AddRow("inv-1", "ev-1", nil, nil, nil, "tok-1", "opened", nil, nil, created, nil, opened, nil))
			},
			wantStatus: domain.StatusOpened,
		},
		{
			name: "already accepted is a no-op",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE invitations SET status`).
					WithArgs("tok-1", "opened", opened, "pending").
					WillReturnError(sql.ErrNoRows)
				mock.ExpectQuery(`FROM invitations WHERE token = \$1`).
					WithArgs("tok-1").
					WillReturnRows(sqlmock.NewRows(invitationCols).
						AddRow("inv-1", "ev-1", nil, "Al", nil, "tok-1", "accepted", int64(2), nil, created, nil, nil, created))
			},
			wantStatus: domain.StatusAccepted,
		},
		{
			name: "unknown token",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE invitations SET status`).WillReturnError(sql.ErrNoRows)
				mock.ExpectQuery(`FROM invitations WHERE token = \$1`).WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewInvitationRepository(db).MarkOpened(ctx, "tok-1", opened)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, "tok-1", got.Token)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInvitationRepository_Respond(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	at := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)

	t.Run("declined stores zero guests", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		resp := domain.ResolveResponse(domain.RSVPResponse{Name: "Al", Phone: "555", Attending: false, GuestCount: intPtr(4)}, at)
		mock.ExpectQuery(`UPDATE invitations\s+SET name = \$2, phone = \$3, email = COALESCE\(\$4, email\)`).
			WithArgs("tok-1", "Al", "555", nil, "declined", 0, nil, at).
			WillReturnRows(sqlmock.NewRows(invitationCols).
				AddRow("inv-1", "ev-1", "al@example.com", "Al", "555", "tok-1", "declined", int64(0), nil, created, nil, nil, at))

		got, err := NewInvitationRepository(db).Respond(ctx, "tok-1", resp)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDeclined, got.Status)
		assert.Equal(t, 0, *got.GuestCount)
		assert.Equal(t, "tok-1", got.Token)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown token", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE invitations`).WillReturnError(sql.ErrNoRows)
		_, err = NewInvitationRepository(db).Respond(ctx, "tok-x", domain.ResolvedResponse{Status: domain.StatusAccepted})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInvitationRepository_MarkSentAndDelete(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE invitations SET sent_at = \$2 WHERE id = \$1`).
		WithArgs("inv-1", at).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM invitations i\s+USING events e`).
		WithArgs("inv-1", "user-2").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM invitations i`).
		WithArgs("inv-1", "user-1").WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewInvitationRepository(db)
	require.NoError(t, repo.MarkSent(ctx, "inv-1", at))
	require.ErrorIs(t, repo.Delete(ctx, "inv-1", "user-2"), domain.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "inv-1", "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_ListStatusByEventID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT status, guest_count FROM invitations WHERE event_id = \$1`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "guest_count"}).
			AddRow("accepted", int64(3)).
			AddRow("accepted", nil).
			AddRow("declined", int64(0)))

	got, err := NewInvitationRepository(db).ListStatusByEventID(ctx, "ev-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 3, *got[0].GuestCount)
	assert.Nil(t, got[1].GuestCount)
	assert.Equal(t, 4, domain.Tally(got).TotalGuests)
	require.NoError(t, mock.ExpectationsWereMet())
}
