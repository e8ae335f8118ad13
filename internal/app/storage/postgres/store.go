// Package postgres implements the storage interfaces backed by PostgreSQL.
// Every create-if-absent primitive maps to INSERT ... ON CONFLICT DO NOTHING
// so concurrent writers resolve at the database, not in process.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/drawworks/lotto/internal/app/domain/draw"
	"github.com/drawworks/lotto/internal/app/domain/result"
	"github.com/drawworks/lotto/internal/app/domain/ticket"
	"github.com/drawworks/lotto/internal/app/storage"
)

// Store implements the storage interfaces on top of a sqlx handle.
type Store struct {
	db *sqlx.DB
}

var _ storage.TicketStore = (*Store)(nil)
var _ storage.WinningNumberStore = (*Store)(nil)
var _ storage.VerdictStore = (*Store)(nil)
var _ storage.AnnouncementStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// --- TicketStore ------------------------------------------------------------

func (s *Store) CreateTicket(ctx context.Context, t ticket.Ticket) (ticket.Ticket, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lotto_tickets (id, numbers, draw_date, submitted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, t.ID, toInt64Array(t.Numbers), t.DrawDate.UTC(), t.SubmittedAt.UTC())
	if err != nil {
		return ticket.Ticket{}, err
	}
	return s.GetTicket(ctx, t.ID)
}

func (s *Store) GetTicket(ctx context.Context, id string) (ticket.Ticket, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, numbers, draw_date, submitted_at
		FROM lotto_tickets
		WHERE id = $1
	`, id)

	var (
		t       ticket.Ticket
		numbers pq.Int64Array
	)
	if err := row.Scan(&t.ID, &numbers, &t.DrawDate, &t.SubmittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ticket.Ticket{}, storage.ErrNotFound
		}
		return ticket.Ticket{}, err
	}
	t.Numbers = toIntSlice(numbers)
	return t, nil
}

func (s *Store) ListTicketsByDrawDate(ctx context.Context, drawDate time.Time) ([]ticket.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, numbers, draw_date, submitted_at
		FROM lotto_tickets
		WHERE draw_date = $1
		ORDER BY submitted_at
	`, drawDate.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ticket.Ticket, 0)
	for rows.Next() {
		var (
			t       ticket.Ticket
			numbers pq.Int64Array
		)
		if err := rows.Scan(&t.ID, &numbers, &t.DrawDate, &t.SubmittedAt); err != nil {
			return nil, err
		}
		t.Numbers = toIntSlice(numbers)
		out = append(out, t)
	}
	return out, rows.Err()
}

// --- WinningNumberStore -----------------------------------------------------

func (s *Store) CreateWinningNumbers(ctx context.Context, set draw.WinningNumberSet) (draw.WinningNumberSet, error) {
	if set.CreatedAt.IsZero() {
		set.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lotto_winning_numbers (draw_date, numbers, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (draw_date) DO NOTHING
	`, set.DrawDate.UTC(), toInt64Array(set.Numbers), set.CreatedAt)
	if err != nil {
		return draw.WinningNumberSet{}, err
	}
	return s.GetWinningNumbers(ctx, set.DrawDate)
}

func (s *Store) GetWinningNumbers(ctx context.Context, drawDate time.Time) (draw.WinningNumberSet, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT draw_date, numbers, created_at
		FROM lotto_winning_numbers
		WHERE draw_date = $1
	`, drawDate.UTC())

	var (
		set     draw.WinningNumberSet
		numbers pq.Int64Array
	)
	if err := row.Scan(&set.DrawDate, &numbers, &set.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return draw.WinningNumberSet{}, storage.ErrNotFound
		}
		return draw.WinningNumberSet{}, err
	}
	set.Numbers = toIntSlice(numbers)
	return set, nil
}

// --- VerdictStore -----------------------------------------------------------

func (s *Store) SaveVerdicts(ctx context.Context, verdicts []result.Verdict) (int, error) {
	if len(verdicts) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	created := 0
	for _, v := range verdicts {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO lotto_verdicts (ticket_id, numbers, hit_numbers, draw_date, is_winner)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (ticket_id) DO NOTHING
		`, v.TicketID, toInt64Array(v.Numbers), toInt64Array(v.HitNumbers), v.DrawDate.UTC(), v.IsWinner)
		if err != nil {
			return 0, err
		}
		if rows, _ := res.RowsAffected(); rows > 0 {
			created++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return created, nil
}

func (s *Store) GetVerdict(ctx context.Context, ticketID string) (result.Verdict, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT ticket_id, numbers, hit_numbers, draw_date, is_winner
		FROM lotto_verdicts
		WHERE ticket_id = $1
	`, ticketID)

	var (
		v          result.Verdict
		numbers    pq.Int64Array
		hitNumbers pq.Int64Array
	)
	if err := row.Scan(&v.TicketID, &numbers, &hitNumbers, &v.DrawDate, &v.IsWinner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result.Verdict{}, storage.ErrNotFound
		}
		return result.Verdict{}, err
	}
	v.Numbers = toIntSlice(numbers)
	v.HitNumbers = toIntSlice(hitNumbers)
	return v, nil
}

// --- AnnouncementStore ------------------------------------------------------

func (s *Store) CreateAnnouncement(ctx context.Context, ann result.Announcement) (result.Announcement, bool, error) {
	if ann.CreatedAt.IsZero() {
		ann.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO lotto_announcements (hash, numbers, hit_numbers, draw_date, is_winner, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (hash) DO NOTHING
	`, ann.Hash, toInt64Array(ann.Numbers), toInt64Array(ann.HitNumbers), ann.DrawDate.UTC(), ann.IsWinner, ann.CreatedAt)
	if err != nil {
		return result.Announcement{}, false, err
	}

	rows, _ := res.RowsAffected()
	stored, err := s.GetAnnouncement(ctx, ann.Hash)
	if err != nil {
		return result.Announcement{}, false, err
	}
	return stored, rows > 0, nil
}

func (s *Store) GetAnnouncement(ctx context.Context, hash string) (result.Announcement, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT hash, numbers, hit_numbers, draw_date, is_winner, created_at
		FROM lotto_announcements
		WHERE hash = $1
	`, hash)

	var (
		ann        result.Announcement
		numbers    pq.Int64Array
		hitNumbers pq.Int64Array
	)
	if err := row.Scan(&ann.Hash, &numbers, &hitNumbers, &ann.DrawDate, &ann.IsWinner, &ann.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result.Announcement{}, storage.ErrNotFound
		}
		return result.Announcement{}, err
	}
	ann.Numbers = toIntSlice(numbers)
	ann.HitNumbers = toIntSlice(hitNumbers)
	return ann, nil
}

// Helpers ---------------------------------------------------------------------

func toInt64Array(src []int) pq.Int64Array {
	out := make(pq.Int64Array, len(src))
	for i, v := range src {
		out[i] = int64(v)
	}
	return out
}

func toIntSlice(src pq.Int64Array) []int {
	out := make([]int, len(src))
	for i, v := range src {
		out[i] = int(v)
	}
	return out
}
