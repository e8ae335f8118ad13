// Package storage declares the persistence ports used by the application
// services. Implementations must provide create-if-absent semantics on every
// Create operation; that primitive is the synchronization point for
// idempotent settlement and the announcement state machine.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/drawworks/lotto/internal/app/domain/draw"
	"github.com/drawworks/lotto/internal/app/domain/result"
	"github.com/drawworks/lotto/internal/app/domain/ticket"
)

// ErrNotFound is returned when a record does not exist. Callers branch on it
// with errors.Is instead of relying on driver-specific sentinels.
var ErrNotFound = errors.New("record not found")

// TicketStore persists submitted tickets.
type TicketStore interface {
	// CreateTicket stores the ticket unless one with the same id already
	// exists, in which case the existing row is returned unchanged.
	CreateTicket(ctx context.Context, t ticket.Ticket) (ticket.Ticket, error)
	GetTicket(ctx context.Context, id string) (ticket.Ticket, error)
	ListTicketsByDrawDate(ctx context.Context, drawDate time.Time) ([]ticket.Ticket, error)
}

// WinningNumberStore persists one winning-number set per draw date.
type WinningNumberStore interface {
	// CreateWinningNumbers is first-writer-wins keyed by draw date: a second
	// create for the same date returns the original set unchanged.
	CreateWinningNumbers(ctx context.Context, set draw.WinningNumberSet) (draw.WinningNumberSet, error)
	GetWinningNumbers(ctx context.Context, drawDate time.Time) (draw.WinningNumberSet, error)
}

// VerdictStore persists settlement verdicts.
type VerdictStore interface {
	// SaveVerdicts bulk-stores verdicts, skipping any ticket id that already
	// has one. It returns the number of newly created records.
	SaveVerdicts(ctx context.Context, verdicts []result.Verdict) (int, error)
	GetVerdict(ctx context.Context, ticketID string) (result.Verdict, error)
}

// AnnouncementStore persists frozen announcement payloads.
type AnnouncementStore interface {
	// CreateAnnouncement inserts the announcement if none exists for the
	// hash. It returns the stored payload and whether this call created it;
	// under a race exactly one caller observes created == true.
	CreateAnnouncement(ctx context.Context, ann result.Announcement) (result.Announcement, bool, error)
	GetAnnouncement(ctx context.Context, hash string) (result.Announcement, error)
}
