// Package intake validates and stores submitted tickets, binding each one to
// the next draw date.
package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drawworks/lotto/internal/app/domain/draw"
	"github.com/drawworks/lotto/internal/app/domain/ticket"
	"github.com/drawworks/lotto/internal/app/metrics"
	"github.com/drawworks/lotto/internal/app/services/numbers"
	"github.com/drawworks/lotto/internal/app/storage"
	"github.com/drawworks/lotto/pkg/logger"
)

// ErrInvalidNumbers rejects a submission that is not six distinct integers
// in the accepted range.
var ErrInvalidNumbers = errors.New("numbers must be 6 distinct values between 1 and 99")

// Service accepts ticket submissions.
type Service struct {
	store    storage.TicketStore
	clock    draw.Clock
	schedule draw.Schedule
	log      *logger.Logger
}

// New constructs an intake service.
func New(store storage.TicketStore, clock draw.Clock, schedule draw.Schedule, log *logger.Logger) *Service {
	if clock == nil {
		clock = draw.SystemClock{}
	}
	if log == nil {
		log = logger.NewDefault("intake")
	}
	return &Service{store: store, clock: clock, schedule: schedule, log: log}
}

// Submit validates the selection, assigns it to the next draw date, and
// persists it under a deterministic id. Submitting the same selection at the
// same instant collapses to a single ticket.
func (s *Service) Submit(ctx context.Context, selection []int) (ticket.Ticket, error) {
	if err := validateNumbers(selection); err != nil {
		return ticket.Ticket{}, err
	}

	submittedAt := s.clock.Now().UTC()
	drawDate := s.schedule.Next(submittedAt)
	normalized := ticket.Normalize(selection)

	t := ticket.Ticket{
		ID:          ticket.NewID(normalized, drawDate, submittedAt),
		Numbers:     normalized,
		DrawDate:    drawDate,
		SubmittedAt: submittedAt,
	}

	stored, err := s.store.CreateTicket(ctx, t)
	if err != nil {
		return ticket.Ticket{}, err
	}

	metrics.RecordTicketSubmitted()
	s.log.WithField("ticket_id", stored.ID).
		WithField("draw_date", stored.DrawDate.Format(time.RFC3339)).
		Info("ticket accepted")
	return stored, nil
}

// TicketsFor lists every ticket assigned to a draw date.
func (s *Service) TicketsFor(ctx context.Context, drawDate time.Time) ([]ticket.Ticket, error) {
	return s.store.ListTicketsByDrawDate(ctx, drawDate)
}

// Get returns one ticket by id, or storage.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (ticket.Ticket, error) {
	return s.store.GetTicket(ctx, id)
}

func validateNumbers(selection []int) error {
	if len(selection) != numbers.NumbersPerDraw {
		return fmt.Errorf("%w: got %d numbers", ErrInvalidNumbers, len(selection))
	}
	seen := make(map[int]struct{}, len(selection))
	for _, n := range selection {
		if n < numbers.MinNumber || n > numbers.MaxNumber {
			return fmt.Errorf("%w: %d out of range", ErrInvalidNumbers, n)
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: duplicate %d", ErrInvalidNumbers, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}
