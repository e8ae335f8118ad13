// Package settlement matches tickets against their draw's winning numbers
// and persists verdicts exactly once per ticket.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/drawworks/lotto/internal/app/domain/draw"
	"github.com/drawworks/lotto/internal/app/domain/result"
	"github.com/drawworks/lotto/internal/app/domain/ticket"
	"github.com/drawworks/lotto/internal/app/metrics"
	"github.com/drawworks/lotto/internal/app/services/numbers"
	"github.com/drawworks/lotto/internal/app/storage"
	"github.com/drawworks/lotto/pkg/logger"
)

// Result summarises one settlement run for a draw date.
type Result struct {
	DrawDate time.Time `json:"draw_date"`
	// Settled is the number of tickets matched in this run.
	Settled int `json:"settled"`
	// Created is the number of newly persisted verdicts; previously settled
	// tickets are skipped.
	Created int `json:"created"`
}

// Service is the matching engine.
type Service struct {
	numbers  *numbers.Service
	tickets  storage.TicketStore
	verdicts storage.VerdictStore
	log      *logger.Logger
}

// New constructs a settlement service.
func New(numberSvc *numbers.Service, tickets storage.TicketStore, verdicts storage.VerdictStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("settlement")
	}
	return &Service{numbers: numberSvc, tickets: tickets, verdicts: verdicts, log: log}
}

// RunFor settles every ticket assigned to the draw date. It is idempotent
// and safe to invoke concurrently, including overlapping runs for the same
// date: verdict persistence is create-if-absent per ticket id. External
// failures come back as errors for the scheduler to retry on a later tick;
// nothing is persisted in that case.
func (s *Service) RunFor(ctx context.Context, drawDate time.Time) (Result, error) {
	start := time.Now()

	winning, err := s.numbers.Generate(ctx, drawDate)
	if err != nil {
		metrics.RecordSettlementRun(time.Since(start), 0, true)
		return Result{}, fmt.Errorf("winning numbers unavailable for %s: %w",
			drawDate.Format(time.RFC3339), err)
	}

	tickets, err := s.tickets.ListTicketsByDrawDate(ctx, drawDate)
	if err != nil {
		metrics.RecordSettlementRun(time.Since(start), 0, true)
		return Result{}, fmt.Errorf("load tickets for %s: %w", drawDate.Format(time.RFC3339), err)
	}

	verdicts := make([]result.Verdict, 0, len(tickets))
	for _, t := range tickets {
		verdicts = append(verdicts, matchTicket(t, winning))
	}

	created, err := s.verdicts.SaveVerdicts(ctx, verdicts)
	if err != nil {
		metrics.RecordSettlementRun(time.Since(start), 0, true)
		return Result{}, fmt.Errorf("persist verdicts for %s: %w", drawDate.Format(time.RFC3339), err)
	}

	metrics.RecordSettlementRun(time.Since(start), created, false)
	s.log.WithField("draw_date", drawDate.Format(time.RFC3339)).
		WithField("settled", len(verdicts)).
		WithField("created", created).
		Info("settlement run complete")

	return Result{DrawDate: drawDate.UTC(), Settled: len(verdicts), Created: created}, nil
}

// matchTicket computes the verdict for one ticket. Both number sets have six
// elements, so a six-hit intersection is the only full match.
func matchTicket(t ticket.Ticket, winning draw.WinningNumberSet) result.Verdict {
	hits := make([]int, 0, len(t.Numbers))
	for _, n := range t.Numbers {
		if winning.Contains(n) {
			hits = append(hits, n)
		}
	}

	return result.Verdict{
		TicketID:   t.ID,
		Numbers:    t.Numbers,
		HitNumbers: hits,
		DrawDate:   t.DrawDate,
		IsWinner:   len(hits) == numbers.NumbersPerDraw,
	}
}
