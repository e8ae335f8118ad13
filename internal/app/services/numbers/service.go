// Package numbers acquires and caches the winning-number set for each draw
// date.
package numbers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drawworks/lotto/internal/app/domain/draw"
	"github.com/drawworks/lotto/internal/app/storage"
	"github.com/drawworks/lotto/pkg/logger"
)

const (
	// NumbersPerDraw is the size of a winning-number set and of every ticket.
	NumbersPerDraw = 6
	// MinNumber and MaxNumber bound the accepted value range.
	MinNumber = 1
	MaxNumber = 99

	// defaultFetchCount over-requests raw values because the provider
	// returns duplicates and out-of-range noise in practice.
	defaultFetchCount = 25
)

// ErrSourceUnavailable marks a transient failure of the external provider.
var ErrSourceUnavailable = errors.New("winning number source unavailable")

// ErrInsufficientNumbers marks a provider payload with fewer than six usable
// values. Treated like a transient failure; nothing is cached.
var ErrInsufficientNumbers = errors.New("insufficient winning numbers")

// Service generates and looks up winning-number sets.
type Service struct {
	store      storage.WinningNumberStore
	source     Source
	fetchCount int
	log        *logger.Logger
}

// New constructs a winning-numbers service. A nil source leaves Generate
// failing with ErrSourceUnavailable until one is attached.
func New(store storage.WinningNumberStore, source Source, fetchCount int, log *logger.Logger) *Service {
	if fetchCount < NumbersPerDraw {
		fetchCount = defaultFetchCount
	}
	if log == nil {
		log = logger.NewDefault("numbers")
	}
	return &Service{store: store, source: source, fetchCount: fetchCount, log: log}
}

// WinningNumbersFor returns the cached set for a draw date, or
// storage.ErrNotFound when none has been generated yet.
func (s *Service) WinningNumbersFor(ctx context.Context, drawDate time.Time) (draw.WinningNumberSet, error) {
	return s.store.GetWinningNumbers(ctx, drawDate)
}

// Generate obtains the winning-number set for a draw date, fetching from the
// external source on first call. It is idempotent: once a set exists for the
// date, every later call returns it unchanged without touching the source.
func (s *Service) Generate(ctx context.Context, drawDate time.Time) (draw.WinningNumberSet, error) {
	if existing, err := s.store.GetWinningNumbers(ctx, drawDate); err == nil {
		return existing, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return draw.WinningNumberSet{}, err
	}

	if s.source == nil {
		return draw.WinningNumberSet{}, fmt.Errorf("%w: no source configured", ErrSourceUnavailable)
	}

	raw, err := s.source.Fetch(ctx, s.fetchCount, MinNumber, MaxNumber)
	if err != nil {
		return draw.WinningNumberSet{}, fmt.Errorf("fetch winning numbers: %w", err)
	}

	picked := selectWinningNumbers(raw)
	if len(picked) < NumbersPerDraw {
		return draw.WinningNumberSet{}, fmt.Errorf("%w: %d usable of %d fetched",
			ErrInsufficientNumbers, len(picked), len(raw))
	}

	set, err := s.store.CreateWinningNumbers(ctx, draw.WinningNumberSet{
		DrawDate: drawDate.UTC(),
		Numbers:  picked,
	})
	if err != nil {
		return draw.WinningNumberSet{}, err
	}

	s.log.WithField("draw_date", set.DrawDate.Format(time.RFC3339)).
		Infof("winning numbers ready: %v", set.Numbers)
	return set, nil
}

// selectWinningNumbers filters the raw provider sequence to in-range values,
// de-duplicates preserving first-seen order, and takes the first six
// survivors.
func selectWinningNumbers(raw []int) []int {
	seen := make(map[int]struct{}, NumbersPerDraw)
	out := make([]int, 0, NumbersPerDraw)
	for _, n := range raw {
		if n < MinNumber || n > MaxNumber {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
		if len(out) == NumbersPerDraw {
			break
		}
	}
	return out
}
