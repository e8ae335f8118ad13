// Package memory provides a thread-safe in-memory persistence layer
// implementing the storage interfaces. It is the default wiring for tests
// and prototyping and deliberately keeps the implementation simple.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/drawworks/lotto/internal/app/domain/draw"
	"github.com/drawworks/lotto/internal/app/domain/result"
	"github.com/drawworks/lotto/internal/app/domain/ticket"
	"github.com/drawworks/lotto/internal/app/storage"
)

// Store keeps all collections in mutex-guarded maps.
type Store struct {
	mu             sync.RWMutex
	tickets        map[string]ticket.Ticket
	winningNumbers map[string]draw.WinningNumberSet
	verdicts       map[string]result.Verdict
	announcements  map[string]result.Announcement
}

var _ storage.TicketStore = (*Store)(nil)
var _ storage.WinningNumberStore = (*Store)(nil)
var _ storage.VerdictStore = (*Store)(nil)
var _ storage.AnnouncementStore = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		tickets:        make(map[string]ticket.Ticket),
		winningNumbers: make(map[string]draw.WinningNumberSet),
		verdicts:       make(map[string]result.Verdict),
		announcements:  make(map[string]result.Announcement),
	}
}

func dateKey(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func copyInts(src []int) []int {
	if src == nil {
		return nil
	}
	return append([]int(nil), src...)
}

// TicketStore implementation -------------------------------------------------

func (s *Store) CreateTicket(_ context.Context, t ticket.Ticket) (ticket.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.tickets[t.ID]; ok {
		return cloneTicket(existing), nil
	}
	t.Numbers = copyInts(t.Numbers)
	s.tickets[t.ID] = t
	return cloneTicket(t), nil
}

func (s *Store) GetTicket(_ context.Context, id string) (ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickets[id]
	if !ok {
		return ticket.Ticket{}, storage.ErrNotFound
	}
	return cloneTicket(t), nil
}

func (s *Store) ListTicketsByDrawDate(_ context.Context, drawDate time.Time) ([]ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := dateKey(drawDate)
	out := make([]ticket.Ticket, 0)
	for _, t := range s.tickets {
		if dateKey(t.DrawDate) == key {
			out = append(out, cloneTicket(t))
		}
	}
	return out, nil
}

// WinningNumberStore implementation ------------------------------------------

func (s *Store) CreateWinningNumbers(_ context.Context, set draw.WinningNumberSet) (draw.WinningNumberSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dateKey(set.DrawDate)
	if existing, ok := s.winningNumbers[key]; ok {
		return cloneWinningSet(existing), nil
	}
	if set.CreatedAt.IsZero() {
		set.CreatedAt = time.Now().UTC()
	}
	set.Numbers = copyInts(set.Numbers)
	s.winningNumbers[key] = set
	return cloneWinningSet(set), nil
}

func (s *Store) GetWinningNumbers(_ context.Context, drawDate time.Time) (draw.WinningNumberSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.winningNumbers[dateKey(drawDate)]
	if !ok {
		return draw.WinningNumberSet{}, storage.ErrNotFound
	}
	return cloneWinningSet(set), nil
}

// VerdictStore implementation -------------------------------------------------

func (s *Store) SaveVerdicts(_ context.Context, verdicts []result.Verdict) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := 0
	for _, v := range verdicts {
		if _, ok := s.verdicts[v.TicketID]; ok {
			continue
		}
		v.Numbers = copyInts(v.Numbers)
		v.HitNumbers = copyInts(v.HitNumbers)
		s.verdicts[v.TicketID] = v
		created++
	}
	return created, nil
}

func (s *Store) GetVerdict(_ context.Context, ticketID string) (result.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.verdicts[ticketID]
	if !ok {
		return result.Verdict{}, storage.ErrNotFound
	}
	return cloneVerdict(v), nil
}

// AnnouncementStore implementation --------------------------------------------

func (s *Store) CreateAnnouncement(_ context.Context, ann result.Announcement) (result.Announcement, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.announcements[ann.Hash]; ok {
		return cloneAnnouncement(existing), false, nil
	}
	if ann.CreatedAt.IsZero() {
		ann.CreatedAt = time.Now().UTC()
	}
	ann.Numbers = copyInts(ann.Numbers)
	ann.HitNumbers = copyInts(ann.HitNumbers)
	s.announcements[ann.Hash] = ann
	return cloneAnnouncement(ann), true, nil
}

func (s *Store) GetAnnouncement(_ context.Context, hash string) (result.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ann, ok := s.announcements[hash]
	if !ok {
		return result.Announcement{}, storage.ErrNotFound
	}
	return cloneAnnouncement(ann), nil
}

// Helpers ---------------------------------------------------------------------

func cloneTicket(t ticket.Ticket) ticket.Ticket {
	t.Numbers = copyInts(t.Numbers)
	return t
}

func cloneWinningSet(set draw.WinningNumberSet) draw.WinningNumberSet {
	set.Numbers = copyInts(set.Numbers)
	return set
}

func cloneVerdict(v result.Verdict) result.Verdict {
	v.Numbers = copyInts(v.Numbers)
	v.HitNumbers = copyInts(v.HitNumbers)
	return v
}

func cloneAnnouncement(ann result.Announcement) result.Announcement {
	ann.Numbers = copyInts(ann.Numbers)
	ann.HitNumbers = copyInts(ann.HitNumbers)
	return ann
}
