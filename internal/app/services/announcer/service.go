// Package announcer serves per-ticket result queries with a time-gated,
// idempotent response. A ticket moves Unsettled -> SettledUnannounced ->
// Announced; once announced, the payload is frozen forever.
package announcer

import (
	"context"
	"errors"
	"fmt"

	"github.com/drawworks/lotto/internal/app/domain/draw"
	"github.com/drawworks/lotto/internal/app/domain/result"
	"github.com/drawworks/lotto/internal/app/metrics"
	"github.com/drawworks/lotto/internal/app/storage"
	"github.com/drawworks/lotto/pkg/logger"
)

// Message classifies an announcement response.
type Message string

const (
	MessageWaitingForDraw Message = "WAITING_FOR_DRAW"
	MessageWait           Message = "WAIT"
	MessageWin            Message = "WIN"
	MessageLose           Message = "LOSE"
	MessageAlreadyChecked Message = "ALREADY_CHECKED"
)

// Info returns the human-readable text for the message.
func (m Message) Info() string {
	switch m {
	case MessageWaitingForDraw:
		return "Your ticket is waiting for the draw, please come back after the draw"
	case MessageWait:
		return "Results are being calculated, please come back later"
	case MessageWin:
		return "Congratulations, you won!"
	case MessageLose:
		return "Unfortunately, you did not win this time"
	case MessageAlreadyChecked:
		return "Results were already checked"
	default:
		return string(m)
	}
}

// Response is the client-visible outcome of a result query. Result is nil
// while the ticket is still waiting for its draw.
type Response struct {
	Message Message              `json:"message"`
	Info    string               `json:"info"`
	Result  *result.Announcement `json:"result,omitempty"`
}

// Service answers per-ticket result queries.
type Service struct {
	tickets       storage.TicketStore
	verdicts      storage.VerdictStore
	announcements storage.AnnouncementStore
	clock         draw.Clock
	log           *logger.Logger
}

// New constructs an announcer service.
func New(tickets storage.TicketStore, verdicts storage.VerdictStore, announcements storage.AnnouncementStore, clock draw.Clock, log *logger.Logger) *Service {
	if clock == nil {
		clock = draw.SystemClock{}
	}
	if log == nil {
		log = logger.NewDefault("announcer")
	}
	return &Service{
		tickets:       tickets,
		verdicts:      verdicts,
		announcements: announcements,
		clock:         clock,
		log:           log,
	}
}

// Check resolves one result query. A ticket id unknown to both tickets and
// verdicts yields storage.ErrNotFound; a known pending ticket is a normal
// WAITING_FOR_DRAW response. The Announced transition rides entirely on the
// store's create-if-absent primitive, so two concurrent first checks cannot
// freeze different payloads.
func (s *Service) Check(ctx context.Context, ticketID string) (Response, error) {
	if cached, err := s.announcements.GetAnnouncement(ctx, ticketID); err == nil {
		return s.respond(MessageAlreadyChecked, &cached), nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Response{}, err
	}

	verdict, err := s.verdicts.GetVerdict(ctx, ticketID)
	if errors.Is(err, storage.ErrNotFound) {
		if _, terr := s.tickets.GetTicket(ctx, ticketID); terr == nil {
			return s.respond(MessageWaitingForDraw, nil), nil
		} else if !errors.Is(terr, storage.ErrNotFound) {
			return Response{}, terr
		}
		return Response{}, fmt.Errorf("ticket %s: %w", ticketID, storage.ErrNotFound)
	}
	if err != nil {
		return Response{}, err
	}

	frozen, created, err := s.announcements.CreateAnnouncement(ctx, result.Announcement{
		Hash:       verdict.TicketID,
		Numbers:    verdict.Numbers,
		HitNumbers: verdict.HitNumbers,
		DrawDate:   verdict.DrawDate,
		IsWinner:   verdict.IsWinner,
	})
	if err != nil {
		return Response{}, err
	}
	if !created {
		// Lost the freeze race; the other caller's payload stands.
		return s.respond(MessageAlreadyChecked, &frozen), nil
	}

	if !s.clock.Now().After(frozen.DrawDate) {
		return s.respond(MessageWait, &frozen), nil
	}
	if frozen.IsWinner {
		return s.respond(MessageWin, &frozen), nil
	}
	return s.respond(MessageLose, &frozen), nil
}

func (s *Service) respond(message Message, payload *result.Announcement) Response {
	metrics.RecordAnnouncement(string(message))
	return Response{Message: message, Info: message.Info(), Result: payload}
}
