package announcer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/drawworks/lotto/internal/app/domain/result"
	"github.com/drawworks/lotto/internal/app/domain/ticket"
	"github.com/drawworks/lotto/internal/app/storage"
	"github.com/drawworks/lotto/internal/app/storage/memory"
)

var testDrawDate = time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC)

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time { return c.now }

func seedTicket(t *testing.T, store *memory.Store, id string) {
	t.Helper()
	_, err := store.CreateTicket(context.Background(), ticket.Ticket{
		ID:          id,
		Numbers:     []int{1, 2, 3, 4, 5, 6},
		DrawDate:    testDrawDate,
		SubmittedAt: testDrawDate.Add(-24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
}

func seedVerdict(t *testing.T, store *memory.Store, id string, isWinner bool) {
	t.Helper()
	_, err := store.SaveVerdicts(context.Background(), []result.Verdict{{
		TicketID:   id,
		Numbers:    []int{1, 2, 3, 4, 5, 6},
		HitNumbers: []int{1, 2, 3},
		DrawDate:   testDrawDate,
		IsWinner:   isWinner,
	}})
	if err != nil {
		t.Fatalf("seed verdict: %v", err)
	}
}

func TestCheckUnknownTicket(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, &manualClock{now: testDrawDate}, nil)

	_, err := svc.Check(context.Background(), "no-such-ticket")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want storage.ErrNotFound", err)
	}
}

func TestCheckBeforeSettlement(t *testing.T) {
	store := memory.New()
	seedTicket(t, store, "t1")
	svc := New(store, store, store, &manualClock{now: testDrawDate.Add(-time.Hour)}, nil)

	resp, err := svc.Check(context.Background(), "t1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if resp.Message != MessageWaitingForDraw {
		t.Fatalf("message = %s, want %s", resp.Message, MessageWaitingForDraw)
	}
	if resp.Result != nil {
		t.Fatalf("result payload leaked before settlement: %+v", resp.Result)
	}
	if resp.Info == "" {
		t.Fatal("empty info text")
	}
}

func TestCheckSettledBeforeDrawInstant(t *testing.T) {
	store := memory.New()
	seedTicket(t, store, "t1")
	seedVerdict(t, store, "t1", true)

	// Verdict exists but the draw instant has not passed yet.
	svc := New(store, store, store, &manualClock{now: testDrawDate.Add(-time.Minute)}, nil)

	resp, err := svc.Check(context.Background(), "t1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if resp.Message != MessageWait {
		t.Fatalf("message = %s, want %s", resp.Message, MessageWait)
	}
	if resp.Result == nil {
		t.Fatal("missing frozen payload")
	}
}

func TestCheckWinAfterDraw(t *testing.T) {
	store := memory.New()
	seedTicket(t, store, "t1")
	seedVerdict(t, store, "t1", true)
	svc := New(store, store, store, &manualClock{now: testDrawDate.Add(time.Hour)}, nil)

	resp, err := svc.Check(context.Background(), "t1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if resp.Message != MessageWin {
		t.Fatalf("message = %s, want %s", resp.Message, MessageWin)
	}
	if resp.Result == nil || !resp.Result.IsWinner {
		t.Fatalf("result = %+v, want a winning payload", resp.Result)
	}
}

func TestCheckLoseAfterDraw(t *testing.T) {
	store := memory.New()
	seedTicket(t, store, "t1")
	seedVerdict(t, store, "t1", false)
	svc := New(store, store, store, &manualClock{now: testDrawDate.Add(time.Hour)}, nil)

	resp, err := svc.Check(context.Background(), "t1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if resp.Message != MessageLose {
		t.Fatalf("message = %s, want %s", resp.Message, MessageLose)
	}
}

func TestCheckSecondQueryIsFrozen(t *testing.T) {
	store := memory.New()
	seedTicket(t, store, "t1")
	seedVerdict(t, store, "t1", true)

	clock := &manualClock{now: testDrawDate.Add(time.Hour)}
	svc := New(store, store, store, clock, nil)

	first, err := svc.Check(context.Background(), "t1")
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if first.Message != MessageWin {
		t.Fatalf("first message = %s, want %s", first.Message, MessageWin)
	}

	clock.now = clock.now.Add(48 * time.Hour)
	second, err := svc.Check(context.Background(), "t1")
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if second.Message != MessageAlreadyChecked {
		t.Fatalf("second message = %s, want %s", second.Message, MessageAlreadyChecked)
	}
	if second.Result == nil || second.Result.Hash != first.Result.Hash || second.Result.IsWinner != first.Result.IsWinner {
		t.Fatalf("payload changed between checks: %+v vs %+v", first.Result, second.Result)
	}
}

func TestCheckWaitThenAlreadyCheckedStaysWaitPayload(t *testing.T) {
	store := memory.New()
	seedTicket(t, store, "t1")
	seedVerdict(t, store, "t1", true)

	clock := &manualClock{now: testDrawDate.Add(-time.Minute)}
	svc := New(store, store, store, clock, nil)

	first, err := svc.Check(context.Background(), "t1")
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if first.Message != MessageWait {
		t.Fatalf("first message = %s, want %s", first.Message, MessageWait)
	}

	// The first response announced the ticket; the outcome is frozen even
	// once the draw instant passes.
	clock.now = testDrawDate.Add(time.Hour)
	second, err := svc.Check(context.Background(), "t1")
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if second.Message != MessageAlreadyChecked {
		t.Fatalf("second message = %s, want %s", second.Message, MessageAlreadyChecked)
	}
	if second.Result == nil || second.Result.Hash != "t1" {
		t.Fatalf("second payload = %+v", second.Result)
	}
}

func TestMessageInfoTexts(t *testing.T) {
	for _, m := range []Message{MessageWaitingForDraw, MessageWait, MessageWin, MessageLose, MessageAlreadyChecked} {
		if m.Info() == string(m) {
			t.Fatalf("message %s has no info text", m)
		}
	}
}
