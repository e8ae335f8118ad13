package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/drawworks/lotto/internal/app"
	"github.com/drawworks/lotto/internal/app/domain/draw"
	"github.com/drawworks/lotto/internal/app/services/numbers"
)

var testDrawDate = time.Date(2025, 6, 7, 12, 0, 0, 0, time.UTC)

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time { return c.now }

func newTestHandler(t *testing.T, clock draw.Clock) (http.Handler, *app.Application) {
	t.Helper()
	application, err := app.New(app.Stores{}, app.Options{
		Clock: clock,
		Source: numbers.SourceFunc(func(ctx context.Context, count, min, max int) ([]int, error) {
			return []int{1, 2, 3, 4, 5, 6, 82, 82, 83}, nil
		}),
	}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	return New(application, nil), application
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	decoded := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func TestSubmitTicket(t *testing.T) {
	clock := &manualClock{now: time.Date(2025, 6, 4, 9, 30, 0, 0, time.UTC)}
	h, _ := newTestHandler(t, clock)

	rec, body := doJSON(t, h, http.MethodPost, "/api/v1/tickets", `{"numbers": [6, 5, 4, 3, 2, 1]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if body["ticket_id"] == "" || body["ticket_id"] == nil {
		t.Fatalf("missing ticket_id: %v", body)
	}
	if body["draw_date"] != testDrawDate.Format(time.RFC3339) {
		t.Fatalf("draw_date = %v, want %s", body["draw_date"], testDrawDate.Format(time.RFC3339))
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID header")
	}
}

func TestSubmitTicketInvalidNumbers(t *testing.T) {
	h, _ := newTestHandler(t, &manualClock{now: time.Date(2025, 6, 4, 9, 30, 0, 0, time.UTC)})

	for _, payload := range []string{
		`{"numbers": [1, 2, 3]}`,
		`{"numbers": [1, 2, 3, 4, 5, 100]}`,
		`{"numbers": [1, 1, 2, 3, 4, 5]}`,
	} {
		rec, body := doJSON(t, h, http.MethodPost, "/api/v1/tickets", payload)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %s: status = %d, want 400", payload, rec.Code)
		}
		if body["error"] == nil {
			t.Fatalf("payload %s: missing error body", payload)
		}
	}
}

func TestSubmitTicketMalformedBody(t *testing.T) {
	h, _ := newTestHandler(t, &manualClock{now: time.Date(2025, 6, 4, 9, 30, 0, 0, time.UTC)})

	rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/tickets", `{"numbers": "oops"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestResultLifecycleOverHTTP(t *testing.T) {
	clock := &manualClock{now: time.Date(2025, 6, 4, 9, 30, 0, 0, time.UTC)}
	h, _ := newTestHandler(t, clock)

	rec, body := doJSON(t, h, http.MethodPost, "/api/v1/tickets", `{"numbers": [1, 2, 3, 4, 5, 6]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d: %s", rec.Code, rec.Body.String())
	}
	ticketID := body["ticket_id"].(string)

	// Before the draw the ticket is pending.
	rec, body = doJSON(t, h, http.MethodGet, "/api/v1/results/"+ticketID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("check status = %d", rec.Code)
	}
	if body["message"] != "WAITING_FOR_DRAW" {
		t.Fatalf("message = %v, want WAITING_FOR_DRAW", body["message"])
	}

	// Draw passes and settlement runs.
	clock.now = testDrawDate.Add(time.Hour)
	rec, body = doJSON(t, h, http.MethodPost, "/api/v1/draws/"+testDrawDate.Format(time.RFC3339)+"/settlement", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("settlement status = %d: %s", rec.Code, rec.Body.String())
	}
	if body["created"] != float64(1) {
		t.Fatalf("settlement created = %v, want 1", body["created"])
	}

	// The ticket matches all six provider numbers.
	rec, body = doJSON(t, h, http.MethodGet, "/api/v1/results/"+ticketID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("result status = %d", rec.Code)
	}
	if body["message"] != "WIN" {
		t.Fatalf("message = %v, want WIN: %v", body["message"], body)
	}

	// A repeat query is frozen.
	rec, body = doJSON(t, h, http.MethodGet, "/api/v1/results/"+ticketID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat status = %d", rec.Code)
	}
	if body["message"] != "ALREADY_CHECKED" {
		t.Fatalf("repeat message = %v, want ALREADY_CHECKED", body["message"])
	}
}

func TestResultUnknownTicket(t *testing.T) {
	h, _ := newTestHandler(t, &manualClock{now: testDrawDate})

	rec, _ := doJSON(t, h, http.MethodGet, "/api/v1/results/doesnotexist", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestNextDraw(t *testing.T) {
	h, _ := newTestHandler(t, &manualClock{now: time.Date(2025, 6, 4, 9, 30, 0, 0, time.UTC)})

	rec, body := doJSON(t, h, http.MethodGet, "/api/v1/draws/next", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["draw_date"] != testDrawDate.Format(time.RFC3339) {
		t.Fatalf("draw_date = %v, want %s", body["draw_date"], testDrawDate.Format(time.RFC3339))
	}
}

func TestSettlementRejectsBadDate(t *testing.T) {
	h, _ := newTestHandler(t, &manualClock{now: testDrawDate})

	rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/draws/notadate/settlement", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSettlementSourceDown(t *testing.T) {
	application, err := app.New(app.Stores{}, app.Options{
		Clock: &manualClock{now: testDrawDate},
		Source: numbers.SourceFunc(func(ctx context.Context, count, min, max int) ([]int, error) {
			return nil, numbers.ErrSourceUnavailable
		}),
	}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	h := New(application, nil)

	rec, _ := doJSON(t, h, http.MethodPost, "/api/v1/draws/"+testDrawDate.Format(time.RFC3339)+"/settlement", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	h, _ := newTestHandler(t, &manualClock{now: testDrawDate})

	rec, body := doJSON(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}
