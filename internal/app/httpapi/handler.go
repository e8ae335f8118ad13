// Package httpapi exposes the lottery gateway over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/drawworks/lotto/internal/app"
	"github.com/drawworks/lotto/internal/app/metrics"
	"github.com/drawworks/lotto/internal/app/services/intake"
	"github.com/drawworks/lotto/internal/app/services/numbers"
	"github.com/drawworks/lotto/internal/app/storage"
	"github.com/drawworks/lotto/pkg/logger"
)

const maxBodyBytes = 1 << 16

// Handler serves the public API.
type Handler struct {
	app *app.Application
	log *logger.Logger
}

// New builds the HTTP router for the application.
func New(application *app.Application, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &Handler{app: application, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(metrics.InstrumentHandler)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.With(SubmitLimit(defaultSubmitRate, defaultSubmitBurst)).
			Post("/tickets", h.handleSubmitTicket)
		r.Get("/results/{ticketID}", h.handleCheckResult)
		r.Get("/draws/next", h.handleNextDraw)
		r.Post("/draws/{drawDate}/settlement", h.handleSettleDraw)
	})

	return r
}

type submitTicketRequest struct {
	Numbers []int `json:"numbers"`
}

type submitTicketResponse struct {
	TicketID    string    `json:"ticket_id"`
	Numbers     []int     `json:"numbers"`
	DrawDate    time.Time `json:"draw_date"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (h *Handler) handleSubmitTicket(w http.ResponseWriter, r *http.Request) {
	var req submitTicketRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.app.Intake.Submit(r.Context(), req.Numbers)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, submitTicketResponse{
		TicketID:    t.ID,
		Numbers:     t.Numbers,
		DrawDate:    t.DrawDate,
		SubmittedAt: t.SubmittedAt,
	})
}

func (h *Handler) handleCheckResult(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")
	if ticketID == "" {
		writeError(w, http.StatusBadRequest, "missing ticket id")
		return
	}

	resp, err := h.app.Announcer.Check(r.Context(), ticketID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type nextDrawResponse struct {
	DrawDate time.Time `json:"draw_date"`
}

func (h *Handler) handleNextDraw(w http.ResponseWriter, r *http.Request) {
	now := h.app.Clock.Now()
	writeJSON(w, http.StatusOK, nextDrawResponse{DrawDate: h.app.Schedule.Next(now)})
}

func (h *Handler) handleSettleDraw(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "drawDate")
	drawDate, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid draw date %q: expected RFC 3339", raw))
		return
	}

	res, err := h.app.Settlement.RunFor(r.Context(), drawDate)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeServiceError maps domain errors onto HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, intake.ErrInvalidNumbers):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, numbers.ErrSourceUnavailable), errors.Is(err, numbers.ErrInsufficientNumbers):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.log.WithError(err).
			WithField("path", r.URL.Path).
			Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
