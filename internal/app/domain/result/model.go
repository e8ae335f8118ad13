// Package result defines settlement verdicts and the frozen announcement
// payloads served to clients.
package result

import "time"

// Verdict is the computed outcome for one ticket against its draw's winning
// numbers. Created at most once per ticket id and read-only afterwards.
type Verdict struct {
	TicketID   string    `json:"ticket_id"`
	Numbers    []int     `json:"numbers"`
	HitNumbers []int     `json:"hit_numbers"`
	DrawDate   time.Time `json:"draw_date"`
	IsWinner   bool      `json:"is_winner"`
}

// Announcement is the client-visible response cached on first lookup. The
// payload never changes after it has been frozen.
type Announcement struct {
	Hash       string    `json:"hash"`
	Numbers    []int     `json:"numbers"`
	HitNumbers []int     `json:"hit_numbers"`
	DrawDate   time.Time `json:"draw_date"`
	IsWinner   bool      `json:"is_winner"`
	CreatedAt  time.Time `json:"created_at"`
}
