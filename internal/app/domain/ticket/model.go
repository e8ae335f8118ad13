// Package ticket defines a submitted lottery ticket and its identifier
// derivation.
package ticket

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Ticket is a user's six-number selection bound to exactly one draw date.
// Immutable once created.
type Ticket struct {
	ID          string    `json:"id"`
	Numbers     []int     `json:"numbers"`
	DrawDate    time.Time `json:"draw_date"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Normalize returns a sorted copy of the number set so the same logical
// selection always has one canonical form.
func Normalize(numbers []int) []int {
	out := append([]int(nil), numbers...)
	sort.Ints(out)
	return out
}

// NewID derives the stable ticket identifier from the canonical number set,
// draw date and submission instant. Identical submissions always map to the
// same id, and ids are not predictable from submission order.
func NewID(numbers []int, drawDate, submittedAt time.Time) string {
	parts := make([]string, 0, len(numbers)+2)
	for _, n := range Normalize(numbers) {
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	parts = append(parts,
		drawDate.UTC().Format(time.RFC3339Nano),
		submittedAt.UTC().Format(time.RFC3339Nano),
	)
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
