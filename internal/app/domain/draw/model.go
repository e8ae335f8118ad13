package draw

import "time"

// WinningNumberSet is the immutable set of six accepted winning numbers for
// one draw date. At most one set exists per draw date.
type WinningNumberSet struct {
	DrawDate  time.Time `json:"draw_date"`
	Numbers   []int     `json:"numbers"`
	CreatedAt time.Time `json:"created_at"`
}

// Contains reports whether n is one of the winning numbers.
func (w WinningNumberSet) Contains(n int) bool {
	for _, v := range w.Numbers {
		if v == n {
			return true
		}
	}
	return false
}
