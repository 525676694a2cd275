package strategy

import "fmt"

// Stats are the lifetime results of an Engine.
type Stats struct {
	Wins             int
	Losses           int
	TotalHands       int
	SuccessfulBluffs int
	FailedBluffs     int
}

// WinRate returns Wins/TotalHands, or 0 before any hand is recorded.
func (s Stats) WinRate() float64 {
	if s.TotalHands == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.TotalHands)
}

// WinRatePercent formats the win rate with one decimal, e.g. "60.0%".
func (s Stats) WinRatePercent() string {
	return fmt.Sprintf("%.1f%%", s.WinRate()*100)
}
