package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/pokeragent/internal/strategy"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Width(16)

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// renderReport formats an agent's final statistics
func renderReport(name string, s strategy.Stats) string {
	rate := winStyle
	if s.TotalHands > 0 && s.WinRate() < 0.5 {
		rate = lossStyle
	}

	rows := [][2]string{
		{"Hands", fmt.Sprint(s.TotalHands)},
		{"Wins", winStyle.Render(fmt.Sprint(s.Wins))},
		{"Losses", lossStyle.Render(fmt.Sprint(s.Losses))},
		{"Win rate", rate.Render(s.WinRatePercent())},
		{"Bluffs won", fmt.Sprint(s.SuccessfulBluffs)},
		{"Bluffs lost", fmt.Sprint(s.FailedBluffs)},
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(name))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(r[0]))
		b.WriteString(r[1])
	}
	return boxStyle.Render(b.String())
}
