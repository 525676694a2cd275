package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/pokeragent/internal/deck"
	"github.com/lox/pokeragent/internal/evaluator"
)

// EvalCmd scores a hand with the agent's heuristic evaluator
type EvalCmd struct {
	Hole  []string `arg:"" help:"Hole cards, e.g. 'AsKd' or 'As Kd'"`
	Board string   `short:"b" help:"Community cards (e.g. 'Td7s8h')"`
}

var strengthStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("14"))

func (c *EvalCmd) Run() error {
	hole, err := deck.ParseCards(strings.Join(c.Hole, ""))
	if err != nil {
		return fmt.Errorf("parsing hole cards: %w", err)
	}
	if len(hole) != 2 {
		return fmt.Errorf("need exactly 2 hole cards, got %d", len(hole))
	}

	var board []deck.Card
	if c.Board != "" {
		board, err = deck.ParseCards(c.Board)
		if err != nil {
			return fmt.Errorf("parsing board: %w", err)
		}
		if len(board) > 5 {
			return fmt.Errorf("board cannot have more than 5 cards")
		}
	}
	if err := checkDuplicates(hole, board); err != nil {
		return err
	}

	fmt.Println(renderEval(hole, board))
	return nil
}

func renderEval(hole, board []deck.Card) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Hand"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Hole"))
	b.WriteString(prettyCards(hole))
	if len(board) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Board"))
		b.WriteString(prettyCards(board))
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Category"))
	b.WriteString(evaluator.Category(hole, board))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Strength"))
	b.WriteString(strengthStyle.Render(fmt.Sprintf("%.3f", evaluator.Evaluate(hole, board))))
	return boxStyle.Render(b.String())
}

func prettyCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.Pretty()
	}
	return strings.Join(parts, " ")
}

func checkDuplicates(hole, board []deck.Card) error {
	seen := make(map[deck.Card]bool)
	for _, c := range append(append([]deck.Card{}, hole...), board...) {
		if seen[c] {
			return fmt.Errorf("duplicate card found: %s", c)
		}
		seen[c] = true
	}
	return nil
}
