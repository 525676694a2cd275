package game

import (
	"fmt"
	"strings"
)

// Phase is the stage of the current hand. Phases are strictly ordered; Waiting
// and Showdown bound a hand and the four in between are betting streets.
type Phase int

const (
	Waiting Phase = iota
	Preflop
	Flop
	Turn
	River
	Showdown
)

var phaseNames = [...]string{"WAITING", "PREFLOP", "FLOP", "TURN", "RIVER", "SHOWDOWN"}

// String returns the wire name of the phase
func (p Phase) String() string {
	if p < Waiting || p > Showdown {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// IsBettingStreet reports whether players act during this phase
func (p Phase) IsBettingStreet() bool {
	return p >= Preflop && p <= River
}

// Next returns the phase that follows p, wrapping Showdown back to Waiting
func (p Phase) Next() Phase {
	if p >= Showdown {
		return Waiting
	}
	return p + 1
}

// ParsePhase parses a phase name, case-insensitively
func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if strings.EqualFold(s, name) {
			return Phase(i), nil
		}
	}
	return Waiting, fmt.Errorf("unknown phase %q", s)
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	if p < Waiting || p > Showdown {
		return nil, fmt.Errorf("invalid phase %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes the phase by name
func (p *Phase) UnmarshalText(text []byte) error {
	phase, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = phase
	return nil
}
