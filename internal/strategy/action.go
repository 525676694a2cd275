package strategy

import (
	"fmt"
	"strings"
)

// Kind is a poker action.
type Kind int

const (
	Fold Kind = iota
	Check
	Call
	Raise
	AllIn
)

var kindNames = [...]string{"FOLD", "CHECK", "CALL", "RAISE", "ALL_IN"}

func (k Kind) String() string {
	if k < Fold || k > AllIn {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses an action name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return Fold, fmt.Errorf("unknown action %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < Fold || k > AllIn {
		return nil, fmt.Errorf("invalid action %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Action is a decision. Amount is the total target bet for Raise and zero
// otherwise.
type Action struct {
	Kind   Kind
	Amount int
}

func (a Action) String() string {
	if a.Kind == Raise {
		return fmt.Sprintf("RAISE %d", a.Amount)
	}
	return a.Kind.String()
}
