package domain

import "fmt"

// Direction is the head motion applied after a rule writes its symbol.
type Direction int

const (
	Still Direction = iota
	Left
	Right
)

// ParseDirection maps a program token to a Direction.
// "s" and "*" both mean Still.
func ParseDirection(token string) (Direction, error) {
	switch token {
	case "r":
		return Right, nil
	case "l":
		return Left, nil
	case "s", "*":
		return Still, nil
	default:
		return Still, fmt.Errorf("unknown direction %q", token)
	}
}

// Token returns the program-text form of the direction.
func (d Direction) Token() string {
	switch d {
	case Left:
		return "l"
	case Right:
		return "r"
	default:
		return "s"
	}
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "still"
	}
}

// MarshalText encodes the direction by name so snapshots and events stay readable.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts both the long names and the program tokens.
func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "left", "l":
		*d = Left
	case "right", "r":
		*d = Right
	case "still", "s", "*":
		*d = Still
	default:
		return fmt.Errorf("unknown direction %q", string(text))
	}
	return nil
}
