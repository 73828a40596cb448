package entity

import (
	"errors"
	"fmt"
)

// Player - one of the two sides of a session. First moves first (X).
type Player uint8

const (
	First Player = iota
	Second
)

const (
	markFirst  = "X"
	markSecond = "O"
)

var ErrUnknownPlayer = errors.New("unknown player")

func (that Player) Opponent() Player {
	if that == First {
		return Second
	}
	return First
}

func (that Player) String() string {
	if that == First {
		return markFirst
	}
	return markSecond
}

func (that Player) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Player) UnmarshalText(text []byte) error {
	switch string(text) {
	case markFirst:
		*that = First
	case markSecond:
		*that = Second
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, text)
	}

	return nil
}
