package entity

import (
	"encoding/json"
	"errors"
)

type ResultState string

const (
	StateInProgress ResultState = "in_progress"
	StateDraw       ResultState = "draw"
	StateWon        ResultState = "won"
)

var ErrMissingWinner = errors.New("won result without a winner")

// SessionResult - InProgress, Draw or WonBy(Winner). Winner is meaningful only for StateWon.
type SessionResult struct {
	State  ResultState
	Winner Player
}

type resultJSON struct {
	State  ResultState `json:"state"`
	Winner *Player     `json:"winner,omitempty"`
}

func InProgress() SessionResult {
	return SessionResult{State: StateInProgress}
}

func Draw() SessionResult {
	return SessionResult{State: StateDraw}
}

func WonBy(player Player) SessionResult {
	return SessionResult{State: StateWon, Winner: player}
}

func (that SessionResult) IsTerminal() bool {
	return that.State != StateInProgress
}

// MarshalJSON - the winner is written only for a won game.
func (that SessionResult) MarshalJSON() ([]byte, error) {
	out := resultJSON{State: that.State}

	if that.State == StateWon {
		winner := that.Winner
		out.Winner = &winner
	}

	return json.Marshal(out)
}

func (that *SessionResult) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*that = SessionResult{State: in.State}

	if in.State != StateWon {
		return nil
	}

	if in.Winner == nil {
		return ErrMissingWinner
	}

	that.Winner = *in.Winner

	return nil
}
