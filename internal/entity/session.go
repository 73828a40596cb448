package entity

import (
	"fmt"

	"github.com/rocketscienceinc/blitz-tictactoe/internal/apperror"
)

// Session - one match between two participants.
type Session struct {
	ID           string        `json:"id"`
	FirstMover   string        `json:"first_mover"`
	SecondMover  string        `json:"second_mover"`
	TurnOwner    Player        `json:"turn_owner"`
	FirstMask    BoardMask     `json:"first_mask"`
	SecondMask   BoardMask     `json:"second_mask"`
	Result       SessionResult `json:"result"`
	TurnCounter  uint32        `json:"turn_counter"`
	TurnTimedOut bool          `json:"turn_timed_out"`
}

func NewSession(id, firstMover, secondMover string) *Session {
	return &Session{
		ID:          id,
		FirstMover:  firstMover,
		SecondMover: secondMover,
		TurnOwner:   First,
		Result:      InProgress(),
	}
}

func (that *Session) IsInProgress() bool {
	return !that.Result.IsTerminal()
}

// ParticipantOf - returns the identity bound to the given side.
func (that *Session) ParticipantOf(player Player) string {
	if player == First {
		return that.FirstMover
	}
	return that.SecondMover
}

func (that *Session) HasParticipant(participant string) bool {
	return participant == that.FirstMover || participant == that.SecondMover
}

// Opponent - returns the other mover of the session.
func (that *Session) Opponent(participant string) string {
	if participant == that.FirstMover {
		return that.SecondMover
	}
	return that.FirstMover
}

// ApplyMove - marks the cell for the turn owner and either ends the game or hands the turn over.
// On error the session is left untouched.
func (that *Session) ApplyMove(participant string, cell BoardMask) error {
	if !that.IsInProgress() {
		return apperror.ErrNotInProgress
	}

	if that.ParticipantOf(that.TurnOwner) != participant {
		return apperror.ErrWrongTurn
	}

	if !IsSingleCell(cell) {
		return fmt.Errorf("%w: %#b", apperror.ErrInvalidCell, cell)
	}

	if !IsCellFree(that.FirstMask, that.SecondMask, cell) {
		return apperror.ErrCellTaken
	}

	own, opponent := that.markCell(cell)

	switch Evaluate(own, opponent) {
	case Win:
		that.Result = WonBy(that.TurnOwner)
	case Blocked:
		that.Result = Draw()
	case StillOpen:
		that.nextTurn(false)
	}

	return nil
}

// ApplyTimeout - forfeits the current turn if turn still matches the live counter.
// Returns false when the timeout is stale or the game is already over.
func (that *Session) ApplyTimeout(turn uint32) bool {
	if !that.IsInProgress() || that.TurnCounter != turn {
		return false
	}

	that.nextTurn(true)

	return true
}

func (that *Session) markCell(cell BoardMask) (BoardMask, BoardMask) {
	if that.TurnOwner == First {
		that.FirstMask |= cell
		return that.FirstMask, that.SecondMask
	}

	that.SecondMask |= cell
	return that.SecondMask, that.FirstMask
}

func (that *Session) nextTurn(timedOut bool) {
	that.TurnOwner = that.TurnOwner.Opponent()
	that.TurnCounter++
	that.TurnTimedOut = timedOut
}
