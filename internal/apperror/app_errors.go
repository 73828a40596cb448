package apperror

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNotInProgress   = errors.New("game is not in progress")
	ErrWrongTurn       = errors.New("it's not your turn")
	ErrCellTaken       = errors.New("cell is already taken")
	ErrInvalidCell     = errors.New("invalid cell")
	ErrAlreadyOwnsRoom = errors.New("participant already owns a room")
	ErrSelfJoin        = errors.New("participant can't join own room")
	ErrNotParticipant  = errors.New("participant is not part of the game")
	ErrInvalidToken    = errors.New("invalid participant token")
)

var rejections = []error{
	ErrNotFound,
	ErrNotInProgress,
	ErrWrongTurn,
	ErrCellTaken,
	ErrInvalidCell,
	ErrAlreadyOwnsRoom,
	ErrSelfJoin,
	ErrNotParticipant,
	ErrInvalidToken,
}

// Rejection - returns the domain error behind err, nil if err was caused by the server rather than the request.
func Rejection(err error) error {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return target
		}
	}

	return nil
}
