package policy

import "github.com/rocketscienceinc/blitz-tictactoe/internal/entity"

// CanObserveSession - a session is visible only to its two movers.
func CanObserveSession(participant string, session *entity.Session) bool {
	return session != nil && session.HasParticipant(participant)
}

// CanObserveRoom - rooms are a public matchmaking listing.
func CanObserveRoom(_ string, _ *entity.Room) bool {
	return true
}
