package entity

import "time"

const BaseTurnDuration = 5.0

var (
	fullStepTurns = []uint32{1, 2, 4}
	halfStepTurns = []uint32{6, 8}
)

// TurnDuration - time units a participant gets for the given turn.
// Shrinks from 5.0 to 1.0 in fixed steps at turns 1, 2, 4, 6 and 8.
func TurnDuration(turn uint32) float64 {
	duration := BaseTurnDuration

	for _, step := range fullStepTurns {
		if step <= turn {
			duration--
		}
	}

	for _, step := range halfStepTurns {
		if step <= turn {
			duration -= 0.5
		}
	}

	return duration
}

// TurnTimeout - TurnDuration converted to wall time, unit is the length of one time unit.
func TurnTimeout(turn uint32, unit time.Duration) time.Duration {
	return time.Duration(TurnDuration(turn) * float64(unit))
}
