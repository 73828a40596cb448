package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTurnDuration(t *testing.T) {
	t.Run("Follows the pacing schedule", func(t *testing.T) {
		expected := []float64{5.0, 4.0, 3.0, 3.0, 2.0, 2.0, 1.5, 1.5, 1.0, 1.0, 1.0, 1.0}

		for turn, want := range expected {
			assert.InDelta(t, want, TurnDuration(uint32(turn)), 1e-9, "turn %d", turn)
		}
	})

	t.Run("Is monotonically non-increasing", func(t *testing.T) {
		previous := TurnDuration(0)
		for turn := uint32(1); turn < 300; turn++ {
			current := TurnDuration(turn)
			assert.LessOrEqual(t, current, previous, "turn %d", turn)
			previous = current
		}
	})
}

func TestTurnTimeout(t *testing.T) {
	assert.Equal(t, 5*time.Second, TurnTimeout(0, time.Second))
	assert.Equal(t, 1500*time.Millisecond, TurnTimeout(6, time.Second))
	assert.Equal(t, 100*time.Millisecond, TurnTimeout(9, 100*time.Millisecond))
}
