package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayer_Opponent(t *testing.T) {
	assert.Equal(t, Second, First.Opponent())
	assert.Equal(t, First, Second.Opponent())
}

func TestPlayer_JSON(t *testing.T) {
	t.Run("Encodes as a mark", func(t *testing.T) {
		data, err := json.Marshal(struct {
			Turn Player `json:"turn"`
		}{Turn: Second})

		require.NoError(t, err)
		assert.JSONEq(t, `{"turn":"O"}`, string(data))
	})

	t.Run("Rejects unknown marks", func(t *testing.T) {
		var player Player

		err := json.Unmarshal([]byte(`"Z"`), &player)

		assert.ErrorIs(t, err, ErrUnknownPlayer)
	})
}
