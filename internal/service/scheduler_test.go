package service

import (
	"context"
	"testing"
	"time"

	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnScheduler_Arm(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	// Given
	require.NoError(t, e.scheduler.Arm(ctx, "g1", 0))
	require.NoError(t, e.scheduler.Arm(ctx, "g1", 8))

	// When / Then
	assert.Empty(t, e.claim(t, 999*time.Millisecond))

	due := e.claim(t, time.Millisecond)
	require.Len(t, due, 1)
	assert.Equal(t, uint32(8), due[0].Turn)

	assert.Empty(t, e.claim(t, 3999*time.Millisecond))

	due = e.claim(t, time.Millisecond)
	require.Len(t, due, 1)
	assert.Equal(t, "g1", due[0].SessionID)
	assert.Equal(t, uint32(0), due[0].Turn)
}

func TestTurnScheduler_OnFire(t *testing.T) {
	ctx := context.Background()

	t.Run("Forfeits the turn and arms the next one", func(t *testing.T) {
		// Given
		e := newEnv(t)
		session := e.startSession(t)

		due := e.claim(t, 5*time.Second)
		require.Len(t, due, 1)

		// When
		require.NoError(t, e.scheduler.OnFire(ctx, due[0]))

		// Then
		stored, err := e.sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.Second, stored.TurnOwner)
		assert.Equal(t, uint32(1), stored.TurnCounter)
		assert.True(t, stored.TurnTimedOut)
		assert.True(t, stored.IsInProgress())

		assert.Empty(t, e.claim(t, 3999*time.Millisecond))
		due = e.claim(t, time.Millisecond)
		require.Len(t, due, 1)
		assert.Equal(t, uint32(1), due[0].Turn)

		assert.Contains(t, e.observer.Events(), "game:update "+session.ID)
	})

	t.Run("Timeouts keep alternating turns without ending the game", func(t *testing.T) {
		// Given
		e := newEnv(t)
		session := e.startSession(t)

		// When
		for turn := range uint32(10) {
			due := e.claim(t, entity.TurnTimeout(turn, time.Second))
			require.Len(t, due, 1, "turn %d", turn)
			require.NoError(t, e.scheduler.OnFire(ctx, due[0]))
		}

		// Then
		stored, err := e.sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, uint32(10), stored.TurnCounter)
		assert.Equal(t, entity.First, stored.TurnOwner)
		assert.Equal(t, entity.InProgress(), stored.Result)
		assert.Equal(t, 1, e.timeouts.Len())
	})

	t.Run("Stale timeout after a move is ignored", func(t *testing.T) {
		// Given
		e := newEnv(t)
		session := e.startSession(t)

		_, err := e.game.MakeMove(ctx, "alice", session.ID, entity.CellBit(0))
		require.NoError(t, err)

		stale := &entity.ScheduledTimeout{SessionID: session.ID, Turn: 0}

		// When
		require.NoError(t, e.scheduler.OnFire(ctx, stale))

		// Then
		stored, err := e.sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, uint32(1), stored.TurnCounter)
		assert.Equal(t, entity.Second, stored.TurnOwner)
		assert.False(t, stored.TurnTimedOut)
		assert.Equal(t, 2, e.timeouts.Len())
	})

	t.Run("Timeout armed for turn 3 fires after a move reached turn 4", func(t *testing.T) {
		// Given
		e := newEnv(t)
		session := e.startSession(t)

		for i, cell := range []int{0, 1, 2, 4} {
			mover := "alice"
			if i%2 == 1 {
				mover = "bob"
			}
			_, err := e.game.MakeMove(ctx, mover, session.ID, entity.CellBit(cell))
			require.NoError(t, err)
		}

		// When
		require.NoError(t, e.scheduler.OnFire(ctx, &entity.ScheduledTimeout{SessionID: session.ID, Turn: 3}))

		// Then
		stored, err := e.sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, uint32(4), stored.TurnCounter)
		assert.False(t, stored.TurnTimedOut)
	})

	t.Run("Deleted session is a silent no-op", func(t *testing.T) {
		// Given
		e := newEnv(t)
		session := e.startSession(t)
		require.NoError(t, e.game.LeaveSession(ctx, "bob", session.ID))

		due := e.claim(t, 5*time.Second)
		require.Len(t, due, 1)

		// When / Then
		require.NoError(t, e.scheduler.OnFire(ctx, due[0]))
		assert.Equal(t, 0, e.timeouts.Len())
	})

	t.Run("Finished session is a silent no-op", func(t *testing.T) {
		// Given
		e := newEnv(t)
		session := e.startSession(t)

		_, err := e.sessions.Update(ctx, session.ID, func(session *entity.Session) error {
			session.Result = entity.Draw()
			return nil
		})
		require.NoError(t, err)

		// When
		require.NoError(t, e.scheduler.OnFire(ctx, &entity.ScheduledTimeout{SessionID: session.ID, Turn: 0}))

		// Then
		stored, err := e.sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, uint32(0), stored.TurnCounter)
		assert.Equal(t, entity.Draw(), stored.Result)
	})

	t.Run("Duplicate delivery applies once", func(t *testing.T) {
		// Given
		e := newEnv(t)
		session := e.startSession(t)

		due := e.claim(t, 5*time.Second)
		require.Len(t, due, 1)

		// When
		require.NoError(t, e.scheduler.OnFire(ctx, due[0]))
		require.NoError(t, e.scheduler.OnFire(ctx, due[0]))

		// Then
		stored, err := e.sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, uint32(1), stored.TurnCounter)
		assert.Equal(t, 1, e.timeouts.Len())
	})
}
