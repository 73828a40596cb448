package service

import (
	"context"
	"testing"
	"time"

	"github.com/rocketscienceinc/blitz-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_MakeMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Moves alternate and arm the next turn", func(t *testing.T) {
		e := newEnv(t)
		session := e.startSession(t)

		// When
		_, err := e.game.MakeMove(ctx, "alice", session.ID, entity.CellBit(0))
		require.NoError(t, err)
		updated, err := e.game.MakeMove(ctx, "bob", session.ID, entity.CellBit(1))
		require.NoError(t, err)

		// Then
		assert.Equal(t, uint32(2), updated.TurnCounter)
		assert.Equal(t, entity.First, updated.TurnOwner)
		assert.Equal(t, entity.InProgress(), updated.Result)

		// turns 0, 1 and 2 are queued; turn 2 lasts 3 units
		assert.Equal(t, 3, e.timeouts.Len())
		due := e.claim(t, 3*time.Second)
		require.Len(t, due, 1)
		assert.Equal(t, uint32(2), due[0].Turn)
	})

	t.Run("Winning move arms nothing", func(t *testing.T) {
		e := newEnv(t)
		session := e.startSession(t)

		// Given
		for i, cell := range []int{0, 3, 1, 4} {
			mover := "alice"
			if i%2 == 1 {
				mover = "bob"
			}
			_, err := e.game.MakeMove(ctx, mover, session.ID, entity.CellBit(cell))
			require.NoError(t, err)
		}
		queued := e.timeouts.Len()

		// When
		finished, err := e.game.MakeMove(ctx, "alice", session.ID, entity.CellBit(2))

		// Then
		require.NoError(t, err)
		assert.Equal(t, entity.WonBy(entity.First), finished.Result)
		assert.Equal(t, entity.BoardMask(0b000_000_111), finished.FirstMask)
		assert.Equal(t, queued, e.timeouts.Len())

		_, err = e.game.MakeMove(ctx, "bob", session.ID, entity.CellBit(5))
		require.ErrorIs(t, err, apperror.ErrNotInProgress)
	})

	t.Run("Rejected moves leave the session untouched", func(t *testing.T) {
		e := newEnv(t)
		session := e.startSession(t)

		_, err := e.game.MakeMove(ctx, "alice", session.ID, entity.CellBit(4))
		require.NoError(t, err)

		before, err := e.sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)

		_, err = e.game.MakeMove(ctx, "alice", session.ID, entity.CellBit(0))
		require.ErrorIs(t, err, apperror.ErrWrongTurn)

		_, err = e.game.MakeMove(ctx, "bob", session.ID, entity.CellBit(4))
		require.ErrorIs(t, err, apperror.ErrCellTaken)

		_, err = e.game.MakeMove(ctx, "bob", session.ID, entity.CellBit(9))
		require.ErrorIs(t, err, apperror.ErrInvalidCell)

		_, err = e.game.MakeMove(ctx, "bob", "missing", entity.CellBit(0))
		require.ErrorIs(t, err, apperror.ErrNotFound)

		after, err := e.sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestSessionService_MakeMove_ArmFailure(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	session := e.startSession(t)

	// Given: a timeout queue that rejects every arm
	armer := &failingArmer{}
	game := NewSessionService(discardLogger(), e.sessions, armer, e.observer)

	// When
	moved, err := game.MakeMove(ctx, "alice", session.ID, entity.CellBit(4))

	// Then: the committed move is still reported to the mover
	require.NoError(t, err)
	assert.Equal(t, 1, armer.calls)
	assert.Equal(t, uint32(1), moved.TurnCounter)
	assert.Equal(t, entity.CellBit(4), moved.FirstMask)

	stored, err := e.sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, moved, stored)
}

func TestSessionService_LeaveSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Outsider can't remove the session", func(t *testing.T) {
		e := newEnv(t)
		session := e.startSession(t)

		require.NoError(t, e.game.LeaveSession(ctx, "mallory", session.ID))

		_, err := e.sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
	})

	t.Run("Mover removes the session", func(t *testing.T) {
		e := newEnv(t)
		session := e.startSession(t)

		require.NoError(t, e.game.LeaveSession(ctx, "bob", session.ID))

		_, err := e.sessions.GetByID(ctx, session.ID)
		require.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Contains(t, e.observer.Events(), "game:delete "+session.ID)

		err = e.game.LeaveSession(ctx, "bob", session.ID)
		require.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestSessionService_GetSession(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	session := e.startSession(t)

	observed, err := e.game.GetSession(ctx, "alice", session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, observed.ID)

	_, err = e.game.GetSession(ctx, "mallory", session.ID)
	require.ErrorIs(t, err, apperror.ErrNotParticipant)
}
