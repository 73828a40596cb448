package service

import (
	"context"
	"testing"

	"github.com/rocketscienceinc/blitz-tictactoe/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisconnectService_Disconnect(t *testing.T) {
	ctx := context.Background()

	t.Run("Drops the owned room and every session of the participant", func(t *testing.T) {
		e := newEnv(t)

		// Given
		session := e.startSession(t)

		room, err := e.lobby.CreateRoom(ctx, "bob")
		require.NoError(t, err)

		other, err := e.lobby.JoinRoom(ctx, "carol", room.ID)
		require.NoError(t, err)

		_, err = e.lobby.CreateRoom(ctx, "bob")
		require.NoError(t, err)

		untouched, err := e.lobby.CreateRoom(ctx, "dave")
		require.NoError(t, err)

		// When
		require.NoError(t, e.disconnect.Disconnect(ctx, "bob"))

		// Then
		_, err = e.sessions.GetByID(ctx, session.ID)
		require.ErrorIs(t, err, apperror.ErrNotFound)

		_, err = e.sessions.GetByID(ctx, other.ID)
		require.ErrorIs(t, err, apperror.ErrNotFound)

		rooms, err := e.lobby.ListRooms(ctx, "dave")
		require.NoError(t, err)
		require.Len(t, rooms, 1)
		assert.Equal(t, untouched.ID, rooms[0].ID)
	})

	t.Run("Unknown participant is a no-op", func(t *testing.T) {
		e := newEnv(t)
		session := e.startSession(t)

		require.NoError(t, e.disconnect.Disconnect(ctx, "mallory"))

		_, err := e.sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
	})
}
