package service

import (
	"context"

	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
)

// Observer - receives every committed change so it can be pushed to participants.
type Observer interface {
	SessionUpdated(ctx context.Context, session *entity.Session)
	SessionDeleted(ctx context.Context, session *entity.Session)
	RoomUpdated(ctx context.Context, room *entity.Room)
	RoomDeleted(ctx context.Context, room *entity.Room)
}

type nopObserver struct{}

// NopObserver - drops every notification.
func NopObserver() Observer {
	return nopObserver{}
}

func (nopObserver) SessionUpdated(context.Context, *entity.Session) {}
func (nopObserver) SessionDeleted(context.Context, *entity.Session) {}
func (nopObserver) RoomUpdated(context.Context, *entity.Room)       {}
func (nopObserver) RoomDeleted(context.Context, *entity.Room)       {}
