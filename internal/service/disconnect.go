package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type DisconnectService interface {
	Disconnect(ctx context.Context, participant string) error
}

type roomLeaver interface {
	LeaveRoom(ctx context.Context, owner string) error
}

type disconnectService struct {
	logger *slog.Logger

	lobby    roomLeaver
	sessions sessionRepo
	observer Observer
}

func NewDisconnectService(logger *slog.Logger, lobby roomLeaver, sessions sessionRepo, observer Observer) DisconnectService {
	return &disconnectService{
		logger:   logger.With("component", "disconnect_service"),
		lobby:    lobby,
		sessions: sessions,
		observer: observer,
	}
}

// Disconnect - closes the participant's room and drops every session they move in.
func (that *disconnectService) Disconnect(ctx context.Context, participant string) error {
	log := that.logger.With("method", "Disconnect", "participant", participant)

	var errs []error

	if err := that.lobby.LeaveRoom(ctx, participant); err != nil {
		errs = append(errs, err)
	}

	sessions, err := that.sessions.FindByParticipant(ctx, participant)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to find sessions: %w", err))
	}

	for _, session := range sessions {
		deleted, err := that.sessions.DeleteByID(ctx, session.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to delete session %s: %w", session.ID, err))
			continue
		}

		if deleted != nil {
			log.Info("session dropped", "sessionID", deleted.ID)
			that.observer.SessionDeleted(ctx, deleted)
		}
	}

	return errors.Join(errs...)
}
