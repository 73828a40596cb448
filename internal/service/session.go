package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/blitz-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/policy"
)

type SessionService interface {
	MakeMove(ctx context.Context, participant, sessionID string, cell entity.BoardMask) (*entity.Session, error)
	LeaveSession(ctx context.Context, participant, sessionID string) error
	GetSession(ctx context.Context, participant, sessionID string) (*entity.Session, error)
}

type turnArmer interface {
	Arm(ctx context.Context, sessionID string, turn uint32) error
}

type sessionService struct {
	logger *slog.Logger

	sessions  sessionRepo
	scheduler turnArmer
	observer  Observer
}

func NewSessionService(logger *slog.Logger, sessions sessionRepo, scheduler turnArmer, observer Observer) SessionService {
	return &sessionService{
		logger:    logger.With("component", "session_service"),
		sessions:  sessions,
		scheduler: scheduler,
		observer:  observer,
	}
}

// MakeMove - places the participant's mark and arms the next turn if the game goes on.
func (that *sessionService) MakeMove(ctx context.Context, participant, sessionID string, cell entity.BoardMask) (*entity.Session, error) {
	log := that.logger.With("method", "MakeMove", "sessionID", sessionID, "participant", participant)

	session, err := that.sessions.Update(ctx, sessionID, func(session *entity.Session) error {
		return session.ApplyMove(participant, cell)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to make move: %w", err)
	}

	log.Debug("move applied", "cell", cell, "turn", session.TurnCounter, "result", session.Result.State)

	that.observer.SessionUpdated(ctx, session)

	if !session.IsInProgress() {
		log.Info("game finished", "result", session.Result.State)
		return session, nil
	}

	// the move is committed, a lost timer only leaves this turn without a deadline
	if err = that.scheduler.Arm(ctx, session.ID, session.TurnCounter); err != nil {
		log.Error("failed to arm next turn", "turn", session.TurnCounter, "error", err)
	}

	return session, nil
}

// LeaveSession - deletes the session if the participant is one of its movers, otherwise does nothing.
func (that *sessionService) LeaveSession(ctx context.Context, participant, sessionID string) error {
	log := that.logger.With("method", "LeaveSession", "sessionID", sessionID, "participant", participant)

	session, err := that.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	if !session.HasParticipant(participant) {
		log.Debug("leave ignored, not a mover")
		return nil
	}

	deleted, err := that.sessions.DeleteByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if deleted != nil {
		log.Info("session left")
		that.observer.SessionDeleted(ctx, deleted)
	}

	return nil
}

// GetSession - returns the session only to its movers.
func (that *sessionService) GetSession(ctx context.Context, participant, sessionID string) (*entity.Session, error) {
	session, err := that.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if !policy.CanObserveSession(participant, session) {
		return nil, apperror.ErrNotParticipant
	}

	return session, nil
}
