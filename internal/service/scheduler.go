package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
)

type TurnScheduler interface {
	Arm(ctx context.Context, sessionID string, turn uint32) error
	OnFire(ctx context.Context, timeout *entity.ScheduledTimeout) error
}

type timeoutQueue interface {
	Schedule(ctx context.Context, timeout *entity.ScheduledTimeout) (*entity.ScheduledTimeout, error)
}

type sessionRepo interface {
	Create(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	Update(ctx context.Context, id string, mutate func(session *entity.Session) error) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) (*entity.Session, error)
	FindByParticipant(ctx context.Context, participant string) ([]*entity.Session, error)
}

// errStaleTimeout - aborts the session update when the fired timeout no longer governs the turn.
var errStaleTimeout = errors.New("stale timeout")

type turnScheduler struct {
	logger   *slog.Logger
	clock    clock.Clock
	timeUnit time.Duration

	timeouts timeoutQueue
	sessions sessionRepo
	observer Observer
}

// NewTurnScheduler - timeUnit is the wall-clock length of one turn duration unit.
func NewTurnScheduler(
	logger *slog.Logger,
	clk clock.Clock,
	timeUnit time.Duration,
	timeouts timeoutQueue,
	sessions sessionRepo,
	observer Observer,
) TurnScheduler {
	return &turnScheduler{
		logger:   logger.With("component", "turn_scheduler"),
		clock:    clk,
		timeUnit: timeUnit,
		timeouts: timeouts,
		sessions: sessions,
		observer: observer,
	}
}

// Arm - schedules the expiration of the given turn. Earlier timeouts of the session stay queued.
func (that *turnScheduler) Arm(ctx context.Context, sessionID string, turn uint32) error {
	timeout := &entity.ScheduledTimeout{
		DueAt:     that.clock.Now().Add(entity.TurnTimeout(turn, that.timeUnit)),
		SessionID: sessionID,
		Turn:      turn,
	}

	scheduled, err := that.timeouts.Schedule(ctx, timeout)
	if err != nil {
		return fmt.Errorf("failed to schedule timeout: %w", err)
	}

	that.logger.Debug("turn armed",
		"sessionID", sessionID, "turn", turn, "timeoutID", scheduled.ID, "dueAt", scheduled.DueAt)

	return nil
}

// OnFire - forfeits the turn the timeout was armed for and arms the next one.
// A deleted, finished or already advanced session makes it a no-op.
func (that *turnScheduler) OnFire(ctx context.Context, timeout *entity.ScheduledTimeout) error {
	log := that.logger.With("method", "OnFire", "sessionID", timeout.SessionID, "turn", timeout.Turn)

	session, err := that.sessions.Update(ctx, timeout.SessionID, func(session *entity.Session) error {
		if !session.ApplyTimeout(timeout.Turn) {
			return errStaleTimeout
		}
		return nil
	})
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		log.Debug("session is gone, timeout ignored")
		return nil
	case errors.Is(err, errStaleTimeout):
		log.Debug("stale timeout ignored")
		return nil
	case err != nil:
		return fmt.Errorf("failed to apply timeout: %w", err)
	}

	log.Info("turn timed out", "turnOwner", session.TurnOwner)

	that.observer.SessionUpdated(ctx, session)

	if !session.IsInProgress() {
		return nil
	}

	if err = that.Arm(ctx, session.ID, session.TurnCounter); err != nil {
		return fmt.Errorf("failed to re-arm turn: %w", err)
	}

	return nil
}
