package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
)

type dueClaimer interface {
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entity.ScheduledTimeout, error)
}

type fireHandler interface {
	OnFire(ctx context.Context, timeout *entity.ScheduledTimeout) error
}

// Runner - delivers due turn timeouts to the handler.
type Runner struct {
	logger  *slog.Logger
	clock   clock.Clock
	queue   dueClaimer
	handler fireHandler

	pollInterval time.Duration
	batchSize    int
}

func New(logger *slog.Logger, clk clock.Clock, queue dueClaimer, handler fireHandler, pollInterval time.Duration, batchSize int) *Runner {
	return &Runner{
		logger:       logger.With("component", "timeout_runner"),
		clock:        clk,
		queue:        queue,
		handler:      handler,
		pollInterval: pollInterval,
		batchSize:    batchSize,
	}
}

// Run - polls the queue until ctx is done.
func (that *Runner) Run(ctx context.Context) error {
	ticker := that.clock.Ticker(that.pollInterval)
	defer ticker.Stop()

	that.logger.Info("timeout runner started", "pollInterval", that.pollInterval, "batchSize", that.batchSize)

	for {
		select {
		case <-ctx.Done():
			that.logger.Info("timeout runner stopped")
			return nil
		case <-ticker.C:
			that.Tick(ctx)
		}
	}
}

// Tick - fires everything due now. Returns the number of claimed timeouts.
func (that *Runner) Tick(ctx context.Context) int {
	log := that.logger.With("method", "Tick")

	fired := 0

	for {
		due, err := that.queue.ClaimDue(ctx, that.clock.Now(), that.batchSize)
		if err != nil {
			log.Error("failed to claim due timeouts", "error", err)
			return fired
		}

		for _, timeout := range due {
			if err = that.handler.OnFire(ctx, timeout); err != nil {
				log.Error("failed to fire timeout",
					"sessionID", timeout.SessionID, "turn", timeout.Turn, "error", err)
			}
		}

		fired += len(due)

		if len(due) < that.batchSize {
			return fired
		}
	}
}
