package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
)

const (
	timeoutSeqKey   = "timeout:seq"
	timeoutQueueKey = "timeouts"
)

type TimeoutQueue interface {
	Schedule(ctx context.Context, timeout *entity.ScheduledTimeout) (*entity.ScheduledTimeout, error)
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entity.ScheduledTimeout, error)
}

type dbTimeout struct {
	client *redis.Client
}

// NewTimeoutQueue - sorted set of pending timeouts scored by due time in milliseconds.
func NewTimeoutQueue(client *redis.Client) TimeoutQueue {
	return &dbTimeout{
		client: client,
	}
}

func (that *dbTimeout) Schedule(ctx context.Context, timeout *entity.ScheduledTimeout) (*entity.ScheduledTimeout, error) {
	id, err := that.client.Incr(ctx, timeoutSeqKey).Uint64()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate timeout id: %w", err)
	}

	scheduled := *timeout
	scheduled.ID = id

	timeoutJSON, err := json.Marshal(&scheduled)
	if err != nil {
		return nil, fmt.Errorf("could not marshal timeout: %w", err)
	}

	err = that.client.ZAdd(ctx, timeoutQueueKey, redis.Z{
		Score:  float64(scheduled.DueAt.UnixMilli()),
		Member: timeoutJSON,
	}).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to schedule timeout: %w", err)
	}

	return &scheduled, nil
}

// ClaimDue - removes and returns up to limit timeouts due at or before now.
// An entry is returned only to the caller whose ZREM removed it.
func (that *dbTimeout) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entity.ScheduledTimeout, error) {
	members, err := that.client.ZRangeByScore(ctx, timeoutQueueKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read due timeouts: %w", err)
	}

	claimed := make([]*entity.ScheduledTimeout, 0, len(members))
	for _, member := range members {
		removed, err := that.client.ZRem(ctx, timeoutQueueKey, member).Result()
		if err != nil {
			return claimed, fmt.Errorf("failed to claim timeout: %w", err)
		}

		if removed == 0 {
			continue
		}

		var timeout entity.ScheduledTimeout
		if err = json.Unmarshal([]byte(member), &timeout); err != nil {
			return claimed, fmt.Errorf("failed to unmarshal timeout: %w", err)
		}

		claimed = append(claimed, &timeout)
	}

	return claimed, nil
}
