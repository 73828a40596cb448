package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const maxTxRetries = 32

var ErrTxConflict = errors.New("too many concurrent updates")

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// watch - runs fn as an optimistic transaction over keys, retrying while another client
// modifies a watched key between the read and the write.
func watch(ctx context.Context, client *redis.Client, fn func(tx *redis.Tx) error, keys ...string) error {
	for range maxTxRetries {
		err := client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		return err
	}

	return fmt.Errorf("%w: %v", ErrTxConflict, keys)
}

// getJSON - loads key into dest. Returns false if the key does not exist.
func getJSON(ctx context.Context, client stringGetter, key string, dest any) (bool, error) {
	response, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err = json.Unmarshal([]byte(response), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return true, nil
}
