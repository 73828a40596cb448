package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
)

var (
	ErrSessionNotFound = fmt.Errorf("session %w", apperror.ErrNotFound)
	ErrSessionExists   = errors.New("session already exists")
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	Update(ctx context.Context, id string, mutate func(session *entity.Session) error) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) (*entity.Session, error)
	FindByParticipant(ctx context.Context, participant string) ([]*entity.Session, error)
}

type dbSession struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) SessionRepository {
	return &dbSession{
		client: client,
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

func participantKey(participant string) string {
	return "participant:" + participant + ":sessions"
}

func (that *dbSession) Create(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	key := sessionKey(session.ID)

	return watch(ctx, that.client, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to check session: %w", err)
		}

		if exists > 0 {
			return fmt.Errorf("%w: %s", ErrSessionExists, session.ID)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, sessionJSON, 0)
			pipe.SAdd(ctx, participantKey(session.FirstMover), session.ID)
			pipe.SAdd(ctx, participantKey(session.SecondMover), session.ID)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to set session: %w", err)
		}

		return nil
	}, key)
}

func (that *dbSession) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	var session entity.Session

	found, err := getJSON(ctx, that.client, sessionKey(id), &session)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, ErrSessionNotFound
	}

	return &session, nil
}

// Update - read-modify-write of a single session. Nothing is written if mutate fails.
func (that *dbSession) Update(ctx context.Context, id string, mutate func(session *entity.Session) error) (*entity.Session, error) {
	key := sessionKey(id)

	var updated *entity.Session

	err := watch(ctx, that.client, func(tx *redis.Tx) error {
		var session entity.Session

		found, err := getJSON(ctx, tx, key, &session)
		if err != nil {
			return err
		}

		if !found {
			return ErrSessionNotFound
		}

		if err = mutate(&session); err != nil {
			return err
		}

		sessionJSON, err := json.Marshal(&session)
		if err != nil {
			return fmt.Errorf("could not marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, sessionJSON, 0)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}

		updated = &session

		return nil
	}, key)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteByID - removes the session and returns it, nil if it was already gone.
func (that *dbSession) DeleteByID(ctx context.Context, id string) (*entity.Session, error) {
	key := sessionKey(id)

	var deleted *entity.Session

	err := watch(ctx, that.client, func(tx *redis.Tx) error {
		var session entity.Session

		found, err := getJSON(ctx, tx, key, &session)
		if err != nil || !found {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.SRem(ctx, participantKey(session.FirstMover), session.ID)
			pipe.SRem(ctx, participantKey(session.SecondMover), session.ID)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}

		deleted = &session

		return nil
	}, key)
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

func (that *dbSession) FindByParticipant(ctx context.Context, participant string) ([]*entity.Session, error) {
	ids, err := that.client.SMembers(ctx, participantKey(participant)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get participant sessions: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}

	sessions := make([]*entity.Session, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var session entity.Session
		if err = json.Unmarshal([]byte(raw), &session); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}

		sessions = append(sessions, &session)
	}

	return sessions, nil
}
