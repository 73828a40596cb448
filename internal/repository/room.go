package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
)

const (
	roomSeqKey   = "room:seq"
	roomIndexKey = "rooms"
)

var ErrRoomNotFound = fmt.Errorf("room %w", apperror.ErrNotFound)

type RoomRepository interface {
	Create(ctx context.Context, owner, gameCode string) (*entity.Room, error)
	GetByID(ctx context.Context, id uint64) (*entity.Room, error)
	Take(ctx context.Context, id uint64, check func(room *entity.Room) error) (*entity.Room, error)
	DeleteByOwner(ctx context.Context, owner string) (*entity.Room, error)
	List(ctx context.Context) ([]*entity.Room, error)
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

func roomKey(id uint64) string {
	return "room:" + strconv.FormatUint(id, 10)
}

func roomOwnerKey(owner string) string {
	return "room:owner:" + owner
}

// Create - inserts a new room. The one-room-per-owner check and the insert happen in one transaction.
func (that *dbRoom) Create(ctx context.Context, owner, gameCode string) (*entity.Room, error) {
	ownerKey := roomOwnerKey(owner)

	var created *entity.Room

	err := watch(ctx, that.client, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, ownerKey).Result()
		if err != nil {
			return fmt.Errorf("failed to check room owner: %w", err)
		}

		if exists > 0 {
			return apperror.ErrAlreadyOwnsRoom
		}

		id, err := that.client.Incr(ctx, roomSeqKey).Uint64()
		if err != nil {
			return fmt.Errorf("failed to allocate room id: %w", err)
		}

		room := &entity.Room{
			ID:       id,
			GameCode: gameCode,
			Owner:    owner,
		}

		roomJSON, err := json.Marshal(room)
		if err != nil {
			return fmt.Errorf("could not marshal room: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, roomKey(id), roomJSON, 0)
			pipe.Set(ctx, ownerKey, id, 0)
			pipe.SAdd(ctx, roomIndexKey, id)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to set room: %w", err)
		}

		created = room

		return nil
	}, ownerKey)
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (that *dbRoom) GetByID(ctx context.Context, id uint64) (*entity.Room, error) {
	var room entity.Room

	found, err := getJSON(ctx, that.client, roomKey(id), &room)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, ErrRoomNotFound
	}

	return &room, nil
}

// Take - atomically removes the room if check accepts it.
func (that *dbRoom) Take(ctx context.Context, id uint64, check func(room *entity.Room) error) (*entity.Room, error) {
	key := roomKey(id)

	var taken *entity.Room

	err := watch(ctx, that.client, func(tx *redis.Tx) error {
		var room entity.Room

		found, err := getJSON(ctx, tx, key, &room)
		if err != nil {
			return err
		}

		if !found {
			return ErrRoomNotFound
		}

		if err = check(&room); err != nil {
			return err
		}

		if err = that.deleteRoom(ctx, tx, &room); err != nil {
			return err
		}

		taken = &room

		return nil
	}, key)
	if err != nil {
		return nil, err
	}

	return taken, nil
}

// DeleteByOwner - removes the room owned by owner and returns it, nil if there is none.
func (that *dbRoom) DeleteByOwner(ctx context.Context, owner string) (*entity.Room, error) {
	ownerKey := roomOwnerKey(owner)

	var deleted *entity.Room

	err := watch(ctx, that.client, func(tx *redis.Tx) error {
		id, err := tx.Get(ctx, ownerKey).Uint64()
		if errors.Is(err, redis.Nil) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("failed to get owned room: %w", err)
		}

		var room entity.Room

		found, err := getJSON(ctx, tx, roomKey(id), &room)
		if err != nil {
			return err
		}

		if !found {
			room = entity.Room{ID: id, Owner: owner}
		}

		if err = that.deleteRoom(ctx, tx, &room); err != nil {
			return err
		}

		if found {
			deleted = &room
		}

		return nil
	}, ownerKey)
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

func (that *dbRoom) List(ctx context.Context) ([]*entity.Room, error) {
	ids, err := that.client.SMembers(ctx, roomIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	if len(ids) == 0 {
		return []*entity.Room{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, "room:"+id)
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get rooms: %w", err)
	}

	rooms := make([]*entity.Room, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var room entity.Room
		if err = json.Unmarshal([]byte(raw), &room); err != nil {
			return nil, fmt.Errorf("failed to unmarshal room: %w", err)
		}

		rooms = append(rooms, &room)
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

	return rooms, nil
}

func (that *dbRoom) deleteRoom(ctx context.Context, tx *redis.Tx, room *entity.Room) error {
	_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, roomKey(room.ID))
		pipe.Del(ctx, roomOwnerKey(room.Owner))
		pipe.SRem(ctx, roomIndexKey, room.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	return nil
}
