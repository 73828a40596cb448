package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/rocketscienceinc/blitz-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/repository"
)

// RoomStore - in-process lobby rooms. Every mutation holds the owner's key
// so the one-room-per-owner rule is checked and applied atomically.
type RoomStore struct {
	locks *keyLocks

	mu      sync.RWMutex
	nextID  uint64
	rooms   map[uint64]entity.Room
	byOwner map[string]uint64
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		locks:   newKeyLocks(),
		rooms:   make(map[uint64]entity.Room),
		byOwner: make(map[string]uint64),
	}
}

func (that *RoomStore) Create(_ context.Context, owner, gameCode string) (*entity.Room, error) {
	unlock := that.locks.Lock(owner)
	defer unlock()

	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.byOwner[owner]; ok {
		return nil, apperror.ErrAlreadyOwnsRoom
	}

	that.nextID++
	room := entity.Room{
		ID:       that.nextID,
		GameCode: gameCode,
		Owner:    owner,
	}

	that.rooms[room.ID] = room
	that.byOwner[owner] = room.ID

	return &room, nil
}

func (that *RoomStore) GetByID(_ context.Context, id uint64) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}

	return &room, nil
}

func (that *RoomStore) Take(ctx context.Context, id uint64, check func(room *entity.Room) error) (*entity.Room, error) {
	room, err := that.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := that.locks.Lock(room.Owner)
	defer unlock()

	// re-read under the owner's lock, the room may have been taken meanwhile
	that.mu.RLock()
	current, ok := that.rooms[id]
	that.mu.RUnlock()

	if !ok {
		return nil, repository.ErrRoomNotFound
	}

	if err = check(&current); err != nil {
		return nil, err
	}

	that.delete(current)

	return &current, nil
}

func (that *RoomStore) DeleteByOwner(_ context.Context, owner string) (*entity.Room, error) {
	unlock := that.locks.Lock(owner)
	defer unlock()

	that.mu.RLock()
	id, ok := that.byOwner[owner]
	room := that.rooms[id]
	that.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	that.delete(room)

	return &room, nil
}

func (that *RoomStore) List(_ context.Context) ([]*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	rooms := make([]*entity.Room, 0, len(that.rooms))
	for _, room := range that.rooms {
		listed := room
		rooms = append(rooms, &listed)
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

	return rooms, nil
}

func (that *RoomStore) delete(room entity.Room) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.rooms, room.ID)
	delete(that.byOwner, room.Owner)
}
