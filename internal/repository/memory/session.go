package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/repository"
)

// SessionStore - in-process session records with per-session exclusive mutation.
type SessionStore struct {
	locks *keyLocks

	mu       sync.RWMutex
	sessions map[string]entity.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		locks:    newKeyLocks(),
		sessions: make(map[string]entity.Session),
	}
}

func (that *SessionStore) Create(_ context.Context, session *entity.Session) error {
	unlock := that.locks.Lock(session.ID)
	defer unlock()

	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[session.ID]; ok {
		return fmt.Errorf("%w: %s", repository.ErrSessionExists, session.ID)
	}

	that.sessions[session.ID] = *session

	return nil
}

func (that *SessionStore) GetByID(_ context.Context, id string) (*entity.Session, error) {
	session, ok := that.load(id)
	if !ok {
		return nil, repository.ErrSessionNotFound
	}

	return &session, nil
}

func (that *SessionStore) Update(_ context.Context, id string, mutate func(session *entity.Session) error) (*entity.Session, error) {
	unlock := that.locks.Lock(id)
	defer unlock()

	session, ok := that.load(id)
	if !ok {
		return nil, repository.ErrSessionNotFound
	}

	if err := mutate(&session); err != nil {
		return nil, err
	}

	that.mu.Lock()
	that.sessions[id] = session
	that.mu.Unlock()

	return &session, nil
}

func (that *SessionStore) DeleteByID(_ context.Context, id string) (*entity.Session, error) {
	unlock := that.locks.Lock(id)
	defer unlock()

	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, nil
	}

	delete(that.sessions, id)

	return &session, nil
}

func (that *SessionStore) FindByParticipant(_ context.Context, participant string) ([]*entity.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	var sessions []*entity.Session
	for _, session := range that.sessions {
		if session.HasParticipant(participant) {
			found := session
			sessions = append(sessions, &found)
		}
	}

	return sessions, nil
}

func (that *SessionStore) load(id string) (entity.Session, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[id]

	return session, ok
}
