package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/repository/memory"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (that *recorder) record(event string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, event)
}

func (that *recorder) Events() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]string(nil), that.events...)
}

func (that *recorder) SessionUpdated(_ context.Context, session *entity.Session) {
	that.record("game:update " + session.ID)
}

func (that *recorder) SessionDeleted(_ context.Context, session *entity.Session) {
	that.record("game:delete " + session.ID)
}

func (that *recorder) RoomUpdated(_ context.Context, room *entity.Room) {
	that.record("room:update " + room.GameCode)
}

func (that *recorder) RoomDeleted(_ context.Context, room *entity.Room) {
	that.record("room:delete " + room.GameCode)
}

type env struct {
	clock    *clock.Mock
	sessions *memory.SessionStore
	rooms    *memory.RoomStore
	timeouts *memory.TimeoutQueue
	observer *recorder

	scheduler  TurnScheduler
	lobby      *lobbyService
	game       SessionService
	disconnect DisconnectService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	e := &env{
		clock:    clock.NewMock(),
		sessions: memory.NewSessionStore(),
		rooms:    memory.NewRoomStore(),
		timeouts: memory.NewTimeoutQueue(),
		observer: &recorder{},
	}

	e.scheduler = NewTurnScheduler(logger, e.clock, time.Second, e.timeouts, e.sessions, e.observer)
	e.lobby = NewLobbyService(logger, e.rooms, e.sessions, e.scheduler, e.observer).(*lobbyService)
	e.game = NewSessionService(logger, e.sessions, e.scheduler, e.observer)
	e.disconnect = NewDisconnectService(logger, e.lobby, e.sessions, e.observer)

	codes := []string{"AAAAAAAA", "BBBBBBBB", "CCCCCCCC", "DDDDDDDD"}
	e.lobby.generateCode = func() (string, error) {
		code := codes[0]
		codes = append(codes[1:], code)
		return code, nil
	}

	return e
}

// startSession - alice opens a room and bob joins it.
func (that *env) startSession(t *testing.T) *entity.Session {
	t.Helper()

	ctx := context.Background()

	room, err := that.lobby.CreateRoom(ctx, "alice")
	if err != nil {
		t.Fatalf("could not create room: %v", err)
	}

	session, err := that.lobby.JoinRoom(ctx, "bob", room.ID)
	if err != nil {
		t.Fatalf("could not join room: %v", err)
	}

	return session
}

// claim - advances the mock clock and returns the timeouts that became due.
func (that *env) claim(t *testing.T, advance time.Duration) []*entity.ScheduledTimeout {
	t.Helper()

	that.clock.Add(advance)

	due, err := that.timeouts.ClaimDue(context.Background(), that.clock.Now(), 100)
	if err != nil {
		t.Fatalf("could not claim timeouts: %v", err)
	}

	return due
}

type failingArmer struct {
	calls int
}

func (that *failingArmer) Arm(context.Context, string, uint32) error {
	that.calls++
	return errors.New("timeout queue unavailable")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
