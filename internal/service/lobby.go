package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/blitz-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/pkg"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/policy"
)

type LobbyService interface {
	CreateRoom(ctx context.Context, owner string) (*entity.Room, error)
	JoinRoom(ctx context.Context, joiner string, roomID uint64) (*entity.Session, error)
	LeaveRoom(ctx context.Context, owner string) error
	ListRooms(ctx context.Context, participant string) ([]*entity.Room, error)
}

type roomRepo interface {
	Create(ctx context.Context, owner, gameCode string) (*entity.Room, error)
	Take(ctx context.Context, id uint64, check func(room *entity.Room) error) (*entity.Room, error)
	DeleteByOwner(ctx context.Context, owner string) (*entity.Room, error)
	List(ctx context.Context) ([]*entity.Room, error)
}

type lobbyService struct {
	logger *slog.Logger

	rooms     roomRepo
	sessions  sessionRepo
	scheduler turnArmer
	observer  Observer

	generateCode func() (string, error)
}

func NewLobbyService(logger *slog.Logger, rooms roomRepo, sessions sessionRepo, scheduler turnArmer, observer Observer) LobbyService {
	return &lobbyService{
		logger:       logger.With("component", "lobby_service"),
		rooms:        rooms,
		sessions:     sessions,
		scheduler:    scheduler,
		observer:     observer,
		generateCode: pkg.GenerateGameCode,
	}
}

func (that *lobbyService) CreateRoom(ctx context.Context, owner string) (*entity.Room, error) {
	log := that.logger.With("method", "CreateRoom", "owner", owner)

	code, err := that.generateCode()
	if err != nil {
		return nil, fmt.Errorf("error generating game code: %w", err)
	}

	room, err := that.rooms.Create(ctx, owner, code)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	log.Info("room created", "roomID", room.ID, "gameCode", room.GameCode)

	that.observer.RoomUpdated(ctx, room)

	return room, nil
}

// JoinRoom - turns the room into a session keyed by its game code, the owner moves first.
func (that *lobbyService) JoinRoom(ctx context.Context, joiner string, roomID uint64) (*entity.Session, error) {
	log := that.logger.With("method", "JoinRoom", "roomID", roomID, "joiner", joiner)

	room, err := that.rooms.Take(ctx, roomID, func(room *entity.Room) error {
		if room.Owner == joiner {
			return apperror.ErrSelfJoin
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to take room: %w", err)
	}

	that.observer.RoomDeleted(ctx, room)

	session := entity.NewSession(room.GameCode, room.Owner, joiner)

	if err = that.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info("session started", "sessionID", session.ID, "firstMover", session.FirstMover)

	that.observer.SessionUpdated(ctx, session)

	// the session is committed, a lost timer only leaves turn 0 without a deadline
	if err = that.scheduler.Arm(ctx, session.ID, session.TurnCounter); err != nil {
		log.Error("failed to arm first turn", "sessionID", session.ID, "error", err)
	}

	return session, nil
}

// LeaveRoom - closes the room owned by owner. No room is not an error.
func (that *lobbyService) LeaveRoom(ctx context.Context, owner string) error {
	room, err := that.rooms.DeleteByOwner(ctx, owner)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	if room == nil {
		return nil
	}

	that.logger.Info("room closed", "roomID", room.ID, "owner", owner)

	that.observer.RoomDeleted(ctx, room)

	return nil
}

func (that *lobbyService) ListRooms(ctx context.Context, participant string) ([]*entity.Room, error) {
	rooms, err := that.rooms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	visible := make([]*entity.Room, 0, len(rooms))
	for _, room := range rooms {
		if policy.CanObserveRoom(participant, room) {
			visible = append(visible, room)
		}
	}

	return visible, nil
}
