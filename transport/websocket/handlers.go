package websocket

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/pkg"
)

// handleConnect - binds the connection to the participant named by a signed token.
// Without a token a fresh participant is created and its token handed out.
func (that *Server) handleConnect(_ context.Context, c *client, payload *Payload) error {
	if payload.Token == "" && payload.Participant != "" {
		that.sendError(c, actionConnect, "token is required to resume a participant")
		return nil
	}

	participant := pkg.GenerateParticipantID()
	token := payload.Token

	if token != "" {
		verified, err := that.auth.VerifyToken(token)
		if err != nil {
			return fmt.Errorf("failed to verify token: %w", err)
		}
		participant = verified
	} else {
		issued, err := that.auth.IssueToken(participant)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}
		token = issued
	}

	if c.participant != "" && c.participant != participant {
		that.sendError(c, actionConnect, "connection is already bound to another participant")
		return nil
	}

	that.hub.bind(c, participant)

	that.logger.Info("participant connected", "participant", participant)

	return that.reply(c, actionConnect, Payload{Participant: participant, Token: token})
}

func (that *Server) handleRoomCreate(ctx context.Context, c *client, _ *Payload) error {
	room, err := that.lobby.CreateRoom(ctx, c.participant)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	return that.reply(c, actionRoomNew, Payload{Room: room})
}

func (that *Server) handleRoomJoin(ctx context.Context, c *client, payload *Payload) error {
	if payload.RoomID == 0 {
		that.sendError(c, actionRoomJoin, "room_id is required")
		return nil
	}

	session, err := that.lobby.JoinRoom(ctx, c.participant, payload.RoomID)
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	return that.reply(c, actionRoomJoin, Payload{Session: session})
}

func (that *Server) handleRoomLeave(ctx context.Context, c *client, _ *Payload) error {
	if err := that.lobby.LeaveRoom(ctx, c.participant); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	return that.reply(c, actionRoomLeave, Payload{})
}

func (that *Server) handleRoomList(ctx context.Context, c *client, _ *Payload) error {
	rooms, err := that.lobby.ListRooms(ctx, c.participant)
	if err != nil {
		return fmt.Errorf("failed to list rooms: %w", err)
	}

	return that.reply(c, actionRoomList, Payload{Rooms: rooms})
}

func (that *Server) handleGameTurn(ctx context.Context, c *client, payload *Payload) error {
	if payload.SessionID == "" || payload.Cell == nil {
		that.sendError(c, actionGameTurn, "session_id and cell are required")
		return nil
	}

	session, err := that.sessions.MakeMove(ctx, c.participant, payload.SessionID, entity.CellBit(*payload.Cell))
	if err != nil {
		return fmt.Errorf("failed to make turn: %w", err)
	}

	return that.reply(c, actionGameTurn, Payload{Session: session})
}

func (that *Server) handleGameLeave(ctx context.Context, c *client, payload *Payload) error {
	if payload.SessionID == "" {
		that.sendError(c, actionGameLeave, "session_id is required")
		return nil
	}

	if err := that.sessions.LeaveSession(ctx, c.participant, payload.SessionID); err != nil {
		return fmt.Errorf("failed to leave game: %w", err)
	}

	return that.reply(c, actionGameLeave, Payload{SessionID: payload.SessionID})
}

func (that *Server) handleGameGet(ctx context.Context, c *client, payload *Payload) error {
	if payload.SessionID == "" {
		that.sendError(c, actionGameGet, "session_id is required")
		return nil
	}

	session, err := that.sessions.GetSession(ctx, c.participant, payload.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get game: %w", err)
	}

	return that.reply(c, actionGameGet, Payload{Session: session})
}
