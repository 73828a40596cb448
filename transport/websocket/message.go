package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
)

const (
	actionConnect   = "connect"
	actionError     = "error"
	actionRoomNew   = "room:create"
	actionRoomJoin  = "room:join"
	actionRoomLeave = "room:leave"
	actionRoomList  = "room:list"
	actionGameTurn  = "game:turn"
	actionGameLeave = "game:leave"
	actionGameGet   = "game:get"

	actionRoomUpdate = "room:update"
	actionRoomDelete = "room:delete"
	actionGameUpdate = "game:update"
	actionGameDelete = "game:delete"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Participant string `json:"participant,omitempty"`
	Token       string `json:"token,omitempty"`
	RoomID      uint64 `json:"room_id,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	Cell        *int   `json:"cell,omitempty"`

	Room    *entity.Room    `json:"room,omitempty"`
	Rooms   []*entity.Room  `json:"rooms,omitempty"`
	Session *entity.Session `json:"session,omitempty"`

	// Action - the request an error payload answers.
	Action string `json:"action,omitempty"`
	Error  string `json:"error,omitempty"`
}

func encode(action string, payload Payload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{
		Action:  action,
		Payload: body,
	})
}
