package entity

// Room - an open invitation waiting for a second participant.
type Room struct {
	ID       uint64 `json:"id"`
	GameCode string `json:"game_code"`
	Owner    string `json:"owner"`
}
