package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
)

type roomLister interface {
	ListRooms(ctx context.Context, participant string) ([]*entity.Room, error)
}

type handlers struct {
	logger *slog.Logger
	lobby  roomLister
}

type roomsResponse struct {
	Rooms []*entity.Room `json:"rooms"`
}

// ListRooms - open rooms as seen by the participant named in the query.
func (that *handlers) ListRooms(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ListRooms")

	rooms, err := that.lobby.ListRooms(r.Context(), r.URL.Query().Get("participant"))
	if err != nil {
		log.Error("failed to list rooms", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if rooms == nil {
		rooms = []*entity.Room{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(roomsResponse{Rooms: rooms}); err != nil {
		log.Error("failed to write rooms response", "error", err)
	}
}
