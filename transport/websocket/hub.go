package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/policy"
)

// Hub - registry of live connections. Pushes committed changes to the participants allowed to see them.
type Hub struct {
	logger *slog.Logger

	mu            sync.RWMutex
	clients       map[*client]struct{}
	byParticipant map[string]map[*client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:        logger.With("component", "websocket_hub"),
		clients:       make(map[*client]struct{}),
		byParticipant: make(map[string]map[*client]struct{}),
	}
}

func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.clients[c] = struct{}{}
}

// bind - attaches the connection to a participant identity.
func (that *Hub) bind(c *client, participant string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.detach(c)

	c.participant = participant

	if that.byParticipant[participant] == nil {
		that.byParticipant[participant] = make(map[*client]struct{})
	}
	that.byParticipant[participant][c] = struct{}{}
}

// unregister - forgets the connection. Returns true if it was the participant's last one.
func (that *Hub) unregister(c *client) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.clients, c)

	if c.participant == "" {
		return false
	}

	that.detach(c)

	return len(that.byParticipant[c.participant]) == 0
}

func (that *Hub) detach(c *client) {
	if c.participant == "" {
		return
	}

	conns := that.byParticipant[c.participant]
	delete(conns, c)

	if len(conns) == 0 {
		delete(that.byParticipant, c.participant)
	}
}

// Connected - number of bound connections of the participant.
func (that *Hub) Connected(participant string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.byParticipant[participant])
}

func (that *Hub) SessionUpdated(ctx context.Context, session *entity.Session) {
	that.pushSession(ctx, actionGameUpdate, session)
}

func (that *Hub) SessionDeleted(ctx context.Context, session *entity.Session) {
	that.pushSession(ctx, actionGameDelete, session)
}

func (that *Hub) RoomUpdated(ctx context.Context, room *entity.Room) {
	that.pushRoom(ctx, actionRoomUpdate, room)
}

func (that *Hub) RoomDeleted(ctx context.Context, room *entity.Room) {
	that.pushRoom(ctx, actionRoomDelete, room)
}

func (that *Hub) pushSession(_ context.Context, action string, session *entity.Session) {
	log := that.logger.With("method", "pushSession", "action", action, "sessionID", session.ID)

	data, err := encode(action, Payload{Session: session})
	if err != nil {
		log.Error("failed to encode notification", "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, participant := range []string{session.FirstMover, session.SecondMover} {
		if !policy.CanObserveSession(participant, session) {
			continue
		}

		for c := range that.byParticipant[participant] {
			if !c.enqueue(data) {
				log.Warn("dropping slow connection", "participant", participant)
			}
		}
	}
}

func (that *Hub) pushRoom(_ context.Context, action string, room *entity.Room) {
	log := that.logger.With("method", "pushRoom", "action", action, "roomID", room.ID)

	data, err := encode(action, Payload{Room: room})
	if err != nil {
		log.Error("failed to encode notification", "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for c := range that.clients {
		if !policy.CanObserveRoom(c.participant, room) {
			continue
		}

		if !c.enqueue(data) {
			log.Warn("dropping slow connection", "participant", c.participant)
		}
	}
}
