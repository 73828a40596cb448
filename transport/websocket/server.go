package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/entity"
	"golang.org/x/time/rate"
)

var errNotConnected = errors.New("connect first")

type lobbyService interface {
	CreateRoom(ctx context.Context, owner string) (*entity.Room, error)
	JoinRoom(ctx context.Context, joiner string, roomID uint64) (*entity.Session, error)
	LeaveRoom(ctx context.Context, owner string) error
	ListRooms(ctx context.Context, participant string) ([]*entity.Room, error)
}

type sessionService interface {
	MakeMove(ctx context.Context, participant, sessionID string, cell entity.BoardMask) (*entity.Session, error)
	LeaveSession(ctx context.Context, participant, sessionID string) error
	GetSession(ctx context.Context, participant, sessionID string) (*entity.Session, error)
}

type authService interface {
	IssueToken(participant string) (string, error)
	VerifyToken(token string) (string, error)
}

type disconnectService interface {
	Disconnect(ctx context.Context, participant string) error
}

type handlerFunc func(ctx context.Context, c *client, payload *Payload) error

type Server struct {
	logger *slog.Logger
	hub    *Hub

	lobby      lobbyService
	sessions   sessionService
	disconnect disconnectService
	auth       authService

	upgrader  websocket.Upgrader
	rateLimit rate.Limit
	rateBurst int

	handlers map[string]handlerFunc
}

func New(
	logger *slog.Logger,
	hub *Hub,
	lobby lobbyService,
	sessions sessionService,
	disconnect disconnectService,
	auth authService,
	rateLimit float64,
	rateBurst int,
) *Server {
	server := &Server{
		logger:     logger.With("component", "websocket_server"),
		hub:        hub,
		lobby:      lobby,
		sessions:   sessions,
		disconnect: disconnect,
		auth:       auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		rateLimit: rate.Limit(rateLimit),
		rateBurst: rateBurst,
	}

	server.handlers = map[string]handlerFunc{
		actionConnect:   server.handleConnect,
		actionRoomNew:   server.handleRoomCreate,
		actionRoomJoin:  server.handleRoomJoin,
		actionRoomLeave: server.handleRoomLeave,
		actionRoomList:  server.handleRoomList,
		actionGameTurn:  server.handleGameTurn,
		actionGameLeave: server.handleGameLeave,
		actionGameGet:   server.handleGameGet,
	}

	return server
}

// Handler - routes /ws to the websocket endpoint.
func (that *Server) Handler(ctx context.Context) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	return router
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn, rate.NewLimiter(that.rateLimit, that.rateBurst))
	that.hub.register(c)

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	go c.writePump()
	that.readPump(ctx, c)
}

// readPump - processes messages from the client until the connection drops.
func (that *Server) readPump(ctx context.Context, c *client) {
	log := that.logger.With("method", "readPump")

	defer func() {
		c.close()
		that.onClose(ctx, c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("connection closed unexpectedly", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			that.sendError(c, "", "malformed message")
			continue
		}

		if !c.limiter.Allow() {
			that.sendError(c, message.Action, "rate limit exceeded")
			continue
		}

		that.dispatch(ctx, c, &message)
	}
}

func (that *Server) dispatch(ctx context.Context, c *client, message *Message) {
	log := that.logger.With("method", "dispatch", "action", message.Action, "participant", c.participant)

	handler, ok := that.handlers[message.Action]
	if !ok {
		that.sendError(c, message.Action, "unknown action")
		return
	}

	var payload Payload
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			that.sendError(c, message.Action, "malformed payload")
			return
		}
	}

	if message.Action != actionConnect && c.participant == "" {
		that.sendError(c, message.Action, errNotConnected.Error())
		return
	}

	err := handler(ctx, c, &payload)
	if err == nil {
		return
	}

	if rejection := apperror.Rejection(err); rejection != nil {
		log.Debug("request rejected", "error", err)
		that.sendError(c, message.Action, rejection.Error())
		return
	}

	log.Error("error processing message", "error", err)
	that.sendError(c, message.Action, "internal error")
}

// onClose - runs the disconnect cascade once the participant's last connection is gone.
func (that *Server) onClose(ctx context.Context, c *client) {
	if !that.hub.unregister(c) {
		return
	}

	log := that.logger.With("method", "onClose", "participant", c.participant)

	if err := that.disconnect.Disconnect(context.WithoutCancel(ctx), c.participant); err != nil {
		log.Error("failed to clean up after disconnect", "error", err)
		return
	}

	log.Info("participant disconnected")
}

func (that *Server) reply(c *client, action string, payload Payload) error {
	data, err := encode(action, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	c.enqueue(data)

	return nil
}

func (that *Server) sendError(c *client, action, reason string) {
	if err := that.reply(c, actionError, Payload{Action: action, Error: reason}); err != nil {
		that.logger.Error("failed to send error response", "error", err)
	}
}
