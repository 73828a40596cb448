package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/config"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/repository"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/repository/memory"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/repository/storage"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/scheduler"
	"github.com/rocketscienceinc/blitz-tictactoe/internal/service"
	"github.com/rocketscienceinc/blitz-tictactoe/transport/rest"
	"github.com/rocketscienceinc/blitz-tictactoe/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

type stores struct {
	sessions repository.SessionRepository
	rooms    repository.RoomRepository
	timeouts repository.TimeoutQueue

	close func() error
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	st, err := openStores(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = st.close(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	log.Info("storage ready", "storage", conf.Storage)

	clk := clock.New()
	hub := websocket.NewHub(logger)

	turnScheduler := service.NewTurnScheduler(logger, clk, conf.Game.TimeUnit, st.timeouts, st.sessions, hub)
	lobbyService := service.NewLobbyService(logger, st.rooms, st.sessions, turnScheduler, hub)
	sessionService := service.NewSessionService(logger, st.sessions, turnScheduler, hub)
	disconnectService := service.NewDisconnectService(logger, lobbyService, st.sessions, hub)

	runner := scheduler.New(logger, clk, st.timeouts, turnScheduler, conf.Scheduler.PollInterval, conf.Scheduler.BatchSize)

	authService := service.NewAuthService(clk, conf.Auth.JWTSecretKey, conf.Auth.TokenTTL)

	wsServer := websocket.New(logger, hub, lobbyService, sessionService, disconnectService, authService,
		conf.WebSocket.RateLimit, conf.WebSocket.RateBurst)

	errCh := make(chan error, 3)

	// run timeout runner
	go func() {
		if runErr := runner.Run(ctx); runErr != nil {
			errCh <- fmt.Errorf("timeout runner error: %w", runErr)
		}
	}()

	// run HTTP server
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, rest.NewRouter(logger, lobbyService)); httpErr != nil {
			errCh <- fmt.Errorf("HTTP server error: %w", httpErr)
		}
	}()

	// run Websocket server
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			errCh <- fmt.Errorf("WebSocket server error: %w", wsErr)
		}
	}()

	select {
	case err = <-errCh:
		log.Error("component failed, shutting down", "error", err)
		return err
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func openStores(ctx context.Context, conf *config.Config) (*stores, error) {
	if conf.Storage == config.StorageMemory {
		return &stores{
			sessions: memory.NewSessionStore(),
			rooms:    memory.NewRoomStore(),
			timeouts: memory.NewTimeoutQueue(),
			close:    func() error { return nil },
		}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString, conf.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return &stores{
		sessions: repository.NewSessionRepository(redisStorage.Connection),
		rooms:    repository.NewRoomRepository(redisStorage.Connection),
		timeouts: repository.NewTimeoutQueue(redisStorage.Connection),
		close:    redisStorage.Close,
	}, nil
}
