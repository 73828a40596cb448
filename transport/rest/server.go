package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// NewRouter - health check and the read-only lobby listing.
func NewRouter(logger *slog.Logger, lobby roomLister) http.Handler {
	h := &handlers{
		logger: logger.With("component", "rest"),
		lobby:  lobby,
	}

	router := mux.NewRouter()
	router.HandleFunc("/ping", h.Ping).Methods(http.MethodGet)
	router.HandleFunc("/rooms", h.ListRooms).Methods(http.MethodGet)

	return router
}

// Start - serves handler on port until ctx is done.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
