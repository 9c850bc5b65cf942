package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/watchparty/server/internal/controller"
	connInmemory "github.com/watchparty/server/internal/repository/connection/inmemory"
	presenceInmemory "github.com/watchparty/server/internal/repository/presence/inmemory"
	roomInmemory "github.com/watchparty/server/internal/repository/room/inmemory"
	"github.com/watchparty/server/internal/service/room"
	"github.com/watchparty/server/pkg/ctxlogger"
	"github.com/watchparty/server/pkg/ytmedia"
)

type AppConfig struct {
	Host          string        `json:"host"`
	Port          int           `json:"port"`
	LogLevel      string        `json:"log_level"`
	MessagesLimit int           `json:"messages_limit"`
	SyncInterval  time.Duration `json:"sync_interval"`
	LookupTimeout time.Duration `json:"lookup_timeout"`
	YoutubeAPIKey string        `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.MessagesLimit < 1 {
		return fmt.Errorf("messages limit must be greater than 0")
	}
	if cfg.SyncInterval <= 0 {
		return fmt.Errorf("sync interval must be positive")
	}
	if cfg.LookupTimeout <= 0 {
		return fmt.Errorf("lookup timeout must be positive")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}),
	}
	logger := slog.New(&h)

	roomRepo := roomInmemory.NewRepo()
	presenceRepo := presenceInmemory.NewRepo()
	connRepo := connInmemory.NewRepo()
	mediaClient := ytmedia.NewClient(cfg.YoutubeAPIKey)

	roomService := room.NewService(roomRepo, presenceRepo, connRepo, mediaClient, logger, &room.Config{
		MessagesLimit: cfg.MessagesLimit,
		SyncInterval:  cfg.SyncInterval,
		LookupTimeout: cfg.LookupTimeout,
	})
	ctrl := controller.NewController(roomService, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: ctrl.GetMux(),
	}

	serverCtx, serverStopCtx := context.WithCancel(ctx)

	// the playback clock advances with or without inbound traffic
	go roomService.RunPlaybackTicker(serverCtx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
