package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chat-relay/infrastructure/ws"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/projection"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting. Returning an error instead of exiting
// keeps the defers running (database cleanup included) and the wiring
// testable.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB). Opened once here, closed once on exit: the
	// store has a single initialization path, no cached singleton.
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Moderation
	censored, err := runtime.LoadCensoredWords()
	if err != nil {
		return fmt.Errorf("censored words loading failed: %w", err)
	}
	log.Info(fmt.Sprintf("%d censored words loaded [%s]",
		len(censored.Words), strings.Join(censored.Languages, ",")))

	replacement, err := internal.CharacterRune(config.CensorReplacement)
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(censored.Words, replacement)
	if err != nil {
		return fmt.Errorf("moderator build failed: %w", err)
	}

	// 4. Core wiring
	monitoring := observability.NewMonitoringManager(log)
	registry := runtime.NewRegistry()
	repository := repositories.NewMessageRepository(db, log)
	coordinator := runtime.NewCoordinator(log, registry, repository, &moderator, monitoring)

	timeline := projection.NewTimeline(config.TimelineCapacity)
	coordinator.AddSink(timeline)

	service := services.NewChatService(coordinator)
	chatServer := ws.NewChatServer(log, service,
		config.HistoryLimit, config.SendBufferSize, config.MaxBodyLength)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Supervised background workers
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewReporterWorker(log, monitoring, coordinator.SnapshotNames, config.ReportInterval))
	go sup.Run(ctx)

	// 7. Diagnostics
	if config.DebugPort > 0 {
		internal.StartDebugServer(db, config.DebugPort, "/inspect", nil, func() map[string]any {
			stats := monitoring.GetLatest()
			return map[string]any{
				"Joined":    strings.Join(coordinator.SnapshotNames(), ", "),
				"Persisted": stats.MessagesPersisted,
				"Delivered": stats.EventsDelivered,
				"Dropped":   stats.EventsDropped,
				"Timeline":  timeline.Len(),
				"RSS (MB)":  stats.RssMb,
			}
		})
		log.Info(fmt.Sprintf("Inspector started at http://localhost:%d/inspect", config.DebugPort))
	}

	// 8. HTTP server with the WebSocket endpoint
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", chatServer.Handle)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting relay", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 10. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
