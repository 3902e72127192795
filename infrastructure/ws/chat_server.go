// Package ws exposes the relay over WebSocket: one upgrade endpoint,
// one client per connection, JSON frames both ways.
package ws

import (
	"log/slog"
	"net/http"

	"chat-relay/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type ChatServer struct {
	log          *slog.Logger
	service      services.IChatService
	upgrader     websocket.Upgrader
	historyLimit int
	sendBuffer   int
	maxBodySize  int
}

func NewChatServer(
	log *slog.Logger,
	service services.IChatService,
	historyLimit, sendBuffer, maxBodySize int,
) *ChatServer {
	return &ChatServer{
		log:     log,
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Single-origin deployment behind the page that serves the
			// chat UI; tighten when exposed cross-origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		historyLimit: historyLimit,
		sendBuffer:   sendBuffer,
		maxBodySize:  maxBodySize,
	}
}

// Handle upgrades the HTTP request and runs the session until the
// connection dies. Sequence per session: history snapshot first, then
// registration, then live events.
func (s *ChatServer) Handle(w http.ResponseWriter, r *http.Request) {
	socket, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Upgrade failed", "err", err)
		return
	}

	id := uuid.New()
	client := NewClient(id, socket, s.service, s.log, s.sendBuffer, s.maxBodySize)

	// Point-in-time snapshot, requested once at session start. If the
	// store is down, presence still works: deliver an empty history and
	// keep the session alive.
	history, err := s.service.Recent(r.Context(), s.historyLimit)
	if err != nil {
		s.log.Error("History fetch failed", "session_id", id, "err", err)
		client.reply(ErrorFrame(err))
	}
	if err := client.writeHistory(history); err != nil {
		s.log.Debug("History write failed", "session_id", id, "err", err)
		_ = socket.Close()
		return
	}

	if err := s.service.Connect(id, client); err != nil {
		_ = socket.Close()
		return
	}

	go client.writePump()
	client.readPump(r.Context())
}
