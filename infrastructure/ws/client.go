package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/services"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var _ contract.EventSink = (*Client)(nil)

// Client bridges one physical WebSocket connection to the coordinator.
// The read pump decodes inbound frames into commands; the write pump
// drains the buffered send channel back to the browser. Separating the
// two avoids head-of-line blocking when a browser is slow.
type Client struct {
	id      domain.SessionID
	socket  *websocket.Conn
	service services.IChatService
	log     *slog.Logger

	send        chan []byte
	done        chan struct{}
	closeOnce   sync.Once
	maxBodySize int
}

func NewClient(
	id domain.SessionID,
	socket *websocket.Conn,
	service services.IChatService,
	log *slog.Logger,
	sendBuffer, maxBodySize int,
) *Client {
	return &Client{
		id:          id,
		socket:      socket,
		service:     service,
		log:         log,
		send:        make(chan []byte, sendBuffer),
		done:        make(chan struct{}),
		maxBodySize: maxBodySize,
	}
}

// Consume implements contract.EventSink. It encodes the event and
// enqueues it without blocking: a full buffer means the client is too
// slow and the event is dropped for this session only.
func (c *Client) Consume(e event.DomainEvent) error {
	frame, ok := EncodeEvent(e)
	if !ok {
		return nil
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return fmt.Errorf("session %s closed", c.id)
	case c.send <- data:
		return nil
	default:
		return fmt.Errorf("send buffer full for session %s", c.id)
	}
}

// readPump decodes inbound frames and dispatches them. It owns the
// calling goroutine until the connection dies, then triggers the one
// and only disconnect.
func (c *Client) readPump(ctx context.Context) {
	defer c.disconnect()

	if c.maxBodySize > 0 {
		// Body limit plus envelope headroom.
		c.socket.SetReadLimit(int64(c.maxBodySize) + 1024)
	}
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("Read error", "session_id", c.id, "err", err)
			}
			return
		}
		c.handle(ctx, data)
	}
}

func (c *Client) handle(ctx context.Context, data []byte) {
	frame, err := DecodeFrame(data)
	if err != nil {
		c.log.Debug("Undecodable frame", "session_id", c.id, "err", err)
		c.reply(Frame{Type: TypeError, Error: CodeUnknownEvent})
		return
	}

	switch frame.Type {
	case TypeJoin:
		if err := c.service.Join(ctx, c.id, frame.Name); err != nil {
			c.reply(ErrorFrame(err))
		}
	case TypeMessage:
		if c.maxBodySize > 0 && len(frame.Body) > c.maxBodySize {
			c.reply(Frame{Type: TypeError, Error: CodeBodyTooLong})
			return
		}
		if err := c.service.PostMessage(ctx, c.id, frame.Body); err != nil {
			c.reply(ErrorFrame(err))
		}
	default:
		c.reply(Frame{Type: TypeError, Error: CodeUnknownEvent})
	}
}

// reply reports a rejection to this session only; it never reaches the
// other sessions.
func (c *Client) reply(frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.log.Debug("Reply dropped, send buffer full", "session_id", c.id)
	}
}

// writeHistory pushes the initial snapshot synchronously, before the
// write pump starts, so no live event can overtake it.
func (c *Client) writeHistory(messages []domain.Message) error {
	data, err := json.Marshal(HistoryFrame(messages))
	if err != nil {
		return err
	}
	_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return c.socket.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.disconnect()
	}()

	for {
		select {
		case <-c.done:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// disconnect tears the session down exactly once, even when the close
// frame and a transport error race each other.
func (c *Client) disconnect() {
	c.closeOnce.Do(func() {
		c.service.Disconnect(c.id)
		close(c.done)
		_ = c.socket.Close()
	})
}
