package e2e

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"chat-relay/infrastructure/ws"
)

const frameTimeout = 5 * time.Second

type BaseRelaySuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests.
// Without RELAY_ADDR there is nothing to test against, so the whole
// suite is skipped rather than failed.
func (s *BaseRelaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.RelayAddr == "" {
		s.T().Skip("RELAY_ADDR not set, skipping end to end suite")
	}
}

// Dial opens a WebSocket session against the running relay with a
// colorized header for the connection step in logs.
func (s *BaseRelaySuite) Dial(name string) *websocket.Conn {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	u := url.URL{Scheme: "ws", Host: s.Config.RelayAddr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	s.Require().NoError(err, "Failed to connect to relay at "+s.Config.RelayAddr)
	return conn
}

// Send writes one frame, logging the full JSON body if E2E_DEBUG_JSON
// is enabled.
func (s *BaseRelaySuite) Send(conn *websocket.Conn, frame ws.Frame) {
	if s.Config.DebugJSON {
		data, _ := json.MarshalIndent(frame, "", "  ")
		s.T().Logf("SEND:\n%s", data)
	}
	s.Require().NoError(conn.WriteJSON(frame))
}

// Recv reads the next frame with a deadline.
func (s *BaseRelaySuite) Recv(conn *websocket.Conn) ws.Frame {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(frameTimeout)))

	var frame ws.Frame
	s.Require().NoError(conn.ReadJSON(&frame))

	if s.Config.DebugJSON {
		data, _ := json.MarshalIndent(frame, "", "  ")
		s.T().Logf("RECV:\n%s", data)
	}
	return frame
}

// RecvType reads frames until one of the wanted type arrives, so a
// scenario can ignore presence chatter from unrelated sessions.
func (s *BaseRelaySuite) RecvType(conn *websocket.Conn, frameType string) ws.Frame {
	for {
		frame := s.Recv(conn)
		if frame.Type == frameType {
			return frame
		}
		s.T().Logf("Skipping %s frame while waiting for %s", frame.Type, frameType)
	}
}
