package e2e

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"chat-relay/infrastructure/ws"
)

type testChatRelaySuite struct {
	BaseRelaySuite
}

func TestChatRelaySuite(t *testing.T) {
	suite.Run(t, &testChatRelaySuite{})
}

func (s *testChatRelaySuite) TestFullChatFlow() {
	// Unique names so reruns against a long-lived relay stay readable
	aliceName := fmt.Sprintf("alice-%s", uuid.New().String()[:8])
	bobName := fmt.Sprintf("bob-%s", uuid.New().String()[:8])
	body := fmt.Sprintf("hello from the suite %s", uuid.New().String()[:8])

	// --- STEP 1: FIRST SESSION ---
	alice := s.Dial("Alice connects")
	defer alice.Close()

	s.Run("Step 1: History snapshot arrives before anything live", func() {
		frame := s.Recv(alice)
		s.Require().Equal(ws.TypeHistory, frame.Type)
	})

	s.Run("Step 2: Message before join is rejected", func() {
		s.Send(alice, ws.Frame{Type: ws.TypeMessage, Body: "too early"})

		frame := s.RecvType(alice, ws.TypeError)
		s.Require().Equal(ws.CodeNotJoined, frame.Error)
	})

	s.Send(alice, ws.Frame{Type: ws.TypeJoin, Name: aliceName})

	// --- STEP 3: SECOND SESSION AND PRESENCE ---
	bob := s.Dial("Bob connects")
	defer bob.Close()
	s.Require().Equal(ws.TypeHistory, s.Recv(bob).Type)
	s.Send(bob, ws.Frame{Type: ws.TypeJoin, Name: bobName})

	s.Run("Step 3: Join is announced to the other session only", func() {
		frame := s.RecvType(alice, ws.TypeUserJoined)
		s.Require().Equal(bobName, frame.Name)
	})

	// --- STEP 4: BROADCAST ---
	s.Run("Step 4: A message reaches everyone, sender included", func() {
		s.Send(alice, ws.Frame{Type: ws.TypeMessage, Body: body})

		for name, conn := range map[string]*websocket.Conn{aliceName: alice, bobName: bob} {
			frame := s.RecvType(conn, ws.TypeMessage)
			s.Require().NotNil(frame.Message, "No message payload for "+name)
			s.Require().Equal(aliceName, frame.Message.Author)
			s.Require().Equal(body, frame.Message.Body)
			s.Require().False(frame.Message.CreatedAt.IsZero())
		}
	})

	// --- STEP 5: DURABILITY ---
	s.Run("Step 5: A latecomer replays the message as history", func() {
		charlie := s.Dial("Charlie connects after the fact")
		defer charlie.Close()

		frame := s.Recv(charlie)
		s.Require().Equal(ws.TypeHistory, frame.Type)
		s.Require().NotEmpty(frame.Messages)

		last := frame.Messages[len(frame.Messages)-1]
		s.Require().Equal(aliceName, last.Author)
		s.Require().Equal(body, last.Body)
	})

	// --- STEP 6: DEPARTURE ---
	s.Run("Step 6: Closing the socket announces the departure", func() {
		s.Require().NoError(bob.Close())

		frame := s.RecvType(alice, ws.TypeUserLeft)
		s.Require().Equal(bobName, frame.Name)
	})
}
