package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"skystream/internal/protocol"
	"skystream/internal/sim/world"
)

// SessionSink is notified when a client session starts, so persistence
// backends can record session metadata.
type SessionSink interface {
	StartSession(id, clientName, role string)
}

type Server struct {
	world *world.World
	log   *log.Logger
	sinks []SessionSink

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger, sinks ...SessionSink) *Server {
	return &Server{
		world: w,
		log:   logger,
		sinks: sinks,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		hello, ok := s.handshake(conn)
		if !ok {
			return
		}
		sessionID := uuid.NewString()

		welcome := protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			SessionID:       sessionID,
			WorldID:         s.world.ID(),
			WorldParams:     s.world.WorldParams(),
		}
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(welcome); err != nil {
			return
		}
		for _, sink := range s.sinks {
			sink.StartSession(sessionID, hello.ClientName, hello.Role)
		}
		s.log.Printf("session %s: %s joined as %s", sessionID, hello.ClientName, hello.Role)

		// Every session receives the per-tick snapshot stream.
		out := s.world.Subscribe(sessionID, 16)
		defer s.world.Unsubscribe(sessionID)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for b := range out {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}()

		// Reader loop. Only pilots may move the observer.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypePos {
				continue
			}
			if hello.Role != protocol.RolePilot {
				continue
			}
			var pos protocol.PosMsg
			if err := json.Unmarshal(msg, &pos); err != nil {
				continue
			}
			if pos.ProtocolVersion != protocol.Version {
				continue
			}
			s.world.PosInbox() <- mgl64.Vec3(pos.Pos)
		}

		conn.Close()
		<-done
		s.log.Printf("session %s: closed", sessionID)
	}
}

func (s *Server) handshake(conn *websocket.Conn) (protocol.HelloMsg, bool) {
	var hello protocol.HelloMsg

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return hello, false
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		return hello, false
	}
	if err := json.Unmarshal(msg, &hello); err != nil {
		return hello, false
	}
	if hello.ProtocolVersion != protocol.Version {
		return hello, false
	}
	if hello.Role != protocol.RolePilot && hello.Role != protocol.RoleRenderer {
		return hello, false
	}
	return hello, true
}
