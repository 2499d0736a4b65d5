// Package stream exposes run activity over WebSocket so editor UI panels can
// follow execution without polling. New clients receive the retained
// transcript before live events.
package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/viant/runcell/model/execution"
	"github.com/viant/runcell/service/event"
	"github.com/viant/runcell/service/transcript"
)

const (
	pingInterval  = 30 * time.Second
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
)

// Message is the wire envelope sent to stream clients.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage builds an envelope around a JSON-encodable payload.
func NewMessage(messageType string, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{Type: messageType, Payload: data}, nil
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local editor host only
	},
}

// Server fans run events out to connected WebSocket clients.
type Server struct {
	transcript *transcript.Buffer
	clients    map[*client]bool
	clientsMu  sync.RWMutex
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

// New creates a stream server; the transcript may be nil when replay is not
// wanted.
func New(buffer *transcript.Buffer) *Server {
	return &Server{
		transcript: buffer,
		clients:    make(map[*client]bool),
	}
}

// Attach subscribes the server to run outcomes published on the bus.
func (s *Server) Attach(bus *event.Service) error {
	return event.SetListenerOf(bus, func(evt *event.Event[execution.Outcome]) {
		s.BroadcastOutcome(evt.Context.EventType, &evt.Data)
	})
}

// Handler returns an http.Handler exposing the /ws endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// handleWebSocket upgrades an HTTP connection to WebSocket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	s.clientsMu.Lock()
	s.clients[c] = true
	s.clientsMu.Unlock()

	s.replayTranscript(c)

	go c.writePump()
	go c.readPump()
}

// replayTranscript sends retained output to a newly connected client.
func (s *Server) replayTranscript(c *client) {
	if s.transcript == nil {
		return
	}
	for _, entry := range s.transcript.Entries() {
		msg, err := NewMessage("output", entry)
		if err != nil {
			continue
		}
		c.enqueue(msg)
	}
}

// BroadcastOutcome sends a run outcome to every connected client.
func (s *Server) BroadcastOutcome(eventType string, outcome *execution.Outcome) {
	msg, err := NewMessage("run."+eventType, outcome)
	if err != nil {
		return
	}
	s.broadcast(msg)
}

// BroadcastOutput sends an output fragment to every connected client.
func (s *Server) BroadcastOutput(entry transcript.Entry) {
	msg, err := NewMessage("output", entry)
	if err != nil {
		return
	}
	s.broadcast(msg)
}

// broadcast sends a message to all connected clients. Clients with a full
// buffer are skipped rather than blocked on.
func (s *Server) broadcast(msg *Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for c := range s.clients {
		c.enqueue(msg)
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (c *client) enqueue(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// readPump drains the connection; the stream is one-way so client payloads
// are discarded, but reads drive pong handling and disconnect detection.
func (c *client) readPump() {
	defer func() {
		c.server.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}
	}
}

// writePump writes queued messages and periodic pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// removeClient cleans up a disconnected client.
func (s *Server) removeClient(c *client) {
	s.clientsMu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.clientsMu.Unlock()
}
