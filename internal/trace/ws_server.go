package trace

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSSink is a trace.Sink that broadcasts every event, JSON-encoded, to
// whatever viewers are connected over a websocket — the live
// visualisation path behind --debug-addr. Narrowed from a general
// bidirectional connection/client-map server down to broadcast-only event
// fan-out: nothing here ever reads from a connected client.
type WSSink struct {
	addr     string
	upgrader websocket.Upgrader
	server   *http.Server

	mu      sync.RWMutex
	clients map[string]chan Event
}

// NewWSSink builds a sink that will serve websocket connections at addr
// once Serve is called.
func NewWSSink(addr string) *WSSink {
	return &WSSink{
		addr:    addr,
		clients: make(map[string]chan Event),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve starts the HTTP server in the background. Call Close to stop it.
func (s *WSSink) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/trace", s.handleUpgrade)
	s.server = &http.Server{Addr: s.addr, Handler: mux}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("trace: listen on %s: %w", s.addr, err)
	}
	go s.server.Serve(ln)
	return nil
}

// Close stops accepting connections and drops every client channel.
func (s *WSSink) Close() error {
	s.mu.Lock()
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
	s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Close()
}

// Emit implements Sink: it fans the event out to every connected client's
// buffered channel, dropping it for any client whose buffer is full rather
// than blocking the search.
func (s *WSSink) Emit(e Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.clients {
		select {
		case ch <- e:
		default:
		}
	}
}

func (s *WSSink) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	id := uuid.NewString()
	events := make(chan Event, 256)

	s.mu.Lock()
	s.clients[id] = events
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
		conn.Close()
	}()

	for e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
