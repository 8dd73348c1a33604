// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/inertial_nav/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

const wsWriteTimeout = 5 * time.Second

// WSMessage is pushed to websocket clients on every snapshot.
type WSMessage struct {
	Type string          `json:"type"` // heading, state
	Data json.RawMessage `json:"data"`
}

// liveState keeps the latest raw snapshots and fans them out to websocket
// clients.
type liveState struct {
	mu      sync.RWMutex
	heading json.RawMessage
	state   json.RawMessage

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]*sync.Mutex
}

func newLiveState() *liveState {
	return &liveState{clients: make(map[*websocket.Conn]*sync.Mutex)}
}

func (s *liveState) set(kind string, payload []byte) error {
	if !json.Valid(payload) {
		return fmt.Errorf("web: invalid %s payload", kind)
	}
	data := append(json.RawMessage(nil), payload...)

	s.mu.Lock()
	switch kind {
	case "heading":
		s.heading = data
	case "state":
		s.state = data
	}
	s.mu.Unlock()

	s.broadcast(WSMessage{Type: kind, Data: data})
	return nil
}

func (s *liveState) get(kind string) json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if kind == "heading" {
		return s.heading
	}
	return s.state
}

func (s *liveState) broadcast(msg WSMessage) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for conn, wmu := range s.clients {
		wmu.Lock()
		err := writeMessage(conn, msg)
		wmu.Unlock()
		if err != nil {
			log.Printf("web: websocket write error: %v", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

// writeMessage sends one message with a write deadline.
func writeMessage(conn *websocket.Conn, msg WSMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func (s *liveState) drop(conn *websocket.Conn) {
	s.clientsMu.Lock()
	delete(s.clients, conn)
	s.clientsMu.Unlock()
	conn.Close()
}

func (s *liveState) snapshotHandler(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := s.get(kind)
		if data == nil {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(data); err != nil {
			log.Printf("web: write error: %v", err)
		}
	}
}

// handleWS streams snapshots to one browser. The latest known snapshots are
// sent first.
func (s *liveState) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	wmu := &sync.Mutex{}
	wmu.Lock()
	s.clientsMu.Lock()
	s.clients[conn] = wmu
	s.clientsMu.Unlock()
	for _, kind := range []string{"heading", "state"} {
		data := s.get(kind)
		if data == nil {
			continue
		}
		if err := writeMessage(conn, WSMessage{Type: kind, Data: data}); err != nil {
			wmu.Unlock()
			log.Printf("web: websocket write error: %v", err)
			s.drop(conn)
			return
		}
	}
	wmu.Unlock()

	// Read until the client goes away; incoming messages are ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("web: websocket error: %v", err)
			}
			break
		}
	}
	s.drop(conn)
}

func (s *liveState) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/heading", s.snapshotHandler("heading"))
	mux.HandleFunc("/api/navigation", s.snapshotHandler("state"))
	mux.HandleFunc("/ws", s.handleWS)

	// Static files from ./web as the root
	mux.Handle("/", http.FileServer(http.Dir("web")))
	return mux
}

// RunWeb serves the latest heading and navigation snapshots over HTTP and
// a websocket stream.
func RunWeb() error {
	cfg := config.Get()
	live := newLiveState()

	client, err := connectMQTT("web", cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	for kind, topic := range map[string]string{"heading": cfg.TopicHeading, "state": cfg.TopicNavState} {
		if err := subscribe("web", client, topic, func(_ mqtt.Client, msg mqtt.Message) {
			if err := live.set(kind, msg.Payload()); err != nil {
				log.Printf("%v", err)
			}
		}); err != nil {
			return err
		}
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, live.routes())
}
