// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/squeeze_computer/squeeze"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// SqueezeSession holds the state of one interactive web client
type SqueezeSession struct {
	Conn *websocket.Conn
	mu   sync.Mutex
}

// WebSocket message types
type WSMessage struct {
	Action string `json:"action"` // record, add, recognize, forms, reset
	Label  string `json:"label,omitempty"`
}

type WSResponse struct {
	Type     string            `json:"type"` // features, recorded, fit, forms, reset, error
	Label    string            `json:"label,omitempty"`
	Fit      float64           `json:"fit,omitempty"`
	Features *squeeze.Features `json:"features,omitempty"`
	Forms    []squeeze.FormFit `json:"forms,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// HandleSqueezeWS handles one interactive WebSocket connection: it streams
// feature snapshots at the given interval and applies record/recognize
// actions to the shared engine.
func HandleSqueezeWS(w http.ResponseWriter, r *http.Request, eng *squeeze.Engine, streamInterval time.Duration) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("squeeze ws: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	session := &SqueezeSession{Conn: conn}

	if streamInterval <= 0 {
		streamInterval = 100 * time.Millisecond
	}

	// Stream snapshots until the client goes away
	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(streamInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				snap := eng.Snapshot()
				session.send(WSResponse{Type: "features", Features: &snap})
			}
		}
	}()

	// Main message loop
	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("squeeze ws: websocket read error: %v", err)
			}
			break
		}

		switch msg.Action {
		case "record":
			eng.Record(msg.Label)
			log.Printf("squeeze ws: recorded form %q", msg.Label)
			session.send(WSResponse{Type: "recorded", Label: msg.Label, Forms: eng.Forms()})

		case "add":
			eng.AddSample(msg.Label)
			log.Printf("squeeze ws: added sample to form %q", msg.Label)
			session.send(WSResponse{Type: "recorded", Label: msg.Label, Forms: eng.Forms()})

		case "recognize":
			session.send(WSResponse{Type: "fit", Label: msg.Label, Fit: eng.Recognize(msg.Label)})

		case "forms":
			session.send(WSResponse{Type: "forms", Forms: eng.Forms()})

		case "reset":
			eng.ResetMax()
			log.Println("squeeze ws: max trackers reset")
			session.send(WSResponse{Type: "reset"})

		default:
			session.sendError("unknown action: " + msg.Action)
		}
	}
}

// send serializes writes to the connection; the stream goroutine and the
// action loop share it.
func (s *SqueezeSession) send(resp WSResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Conn.WriteJSON(resp); err != nil {
		log.Printf("squeeze ws: websocket write error: %v", err)
	}
}

func (s *SqueezeSession) sendError(message string) {
	s.send(WSResponse{
		Type:    "error",
		Message: message,
	})
}
