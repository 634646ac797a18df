package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/presenter/internal/detector"
	"github.com/ayusman/presenter/internal/gesture"
	"github.com/ayusman/presenter/internal/presentation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const (
	writeWait  = 5 * time.Second
	clientSend = 64
)

// frameMessage is one detection frame from the browser. Missing or empty
// landmarks mean no hand was found.
type frameMessage struct {
	Landmarks []detector.Point3D `json:"landmarks"`
	Reset     bool               `json:"reset,omitempty"`
}

// frameReply is sent back for every frame message.
type frameReply struct {
	gesture.Event
	Debug *gesture.Debug `json:"debug,omitempty"`
}

// FramesHandler classifies landmark frames streamed by a browser-side hand
// detector. Each connection gets its own Classifier; navigation and pointer
// output drive the shared Session.
type FramesHandler struct {
	session  *presentation.Session
	settings *gesture.Settings
}

// NewFramesHandler creates a FramesHandler.
func NewFramesHandler(session *presentation.Session, settings *gesture.Settings) *FramesHandler {
	return &FramesHandler{session: session, settings: settings}
}

// ServeHTTP upgrades the connection and processes frames until it closes.
// Passing ?debug=1 adds classifier diagnostics to each reply.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	wantDebug := r.URL.Query().Get("debug") == "1"
	classifier := gesture.NewClassifier()

	for {
		var msg frameMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("frames websocket error: %v", err)
			}
			return
		}

		if msg.Reset {
			classifier.Reset()
		}

		reply := h.process(classifier, msg.Landmarks, wantDebug)

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

func (h *FramesHandler) process(c *gesture.Classifier, landmarks []detector.Point3D, wantDebug bool) frameReply {
	var reply frameReply

	cb := gesture.Callbacks{
		OnPointerMove: h.session.MovePointer,
	}
	if wantDebug {
		cb.OnDebug = func(d gesture.Debug) { reply.Debug = &d }
	}

	reply.Event = c.ProcessFrame(landmarks, h.settings.Load(), cb)
	if reply.Kind == gesture.EventNext || reply.Kind == gesture.EventPrevious {
		h.session.Navigate(reply.Kind, reply.Source)
	}
	return reply
}

// EventsHub pushes Session changes to websocket subscribers.
type EventsHub struct {
	session *presentation.Session
	clients map[*eventsClient]bool
	mu      sync.RWMutex
}

type eventsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// snapshotMessage is the first message every subscriber receives.
type snapshotMessage struct {
	Kind  string             `json:"kind"`
	State presentation.State `json:"state"`
}

// NewEventsHub creates an EventsHub. The caller subscribes Broadcast to the
// session.
func NewEventsHub(session *presentation.Session) *EventsHub {
	return &EventsHub{
		session: session,
		clients: make(map[*eventsClient]bool),
	}
}

// Clients returns the number of connected subscribers.
func (h *EventsHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues a change for every subscriber. Slow subscribers drop
// messages instead of stalling the caller.
func (h *EventsHub) Broadcast(c presentation.Change) {
	msg, err := json.Marshal(c)
	if err != nil {
		log.Printf("Failed to encode change: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
		}
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	client := &eventsClient{conn: conn, send: make(chan []byte, clientSend)}

	initial, _ := json.Marshal(snapshotMessage{Kind: "snapshot", State: h.session.Snapshot()})
	client.send <- initial

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	done := make(chan struct{})
	go client.writeLoop(done)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()

	close(done)
	conn.Close()
}

func (c *eventsClient) writeLoop(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}
