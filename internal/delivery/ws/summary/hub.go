package ws_summary

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/bmmjam/taptap/internal/model"
)

const (
	EventSummaryUpdate = "SUMMARY_UPDATE"
)

type Event struct {
	Type    string `json:"type"`
	Room    string `json:"room"`
	Payload any    `json:"payload,omitempty"`
}

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
	Room model.RoomCode
}

// Hub keeps track of sets of clients within each room and fans the
// fresh summary out to them after every submission or reset.
type Hub struct {
	mu    sync.RWMutex
	rooms map[model.RoomCode]map[*Client]bool

	logger *slog.Logger
}

func New(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[model.RoomCode]map[*Client]bool),
		logger: logger,
	}
}

func (h *Hub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[client.Room]; !ok {
		h.rooms[client.Room] = make(map[*Client]bool)
	}
	h.rooms[client.Room][client] = true

	h.logger.Info("live client registered", "room", client.Room)
}

func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[client.Room]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.Room)
		}
	}
	h.logger.Info("live client unregistered", "room", client.Room)
}

// SummaryChanged satisfies the session usecase's notifier contract.
func (h *Hub) SummaryChanged(code model.RoomCode, s model.Summary) {
	bars := make([]map[string]any, 0, len(s.Bars))
	for _, b := range s.Bars {
		bars = append(bars, map[string]any{
			"emotion": b.Emotion,
			"percent": b.Percent,
			"length":  b.Length,
		})
	}

	h.BroadcastToRoom(code, Event{
		Type: EventSummaryUpdate,
		Room: string(code),
		Payload: map[string]any{
			"total":    s.Total,
			"counts":   s.Counts,
			"dominant": s.Dominant,
			"bars":     bars,
		},
	})
}

// BroadcastToRoom takes the write lock: clients with a full send
// buffer are dropped from the room set right here.
func (h *Hub) BroadcastToRoom(code model.RoomCode, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	messageBytes, _ := json.Marshal(event)

	if clients, ok := h.rooms[code]; ok {
		for client := range clients {
			select {
			case client.Send <- messageBytes:
			default:
				close(client.Send)
				delete(h.rooms[code], client)
			}
		}
	}
}

func (h *Hub) StartClientReading(client *Client) {
	defer func() {
		h.RemoveClient(client)
		client.Conn.Close()
	}()

	for {
		_, _, err := client.Conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

func (h *Hub) StartClientWriting(client *Client) {
	defer client.Conn.Close()

	for message := range client.Send {
		err := client.Conn.WriteMessage(websocket.TextMessage, message)
		if err != nil {
			break
		}
	}
}
