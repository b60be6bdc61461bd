package hub

import (
	"encoding/json"
	"sync"
)

// Event represents a real-time event to be sent to observers (bots, UIs).
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Event types emitted by the core. Lobby-scoped events are broadcast on the
// lobby's own feed; protocol-level events go to the global feed.
const (
	EventLobbyCreated        = "lobbyCreated"
	EventPlayerJoined        = "playerJoined"
	EventGameStarted         = "gameStarted"
	EventRandomnessRequested = "randomnessRequested"
	EventRoundResolved       = "roundResolved"
	EventGameFinished        = "gameFinished"
	EventWinningsClaimed     = "winningsClaimed"
	EventLobbyVoided         = "lobbyVoided"
	EventRefundClaimed       = "refundClaimed"
	EventFeesWithdrawn       = "feesWithdrawn"
	EventTreasuryUpdated     = "treasuryUpdated"
	EventFeeUpdated          = "feeUpdated"
)

// GlobalFeed is the pseudo-lobby id used for protocol-level events.
const GlobalFeed uint = 0

// Client represents a single observer connection (one SSE stream).
// It's essentially a channel that the SSE handler will listen to.
type Client chan []byte

// Hub manages all active feeds and their clients.
type Hub struct {
	feeds map[uint]map[Client]bool
	mu    sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		feeds: make(map[uint]map[Client]bool),
	}
}

// Subscribe adds a new client to a specific lobby feed.
func (h *Hub) Subscribe(lobbyID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.feeds[lobbyID]; !ok {
		h.feeds[lobbyID] = make(map[Client]bool)
	}
	h.feeds[lobbyID][client] = true
}

// Unsubscribe removes a client from a feed.
func (h *Hub) Unsubscribe(lobbyID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.feeds[lobbyID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the SSE handler to stop.
			if len(clients) == 0 {
				delete(h.feeds, lobbyID)
			}
		}
	}
}

// Broadcast sends an event to all clients of a lobby feed and mirrors it to
// the global feed so protocol-wide observers see every event.
func (h *Hub) Broadcast(lobbyID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.send(lobbyID, event)
	if lobbyID != GlobalFeed {
		h.send(GlobalFeed, event)
	}
}

func (h *Hub) send(feedID uint, event Event) {
	clients, ok := h.feeds[feedID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return
	}

	for client := range clients {
		// Use a non-blocking send to prevent a slow client from blocking the hub.
		select {
		case client <- messageBytes:
		default:
			// Client channel is full, maybe they are disconnected or slow.
			// The unsubscribe logic will handle cleaning this up eventually.
		}
	}
}
