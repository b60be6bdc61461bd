package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesLobbyAndGlobalFeeds(t *testing.T) {
	h := NewHub()

	lobbyClient := make(Client, 1)
	globalClient := make(Client, 1)
	h.Subscribe(7, lobbyClient)
	h.Subscribe(GlobalFeed, globalClient)

	h.Broadcast(7, Event{Type: EventPlayerJoined, Payload: map[string]interface{}{"lobby_id": 7}})

	for _, ch := range []Client{lobbyClient, globalClient} {
		select {
		case msg := <-ch:
			var ev Event
			require.NoError(t, json.Unmarshal(msg, &ev))
			assert.Equal(t, EventPlayerJoined, ev.Type)
		default:
			t.Fatal("expected a broadcast message")
		}
	}
}

func TestBroadcastSkipsOtherFeeds(t *testing.T) {
	h := NewHub()

	other := make(Client, 1)
	h.Subscribe(8, other)

	h.Broadcast(7, Event{Type: EventRoundResolved})

	assert.Empty(t, other)
}

func TestUnsubscribeClosesClient(t *testing.T) {
	h := NewHub()

	client := make(Client, 1)
	h.Subscribe(7, client)
	h.Unsubscribe(7, client)

	_, open := <-client
	assert.False(t, open)

	// Broadcasting after the last client left must not panic.
	h.Broadcast(7, Event{Type: EventLobbyVoided})
}

func TestSlowClientDoesNotBlockBroadcast(t *testing.T) {
	h := NewHub()

	slow := make(Client) // unbuffered and never read
	h.Subscribe(7, slow)

	// The non-blocking send drops the message instead of stalling.
	h.Broadcast(7, Event{Type: EventGameFinished})

	assert.Empty(t, slow)
}
