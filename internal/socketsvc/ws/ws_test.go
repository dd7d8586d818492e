package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableside/poker-services/internal/comm"
)

func TestWatchGameRegistersSocket(t *testing.T) {
	s := NewWs()

	msg := &comm.WSMessage{
		Type: "watch-game",
		Data: json.RawMessage(`{"game_id":"g-1"}`),
	}
	s.SocketMessage("sock-1", msg)

	game, ok := s.GetGame("sock-1")
	require.True(t, ok)
	assert.Equal(t, "g-1", game)
}

func TestWatchGameReplacesPreviousGame(t *testing.T) {
	s := NewWs()
	s.StoreGame("sock-1", "g-1")
	s.StoreGame("sock-1", "g-2")

	game, ok := s.GetGame("sock-1")
	require.True(t, ok)
	assert.Equal(t, "g-2", game)

	_, found := s.GetGameSockets("g-1")
	assert.False(t, found)
}

func TestGetGameSockets(t *testing.T) {
	s := NewWs()
	s.StoreGame("sock-1", "g-1")
	s.StoreGame("sock-2", "g-1")
	s.StoreGame("sock-3", "g-2")

	sockets, found := s.GetGameSockets("g-1")
	require.True(t, found)
	assert.ElementsMatch(t, []string{"sock-1", "sock-2"}, sockets)

	_, found = s.GetGameSockets("g-9")
	assert.False(t, found)
}

func TestHandleDisconnectClearsWatch(t *testing.T) {
	s := NewWs()
	s.StoreGame("sock-1", "g-1")

	s.HandleDisconnect("sock-1")

	_, ok := s.GetGame("sock-1")
	assert.False(t, ok)
	_, found := s.GetGameSockets("g-1")
	assert.False(t, found)
}
