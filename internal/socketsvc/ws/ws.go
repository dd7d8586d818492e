package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/tableside/poker-services/internal/comm"
	"github.com/tableside/poker-services/internal/socketsvc/broker"
)

// commands the gateway forwards to the ledger service untouched
var ledgerCommands = map[string]bool{
	"create-game":     true,
	"join-game":       true,
	"add-player":      true,
	"rebuy":           true,
	"cashout":         true,
	"end-game":        true,
	"get-game":        true,
	"get-pot":         true,
	"get-logs":        true,
	"get-leaderboard": true,
	"get-summary":     true,
	"find-profile":    true,
}

type Ws struct {
	connMap sync.Map // to keep track of socket connection with socketId
	gameMap sync.Map // to keep track of which game each socket watches
	Broker  *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// handle socket message from devices
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch {
	case message.Type == "watch-game":
		s.handleWatchGame(socketId, message)
	case ledgerCommands[message.Type]:
		s.forwardToLedger(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

// handleWatchGame registers the socket on a game so change notices for
// that game reach it. A socket watches one game at a time.
func (s *Ws) handleWatchGame(socketId string, msg *comm.WSMessage) {
	var payload struct {
		GameID string `json:"game_id"`
	}

	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("Error: malformed watch-game payload %s", err)
		return
	}
	if payload.GameID == "" {
		log.Error("Invalid watch-game payload: missing game id")
		return
	}

	s.StoreGame(socketId, payload.GameID)
	log.Infof("socket %s watching game %s", socketId, payload.GameID)
}

// forwardToLedger stamps the socket id and hands the command to the
// ledger service; the response comes back over NATS addressed to the
// same socket.
func (s *Ws) forwardToLedger(socketId string, msg *comm.WSMessage) {
	msg.SocketId = socketId

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	if err := s.Broker.Publish(comm.SubjectLedgerService, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", comm.SubjectLedgerService, err)
		return
	}
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) StoreGame(socketId string, gameId string) {
	s.gameMap.Store(socketId, gameId)
}

func (s *Ws) GetGame(socketId string) (string, bool) {
	game, ok := s.gameMap.Load(socketId)
	if !ok {
		return "", false
	}
	return game.(string), true
}

// GetGameSockets lists every socket currently watching the game.
func (s *Ws) GetGameSockets(gameId string) ([]string, bool) {
	var sockets []string
	found := false

	s.gameMap.Range(func(key, value interface{}) bool {
		if value.(string) == gameId {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true // continue iterating
	})

	return sockets, found
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.gameMap.Delete(socketId)
}
