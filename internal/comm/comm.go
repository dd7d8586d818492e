package comm

import (
	"encoding/json"
	"time"

	"github.com/tableside/poker-services/internal/ledgersvc/ledger"
	"github.com/tableside/poker-services/internal/ledgersvc/models"
)

// NATS subjects shared by the services.
const (
	SubjectLedgerService = "ledger.service" // commands: socketsvc -> ledgersvc
	SubjectSocketService = "socket.service" // responses: ledgersvc -> socketsvc
	SubjectLedgerNotify  = "ledger.notify"  // change notices: ledgersvc -> all gateways
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "create-game", "rebuy"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// ErrorData carries a failed command back to the device. Kind mirrors
// the ledger error kinds so the client can choose its messaging.
type ErrorData struct {
	Kind    string `json:"kind"` // validation, state, not_found, conflict, internal
	Message string `json:"message"`
}

type GameData struct {
	Game    *models.Game         `json:"game"`
	Players []*models.GamePlayer `json:"players"`
	Table   *models.PokerTable   `json:"table,omitempty"`
}

type SeatData struct {
	Game *models.Game       `json:"game"`
	Seat *models.GamePlayer `json:"seat"`
}

type PotData struct {
	GameID string     `json:"game_id"`
	Pot    ledger.Pot `json:"pot"`
}

// LogEntry pairs the raw event with its rendered narrative line.
type LogEntry struct {
	Log     *models.GameLog `json:"log"`
	Message string          `json:"message"`
}

type LogData struct {
	GameID  string     `json:"game_id"`
	Entries []LogEntry `json:"entries"`
}

type BoardData struct {
	TableID string                    `json:"table_id"`
	Entries []models.LeaderboardEntry `json:"entries"`
}

// ChangeNotice tells gateways that rows of a game changed. It carries
// ids only; clients re-fetch what they display.
type ChangeNotice struct {
	GameID    string    `json:"game_id"`
	TableID   string    `json:"table_id"`
	Kind      string    `json:"kind"` // the action that changed the game
	Timestamp time.Time `json:"timestamp"`
}
