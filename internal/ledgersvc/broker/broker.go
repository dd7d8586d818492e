package broker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/tableside/poker-services/internal/comm"
	"github.com/tableside/poker-services/internal/ledgersvc/ledger"
	"github.com/tableside/poker-services/internal/ledgersvc/models"
	"github.com/tableside/poker-services/internal/ledgersvc/service"
)

const commandTimeout = 30 * time.Second

type Broker struct {
	Conn               *nats.Conn
	GameService        *service.GameService
	GamePlayerService  *service.GamePlayerService
	GameLogService     *service.GameLogService
	LeaderboardService *service.LeaderboardService
	ProfileService     *service.ProfileService
}

func NewBroker(nc *nats.Conn, gameService *service.GameService,
	gamePlayerService *service.GamePlayerService, gameLogService *service.GameLogService,
	leaderboardService *service.LeaderboardService, profileService *service.ProfileService) *Broker {
	return &Broker{
		Conn:               nc,
		GameService:        gameService,
		GamePlayerService:  gamePlayerService,
		GameLogService:     gameLogService,
		LeaderboardService: leaderboardService,
		ProfileService:     profileService,
	}
}

// SubscribeCommands consumes ledger commands forwarded by the socket
// gateway. A queue group keeps one instance handling each command when
// the service is scaled out.
func (b *Broker) SubscribeCommands(topic string) (*nats.Subscription, error) {
	return b.Conn.QueueSubscribe(topic, "ledgersvc", b.handleMessage)
}

// handles commands coming from the socket gateway
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	err := json.Unmarshal(msgNat.Data, &msg)
	if err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch msg.Type {
	case "create-game":
		var request struct {
			TableID     uuid.UUID `json:"table_id"`
			HostID      uuid.UUID `json:"host_id"`
			HostSeatsIn bool      `json:"host_seats_in"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			b.publishError(msg, "create-game-resp", ledger.Invalidf("malformed create-game payload"))
			return
		}

		game, err := b.GameService.CreateGame(ctx, request.TableID, request.HostID, request.HostSeatsIn)
		if err != nil {
			log.Errorf("Error [GameService.CreateGame] %s", err)
			b.publishError(msg, "create-game-resp", err)
			return
		}

		b.publishGame(ctx, "create-game-resp", game, msg.SocketId)
		b.publishChange(game, models.ActionGameCreated)
	case "join-game":
		var request struct {
			Passcode string    `json:"passcode"`
			UserID   uuid.UUID `json:"user_id"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			b.publishError(msg, "join-game-resp", ledger.Invalidf("malformed join-game payload"))
			return
		}

		game, seat, created, err := b.GameService.JoinByPasscode(ctx, request.Passcode, request.UserID)
		if err != nil {
			log.Errorf("Error [GameService.JoinByPasscode] %s", err)
			b.publishError(msg, "join-game-resp", err)
			return
		}

		b.publishResponse("join-game-resp", comm.SeatData{Game: game, Seat: seat}, msg.SocketId)
		if created {
			// a rejoin created no seat and no event, so watchers see no notice
			b.publishChange(game, models.ActionPlayerJoined)
		}
	case "add-player":
		var request struct {
			GameID     uuid.UUID       `json:"game_id"`
			PlayerName string          `json:"player_name"`
			UserID     uuid.NullUUID   `json:"user_id"`
			Buyin      decimal.Decimal `json:"buyin"`
			ActorID    uuid.UUID       `json:"actor_id"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			b.publishError(msg, "add-player-resp", ledger.Invalidf("malformed add-player payload"))
			return
		}

		seat, err := b.GameService.AddPlayer(ctx, request.GameID, request.PlayerName, request.UserID, request.Buyin, request.ActorID)
		if err != nil {
			log.Errorf("Error [GameService.AddPlayer] %s", err)
			b.publishError(msg, "add-player-resp", err)
			return
		}

		game, err := b.GameService.GetGameByID(ctx, seat.GameID)
		if err != nil {
			log.Errorf("Error [GameService.GetGameByID] %s", err)
			b.publishError(msg, "add-player-resp", err)
			return
		}

		b.publishResponse("add-player-resp", comm.SeatData{Game: game, Seat: seat}, msg.SocketId)
		b.publishChange(game, models.ActionPlayerAdded)
	case "rebuy":
		var request struct {
			PlayerID uuid.UUID       `json:"player_id"`
			Amount   decimal.Decimal `json:"amount"`
			ActorID  uuid.UUID       `json:"actor_id"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			b.publishError(msg, "rebuy-resp", ledger.Invalidf("malformed rebuy payload"))
			return
		}

		seat, err := b.GamePlayerService.Rebuy(ctx, request.PlayerID, request.Amount, request.ActorID)
		if err != nil {
			log.Errorf("Error [GamePlayerService.Rebuy] %s", err)
			b.publishError(msg, "rebuy-resp", err)
			return
		}

		game, err := b.GameService.GetGameByID(ctx, seat.GameID)
		if err != nil {
			log.Errorf("Error [GameService.GetGameByID] %s", err)
			b.publishError(msg, "rebuy-resp", err)
			return
		}

		b.publishResponse("rebuy-resp", comm.SeatData{Game: game, Seat: seat}, msg.SocketId)
		b.publishChange(game, models.ActionRebuy)
	case "cashout":
		var request struct {
			PlayerID uuid.UUID       `json:"player_id"`
			Amount   decimal.Decimal `json:"amount"`
			ActorID  uuid.UUID       `json:"actor_id"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			b.publishError(msg, "cashout-resp", ledger.Invalidf("malformed cashout payload"))
			return
		}

		seat, err := b.GamePlayerService.Cashout(ctx, request.PlayerID, request.Amount, request.ActorID)
		if err != nil {
			log.Errorf("Error [GamePlayerService.Cashout] %s", err)
			b.publishError(msg, "cashout-resp", err)
			return
		}

		game, err := b.GameService.GetGameByID(ctx, seat.GameID)
		if err != nil {
			log.Errorf("Error [GameService.GetGameByID] %s", err)
			b.publishError(msg, "cashout-resp", err)
			return
		}

		b.publishResponse("cashout-resp", comm.SeatData{Game: game, Seat: seat}, msg.SocketId)
		b.publishChange(game, models.ActionCashout)
	case "end-game":
		var request struct {
			GameID  uuid.UUID `json:"game_id"`
			ActorID uuid.UUID `json:"actor_id"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			b.publishError(msg, "end-game-resp", ledger.Invalidf("malformed end-game payload"))
			return
		}

		game, err := b.GameService.EndGame(ctx, request.GameID, request.ActorID)
		if err != nil {
			log.Errorf("Error [GameService.EndGame] %s", err)
			b.publishError(msg, "end-game-resp", err)
			return
		}

		b.publishGame(ctx, "end-game-resp", game, msg.SocketId)
		b.publishChange(game, models.ActionGameEnded)
	case "get-game":
		var request struct {
			GameID uuid.UUID `json:"game_id"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			b.publishError(msg, "get-game-resp", ledger.Invalidf("malformed get-game payload"))
			return
		}

		game, err := b.GameService.GetGameByID(ctx, request.GameID)
		if err != nil {
			log.Errorf("Error [GameService.GetGameByID] %s", err)
			b.publishError(msg, "get-game-resp", err)
			return
		}

		b.publishGame(ctx, "get-game-resp", game, msg.SocketId)
	case "get-pot":
		var request struct {
			GameID uuid.UUID `json:"game_id"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			b.publishError(msg, "get-pot-resp", ledger.Invalidf("malformed get-pot payload"))
			return
		}

		pot, err := b.GamePlayerService.PotSummary(ctx, request.GameID)
		if err != nil {
			log.Errorf("Error [GamePlayerService.PotSummary] %s", err)
			b.publishError(msg, "get-pot-resp", err)
			return
		}

		b.publishResponse("get-pot-resp", comm.PotData{GameID: request.GameID.String(), Pot: pot}, msg.SocketId)
	case "get-logs":
		var request struct {
			GameID uuid.UUID `json:"game_id"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			b.publishError(msg, "get-logs-resp", ledger.Invalidf("malformed get-logs payload"))
			return
		}

		logs, err := b.GameLogService.GetLogs(ctx, request.GameID)
		if err != nil {
			log.Errorf("Error [GameLogService.GetLogs] %s", err)
			b.publishError(msg, "get-logs-resp", err)
			return
		}

		entries := make([]comm.LogEntry, 0, len(logs))
		for _, l := range logs {
			entries = append(entries, comm.LogEntry{Log: l, Message: service.FormatLogMessage(l)})
		}
		b.publishResponse("get-logs-resp", comm.LogData{GameID: request.GameID.String(), Entries: entries}, msg.SocketId)
	case "get-leaderboard":
		var request struct {
			TableID     uuid.UUID  `json:"table_id"`
			WindowStart *time.Time `json:"window_start"`
			WindowEnd   *time.Time `json:"window_end"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			b.publishError(msg, "get-leaderboard-resp", ledger.Invalidf("malformed get-leaderboard payload"))
			return
		}

		entries, err := b.LeaderboardService.Leaderboard(ctx, request.TableID, request.WindowStart, request.WindowEnd)
		if err != nil {
			log.Errorf("Error [LeaderboardService.Leaderboard] %s", err)
			b.publishError(msg, "get-leaderboard-resp", err)
			return
		}

		b.publishResponse("get-leaderboard-resp", comm.BoardData{TableID: request.TableID.String(), Entries: entries}, msg.SocketId)
	case "get-summary":
		var request struct {
			GameID uuid.UUID `json:"game_id"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			b.publishError(msg, "get-summary-resp", ledger.Invalidf("malformed get-summary payload"))
			return
		}

		summary, err := b.GameService.ArchivedSummary(ctx, request.GameID)
		if err != nil {
			log.Errorf("Error [GameService.ArchivedSummary] %s", err)
			b.publishError(msg, "get-summary-resp", err)
			return
		}

		b.publishResponse("get-summary-resp", summary, msg.SocketId)
	case "find-profile":
		var request struct {
			UserTag string `json:"user_tag"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			b.publishError(msg, "find-profile-resp", ledger.Invalidf("malformed find-profile payload"))
			return
		}

		profile, err := b.ProfileService.GetByTag(ctx, request.UserTag)
		if err != nil {
			log.Errorf("Error [ProfileService.GetByTag] %s", err)
			b.publishError(msg, "find-profile-resp", err)
			return
		}

		b.publishResponse("find-profile-resp", profile, msg.SocketId)
	default:
		log.Errorf("Unknown message type %s", msg.Type)
	}
}

// publishGame loads the game's seats and table so the device gets a full
// snapshot in one response.
func (b *Broker) publishGame(ctx context.Context, respType string, game *models.Game, socketId string) {
	players, err := b.GamePlayerService.GetGamePlayers(ctx, game.ID)
	if err != nil {
		log.Errorf("Error [GamePlayerService.GetGamePlayers] %s", err)
		b.publishError(&comm.WSMessage{SocketId: socketId}, respType, err)
		return
	}

	table, err := b.GameService.GetTableByID(ctx, game.TableID)
	if err != nil {
		log.Errorf("Error [GameService.GetTableByID] %s", err)
	}

	b.publishResponse(respType, comm.GameData{Game: game, Players: players, Table: table}, socketId)
}

func (b *Broker) publishResponse(respType string, payload any, socketId string) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("unable to marshal %s payload: %s", respType, err)
		return
	}

	msg := &comm.WSMessage{
		Type:     respType,
		Data:     data,
		SocketId: socketId,
	}

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("unable to marshal %s message: %s", respType, err)
		return
	}

	if err := b.Conn.Publish(comm.SubjectSocketService, bytes); err != nil {
		log.Errorf("Error publishing %s: %s", respType, err)
	}
}

func (b *Broker) publishError(msg *comm.WSMessage, respType string, cmdErr error) {
	b.publishResponse(respType,
		comm.ErrorData{Kind: kindOf(cmdErr), Message: cmdErr.Error()}, msg.SocketId)
}

// publishChange tells every gateway that the game's rows changed; the
// notice carries ids only and subscribers re-fetch.
func (b *Broker) publishChange(game *models.Game, kind string) {
	notice := comm.ChangeNotice{
		GameID:    game.ID.String(),
		TableID:   game.TableID.String(),
		Kind:      kind,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(notice)
	if err != nil {
		log.Errorf("unable to marshal change notice: %s", err)
		return
	}

	msg := &comm.WSMessage{Type: "ledger-changed", Data: data}
	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("unable to marshal change message: %s", err)
		return
	}

	if err := b.Conn.Publish(comm.SubjectLedgerNotify, bytes); err != nil {
		log.Errorf("Error publishing change notice: %s", err)
	}
}

func kindOf(err error) string {
	var (
		validation *ledger.ValidationError
		state      *ledger.StateError
		notFound   *ledger.NotFoundError
		conflict   *ledger.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &state):
		return "state"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &conflict):
		return "conflict"
	default:
		return "internal"
	}
}
