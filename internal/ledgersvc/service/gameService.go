package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/tableside/poker-services/internal/ledgersvc/archive"
	"github.com/tableside/poker-services/internal/ledgersvc/ledger"
	"github.com/tableside/poker-services/internal/ledgersvc/models"
	"github.com/tableside/poker-services/internal/ledgersvc/store"
)

// Passcodes are 4 decimal digits, unique only among live games; ended
// games release their code back into the space, so generation retries
// on collision against the live set.
const (
	passcodeSpace       = 10000
	maxPasscodeAttempts = 8
)

type GameService struct {
	games    *store.GameStore
	players  *store.GamePlayerStore
	tables   *store.TableStore
	profiles *store.ProfileStore
	archive  *archive.SummaryStore // nil when archival is not configured
}

func NewGameService(games *store.GameStore, players *store.GamePlayerStore,
	tables *store.TableStore, profiles *store.ProfileStore, archive *archive.SummaryStore) *GameService {
	return &GameService{
		games:    games,
		players:  players,
		tables:   tables,
		profiles: profiles,
		archive:  archive,
	}
}

func generatePasscode() string {
	return fmt.Sprintf("%04d", rand.Intn(passcodeSpace))
}

func (s *GameService) GetGameByID(ctx context.Context, gameID uuid.UUID) (*models.Game, error) {
	return s.games.GetGameByID(ctx, gameID)
}

func (s *GameService) GetTableByID(ctx context.Context, tableID uuid.UUID) (*models.PokerTable, error) {
	return s.tables.GetTableByID(ctx, tableID)
}

// CreateGame opens a live game at the table. When hostSeatsIn is set the
// host takes a seat with their configured default buy-in.
func (s *GameService) CreateGame(ctx context.Context, tableID, hostID uuid.UUID, hostSeatsIn bool) (*models.Game, error) {
	table, err := s.tables.GetTableByID(ctx, tableID)
	if err != nil {
		var nf *ledger.NotFoundError
		if errors.As(err, &nf) {
			return nil, ledger.Invalidf("invalid table reference: %s", tableID)
		}
		return nil, err
	}

	host, err := s.profiles.GetByID(ctx, hostID)
	if err != nil {
		return nil, err
	}

	var game *models.Game
	for attempt := 0; attempt < maxPasscodeAttempts; attempt++ {
		game, err = s.games.CreateGame(ctx, table.ID, host.ID, generatePasscode(), table.Name)
		if err == nil {
			break
		}
		var conflict *ledger.ConflictError
		if errors.As(err, &conflict) {
			continue // live passcode collision, draw again
		}
		return nil, err
	}
	if err != nil {
		return nil, ledger.Conflictf("could not allocate a passcode after %d attempts", maxPasscodeAttempts)
	}

	if hostSeatsIn {
		_, err = s.players.SeatPlayer(ctx, store.SeatPlayerParams{
			GameID:     game.ID,
			UserID:     uuid.NullUUID{UUID: host.ID, Valid: true},
			PlayerName: host.Nickname,
			Buyin:      host.DefaultBuyin,
			ActorID:    uuid.NullUUID{UUID: host.ID, Valid: true},
			Action:     models.ActionPlayerJoined,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := s.tables.UpsertMember(ctx, table.ID, host.ID); err != nil {
		log.Errorf("failed to record table membership for host %s: %s", host.ID, err)
	}

	return game, nil
}

// seatStore is the slice of the player store the join path touches.
type seatStore interface {
	GetSeatForUser(ctx context.Context, gameID, userID uuid.UUID) (*models.GamePlayer, error)
	SeatPlayer(ctx context.Context, arg store.SeatPlayerParams) (*models.GamePlayer, error)
}

// JoinByPasscode seats the identity in the live game matching the code.
// Rejoining is idempotent: an existing seat is returned as is, with no
// new seat and no new event, and created is false so callers know
// nothing changed.
func (s *GameService) JoinByPasscode(ctx context.Context, passcode string, userID uuid.UUID) (*models.Game, *models.GamePlayer, bool, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, false, err
	}

	game, err := s.games.GetLiveGameByPasscode(ctx, passcode)
	if err != nil {
		return nil, nil, false, err
	}

	seat, created, err := joinSeat(ctx, s.players, game, profile)
	if err != nil {
		return nil, nil, false, err
	}

	if created {
		if err := s.tables.UpsertMember(ctx, game.TableID, profile.ID); err != nil {
			log.Errorf("failed to record table membership for %s: %s", profile.ID, err)
		}
	}

	return game, seat, created, nil
}

// joinSeat resolves the identity to exactly one seat in the game. A
// ConflictError from the insert means a concurrent join of the same
// identity won the race, which resolves to the same seat, so it is
// retried as a lookup.
func joinSeat(ctx context.Context, seats seatStore, game *models.Game, profile *models.Profile) (*models.GamePlayer, bool, error) {
	seat, err := seats.GetSeatForUser(ctx, game.ID, profile.ID)
	if err != nil {
		return nil, false, err
	}
	if seat != nil {
		return seat, false, nil // already seated
	}

	seat, err = seats.SeatPlayer(ctx, store.SeatPlayerParams{
		GameID:     game.ID,
		UserID:     uuid.NullUUID{UUID: profile.ID, Valid: true},
		PlayerName: profile.Nickname,
		Buyin:      profile.DefaultBuyin,
		ActorID:    uuid.NullUUID{UUID: profile.ID, Valid: true},
		Action:     models.ActionPlayerJoined,
	})
	if err != nil {
		var conflict *ledger.ConflictError
		if errors.As(err, &conflict) {
			seat, lookupErr := seats.GetSeatForUser(ctx, game.ID, profile.ID)
			if lookupErr != nil {
				return nil, false, lookupErr
			}
			if seat != nil {
				return seat, false, nil
			}
		}
		return nil, false, err
	}

	return seat, true, nil
}

// AddPlayer is the host seating someone by name, with or without a
// durable identity behind the seat. Legal only while the game is live.
func (s *GameService) AddPlayer(ctx context.Context, gameID uuid.UUID, playerName string, userID uuid.NullUUID, buyin decimal.Decimal, actorID uuid.UUID) (*models.GamePlayer, error) {
	actor, err := s.profiles.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	seat, err := s.players.SeatPlayer(ctx, store.SeatPlayerParams{
		GameID:     gameID,
		UserID:     userID,
		PlayerName: playerName,
		Buyin:      buyin,
		ActorID:    uuid.NullUUID{UUID: actor.ID, Valid: true},
		Action:     models.ActionPlayerAdded,
		AddedBy:    actor.Nickname,
	})
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		game, err := s.games.GetGameByID(ctx, gameID)
		if err == nil {
			if err := s.tables.UpsertMember(ctx, game.TableID, userID.UUID); err != nil {
				log.Errorf("failed to record table membership for %s: %s", userID.UUID, err)
			}
		}
	}

	return seat, nil
}

// ArchivedSummary serves the final document of an ended game from the
// archive. NotFound covers both a game never archived and archival
// being switched off.
func (s *GameService) ArchivedSummary(ctx context.Context, gameID uuid.UUID) (*archive.GameSummary, error) {
	if s.archive == nil {
		return nil, ledger.NotFoundf("no archived summary for game %s", gameID)
	}
	return s.archive.GetSummary(ctx, gameID)
}

// EndGame transitions live -> ended. Open seats are allowed; the summary
// archived afterwards reports whatever is still on the table. Archival
// is best effort and never rolls back the transition.
func (s *GameService) EndGame(ctx context.Context, gameID, actorID uuid.UUID) (*models.Game, error) {
	game, err := s.games.EndGame(ctx, gameID, uuid.NullUUID{UUID: actorID, Valid: true})
	if err != nil {
		return nil, err
	}

	if s.archive != nil {
		players, err := s.players.GetPlayersByGameID(ctx, game.ID)
		if err != nil {
			log.Errorf("failed to load players for archive of game %s: %s", game.ID, err)
			return game, nil
		}
		if err := s.archive.SaveSummary(ctx, archive.BuildSummary(game, players)); err != nil {
			log.Errorf("failed to archive summary of game %s: %s", game.ID, err)
		}
	}

	return game, nil
}
