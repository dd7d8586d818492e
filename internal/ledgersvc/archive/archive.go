package archive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tableside/poker-services/internal/ledgersvc/ledger"
	"github.com/tableside/poker-services/internal/ledgersvc/models"
)

const summaryCollection = "game_summaries"

// GameSummary is the denormalized final document of an ended game,
// archived once at game end and served read-only afterwards.
type GameSummary struct {
	GameID     string         `bson:"game_id" json:"game_id"`
	TableID    string         `bson:"table_id" json:"table_id"`
	GameNumber int64          `bson:"game_number" json:"game_number"`
	TotalPot   string         `bson:"total_pot" json:"total_pot"`
	OnTable    string         `bson:"on_table" json:"on_table"`
	CreatedAt  time.Time      `bson:"created_at" json:"created_at"`
	EndedAt    time.Time      `bson:"ended_at" json:"ended_at"`
	Results    []PlayerResult `bson:"results" json:"results"`
}

// PlayerResult is one seat's final line, ordered by net descending in
// the summary. Open seats carry settled=false and no net.
type PlayerResult struct {
	PlayerName string `bson:"player_name" json:"player_name"`
	TotalBuyin string `bson:"total_buyin" json:"total_buyin"`
	Cashout    string `bson:"cashout,omitempty" json:"cashout,omitempty"`
	Net        string `bson:"net,omitempty" json:"net,omitempty"`
	Settled    bool   `bson:"settled" json:"settled"`
}

// BuildSummary flattens the game and its seats into the archive document.
func BuildSummary(game *models.Game, players []*models.GamePlayer) GameSummary {
	pot := ledger.PotSummary(players)

	results := make([]PlayerResult, 0, len(players))
	for _, p := range players {
		r := PlayerResult{
			PlayerName: p.PlayerName,
			TotalBuyin: p.TotalBuyin.String(),
		}
		if net, ok := ledger.NetFor(*p); ok {
			r.Cashout = p.CashoutAmount.Decimal.String()
			r.Net = net.String()
			r.Settled = true
		}
		results = append(results, r)
	}
	sort.SliceStable(results, func(i, j int) bool {
		ni := resultNet(results[i])
		nj := resultNet(results[j])
		if !ni.Equal(nj) {
			return ni.GreaterThan(nj)
		}
		return results[i].PlayerName < results[j].PlayerName
	})

	doc := GameSummary{
		GameID:     game.ID.String(),
		TableID:    game.TableID.String(),
		GameNumber: game.GameNumber,
		TotalPot:   pot.TotalBuyin.String(),
		OnTable:    pot.OnTable.String(),
		CreatedAt:  game.CreatedAt,
		Results:    results,
	}
	if game.EndedAt.Valid {
		doc.EndedAt = game.EndedAt.Time
	}
	return doc
}

func resultNet(r PlayerResult) decimal.Decimal {
	if !r.Settled {
		return decimal.Zero
	}
	net, err := decimal.NewFromString(r.Net)
	if err != nil {
		return decimal.Zero
	}
	return net
}

type SummaryStore struct {
	col *mongo.Collection
}

func NewSummaryStore(db *mongo.Database) *SummaryStore {
	return &SummaryStore{col: db.Collection(summaryCollection)}
}

func (s *SummaryStore) SaveSummary(ctx context.Context, doc GameSummary) error {
	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to archive game summary: %w", err)
	}
	return nil
}

func (s *SummaryStore) GetSummary(ctx context.Context, gameID uuid.UUID) (*GameSummary, error) {
	var doc GameSummary
	err := s.col.FindOne(ctx, bson.M{"game_id": gameID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ledger.NotFoundf("no archived summary for game %s", gameID)
		}
		return nil, fmt.Errorf("failed to get archived summary: %w", err)
	}
	return &doc, nil
}
