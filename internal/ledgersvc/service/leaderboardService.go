package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tableside/poker-services/internal/ledgersvc/models"
	"github.com/tableside/poker-services/internal/ledgersvc/store"
)

type LeaderboardService struct {
	players *store.GamePlayerStore
}

func NewLeaderboardService(players *store.GamePlayerStore) *LeaderboardService {
	return &LeaderboardService{players: players}
}

// Leaderboard ranks everyone who settled a seat at the table's ended
// games inside the window. Nil bounds mean all time. Live games and
// open seats are excluded: an unsettled seat has no net to rank.
func (s *LeaderboardService) Leaderboard(ctx context.Context, tableID uuid.UUID, windowStart, windowEnd *time.Time) ([]models.LeaderboardEntry, error) {
	players, err := s.players.GetSettledPlayersForWindow(ctx, tableID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	return aggregateLeaderboard(players), nil
}

// aggregateLeaderboard groups settled seats by identity, falling back to
// exact display name for guests without one. The name fallback silently
// merges distinct people who share a name and splits one person who
// types their name differently; that mirrors the recorded data and is
// not corrected with heuristics here.
func aggregateLeaderboard(players []*models.GamePlayer) []models.LeaderboardEntry {
	grouped := make(map[string]*models.LeaderboardEntry)
	var order []string

	for _, p := range players {
		if !p.IsCashedOut || !p.CashoutAmount.Valid {
			continue
		}
		key := p.PlayerName
		if p.UserID.Valid {
			key = p.UserID.UUID.String()
		}

		entry, ok := grouped[key]
		if !ok {
			entry = &models.LeaderboardEntry{
				PlayerName: p.PlayerName,
				UserID:     p.UserID,
			}
			grouped[key] = entry
			order = append(order, key)
		}

		cashout := p.CashoutAmount.Decimal
		entry.TotalBuyin = entry.TotalBuyin.Add(p.TotalBuyin)
		entry.TotalCashout = entry.TotalCashout.Add(cashout)
		entry.Net = entry.Net.Add(cashout.Sub(p.TotalBuyin))
		entry.GamesPlayed++
	}

	entries := make([]models.LeaderboardEntry, 0, len(order))
	for _, key := range order {
		entries = append(entries, *grouped[key])
	}

	// net desc, then games played desc, then name asc for determinism
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Net.Equal(entries[j].Net) {
			return entries[i].Net.GreaterThan(entries[j].Net)
		}
		if entries[i].GamesPlayed != entries[j].GamesPlayed {
			return entries[i].GamesPlayed > entries[j].GamesPlayed
		}
		return entries[i].PlayerName < entries[j].PlayerName
	})

	return entries
}
