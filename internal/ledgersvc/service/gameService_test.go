package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableside/poker-services/internal/ledgersvc/ledger"
	"github.com/tableside/poker-services/internal/ledgersvc/models"
	"github.com/tableside/poker-services/internal/ledgersvc/store"
)

func TestGeneratePasscodeShape(t *testing.T) {
	re := regexp.MustCompile(`^\d{4}$`)
	for i := 0; i < 200; i++ {
		code := generatePasscode()
		assert.Regexp(t, re, code)
	}
}

// fakeSeatStore scripts the two store calls the join path makes.
type fakeSeatStore struct {
	lookups     []*models.GamePlayer // returned by GetSeatForUser in order
	lookupCalls int
	seatErr     error
	seated      *models.GamePlayer
	seatCalls   int
}

func (f *fakeSeatStore) GetSeatForUser(ctx context.Context, gameID, userID uuid.UUID) (*models.GamePlayer, error) {
	seat := f.lookups[f.lookupCalls]
	f.lookupCalls++
	return seat, nil
}

func (f *fakeSeatStore) SeatPlayer(ctx context.Context, arg store.SeatPlayerParams) (*models.GamePlayer, error) {
	f.seatCalls++
	if f.seatErr != nil {
		return nil, f.seatErr
	}
	return f.seated, nil
}

func joinFixtures() (*models.Game, *models.Profile, *models.GamePlayer) {
	game := &models.Game{ID: uuid.New(), Status: models.GameStatusLive}
	profile := &models.Profile{
		ID:           uuid.New(),
		Nickname:     "Dana",
		DefaultBuyin: decimal.RequireFromString("50"),
	}
	seat := &models.GamePlayer{
		ID:         uuid.New(),
		GameID:     game.ID,
		UserID:     uuid.NullUUID{UUID: profile.ID, Valid: true},
		PlayerName: profile.Nickname,
		TotalBuyin: profile.DefaultBuyin,
	}
	return game, profile, seat
}

func TestJoinSeatCreatesSeatOnce(t *testing.T) {
	game, profile, seat := joinFixtures()
	seats := &fakeSeatStore{lookups: []*models.GamePlayer{nil}, seated: seat}

	got, created, err := joinSeat(context.Background(), seats, game, profile)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, seat, got)
	assert.Equal(t, 1, seats.seatCalls)
}

func TestJoinSeatRejoinIsIdempotent(t *testing.T) {
	game, profile, seat := joinFixtures()
	seats := &fakeSeatStore{lookups: []*models.GamePlayer{seat}}

	got, created, err := joinSeat(context.Background(), seats, game, profile)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, seat, got)
	assert.Zero(t, seats.seatCalls, "rejoin must not insert a second seat")
}

func TestJoinSeatLostRaceResolvesToSameSeat(t *testing.T) {
	game, profile, seat := joinFixtures()
	seats := &fakeSeatStore{
		lookups: []*models.GamePlayer{nil, seat}, // unseated, then the winner's seat
		seatErr: ledger.Conflictf("seat already exists"),
	}

	got, created, err := joinSeat(context.Background(), seats, game, profile)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, seat, got)
	assert.Equal(t, 2, seats.lookupCalls)
}

func TestJoinSeatSurfacesOtherSeatErrors(t *testing.T) {
	game, profile, _ := joinFixtures()
	seats := &fakeSeatStore{
		lookups: []*models.GamePlayer{nil},
		seatErr: ledger.Statef("game has ended"),
	}

	_, _, err := joinSeat(context.Background(), seats, game, profile)
	var se *ledger.StateError
	require.ErrorAs(t, err, &se)
}
