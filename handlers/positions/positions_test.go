package positions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"friendsmarket/handlers/bets"
	"friendsmarket/handlers/markets"
	"friendsmarket/handlers/payouts"
	"friendsmarket/migration"
	"friendsmarket/models"
	"friendsmarket/setup"
	"friendsmarket/util"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := util.OpenTestDB()
	require.NoError(t, err)
	require.NoError(t, migration.MigrateDB(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, balance float64) *models.User {
	t.Helper()
	user := &models.User{Name: name, PasswordHash: "x", Balance: balance}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, models.AddLedgerEntry(db, user.ID, nil, balance,
		models.LedgerStartingBalance, "Initial allocation"))
	return user
}

func TestUserPositions_FoldsByMarketAndSide(t *testing.T) {
	db := testDB(t)
	cfg := setup.Defaults()
	creator := createUser(t, db, "creator", 100)
	bettor := createUser(t, db, "bettor", 100)

	market, err := markets.CreateMarket(db, cfg, creator.ID, markets.CreateMarketRequest{
		Question:       "Folded position",
		InitialProbYes: 0.5,
	})
	require.NoError(t, err)

	yesShares := 0.0
	for i := 0; i < 3; i++ {
		bet, err := bets.PlaceBet(db, cfg, market.ID, bettor.ID, models.SideYes)
		require.NoError(t, err)
		yesShares += bet.Shares
	}
	noBet, err := bets.PlaceBet(db, cfg, market.ID, bettor.ID, models.SideNo)
	require.NoError(t, err)

	positions, err := UserPositions(db, bettor.ID)
	require.NoError(t, err)
	require.Len(t, positions, 2)

	yes := positions[0]
	assert.Equal(t, models.SideYes, yes.Side)
	assert.Equal(t, market.ID, yes.MarketID)
	assert.InDelta(t, yesShares, yes.TotalShares, 1e-9)
	assert.InDelta(t, 3.0, yes.TotalStake, 1e-9)
	assert.InDelta(t, yesShares/3, yes.AvgOdds, 1e-9)
	assert.InDelta(t, yesShares, yes.PotentialPayout, 1e-9)
	assert.Equal(t, models.StatusOpen, yes.MarketStatus)

	no := positions[1]
	assert.Equal(t, models.SideNo, no.Side)
	assert.InDelta(t, noBet.Shares, no.TotalShares, 1e-9)
	assert.InDelta(t, 1.0, no.TotalStake, 1e-9)
}

func TestUserPositions_ResolvedMarketsZeroTheLosingSide(t *testing.T) {
	db := testDB(t)
	cfg := setup.Defaults()
	creator := createUser(t, db, "creator", 100)
	bettor := createUser(t, db, "bettor", 100)

	market, err := markets.CreateMarket(db, cfg, creator.ID, markets.CreateMarketRequest{
		Question:       "Settled position",
		InitialProbYes: 0.5,
	})
	require.NoError(t, err)

	yesBet, err := bets.PlaceBet(db, cfg, market.ID, bettor.ID, models.SideYes)
	require.NoError(t, err)
	_, err = bets.PlaceBet(db, cfg, market.ID, bettor.ID, models.SideNo)
	require.NoError(t, err)

	_, err = payouts.ResolveMarket(db, market.ID, models.OutcomeYes)
	require.NoError(t, err)

	positions, err := UserPositions(db, bettor.ID)
	require.NoError(t, err)
	require.Len(t, positions, 2)

	for _, pos := range positions {
		assert.Equal(t, models.StatusResolved, pos.MarketStatus)
		assert.Equal(t, models.OutcomeYes, pos.MarketOutcome)
		if pos.Side == models.SideYes {
			assert.InDelta(t, yesBet.Shares, pos.PotentialPayout, 1e-9)
		} else {
			assert.Zero(t, pos.PotentialPayout)
		}
	}
}

func TestUserPositions_EmptyWithoutBets(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "idle", 50)

	positions, err := UserPositions(db, user.ID)
	require.NoError(t, err)
	assert.Empty(t, positions)
}
