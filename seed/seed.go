// Package seed populates a development database with demo users, markets
// and bets, exercising the same core paths as live traffic.
package seed

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/brianvoe/gofakeit"
	"gorm.io/gorm"

	"friendsmarket/handlers/bets"
	"friendsmarket/handlers/markets"
	"friendsmarket/handlers/users"
	"friendsmarket/models"
	"friendsmarket/setup"
)

const demoPassword = "demo-pass"

// Run creates demo data: users funded with the starting balance, a handful
// of open markets and a burst of random unit-stake bets. Guard rejections
// (saturated side, loss cap) are expected mid-burst and skipped.
func Run(db *gorm.DB, cfg *setup.Config, logger *slog.Logger, userCount, marketCount, betCount int) error {
	gofakeit.Seed(0)

	userRows := make([]*models.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		user, err := users.CreateUser(db, cfg, users.CreateUserRequest{
			Name:     fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Password: demoPassword,
		})
		if err != nil {
			return fmt.Errorf("seed: create user: %w", err)
		}
		userRows = append(userRows, user)
	}
	if len(userRows) == 0 {
		return nil
	}

	marketIDs := make([]uint, 0, marketCount)
	for i := 0; i < marketCount; i++ {
		creator := userRows[i%len(userRows)]
		prob := float64(gofakeit.Number(20, 80)) / 100.0
		market, err := markets.CreateMarket(db, cfg, creator.ID, markets.CreateMarketRequest{
			Question:       fmt.Sprintf("Will %s?", gofakeit.HackerPhrase()),
			Description:    gofakeit.Sentence(12),
			InitialProbYes: prob,
		})
		if err != nil {
			return fmt.Errorf("seed: create market: %w", err)
		}
		marketIDs = append(marketIDs, market.ID)
	}
	if len(marketIDs) == 0 {
		return nil
	}

	placed := 0
	for i := 0; i < betCount; i++ {
		user := userRows[gofakeit.Number(0, len(userRows)-1)]
		marketID := marketIDs[gofakeit.Number(0, len(marketIDs)-1)]
		side := models.SideYes
		if gofakeit.Bool() {
			side = models.SideNo
		}

		_, err := bets.PlaceBet(db, cfg, marketID, user.ID, side)
		switch {
		case err == nil:
			placed++
		case errors.Is(err, models.ErrSideSaturated),
			errors.Is(err, models.ErrLossCapExceeded),
			errors.Is(err, models.ErrInsufficientBalance):
			// Expected once a demo market drifts; try the next combination.
		default:
			return fmt.Errorf("seed: place bet: %w", err)
		}
	}

	logger.Info("seeded demo data",
		"users", len(userRows), "markets", len(marketIDs), "bets", placed)
	return nil
}
