// Package bets implements the accept-trade state machine: guard checks,
// trade sizing, the loss cap and the atomic commit of a wager.
package bets

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"friendsmarket/handlers/math/probabilities/lmsr"
	"friendsmarket/middleware"
	"friendsmarket/models"
	"friendsmarket/setup"
	"friendsmarket/util"
)

// PlaceBet applies one unit-stake wager to a market.
//
// The whole read-validate-commit sequence runs under the market's lock so
// concurrent trades never size against stale quantities. Validation runs
// against a read-only snapshot; nothing is mutated until every guard has
// passed, and the commit itself (market quantities, balance debit, ledger
// entry, bet row) is one database transaction.
func PlaceBet(db *gorm.DB, cfg *setup.Config, marketID uint, userID uint, side models.Side) (*models.Bet, error) {
	unlock := util.LockMarket(marketID)
	defer unlock()

	eco := cfg.Economics
	stake := eco.UnitStake

	var market models.Market
	if err := db.First(&market, marketID).Error; err != nil {
		return nil, err
	}
	if market.IsDeleted {
		return nil, models.ErrMarketDeleted
	}
	if market.Status != models.StatusOpen {
		return nil, models.ErrMarketNotOpen
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	if user.Balance < stake {
		return nil, models.ErrInsufficientBalance
	}

	// Saturation guard: near the asymptote the marginal payout per unit
	// stake degenerates and sizing turns numerically unstable, so betting
	// the near-certain side is disallowed.
	priceYes := lmsr.PriceYes(market.QYes, market.QNo, market.LiquidityB)
	if side == models.SideYes && priceYes >= eco.PriceClipHigh-eco.PriceEpsilon {
		return nil, fmt.Errorf("%w: YES price already at %.4f", models.ErrSideSaturated, priceYes)
	}
	if side == models.SideNo && priceYes <= eco.PriceClipLow+eco.PriceEpsilon {
		return nil, fmt.Errorf("%w: YES price already at %.4f", models.ErrSideSaturated, priceYes)
	}

	newQYes, newQNo, err := lmsr.SolveDelta(stake, side, market.QYes, market.QNo, market.LiquidityB)
	if err != nil {
		return nil, err
	}
	shares := newQYes - market.QYes
	if side == models.SideNo {
		shares = newQNo - market.QNo
	}

	// Loss cap: projected outstanding shares on either side must stay
	// within the money actually collected (seed + every stake including
	// this one, plus configured slack). This is what keeps the creator's
	// settlement obligation non-negative.
	exp, err := MarketExposure(db, market.ID)
	if err != nil {
		return nil, err
	}
	projectedYes := exp.YesShares
	projectedNo := exp.NoShares
	if side == models.SideYes {
		projectedYes += shares
	} else {
		projectedNo += shares
	}
	capAmount := market.Seed + exp.TotalStaked + stake + eco.LossCapSlack
	if projectedYes > capAmount || projectedNo > capAmount {
		return nil, models.ErrLossCapExceeded
	}

	postPriceYes := lmsr.PriceYes(newQYes, newQNo, market.LiquidityB)
	impliedOdds := postPriceYes
	if side == models.SideNo {
		impliedOdds = 1 - postPriceYes
	}

	now := time.Now().UTC()
	bet := models.Bet{
		UserID:      user.ID,
		MarketID:    market.ID,
		Side:        side,
		Shares:      shares,
		Cost:        stake,
		ImpliedOdds: impliedOdds,
		PlacedAt:    now,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"q_yes":       newQYes,
			"q_no":        newQNo,
			"last_bet_at": now,
		}
		if err := tx.Model(&models.Market{}).Where("id = ?", market.ID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("balance", gorm.Expr("balance - ?", stake)).Error; err != nil {
			return err
		}
		if err := models.AddLedgerEntry(tx, user.ID, &market.ID, -stake, models.LedgerBetDebit,
			"Bet on "+string(side)); err != nil {
			return err
		}
		return tx.Create(&bet).Error
	})
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// BetRequest is the request body for placing a bet.
type BetRequest struct {
	Side string `json:"side" validate:"required"`
}

// PlaceBetHandler handles POST /v0/markets/{id}/bet.
func PlaceBetHandler(db *gorm.DB, cfg *setup.Config, limiter *middleware.BetRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, httpErr := middleware.ValidateTokenAndGetUser(r, db, cfg)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}
		if httpErr := limiter.Check(user.Name); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		marketID, err := parseMarketID(r)
		if err != nil {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}

		var req BetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		side, err := models.ParseSide(req.Side)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		bet, err := PlaceBet(db, cfg, marketID, user.ID, side)
		if err != nil {
			if errors.Is(err, lmsr.ErrBracketingFailed) || errors.Is(err, lmsr.ErrDidNotConverge) {
				http.Error(w, "Trade sizing failed", util.HTTPStatus(err))
				return
			}
			http.Error(w, err.Error(), util.HTTPStatus(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(bet)
	}
}

func parseMarketID(r *http.Request) (uint, error) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
