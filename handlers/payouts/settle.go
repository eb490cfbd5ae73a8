// Package payouts is the settlement engine: it turns a finished market and
// its trade history into cash payouts that exactly conserve the money
// collected.
package payouts

import (
	"gorm.io/gorm"

	"friendsmarket/models"
	"friendsmarket/util"
)

// SettlementSummary reports where a market's pot went.
type SettlementSummary struct {
	MarketID       uint           `json:"marketId"`
	Outcome        models.Outcome `json:"outcome"`
	TotalPot       float64        `json:"totalPot"`
	TotalPayoutYes float64        `json:"totalPayoutYes"`
	TotalPayoutNo  float64        `json:"totalPayoutNo"`
	CreatorPayout  float64        `json:"creatorPayout"`
	RefundTotal    float64        `json:"refundTotal"`
}

// ResolveMarket settles a market with the given outcome.
//
// Allowed from OPEN or PENDING. RESOLVED and INVALID are terminal: a second
// resolve always fails with ErrAlreadyResolved and touches no ledger. A
// CLOSED (withdrawn) market never settles.
//
// Settlement and the status transition commit in one transaction under the
// market's lock, so a concurrent trade can never interleave with payout.
func ResolveMarket(db *gorm.DB, marketID uint, outcome models.Outcome) (*SettlementSummary, error) {
	unlock := util.LockMarket(marketID)
	defer unlock()

	var market models.Market
	if err := db.First(&market, marketID).Error; err != nil {
		return nil, err
	}
	switch market.Status {
	case models.StatusResolved, models.StatusInvalid:
		return nil, models.ErrAlreadyResolved
	case models.StatusClosed:
		return nil, models.ErrMarketNotOpen
	}
	if market.IsDeleted {
		return nil, models.ErrMarketDeleted
	}

	var summary *SettlementSummary
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if outcome == models.OutcomeInvalid {
			summary, err = refundInvalid(tx, &market)
		} else {
			summary, err = payWinners(tx, &market, outcome)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// payWinners credits every winning bet with exactly its granted shares
// (a share pays one unit of currency if its side wins) and hands the
// creator the remainder of the pot. The loss cap enforced at trade time is
// what guarantees that remainder is never negative, so
// totalPot == totalWinnerPayout + creatorPayout holds by construction.
func payWinners(tx *gorm.DB, market *models.Market, outcome models.Outcome) (*SettlementSummary, error) {
	var betRows []models.Bet
	if err := tx.Where("market_id = ?", market.ID).Find(&betRows).Error; err != nil {
		return nil, err
	}

	totalStaked := 0.0
	for _, bet := range betRows {
		totalStaked += bet.Cost
	}
	totalPot := market.Seed + totalStaked

	totalWinnerPayout := 0.0
	for _, bet := range betRows {
		if !bet.Side.Matches(outcome) {
			continue
		}
		payout := bet.Shares
		totalWinnerPayout += payout
		if err := tx.Model(&models.User{}).Where("id = ?", bet.UserID).
			Update("balance", gorm.Expr("balance + ?", payout)).Error; err != nil {
			return nil, err
		}
		if err := models.AddLedgerEntry(tx, bet.UserID, &market.ID, payout,
			models.LedgerPayout, "Winner payout"); err != nil {
			return nil, err
		}
	}

	creatorPayout := totalPot - totalWinnerPayout
	if err := tx.Model(&models.User{}).Where("id = ?", market.CreatorID).
		Update("balance", gorm.Expr("balance + ?", creatorPayout)).Error; err != nil {
		return nil, err
	}
	if err := models.AddLedgerEntry(tx, market.CreatorID, &market.ID, creatorPayout,
		models.LedgerPayout, "Creator settlement"); err != nil {
		return nil, err
	}

	payoutYes, payoutNo := 0.0, 0.0
	if outcome == models.OutcomeYes {
		payoutYes = totalWinnerPayout
	} else {
		payoutNo = totalWinnerPayout
	}

	updates := map[string]interface{}{
		"status":           models.StatusResolved,
		"outcome":          outcome,
		"total_pot":        totalPot,
		"total_payout_yes": payoutYes,
		"total_payout_no":  payoutNo,
		"creator_payout":   creatorPayout,
	}
	if err := tx.Model(&models.Market{}).Where("id = ?", market.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	return &SettlementSummary{
		MarketID:       market.ID,
		Outcome:        outcome,
		TotalPot:       totalPot,
		TotalPayoutYes: payoutYes,
		TotalPayoutNo:  payoutNo,
		CreatorPayout:  creatorPayout,
	}, nil
}

// refundInvalid hands every stake back to its bettor and the seed back to
// the creator. The refunds sum to seed + total staked, and the summary
// fields are zeroed since no side won.
func refundInvalid(tx *gorm.DB, market *models.Market) (*SettlementSummary, error) {
	var betRows []models.Bet
	if err := tx.Where("market_id = ?", market.ID).Find(&betRows).Error; err != nil {
		return nil, err
	}

	refundTotal := 0.0
	for _, bet := range betRows {
		refundTotal += bet.Cost
		if err := tx.Model(&models.User{}).Where("id = ?", bet.UserID).
			Update("balance", gorm.Expr("balance + ?", bet.Cost)).Error; err != nil {
			return nil, err
		}
		if err := models.AddLedgerEntry(tx, bet.UserID, &market.ID, bet.Cost,
			models.LedgerRefund, "Invalid market refund"); err != nil {
			return nil, err
		}
	}

	refundTotal += market.Seed
	if err := tx.Model(&models.User{}).Where("id = ?", market.CreatorID).
		Update("balance", gorm.Expr("balance + ?", market.Seed)).Error; err != nil {
		return nil, err
	}
	if err := models.AddLedgerEntry(tx, market.CreatorID, &market.ID, market.Seed,
		models.LedgerRefund, "Seed returned"); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":           models.StatusInvalid,
		"outcome":          models.OutcomeInvalid,
		"total_pot":        0.0,
		"total_payout_yes": 0.0,
		"total_payout_no":  0.0,
		"creator_payout":   0.0,
	}
	if err := tx.Model(&models.Market{}).Where("id = ?", market.ID).Updates(updates).Error; err != nil {
		return nil, err
	}

	return &SettlementSummary{
		MarketID:    market.ID,
		Outcome:     models.OutcomeInvalid,
		RefundTotal: refundTotal,
	}, nil
}
