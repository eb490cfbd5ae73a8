package bets

import (
	"gorm.io/gorm"

	"friendsmarket/models"
)

// Exposure is the outstanding share and stake totals of one market.
type Exposure struct {
	YesShares   float64
	NoShares    float64
	TotalStaked float64
}

// MarketExposure sums granted shares per side and total cash staked across
// every bet of a market. The loss cap compares these totals against the
// money collected.
func MarketExposure(db *gorm.DB, marketID uint) (Exposure, error) {
	var betRows []models.Bet
	if err := db.Where("market_id = ?", marketID).Find(&betRows).Error; err != nil {
		return Exposure{}, err
	}

	var exp Exposure
	for _, bet := range betRows {
		switch bet.Side {
		case models.SideYes:
			exp.YesShares += bet.Shares
		case models.SideNo:
			exp.NoShares += bet.Shares
		}
		exp.TotalStaked += bet.Cost
	}
	return exp, nil
}

// MarketVolumes sums staked cash per side for display.
func MarketVolumes(db *gorm.DB, marketID uint) (volumeYes, volumeNo float64, err error) {
	var betRows []models.Bet
	if err := db.Where("market_id = ?", marketID).Find(&betRows).Error; err != nil {
		return 0, 0, err
	}
	for _, bet := range betRows {
		if bet.Side == models.SideYes {
			volumeYes += bet.Cost
		} else {
			volumeNo += bet.Cost
		}
	}
	return volumeYes, volumeNo, nil
}
