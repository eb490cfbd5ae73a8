package markets

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"friendsmarket/handlers/bets"
	"friendsmarket/handlers/math/probabilities/lmsr"
	"friendsmarket/models"
	"friendsmarket/security"
	"friendsmarket/setup"
	"friendsmarket/util"
)

// MarketRead is the client-facing view of one market: stored fields plus
// derived prices and unit-stake previews for both sides.
type MarketRead struct {
	ID               uint                `json:"id"`
	Question         string              `json:"question"`
	Description      string              `json:"description,omitempty"`
	DescriptionHTML  string              `json:"descriptionHtml,omitempty"`
	YesMeaning       string              `json:"yesMeaning,omitempty"`
	NoMeaning        string              `json:"noMeaning,omitempty"`
	ResolutionSource string              `json:"resolutionSource,omitempty"`
	InitialProbYes   float64             `json:"initialProbYes"`
	LiquidityB       float64             `json:"liquidityB"`
	QYes             float64             `json:"qYes"`
	QNo              float64             `json:"qNo"`
	Status           models.MarketStatus `json:"status"`
	Outcome          models.Outcome      `json:"outcome,omitempty"`
	IsDeleted        bool                `json:"isDeleted"`
	CreatedAt        time.Time           `json:"createdAt"`
	EventTime        *time.Time          `json:"eventTime,omitempty"`
	LastBetAt        *time.Time          `json:"lastBetAt,omitempty"`
	CreatorID        uint                `json:"creatorId"`
	CreatorName      string              `json:"creatorName,omitempty"`

	PriceYes   float64       `json:"priceYes"`
	PriceNo    float64       `json:"priceNo"`
	YesPreview *bets.Preview `json:"yesPreview,omitempty"`
	NoPreview  *bets.Preview `json:"noPreview,omitempty"`

	TotalPot       float64 `json:"totalPot"`
	TotalPayoutYes float64 `json:"totalPayoutYes"`
	TotalPayoutNo  float64 `json:"totalPayoutNo"`
	CreatorPayout  float64 `json:"creatorPayout"`
}

// MarketDetail extends MarketRead with trade history and derived series.
type MarketDetail struct {
	MarketRead
	Bets        []models.Bet      `json:"bets"`
	OddsHistory []OddsPoint       `json:"oddsHistory"`
	VolumeYes   float64           `json:"volumeYes"`
	VolumeNo    float64           `json:"volumeNo"`
	Payouts     []PayoutBreakdown `json:"payouts"`
}

// PayoutBreakdown is one settlement-time money movement of a market.
type PayoutBreakdown struct {
	UserID    uint              `json:"userId"`
	Amount    float64           `json:"amount"`
	EntryType models.LedgerType `json:"entryType"`
	Note      string            `json:"note,omitempty"`
}

// BuildMarketRead derives the display view. Previews are only computed
// while the market still trades; a saturated or closed market simply omits
// them rather than failing the read.
func BuildMarketRead(db *gorm.DB, cfg *setup.Config, market *models.Market) (MarketRead, error) {
	priceYes := lmsr.PriceYes(market.QYes, market.QNo, market.LiquidityB)

	read := MarketRead{
		ID:               market.ID,
		Question:         market.Question,
		Description:      market.Description,
		YesMeaning:       market.YesMeaning,
		NoMeaning:        market.NoMeaning,
		ResolutionSource: market.ResolutionSource,
		InitialProbYes:   market.InitialProbYes,
		LiquidityB:       market.LiquidityB,
		QYes:             market.QYes,
		QNo:              market.QNo,
		Status:           market.Status,
		Outcome:          market.Outcome,
		IsDeleted:        market.IsDeleted,
		CreatedAt:        market.CreatedAt,
		EventTime:        market.EventTime,
		LastBetAt:        market.LastBetAt,
		CreatorID:        market.CreatorID,
		PriceYes:         priceYes,
		PriceNo:          1 - priceYes,
		TotalPot:         market.TotalPot,
		TotalPayoutYes:   market.TotalPayoutYes,
		TotalPayoutNo:    market.TotalPayoutNo,
		CreatorPayout:    market.CreatorPayout,
	}

	if market.Description != "" {
		if html, err := security.NewSecurityService().RenderDescription(market.Description); err == nil {
			read.DescriptionHTML = html
		}
	}

	var creator models.User
	if err := db.First(&creator, market.CreatorID).Error; err == nil {
		read.CreatorName = creator.Name
	}

	stake := cfg.Economics.UnitStake
	if yes, err := bets.ComputePreview(market, models.SideYes, stake); err == nil {
		read.YesPreview = &yes
	}
	if no, err := bets.ComputePreview(market, models.SideNo, stake); err == nil {
		read.NoPreview = &no
	}

	return read, nil
}

// GetMarketHandler handles GET /v0/markets/{id}.
func GetMarketHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		marketID, err := ParseMarketID(r)
		if err != nil {
			http.Error(w, "Invalid market ID", http.StatusBadRequest)
			return
		}

		var market models.Market
		if err := db.First(&market, marketID).Error; err != nil {
			http.Error(w, "Market not found", util.HTTPStatus(err))
			return
		}

		read, err := BuildMarketRead(db, cfg, &market)
		if err != nil {
			http.Error(w, "Failed to read market", http.StatusInternalServerError)
			return
		}

		var betRows []models.Bet
		if err := db.Where("market_id = ?", market.ID).Order("placed_at").Find(&betRows).Error; err != nil {
			http.Error(w, "Failed to fetch bets", http.StatusInternalServerError)
			return
		}

		history, err := ComputeOddsHistory(&market, betRows)
		if err != nil {
			http.Error(w, "Failed to replay odds history", util.HTTPStatus(err))
			return
		}

		volumeYes, volumeNo, err := bets.MarketVolumes(db, market.ID)
		if err != nil {
			http.Error(w, "Failed to fetch volumes", http.StatusInternalServerError)
			return
		}

		payouts, err := payoutBreakdown(db, market.ID)
		if err != nil {
			http.Error(w, "Failed to fetch payouts", http.StatusInternalServerError)
			return
		}

		detail := MarketDetail{
			MarketRead:  read,
			Bets:        betRows,
			OddsHistory: history,
			VolumeYes:   volumeYes,
			VolumeNo:    volumeNo,
			Payouts:     payouts,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(detail)
	}
}

// payoutBreakdown lists the settlement-time ledger slice of a market.
func payoutBreakdown(db *gorm.DB, marketID uint) ([]PayoutBreakdown, error) {
	var entries []models.LedgerEntry
	err := db.Where("market_id = ? AND entry_type IN ?", marketID,
		[]models.LedgerType{models.LedgerPayout, models.LedgerRefund}).
		Order("created_at").Find(&entries).Error
	if err != nil {
		return nil, err
	}

	breakdown := make([]PayoutBreakdown, 0, len(entries))
	for _, entry := range entries {
		breakdown = append(breakdown, PayoutBreakdown{
			UserID:    entry.UserID,
			Amount:    entry.Amount,
			EntryType: entry.EntryType,
			Note:      entry.Note,
		})
	}
	return breakdown, nil
}

// ParseMarketID extracts the {id} route variable.
func ParseMarketID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
