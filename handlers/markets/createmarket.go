// Package markets implements market creation, reads and the non-trading
// lifecycle transitions (pending, delete).
package markets

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"friendsmarket/handlers/math/probabilities/lmsr"
	"friendsmarket/middleware"
	"friendsmarket/models"
	"friendsmarket/security"
	"friendsmarket/setup"
	"friendsmarket/util"
)

var validate = validator.New()

// CreateMarketRequest is the request body for opening a market.
type CreateMarketRequest struct {
	Question         string     `json:"question" validate:"required,max=160"`
	Description      string     `json:"description" validate:"max=2000"`
	YesMeaning       string     `json:"yesMeaning" validate:"max=200"`
	NoMeaning        string     `json:"noMeaning" validate:"max=200"`
	ResolutionSource string     `json:"resolutionSource" validate:"max=500"`
	InitialProbYes   float64    `json:"initialProbYes" validate:"gt=0,lt=1"`
	EventTime        *time.Time `json:"eventTime,omitempty"`
}

// CreateMarket opens a market funded by the creator's seed. The starting
// quantities come from the creator's stated probability shifted by the
// seed, so the opening price equals that probability while the market
// maker already holds the seed. The seed debit and its ledger entry commit
// with the market row.
func CreateMarket(db *gorm.DB, cfg *setup.Config, creatorID uint, req CreateMarketRequest) (*models.Market, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	eco := cfg.Economics

	var creator models.User
	if err := db.First(&creator, creatorID).Error; err != nil {
		return nil, err
	}
	if creator.Balance < eco.MarketSeed {
		return nil, models.ErrInsufficientBalance
	}

	// Markets may not open inside the saturation band: a creator opening
	// at 0.95 would leave one side untradable from the first second.
	if req.InitialProbYes < eco.PriceClipLow || req.InitialProbYes > eco.PriceClipHigh {
		return nil, fmt.Errorf("%w: initial probability must be within [%v, %v]",
			lmsr.ErrInvalidProbability, eco.PriceClipLow, eco.PriceClipHigh)
	}

	sanitized, err := security.NewSecurityService().ValidateAndSanitizeMarketInput(security.MarketInput{
		Question:         req.Question,
		Description:      req.Description,
		YesMeaning:       req.YesMeaning,
		NoMeaning:        req.NoMeaning,
		ResolutionSource: req.ResolutionSource,
	})
	if err != nil {
		return nil, err
	}

	qYes, qNo, err := lmsr.InitialQValues(req.InitialProbYes, eco.MarketSeed, eco.DefaultLiquidityB)
	if err != nil {
		return nil, err
	}

	market := models.Market{
		Question:         sanitized.Question,
		Description:      sanitized.Description,
		YesMeaning:       sanitized.YesMeaning,
		NoMeaning:        sanitized.NoMeaning,
		ResolutionSource: sanitized.ResolutionSource,
		InitialProbYes:   req.InitialProbYes,
		LiquidityB:       eco.DefaultLiquidityB,
		Seed:             eco.MarketSeed,
		QYes:             qYes,
		QNo:              qNo,
		Status:           models.StatusOpen,
		EventTime:        req.EventTime,
		TotalPot:         eco.MarketSeed,
		CreatorID:        creator.ID,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&market).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", creator.ID).
			Update("balance", gorm.Expr("balance - ?", eco.MarketSeed)).Error; err != nil {
			return err
		}
		return models.AddLedgerEntry(tx, creator.ID, &market.ID, -eco.MarketSeed,
			models.LedgerDepositSeed, "Market seed")
	})
	if err != nil {
		return nil, err
	}
	return &market, nil
}

// CreateMarketHandler handles POST /v0/markets.
func CreateMarketHandler(db *gorm.DB, cfg *setup.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, httpErr := middleware.ValidateTokenAndGetUser(r, db, cfg)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var req CreateMarketRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		market, err := CreateMarket(db, cfg, user.ID, req)
		if err != nil {
			http.Error(w, err.Error(), util.HTTPStatus(err))
			return
		}

		read, err := BuildMarketRead(db, cfg, market)
		if err != nil {
			http.Error(w, "Failed to read market", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(read)
	}
}
