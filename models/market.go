package models

import (
	"time"

	"gorm.io/gorm"
)

// MarketStatus is the lifecycle state of a market.
//
// OPEN -> PENDING -> RESOLVED is the normal path. OPEN or PENDING may end in
// INVALID (voided, stakes refunded). OPEN may end in CLOSED (withdrawn by the
// creator, no settlement). RESOLVED, INVALID and CLOSED are terminal.
type MarketStatus string

const (
	StatusOpen     MarketStatus = "OPEN"
	StatusPending  MarketStatus = "PENDING"
	StatusResolved MarketStatus = "RESOLVED"
	StatusInvalid  MarketStatus = "INVALID"
	StatusClosed   MarketStatus = "CLOSED"
)

// Terminal reports whether no further status transition is possible.
func (s MarketStatus) Terminal() bool {
	return s == StatusResolved || s == StatusInvalid || s == StatusClosed
}

// Outcome is a resolution verdict.
type Outcome string

const (
	OutcomeYes     Outcome = "YES"
	OutcomeNo      Outcome = "NO"
	OutcomeInvalid Outcome = "INVALID"
)

// ParseOutcome normalizes a raw outcome string.
func ParseOutcome(raw string) (Outcome, error) {
	switch Outcome(normalize(raw)) {
	case OutcomeYes:
		return OutcomeYes, nil
	case OutcomeNo:
		return OutcomeNo, nil
	case OutcomeInvalid:
		return OutcomeInvalid, nil
	}
	return "", ErrInvalidOutcome
}

// Market is one binary question priced by the LMSR market maker.
//
// QYes/QNo/Status/LastBetAt are owned by the trading state machine and must
// only change under the market's lock. The settlement summary fields
// (TotalPot, TotalPayoutYes, TotalPayoutNo, CreatorPayout) are written once,
// by settlement.
type Market struct {
	gorm.Model
	Question         string  `json:"question" gorm:"not null;size:160"`
	Description      string  `json:"description" gorm:"size:2000"`
	YesMeaning       string  `json:"yesMeaning" gorm:"size:200"`
	NoMeaning        string  `json:"noMeaning" gorm:"size:200"`
	ResolutionSource string  `json:"resolutionSource" gorm:"size:500"`
	InitialProbYes   float64 `json:"initialProbYes" gorm:"not null"`
	LiquidityB       float64 `json:"liquidityB" gorm:"not null"`
	Seed             float64 `json:"seed" gorm:"not null"`

	QYes float64 `json:"qYes" gorm:"not null"`
	QNo  float64 `json:"qNo" gorm:"not null"`

	Status    MarketStatus `json:"status" gorm:"not null;default:OPEN;index"`
	Outcome   Outcome      `json:"outcome,omitempty"`
	IsDeleted bool         `json:"isDeleted" gorm:"default:false;index"`

	EventTime *time.Time `json:"eventTime,omitempty"`
	LastBetAt *time.Time `json:"lastBetAt,omitempty"`

	TotalPot       float64 `json:"totalPot" gorm:"default:0"`
	TotalPayoutYes float64 `json:"totalPayoutYes" gorm:"default:0"`
	TotalPayoutNo  float64 `json:"totalPayoutNo" gorm:"default:0"`
	CreatorPayout  float64 `json:"creatorPayout" gorm:"default:0"`

	CreatorID uint `json:"creatorId" gorm:"not null;index"`
	Creator   User `json:"-" gorm:"foreignKey:CreatorID"`

	Bets []Bet `json:"-" gorm:"foreignKey:MarketID"`
}
