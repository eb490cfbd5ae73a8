package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Side is the outcome a bet backs. Modeled as a closed two-variant enum so
// guard and sizing logic can switch exhaustively.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

func normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ParseSide normalizes a raw side string.
func ParseSide(raw string) (Side, error) {
	switch Side(normalize(raw)) {
	case SideYes:
		return SideYes, nil
	case SideNo:
		return SideNo, nil
	}
	return "", ErrInvalidSide
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideYes {
		return SideNo
	}
	return SideYes
}

// Matches reports whether a resolution outcome pays this side.
func (s Side) Matches(o Outcome) bool {
	return string(s) == string(o)
}

// Bet is an immutable record of one accepted wager. Cost is the stake paid
// (always the configured unit stake), Shares the quantity delta granted by
// the market maker, ImpliedOdds the probability of the chosen side
// immediately after the trade. Bets are never updated once created.
type Bet struct {
	gorm.Model
	UserID   uint    `json:"userId" gorm:"not null;index"`
	MarketID uint    `json:"marketId" gorm:"not null;index"`
	Side     Side    `json:"side" gorm:"not null;size:10"`
	Shares   float64 `json:"shares" gorm:"not null"`
	Cost     float64 `json:"cost" gorm:"not null"`

	ImpliedOdds float64   `json:"impliedOdds" gorm:"not null"`
	PlacedAt    time.Time `json:"placedAt" gorm:"not null;index"`

	User   *User   `json:"-" gorm:"foreignKey:UserID"`
	Market *Market `json:"-" gorm:"foreignKey:MarketID"`
}
