package models

import (
	"gorm.io/gorm"
)

// LedgerType classifies one money movement.
type LedgerType string

const (
	LedgerStartingBalance LedgerType = "STARTING_BALANCE"
	LedgerDepositSeed     LedgerType = "DEPOSIT_SEED"
	LedgerBetDebit        LedgerType = "BET_DEBIT"
	LedgerPayout          LedgerType = "PAYOUT"
	LedgerRefund          LedgerType = "REFUND"
)

// LedgerEntry is an immutable, append-only record of one signed money
// movement. The sum of a user's entries equals the user's cached Balance
// after every operation; every balance mutation is paired with exactly one
// entry in the same transaction.
type LedgerEntry struct {
	gorm.Model
	UserID    uint       `json:"userId" gorm:"not null;index"`
	MarketID  *uint      `json:"marketId,omitempty" gorm:"index"`
	Amount    float64    `json:"amount" gorm:"not null"`
	EntryType LedgerType `json:"entryType" gorm:"not null;size:20;index"`
	Note      string     `json:"note,omitempty" gorm:"size:200"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}

// AddLedgerEntry appends one entry inside the caller's transaction. The
// caller is responsible for mutating the matching balance in the same
// transaction.
func AddLedgerEntry(tx *gorm.DB, userID uint, marketID *uint, amount float64, entryType LedgerType, note string) error {
	entry := LedgerEntry{
		UserID:    userID,
		MarketID:  marketID,
		Amount:    amount,
		EntryType: entryType,
		Note:      note,
	}
	return tx.Create(&entry).Error
}
