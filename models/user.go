package models

import (
	"gorm.io/gorm"
)

// User is a participant. The core only ever touches Balance; identity and
// credentials belong to the surrounding auth layer.
type User struct {
	gorm.Model
	Name         string  `json:"name" gorm:"unique;not null;size:50"`
	PasswordHash string  `json:"-" gorm:"not null"`
	Balance      float64 `json:"balance" gorm:"not null;default:0"`

	Markets []Market      `json:"-" gorm:"foreignKey:CreatorID"`
	Bets    []Bet         `json:"-" gorm:"foreignKey:UserID"`
	Ledger  []LedgerEntry `json:"-" gorm:"foreignKey:UserID"`
}

// UserPublic is the public-facing user profile.
type UserPublic struct {
	ID      uint    `json:"id"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// ToPublic converts User to UserPublic (hides credentials).
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:      u.ID,
		Name:    u.Name,
		Balance: u.Balance,
	}
}
