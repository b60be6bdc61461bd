package models

import "gorm.io/gorm"

// User represents a player account in the system.
type User struct {
	gorm.Model
	Nickname     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:50;not null;default:'user';index"`

	// Balance is the custodial ledger balance in milliunits. Stakes and
	// oracle fees are debited from it, payouts and refunds credited back.
	Balance int64 `gorm:"not null;default:0"`
}
