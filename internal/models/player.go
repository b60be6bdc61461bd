package models

import "gorm.io/gorm"

// Player records one user's membership in one lobby. A user may appear at
// most once per lobby, enforced by the composite unique index.
type Player struct {
	gorm.Model
	LobbyID uint `gorm:"not null;uniqueIndex:idx_lobby_user"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_lobby_user;index"`
	Team    Team `gorm:"size:10;not null"`

	// Claimed flips exactly once, on payout of winnings or refund of a void stake.
	Claimed bool `gorm:"not null;default:false"`

	User User `gorm:"foreignKey:UserID"`
}
