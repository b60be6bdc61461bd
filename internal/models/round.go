package models

import "gorm.io/gorm"

// Round is an append-only history entry for one randomness-determined
// sub-contest of a lobby. It is created when the randomness request for the
// round is issued and resolved exactly once, by the matching callback.
type Round struct {
	gorm.Model
	LobbyID  uint   `gorm:"not null;index"`
	Number   int    `gorm:"not null"`
	Token    string `gorm:"size:64;uniqueIndex;not null"`
	Winner   Team   `gorm:"size:10;not null;default:''"`
	Resolved bool   `gorm:"not null;default:false"`
}
