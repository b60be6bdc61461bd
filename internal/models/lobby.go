package models

import (
	"time"

	"gorm.io/gorm"
)

// LobbyState is the lifecycle state of a lobby.
type LobbyState string

const (
	// StateOpen means the lobby is accepting players.
	StateOpen LobbyState = "open"
	// StateFull means both teams are at capacity and the game can be started.
	StateFull LobbyState = "full"
	// StateInProgress means rounds are being played.
	StateInProgress LobbyState = "in_progress"
	// StateFinished is terminal; a winner has been declared and winnings are claimable.
	StateFinished LobbyState = "finished"
	// StateVoid is terminal; original stakes are refundable instead of distributed.
	StateVoid LobbyState = "void"
)

// Team is one of the two sides of the coin players can bet on.
type Team string

const (
	TeamNone  Team = ""
	TeamHeads Team = "heads"
	TeamTails Team = "tails"
)

// Valid reports whether t is a side a player can actually join.
func (t Team) Valid() bool {
	return t == TeamHeads || t == TeamTails
}

// Lobby represents one instance of the wagering game, from creation through
// its terminal state. Lobbies are never deleted; finished and void lobbies
// are kept for historical queries.
type Lobby struct {
	gorm.Model
	CreatorID   uint  `gorm:"not null;index"`
	TeamSize    int   `gorm:"not null"`
	RoundsToWin int   `gorm:"not null"`
	BetAmount   int64 `gorm:"not null"`

	State        LobbyState `gorm:"size:20;not null;index"`
	HeadsScore   int        `gorm:"not null;default:0"`
	TailsScore   int        `gorm:"not null;default:0"`
	Winner       Team       `gorm:"size:10;not null;default:''"`
	CurrentRound int        `gorm:"not null;default:1"`

	// At most one randomness request may be in flight per lobby. PendingToken
	// holds the correlation token of that request while the flag is set.
	RequestInFlight bool   `gorm:"not null;default:false"`
	PendingToken    string `gorm:"size:64;index"`

	// FeeCharged is the protocol fee snapshotted at finalization so a later
	// fee change cannot alter the payout of an already-finished game.
	FeeCharged int64 `gorm:"not null;default:0"`

	// LastActivityAt drives the stuck-game void timeout.
	LastActivityAt time.Time `gorm:"not null"`

	Creator User     `gorm:"foreignKey:CreatorID"`
	Players []Player `gorm:"foreignKey:LobbyID"`
	Rounds  []Round  `gorm:"foreignKey:LobbyID"`
}

// Pot returns the total value staked in the lobby, fixed at creation.
func (l *Lobby) Pot() int64 {
	return l.BetAmount * int64(l.TeamSize) * 2
}

// Score returns the current score of the given team.
func (l *Lobby) Score(t Team) int {
	if t == TeamHeads {
		return l.HeadsScore
	}
	return l.TailsScore
}
