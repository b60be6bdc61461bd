package models

// ProtocolState is a singleton row holding protocol-level aggregates and the
// administratively tunable parameters.
type ProtocolState struct {
	ID uint `gorm:"primaryKey"`

	// Diagnostic, monotonic counters.
	GamesCreated uint64 `gorm:"not null;default:0"`
	VolumeStaked int64  `gorm:"not null;default:0"`

	// FeeBps is the protocol fee in basis points, capped at 500 (5%).
	FeeBps int64 `gorm:"not null;default:0"`

	// TreasuryUserID receives swept fees. Zero means unset.
	TreasuryUserID uint `gorm:"not null;default:0"`

	// AccruedFees increases on each game finalization and is zeroed by a sweep.
	AccruedFees int64 `gorm:"not null;default:0"`
}
