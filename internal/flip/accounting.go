package flip

// Protocol bounds and fee math. All amounts are integer milliunits; the fee
// is expressed in basis points and truncates toward zero on division.

const (
	MinTeamSize    = 1
	MaxTeamSize    = 5
	MinRoundsToWin = 1
	MaxRoundsToWin = 5

	// FeeDenominator converts basis points to a fraction.
	FeeDenominator = 10000
	// MaxFeeBps caps the protocol fee at 5%.
	MaxFeeBps = 500
)

// ProtocolFee returns the fee retained from a pot at the given basis points.
func ProtocolFee(pot, feeBps int64) int64 {
	return pot * feeBps / FeeDenominator
}

// WinnerPayout returns the per-player payout for the winning team. Any
// remainder from the integer division is retained as dust rather than
// tracked separately.
func WinnerPayout(pot, fee int64, teamSize int) int64 {
	return (pot - fee) / int64(teamSize)
}
