package flip

import "errors"

// Every failure of a public operation surfaces as one of these named
// conditions. Operations run inside a single transaction, so a returned
// error always means no state changed.
var (
	// Validation errors.
	ErrLobbyNotFound      = errors.New("lobby not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidTeam        = errors.New("invalid team selection")
	ErrInvalidTeamSize    = errors.New("team size out of range")
	ErrInvalidRoundsToWin = errors.New("rounds to win out of range")
	ErrInvalidTreasury    = errors.New("invalid treasury user")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrFeeTooHigh         = errors.New("fee exceeds maximum basis points")

	// State errors.
	ErrLobbyNotOpen       = errors.New("lobby is not open")
	ErrLobbyNotFull       = errors.New("lobby is not full")
	ErrLobbyNotInProgress = errors.New("lobby is not in progress")
	ErrLobbyNotFinished   = errors.New("lobby is not finished")
	ErrLobbyNotVoid       = errors.New("lobby is not void")
	ErrLobbyNotEmpty      = errors.New("other players have joined")
	ErrNotVoidable        = errors.New("lobby cannot be voided")
	ErrVoidTooEarly       = errors.New("void timeout not reached")
	ErrRequestInFlight    = errors.New("randomness request already in flight")

	// Authorization errors.
	ErrNotCreator = errors.New("only the creator may cancel")
	ErrNotPlayer  = errors.New("caller has not joined this lobby")
	ErrNotWinner  = errors.New("caller is not on the winning team")

	// Payment errors.
	ErrBetTooSmall         = errors.New("bet below protocol minimum")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrFeeTooLow           = errors.New("attached fee below oracle quote")

	// Idempotency errors.
	ErrAlreadyJoined  = errors.New("already joined this lobby")
	ErrAlreadyClaimed = errors.New("already claimed")
	ErrTeamFull       = errors.New("team is at capacity")

	// Callback errors.
	ErrUnknownToken = errors.New("unrecognized correlation token")

	// Settlement errors.
	ErrNothingToSweep = errors.New("no accrued fees to sweep")
	ErrNoTreasury     = errors.New("treasury not configured")
)
