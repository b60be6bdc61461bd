package handler

import (
	"errors"
	"net/http"

	"github.com/CoinClashFun/flipoff-backend/internal/flip"
	"github.com/CoinClashFun/flipoff-backend/internal/hub"

	"github.com/gin-gonic/gin"
)

var (
	flipService *flip.Service
	eventHub    *hub.Hub
)

// Init wires the handler package to the core service and the event hub.
// Must be called before any route is served.
func Init(s *flip.Service, h *hub.Hub) {
	flipService = s
	eventHub = h
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// respondError maps the core's named error conditions onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, flip.ErrLobbyNotFound),
		errors.Is(err, flip.ErrUserNotFound),
		errors.Is(err, flip.ErrNotPlayer),
		errors.Is(err, flip.ErrUnknownToken):
		status = http.StatusNotFound

	case errors.Is(err, flip.ErrInvalidTeam),
		errors.Is(err, flip.ErrInvalidTeamSize),
		errors.Is(err, flip.ErrInvalidRoundsToWin),
		errors.Is(err, flip.ErrInvalidTreasury),
		errors.Is(err, flip.ErrInvalidAmount),
		errors.Is(err, flip.ErrFeeTooHigh):
		status = http.StatusBadRequest

	case errors.Is(err, flip.ErrNotCreator),
		errors.Is(err, flip.ErrNotWinner):
		status = http.StatusForbidden

	case errors.Is(err, flip.ErrBetTooSmall),
		errors.Is(err, flip.ErrInsufficientBalance),
		errors.Is(err, flip.ErrFeeTooLow):
		status = http.StatusPaymentRequired

	case errors.Is(err, flip.ErrLobbyNotOpen),
		errors.Is(err, flip.ErrLobbyNotFull),
		errors.Is(err, flip.ErrLobbyNotInProgress),
		errors.Is(err, flip.ErrLobbyNotFinished),
		errors.Is(err, flip.ErrLobbyNotVoid),
		errors.Is(err, flip.ErrLobbyNotEmpty),
		errors.Is(err, flip.ErrNotVoidable),
		errors.Is(err, flip.ErrVoidTooEarly),
		errors.Is(err, flip.ErrRequestInFlight),
		errors.Is(err, flip.ErrAlreadyJoined),
		errors.Is(err, flip.ErrAlreadyClaimed),
		errors.Is(err, flip.ErrTeamFull),
		errors.Is(err, flip.ErrNothingToSweep),
		errors.Is(err, flip.ErrNoTreasury):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
