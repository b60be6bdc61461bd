package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// FeeInput bounds what the caller is willing to pay for the oracle request.
// Only the quoted fee is debited; any headroom stays on the balance.
type FeeInput struct {
	MaxFee int64 `json:"max_fee" binding:"required,min=1"`
}

// endregion

// StartGame godoc
// @Summary      Start a full lobby
// @Description  Moves a full lobby into play and issues the first randomness request. The caller pays the oracle fee.
// @Tags         game
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int      true "Lobby ID"
// @Param        input body FeeInput true "Fee ceiling"
// @Success      200 {object} LobbyResponse
// @Failure      402 {object} ErrorResponse "Fee below quote or insufficient balance"
// @Failure      409 {object} ErrorResponse "Lobby is not full"
// @Router       /lobbies/{id}/start [post]
func StartGame(c *gin.Context) {
	userID, _ := c.Get("userID")
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	var input FeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lobby, err := flipService.StartGame(c.Request.Context(), userID.(uint), uint(lobbyID), input.MaxFee)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newLobbyResponse(lobby))
}

// RequestNextRound godoc
// @Summary      Request the next round's randomness
// @Description  Issues the next randomness request for an in-progress lobby. Callable by anyone; the caller pays the oracle fee.
// @Tags         game
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int      true "Lobby ID"
// @Param        input body FeeInput true "Fee ceiling"
// @Success      200 {object} LobbyResponse
// @Failure      402 {object} ErrorResponse "Fee below quote or insufficient balance"
// @Failure      409 {object} ErrorResponse "Not in progress or request already in flight"
// @Router       /lobbies/{id}/next-round [post]
func RequestNextRound(c *gin.Context) {
	userID, _ := c.Get("userID")
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	var input FeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lobby, err := flipService.RequestNextRound(c.Request.Context(), userID.(uint), uint(lobbyID), input.MaxFee)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newLobbyResponse(lobby))
}

// GetEntropyFee godoc
// @Summary      Get the current oracle fee quote
// @Tags         game
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]int64 "{"fee": 100}"
// @Router       /entropy-fee [get]
func GetEntropyFee(c *gin.Context) {
	fee, err := flipService.EntropyFee(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Oracle unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"fee": fee})
}
