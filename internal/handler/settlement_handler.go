package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ClaimWinnings godoc
// @Summary      Claim winnings from a finished lobby
// @Description  Pays out the caller's share of the pot, once, if they were on the winning team.
// @Tags         settlement
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {object} map[string]int64 "{"payout": 95000}"
// @Failure      403 {object} ErrorResponse "Not on the winning team"
// @Failure      409 {object} ErrorResponse "Not finished or already claimed"
// @Router       /lobbies/{id}/claim [post]
func ClaimWinnings(c *gin.Context) {
	userID, _ := c.Get("userID")
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	payout, err := flipService.ClaimWinnings(c.Request.Context(), userID.(uint), uint(lobbyID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payout": payout})
}

// WithdrawVoid godoc
// @Summary      Withdraw the original stake from a void lobby
// @Tags         settlement
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {object} map[string]int64 "{"refund": 100000}"
// @Failure      404 {object} ErrorResponse "Not a player of this lobby"
// @Failure      409 {object} ErrorResponse "Not void or already claimed"
// @Router       /lobbies/{id}/withdraw [post]
func WithdrawVoid(c *gin.Context) {
	userID, _ := c.Get("userID")
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	refund, err := flipService.WithdrawVoid(c.Request.Context(), userID.(uint), uint(lobbyID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"refund": refund})
}

// SweepFees godoc
// @Summary      Sweep accrued protocol fees to the treasury
// @Description  Callable by anyone; moves the full accrued fee balance to the treasury account.
// @Tags         settlement
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]int64 "{"swept": 10000}"
// @Failure      409 {object} ErrorResponse "Nothing to sweep or treasury unset"
// @Router       /fees/sweep [post]
func SweepFees(c *gin.Context) {
	swept, err := flipService.SweepFees(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"swept": swept})
}

// GetStats godoc
// @Summary      Get protocol-level statistics
// @Tags         settlement
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{}
// @Router       /stats [get]
func GetStats(c *gin.Context) {
	stats, err := flipService.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"games_created":    stats.GamesCreated,
		"volume_staked":    stats.VolumeStaked,
		"fee_bps":          stats.FeeBps,
		"treasury_user_id": stats.TreasuryUserID,
		"accrued_fees":     stats.AccruedFees,
	})
}
