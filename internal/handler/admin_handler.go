package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type SetFeeInput struct {
	FeeBps int64 `json:"fee_bps" binding:"min=0,max=500"`
}

type SetTreasuryInput struct {
	TreasuryUserID uint `json:"treasury_user_id" binding:"required"`
}

type CreditInput struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

// endregion

// SetFee godoc
// @Summary      Update the protocol fee (admin only)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SetFeeInput true "Fee in basis points, max 500"
// @Success      200 {object} map[string]string "{"message": "Fee updated"}"
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Router       /admin/fee [put]
func SetFee(c *gin.Context) {
	var input SetFeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := flipService.SetFeeBps(c.Request.Context(), input.FeeBps); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fee updated"})
}

// SetTreasury godoc
// @Summary      Update the treasury account (admin only)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SetTreasuryInput true "Treasury user"
// @Success      200 {object} map[string]string "{"message": "Treasury updated"}"
// @Failure      400 {object} ErrorResponse "Treasury user invalid"
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Router       /admin/treasury [put]
func SetTreasury(c *gin.Context) {
	var input SetTreasuryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := flipService.SetTreasury(c.Request.Context(), input.TreasuryUserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Treasury updated"})
}

// CreditUser godoc
// @Summary      Credit a user's ledger balance (admin only)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int         true "User ID"
// @Param        input body CreditInput true "Amount in milliunits"
// @Success      200 {object} map[string]string "{"message": "Balance credited"}"
// @Failure      404 {object} ErrorResponse "User not found"
// @Router       /admin/users/{id}/credit [post]
func CreditUser(c *gin.Context) {
	targetID, _ := strconv.Atoi(c.Param("id"))

	var input CreditInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := flipService.CreditUser(c.Request.Context(), uint(targetID), input.Amount); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Balance credited"})
}
