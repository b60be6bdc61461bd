package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CallbackInput is the randomness delivery posted by the oracle.
type CallbackInput struct {
	Token       string `json:"token" binding:"required"`
	Provider    string `json:"provider"`
	RandomValue uint64 `json:"random_value"`
}

// OracleCallback godoc
// @Summary      Randomness delivery callback
// @Description  Consumes an oracle callback and resolves the pending round. Oracle-authenticated; a delivery for a lobby whose state has moved on is acknowledged as a no-op.
// @Tags         oracle
// @Accept       json
// @Produce      json
// @Param        input body CallbackInput true "Randomness delivery"
// @Success      200 {object} map[string]string "{"message": "ok"}"
// @Failure      403 {object} ErrorResponse "Oracle verification failed"
// @Failure      404 {object} ErrorResponse "Unrecognized correlation token"
// @Router       /oracle/callback [post]
func OracleCallback(c *gin.Context) {
	var input CallbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := flipService.HandleCallback(c.Request.Context(), input.Token, input.RandomValue); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
