package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/CoinClashFun/flipoff-backend/internal/database"
	"github.com/CoinClashFun/flipoff-backend/internal/flip"
	"github.com/CoinClashFun/flipoff-backend/internal/hub"
	"github.com/CoinClashFun/flipoff-backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type CreateLobbyInput struct {
	TeamSize    int         `json:"team_size" binding:"required,min=1,max=5"`
	RoundsToWin int         `json:"rounds_to_win" binding:"required,min=1,max=5"`
	Team        models.Team `json:"team" binding:"required"`
	BetAmount   int64       `json:"bet_amount" binding:"required,min=1"`
}

type JoinLobbyInput struct {
	Team models.Team `json:"team" binding:"required"`
}

type PlayerResponse struct {
	UserID   uint        `json:"user_id"`
	Nickname string      `json:"nickname"`
	Team     models.Team `json:"team"`
	Claimed  bool        `json:"claimed"`
}

type RoundResponse struct {
	Number   int         `json:"number"`
	Token    string      `json:"token"`
	Winner   models.Team `json:"winner"`
	Resolved bool        `json:"resolved"`
}

type LobbyResponse struct {
	ID              uint              `json:"id"`
	CreatorID       uint              `json:"creator_id"`
	TeamSize        int               `json:"team_size"`
	RoundsToWin     int               `json:"rounds_to_win"`
	BetAmount       int64             `json:"bet_amount"`
	Pot             int64             `json:"pot"`
	State           models.LobbyState `json:"state"`
	HeadsScore      int               `json:"heads_score"`
	TailsScore      int               `json:"tails_score"`
	Winner          models.Team       `json:"winner"`
	CurrentRound    int               `json:"current_round"`
	RequestInFlight bool              `json:"request_in_flight"`
	CreatedAt       time.Time         `json:"created_at"`
	Players         []PlayerResponse  `json:"players,omitempty"`
	Rounds          []RoundResponse   `json:"rounds,omitempty"`
}

func newLobbyResponse(lobby *models.Lobby) LobbyResponse {
	resp := LobbyResponse{
		ID:              lobby.ID,
		CreatorID:       lobby.CreatorID,
		TeamSize:        lobby.TeamSize,
		RoundsToWin:     lobby.RoundsToWin,
		BetAmount:       lobby.BetAmount,
		Pot:             lobby.Pot(),
		State:           lobby.State,
		HeadsScore:      lobby.HeadsScore,
		TailsScore:      lobby.TailsScore,
		Winner:          lobby.Winner,
		CurrentRound:    lobby.CurrentRound,
		RequestInFlight: lobby.RequestInFlight,
		CreatedAt:       lobby.CreatedAt,
	}
	for _, p := range lobby.Players {
		resp.Players = append(resp.Players, newPlayerResponse(p))
	}
	for _, r := range lobby.Rounds {
		resp.Rounds = append(resp.Rounds, RoundResponse{
			Number:   r.Number,
			Token:    r.Token,
			Winner:   r.Winner,
			Resolved: r.Resolved,
		})
	}
	return resp
}

func newPlayerResponse(p models.Player) PlayerResponse {
	return PlayerResponse{
		UserID:   p.UserID,
		Nickname: p.User.Nickname,
		Team:     p.Team,
		Claimed:  p.Claimed,
	}
}

// endregion

// CreateLobby godoc
// @Summary      Create a new lobby
// @Description  Opens a lobby and stakes the creator's bet on the chosen team.
// @Tags         lobbies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreateLobbyInput true "Lobby Info"
// @Success      201  {object}  LobbyResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      402  {object}  ErrorResponse "Bet below minimum or insufficient balance"
// @Router       /lobbies [post]
func CreateLobby(c *gin.Context) {
	userID, _ := c.Get("userID")

	var input CreateLobbyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lobby, err := flipService.CreateLobby(c.Request.Context(), userID.(uint), flip.CreateParams{
		TeamSize:    input.TeamSize,
		RoundsToWin: input.RoundsToWin,
		Team:        input.Team,
		BetAmount:   input.BetAmount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newLobbyResponse(lobby))
}

// SearchLobbies godoc
// @Summary      Search for lobbies
// @Description  Gets a paginated list of lobbies, optionally filtered by state.
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        state query string false "Filter by lifecycle state"
// @Param        page  query int    false "Page number" default(1)
// @Param        limit query int    false "Items per page" default(10)
// @Success      200 {object} PaginatedResponse[LobbyResponse]
// @Router       /lobbies [get]
func SearchLobbies(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	query := database.DB.Model(&models.Lobby{}).Order("id DESC")
	if state := c.Query("state"); state != "" {
		query = query.Where("state = ?", state)
	}

	paged, err := Paginate[models.Lobby](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lobbies"})
		return
	}

	responses := make([]LobbyResponse, 0, len(paged.Data))
	for i := range paged.Data {
		responses = append(responses, newLobbyResponse(&paged.Data[i]))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(responses, paged.Meta.TotalItems, page, limit))
}

// GetLobbyByID godoc
// @Summary      Get a lobby by ID
// @Description  Gets full details for a single lobby, including players and round history.
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {object} LobbyResponse
// @Failure      404 {object} ErrorResponse "Lobby not found"
// @Router       /lobbies/{id} [get]
func GetLobbyByID(c *gin.Context) {
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	lobby, err := flipService.GetLobby(c.Request.Context(), uint(lobbyID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newLobbyResponse(lobby))
}

// JoinLobby godoc
// @Summary      Join a lobby
// @Description  Stakes the lobby's fixed bet and joins the chosen team.
// @Tags         lobbies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int            true "Lobby ID"
// @Param        input body JoinLobbyInput true "Team choice"
// @Success      200 {object} LobbyResponse
// @Failure      402 {object} ErrorResponse "Insufficient balance"
// @Failure      404 {object} ErrorResponse "Lobby not found"
// @Failure      409 {object} ErrorResponse "Lobby not open, team full or already joined"
// @Router       /lobbies/{id}/join [post]
func JoinLobby(c *gin.Context) {
	userID, _ := c.Get("userID")
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	var input JoinLobbyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lobby, err := flipService.JoinLobby(c.Request.Context(), userID.(uint), uint(lobbyID), input.Team)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newLobbyResponse(lobby))
}

// CancelLobby godoc
// @Summary      Cancel a lobby (creator only)
// @Description  Voids an open lobby nobody else has joined. The stake is recovered via withdraw.
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {object} map[string]string "{"message": "Lobby cancelled"}"
// @Failure      403 {object} ErrorResponse "Only the creator can cancel"
// @Failure      409 {object} ErrorResponse "Lobby not open or other players joined"
// @Router       /lobbies/{id}/cancel [post]
func CancelLobby(c *gin.Context) {
	userID, _ := c.Get("userID")
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	if err := flipService.CancelLobby(c.Request.Context(), userID.(uint), uint(lobbyID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lobby cancelled"})
}

// VoidLobby godoc
// @Summary      Void a timed-out lobby
// @Description  Voids a lobby stuck open or in progress past the timeout. Callable by anyone.
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {object} map[string]string "{"message": "Lobby voided"}"
// @Failure      409 {object} ErrorResponse "Not voidable or timeout not reached"
// @Router       /lobbies/{id}/void [post]
func VoidLobby(c *gin.Context) {
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	if err := flipService.VoidLobby(c.Request.Context(), uint(lobbyID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lobby voided"})
}

// CanVoid godoc
// @Summary      Check whether a lobby can be voided
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {object} map[string]interface{} "{"can_void": bool, "remaining_seconds": int}"
// @Failure      404 {object} ErrorResponse "Lobby not found"
// @Router       /lobbies/{id}/can-void [get]
func CanVoid(c *gin.Context) {
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	canVoid, remaining, err := flipService.CanVoid(c.Request.Context(), uint(lobbyID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"can_void":          canVoid,
		"remaining_seconds": int64(remaining.Seconds()),
	})
}

// GetLobbyPlayers godoc
// @Summary      List the players of a lobby
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {array} PlayerResponse
// @Failure      404 {object} ErrorResponse "Lobby not found"
// @Router       /lobbies/{id}/players [get]
func GetLobbyPlayers(c *gin.Context) {
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	players, err := flipService.GetPlayers(c.Request.Context(), uint(lobbyID))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]PlayerResponse, 0, len(players))
	for _, p := range players {
		responses = append(responses, newPlayerResponse(p))
	}
	c.JSON(http.StatusOK, responses)
}

// GetLobbyRounds godoc
// @Summary      List the round history of a lobby
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Success      200 {array} RoundResponse
// @Failure      404 {object} ErrorResponse "Lobby not found"
// @Router       /lobbies/{id}/rounds [get]
func GetLobbyRounds(c *gin.Context) {
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	rounds, err := flipService.GetRounds(c.Request.Context(), uint(lobbyID))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]RoundResponse, 0, len(rounds))
	for _, r := range rounds {
		responses = append(responses, RoundResponse{
			Number:   r.Number,
			Token:    r.Token,
			Winner:   r.Winner,
			Resolved: r.Resolved,
		})
	}
	c.JSON(http.StatusOK, responses)
}

// GetPlayerInfo godoc
// @Summary      Get one player's membership record in a lobby
// @Tags         lobbies
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int true "Lobby ID"
// @Param        userID path int true "User ID"
// @Success      200 {object} PlayerResponse
// @Failure      404 {object} ErrorResponse "Lobby or player not found"
// @Router       /lobbies/{id}/players/{userID} [get]
func GetPlayerInfo(c *gin.Context) {
	lobbyID, _ := strconv.Atoi(c.Param("id"))
	targetID, _ := strconv.Atoi(c.Param("userID"))

	player, err := flipService.GetPlayerInfo(c.Request.Context(), uint(lobbyID), uint(targetID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPlayerResponse(*player))
}

// StreamLobbyEvents godoc
// @Summary      Stream lobby events over SSE
// @Description  Subscribes to the lobby's event feed. Lobby 0 is the global protocol feed.
// @Tags         lobbies
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        id path int true "Lobby ID"
// @Router       /lobbies/{id}/events [get]
func StreamLobbyEvents(c *gin.Context) {
	lobbyID, _ := strconv.Atoi(c.Param("id"))

	client := make(hub.Client, 16)
	eventHub.Subscribe(uint(lobbyID), client)
	defer eventHub.Unsubscribe(uint(lobbyID), client)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(msg))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
