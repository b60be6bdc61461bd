package flip

import (
	"context"

	"github.com/CoinClashFun/flipoff-backend/internal/hub"
	"github.com/CoinClashFun/flipoff-backend/internal/models"

	"gorm.io/gorm"
)

// CreateParams are the caller-supplied parameters for a new lobby.
type CreateParams struct {
	TeamSize    int
	RoundsToWin int
	Team        models.Team
	BetAmount   int64
}

// CreateLobby opens a new lobby, stakes the creator's bet and records the
// creator as the first player of the chosen team.
func (s *Service) CreateLobby(ctx context.Context, userID uint, p CreateParams) (*models.Lobby, error) {
	if p.TeamSize < MinTeamSize || p.TeamSize > MaxTeamSize {
		return nil, ErrInvalidTeamSize
	}
	if p.RoundsToWin < MinRoundsToWin || p.RoundsToWin > MaxRoundsToWin {
		return nil, ErrInvalidRoundsToWin
	}
	if !p.Team.Valid() {
		return nil, ErrInvalidTeam
	}
	if p.BetAmount < s.params.MinBet {
		return nil, ErrBetTooSmall
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var lobby *models.Lobby
	var events []pendingEvent

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := debit(tx, userID, p.BetAmount); err != nil {
			return err
		}

		now := s.clock.Now()
		lobby = &models.Lobby{
			CreatorID:      userID,
			TeamSize:       p.TeamSize,
			RoundsToWin:    p.RoundsToWin,
			BetAmount:      p.BetAmount,
			State:          models.StateOpen,
			CurrentRound:   1,
			LastActivityAt: now,
		}
		if err := tx.Create(lobby).Error; err != nil {
			return err
		}

		player := models.Player{LobbyID: lobby.ID, UserID: userID, Team: p.Team}
		if err := tx.Create(&player).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"games_created": gorm.Expr("games_created + 1"),
			"volume_staked": gorm.Expr("volume_staked + ?", p.BetAmount),
		}
		if err := tx.Model(&models.ProtocolState{}).Where("id = 1").Updates(updates).Error; err != nil {
			return err
		}

		events = append(events, pendingEvent{lobby.ID, hub.Event{
			Type: hub.EventLobbyCreated,
			Payload: map[string]interface{}{
				"lobby_id":      lobby.ID,
				"creator_id":    userID,
				"team":          p.Team,
				"team_size":     p.TeamSize,
				"rounds_to_win": p.RoundsToWin,
				"bet_amount":    p.BetAmount,
			},
		}})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(events)
	return lobby, nil
}

// JoinLobby stakes the lobby's fixed bet and adds the caller to the chosen
// team. When both teams reach capacity the lobby transitions to full.
func (s *Service) JoinLobby(ctx context.Context, userID, lobbyID uint, team models.Team) (*models.Lobby, error) {
	if !team.Valid() {
		return nil, ErrInvalidTeam
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var lobby *models.Lobby
	var events []pendingEvent

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		lobby, err = lobbyByID(tx, lobbyID)
		if err != nil {
			return err
		}
		if lobby.State != models.StateOpen {
			return ErrLobbyNotOpen
		}

		var existing models.Player
		if err := tx.Where("lobby_id = ? AND user_id = ?", lobbyID, userID).First(&existing).Error; err == nil {
			return ErrAlreadyJoined
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		teamCount, err := countTeam(tx, lobbyID, team)
		if err != nil {
			return err
		}
		if teamCount >= int64(lobby.TeamSize) {
			return ErrTeamFull
		}

		if err := debit(tx, userID, lobby.BetAmount); err != nil {
			return err
		}

		player := models.Player{LobbyID: lobbyID, UserID: userID, Team: team}
		if err := tx.Create(&player).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.ProtocolState{}).Where("id = 1").
			Update("volume_staked", gorm.Expr("volume_staked + ?", lobby.BetAmount)).Error; err != nil {
			return err
		}

		heads, err := countTeam(tx, lobbyID, models.TeamHeads)
		if err != nil {
			return err
		}
		tails, err := countTeam(tx, lobbyID, models.TeamTails)
		if err != nil {
			return err
		}
		if heads == int64(lobby.TeamSize) && tails == int64(lobby.TeamSize) {
			lobby.State = models.StateFull
			if err := tx.Model(lobby).Update("state", models.StateFull).Error; err != nil {
				return err
			}
		}

		events = append(events, pendingEvent{lobbyID, hub.Event{
			Type: hub.EventPlayerJoined,
			Payload: map[string]interface{}{
				"lobby_id": lobbyID,
				"user_id":  userID,
				"team":     team,
				"state":    lobby.State,
			},
		}})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(events)
	return lobby, nil
}

// CancelLobby voids an open lobby. Only the creator may cancel, and only
// while nobody else has joined. The stake is recovered via WithdrawVoid.
func (s *Service) CancelLobby(ctx context.Context, userID, lobbyID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []pendingEvent

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lobby, err := lobbyByID(tx, lobbyID)
		if err != nil {
			return err
		}
		if lobby.CreatorID != userID {
			return ErrNotCreator
		}
		if lobby.State != models.StateOpen {
			return ErrLobbyNotOpen
		}

		var playerCount int64
		if err := tx.Model(&models.Player{}).Where("lobby_id = ?", lobbyID).Count(&playerCount).Error; err != nil {
			return err
		}
		if playerCount != 1 {
			return ErrLobbyNotEmpty
		}

		if err := tx.Model(lobby).Update("state", models.StateVoid).Error; err != nil {
			return err
		}

		events = append(events, pendingEvent{lobbyID, hub.Event{
			Type: hub.EventLobbyVoided,
			Payload: map[string]interface{}{
				"lobby_id": lobbyID,
				"reason":   "cancelled",
			},
		}})
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(events)
	return nil
}

// VoidLobby is the timeout safety path, callable by anyone. An open lobby
// becomes void once it has waited VoidAfter for players; an in-progress
// lobby becomes void once VoidAfter has passed with no round activity, so a
// lost oracle callback cannot strand the pot forever.
func (s *Service) VoidLobby(ctx context.Context, lobbyID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []pendingEvent

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lobby, err := lobbyByID(tx, lobbyID)
		if err != nil {
			return err
		}

		// LastActivityAt is the creation time while the lobby is open and
		// the last request or callback time once play has started.
		now := s.clock.Now()
		switch lobby.State {
		case models.StateOpen, models.StateInProgress:
			if now.Sub(lobby.LastActivityAt) < s.params.VoidAfter {
				return ErrVoidTooEarly
			}
		default:
			return ErrNotVoidable
		}

		if err := tx.Model(lobby).Update("state", models.StateVoid).Error; err != nil {
			return err
		}

		events = append(events, pendingEvent{lobbyID, hub.Event{
			Type: hub.EventLobbyVoided,
			Payload: map[string]interface{}{
				"lobby_id": lobbyID,
				"reason":   "timeout",
			},
		}})
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(events)
	return nil
}

func countTeam(tx *gorm.DB, lobbyID uint, team models.Team) (int64, error) {
	var count int64
	err := tx.Model(&models.Player{}).Where("lobby_id = ? AND team = ?", lobbyID, team).Count(&count).Error
	return count, err
}
