package flip

import (
	"context"
	"time"

	"github.com/CoinClashFun/flipoff-backend/internal/models"

	"gorm.io/gorm"
)

// Read-only queries. These take no lock: they see whatever state the last
// committed operation left behind.

// GetLobby returns a lobby with its players and round history.
func (s *Service) GetLobby(ctx context.Context, lobbyID uint) (*models.Lobby, error) {
	var lobby models.Lobby
	err := s.db.WithContext(ctx).
		Preload("Players.User").
		Preload("Rounds", func(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }).
		First(&lobby, lobbyID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrLobbyNotFound
		}
		return nil, err
	}
	return &lobby, nil
}

// GetPlayers returns the ordered player list of a lobby.
func (s *Service) GetPlayers(ctx context.Context, lobbyID uint) ([]models.Player, error) {
	if _, err := lobbyByID(s.db.WithContext(ctx), lobbyID); err != nil {
		return nil, err
	}
	var players []models.Player
	err := s.db.WithContext(ctx).Preload("User").
		Where("lobby_id = ?", lobbyID).Order("id ASC").Find(&players).Error
	return players, err
}

// GetRounds returns the round history of a lobby in round order.
func (s *Service) GetRounds(ctx context.Context, lobbyID uint) ([]models.Round, error) {
	if _, err := lobbyByID(s.db.WithContext(ctx), lobbyID); err != nil {
		return nil, err
	}
	var rounds []models.Round
	err := s.db.WithContext(ctx).
		Where("lobby_id = ?", lobbyID).Order("number ASC").Find(&rounds).Error
	return rounds, err
}

// GetPlayerInfo returns one user's membership record for a lobby.
func (s *Service) GetPlayerInfo(ctx context.Context, lobbyID, userID uint) (*models.Player, error) {
	if _, err := lobbyByID(s.db.WithContext(ctx), lobbyID); err != nil {
		return nil, err
	}
	return playerOf(s.db.WithContext(ctx), lobbyID, userID)
}

// EntropyFee returns the oracle's current quote for the fixed callback budget.
func (s *Service) EntropyFee(ctx context.Context) (int64, error) {
	return s.oracle.QuoteFee(ctx, s.params.CallbackGas)
}

// CanVoid reports whether VoidLobby would currently succeed for the lobby,
// and if not yet, how long remains until it would.
func (s *Service) CanVoid(ctx context.Context, lobbyID uint) (bool, time.Duration, error) {
	lobby, err := lobbyByID(s.db.WithContext(ctx), lobbyID)
	if err != nil {
		return false, 0, err
	}

	switch lobby.State {
	case models.StateOpen, models.StateInProgress:
	default:
		return false, 0, nil
	}

	remaining := s.params.VoidAfter - s.clock.Now().Sub(lobby.LastActivityAt)
	if remaining <= 0 {
		return true, 0, nil
	}
	return false, remaining, nil
}

// Stats returns the protocol-level aggregates.
func (s *Service) Stats(ctx context.Context) (*models.ProtocolState, error) {
	return protocolState(s.db.WithContext(ctx))
}
