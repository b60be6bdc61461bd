package flip

import (
	"context"

	"github.com/CoinClashFun/flipoff-backend/internal/hub"
	"github.com/CoinClashFun/flipoff-backend/internal/models"

	"gorm.io/gorm"
)

// StartGame moves a full lobby into play and issues the randomness request
// for round one. Anyone may trigger it; the caller pays the oracle fee.
// maxFee bounds what the caller is willing to pay — only the quoted fee is
// ever debited, so any excess simply stays on the caller's balance.
func (s *Service) StartGame(ctx context.Context, callerID, lobbyID uint, maxFee int64) (*models.Lobby, error) {
	fee, err := s.oracle.QuoteFee(ctx, s.params.CallbackGas)
	if err != nil {
		return nil, err
	}
	if maxFee < fee {
		return nil, ErrFeeTooLow
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var lobby *models.Lobby
	var events []pendingEvent

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		lobby, err = lobbyByID(tx, lobbyID)
		if err != nil {
			return err
		}
		if lobby.State != models.StateFull {
			return ErrLobbyNotFull
		}

		if err := debit(tx, callerID, fee); err != nil {
			return err
		}

		lobby.State = models.StateInProgress
		events = append(events, pendingEvent{lobbyID, hub.Event{
			Type: hub.EventGameStarted,
			Payload: map[string]interface{}{
				"lobby_id":  lobbyID,
				"caller_id": callerID,
			},
		}})

		return s.issueRoundRequest(ctx, tx, lobby, fee, &events)
	})
	if err != nil {
		return nil, err
	}

	s.publish(events)
	return lobby, nil
}

// RequestNextRound issues the randomness request for the next round of an
// in-progress lobby. Anyone may trigger it, paying the oracle fee; it fails
// while a previous request is still awaiting its callback.
func (s *Service) RequestNextRound(ctx context.Context, callerID, lobbyID uint, maxFee int64) (*models.Lobby, error) {
	fee, err := s.oracle.QuoteFee(ctx, s.params.CallbackGas)
	if err != nil {
		return nil, err
	}
	if maxFee < fee {
		return nil, ErrFeeTooLow
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var lobby *models.Lobby
	var events []pendingEvent

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		lobby, err = lobbyByID(tx, lobbyID)
		if err != nil {
			return err
		}
		if lobby.State != models.StateInProgress {
			return ErrLobbyNotInProgress
		}
		if lobby.RequestInFlight {
			return ErrRequestInFlight
		}

		if err := debit(tx, callerID, fee); err != nil {
			return err
		}

		return s.issueRoundRequest(ctx, tx, lobby, fee, &events)
	})
	if err != nil {
		return nil, err
	}

	s.publish(events)
	return lobby, nil
}

// issueRoundRequest performs the outbound oracle call, records the returned
// correlation token as the lobby's pending request and appends the round
// history entry. An oracle failure aborts the surrounding transaction.
func (s *Service) issueRoundRequest(ctx context.Context, tx *gorm.DB, lobby *models.Lobby, fee int64, events *[]pendingEvent) error {
	token, err := s.oracle.RequestRandomness(ctx, s.params.CallbackGas, fee)
	if err != nil {
		return err
	}

	lobby.RequestInFlight = true
	lobby.PendingToken = token
	lobby.LastActivityAt = s.clock.Now()
	if err := tx.Model(lobby).Updates(map[string]interface{}{
		"state":             lobby.State,
		"request_in_flight": true,
		"pending_token":     token,
		"last_activity_at":  lobby.LastActivityAt,
	}).Error; err != nil {
		return err
	}

	round := models.Round{
		LobbyID: lobby.ID,
		Number:  lobby.CurrentRound,
		Token:   token,
	}
	if err := tx.Create(&round).Error; err != nil {
		return err
	}

	*events = append(*events, pendingEvent{lobby.ID, hub.Event{
		Type: hub.EventRandomnessRequested,
		Payload: map[string]interface{}{
			"lobby_id": lobby.ID,
			"token":    token,
			"round":    lobby.CurrentRound,
		},
	}})
	return nil
}
