package flip

import (
	"context"

	"github.com/CoinClashFun/flipoff-backend/internal/hub"
	"github.com/CoinClashFun/flipoff-backend/internal/models"

	"gorm.io/gorm"
)

// ClaimWinnings pays out one winning-side player of a finished lobby. The
// claimed flag is committed in the same transaction as the credit, so a
// claim can neither be repeated nor half-applied.
func (s *Service) ClaimWinnings(ctx context.Context, userID, lobbyID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payout int64
	var events []pendingEvent

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lobby, err := lobbyByID(tx, lobbyID)
		if err != nil {
			return err
		}
		if lobby.State != models.StateFinished {
			return ErrLobbyNotFinished
		}

		player, err := playerOf(tx, lobbyID, userID)
		if err != nil {
			return err
		}
		if player.Team != lobby.Winner {
			return ErrNotWinner
		}
		if player.Claimed {
			return ErrAlreadyClaimed
		}

		if err := tx.Model(player).Update("claimed", true).Error; err != nil {
			return err
		}

		payout = WinnerPayout(lobby.Pot(), lobby.FeeCharged, lobby.TeamSize)
		if err := credit(tx, userID, payout); err != nil {
			return err
		}

		events = append(events, pendingEvent{lobbyID, hub.Event{
			Type: hub.EventWinningsClaimed,
			Payload: map[string]interface{}{
				"lobby_id": lobbyID,
				"user_id":  userID,
				"amount":   payout,
			},
		}})
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.publish(events)
	return payout, nil
}

// WithdrawVoid refunds exactly the original bet to one player of a void lobby.
func (s *Service) WithdrawVoid(ctx context.Context, userID, lobbyID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var refund int64
	var events []pendingEvent

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lobby, err := lobbyByID(tx, lobbyID)
		if err != nil {
			return err
		}
		if lobby.State != models.StateVoid {
			return ErrLobbyNotVoid
		}

		player, err := playerOf(tx, lobbyID, userID)
		if err != nil {
			return err
		}
		if player.Claimed {
			return ErrAlreadyClaimed
		}

		if err := tx.Model(player).Update("claimed", true).Error; err != nil {
			return err
		}

		refund = lobby.BetAmount
		if err := credit(tx, userID, refund); err != nil {
			return err
		}

		events = append(events, pendingEvent{lobbyID, hub.Event{
			Type: hub.EventRefundClaimed,
			Payload: map[string]interface{}{
				"lobby_id": lobbyID,
				"user_id":  userID,
				"amount":   refund,
			},
		}})
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.publish(events)
	return refund, nil
}

// SweepFees moves the full accrued protocol fee balance to the treasury
// account. Anyone may trigger it.
func (s *Service) SweepFees(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var swept int64
	var events []pendingEvent

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := protocolState(tx)
		if err != nil {
			return err
		}
		if state.AccruedFees == 0 {
			return ErrNothingToSweep
		}
		if state.TreasuryUserID == 0 {
			return ErrNoTreasury
		}

		swept = state.AccruedFees
		if err := credit(tx, state.TreasuryUserID, swept); err != nil {
			return err
		}
		if err := tx.Model(state).Update("accrued_fees", 0).Error; err != nil {
			return err
		}

		events = append(events, pendingEvent{hub.GlobalFeed, hub.Event{
			Type: hub.EventFeesWithdrawn,
			Payload: map[string]interface{}{
				"treasury_user_id": state.TreasuryUserID,
				"amount":           swept,
			},
		}})
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.publish(events)
	return swept, nil
}

// SetTreasury changes the account swept fees are paid to. Admin-gated at
// the HTTP surface.
func (s *Service) SetTreasury(ctx context.Context, treasuryUserID uint) error {
	if treasuryUserID == 0 {
		return ErrInvalidTreasury
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var events []pendingEvent

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := userByID(tx, treasuryUserID); err != nil {
			return ErrInvalidTreasury
		}
		if err := tx.Model(&models.ProtocolState{}).Where("id = 1").
			Update("treasury_user_id", treasuryUserID).Error; err != nil {
			return err
		}
		events = append(events, pendingEvent{hub.GlobalFeed, hub.Event{
			Type:    hub.EventTreasuryUpdated,
			Payload: map[string]interface{}{"treasury_user_id": treasuryUserID},
		}})
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(events)
	return nil
}

// SetFeeBps changes the protocol fee, capped at MaxFeeBps. Already-finished
// games are unaffected because their fee was snapshotted at finalization.
func (s *Service) SetFeeBps(ctx context.Context, bps int64) error {
	if bps < 0 || bps > MaxFeeBps {
		return ErrFeeTooHigh
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var events []pendingEvent

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ProtocolState{}).Where("id = 1").
			Update("fee_bps", bps).Error; err != nil {
			return err
		}
		events = append(events, pendingEvent{hub.GlobalFeed, hub.Event{
			Type:    hub.EventFeeUpdated,
			Payload: map[string]interface{}{"fee_bps": bps},
		}})
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(events)
	return nil
}

// CreditUser adds funds to a user's ledger balance. Admin-gated faucet used
// to fund accounts.
func (s *Service) CreditUser(ctx context.Context, userID uint, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := userByID(tx, userID); err != nil {
			return err
		}
		return credit(tx, userID, amount)
	})
}

func playerOf(tx *gorm.DB, lobbyID, userID uint) (*models.Player, error) {
	var player models.Player
	if err := tx.Where("lobby_id = ? AND user_id = ?", lobbyID, userID).First(&player).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotPlayer
		}
		return nil, err
	}
	return &player, nil
}
