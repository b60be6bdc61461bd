package flip

import (
	"context"

	"github.com/CoinClashFun/flipoff-backend/internal/hub"
	"github.com/CoinClashFun/flipoff-backend/internal/models"

	"gorm.io/gorm"
)

// HandleCallback consumes an oracle randomness delivery. The token is
// resolved to its lobby through the round history; an unrecognized token is
// an error, but a callback arriving after the lobby left in_progress (a
// timeout void or an already-finished game) is deliberately a silent no-op.
//
// An even random value means heads wins the round, odd means tails — an
// unbiased 50/50 split over a uniformly random input.
func (s *Service) HandleCallback(ctx context.Context, token string, randomValue uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []pendingEvent

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var round models.Round
		if err := tx.Where("token = ?", token).First(&round).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrUnknownToken
			}
			return err
		}

		lobby, err := lobbyByID(tx, round.LobbyID)
		if err != nil {
			return err
		}
		if lobby.State != models.StateInProgress {
			return nil // stale delivery, state has moved on
		}
		if !lobby.RequestInFlight || lobby.PendingToken != token {
			return nil // request already resolved
		}

		lobby.RequestInFlight = false
		lobby.PendingToken = ""

		roundWinner := models.TeamTails
		if randomValue%2 == 0 {
			roundWinner = models.TeamHeads
		}
		if roundWinner == models.TeamHeads {
			lobby.HeadsScore++
		} else {
			lobby.TailsScore++
		}

		// The last history entry is normally the pending one; the token
		// comparison keeps a mismatched entry from being marked resolved.
		var last models.Round
		if err := tx.Where("lobby_id = ?", lobby.ID).Order("number DESC").First(&last).Error; err != nil {
			return err
		}
		if last.Token == token {
			if err := tx.Model(&last).Updates(map[string]interface{}{
				"resolved": true,
				"winner":   roundWinner,
			}).Error; err != nil {
				return err
			}
		}

		lobby.LastActivityAt = s.clock.Now()

		events = append(events, pendingEvent{lobby.ID, hub.Event{
			Type: hub.EventRoundResolved,
			Payload: map[string]interface{}{
				"lobby_id":    lobby.ID,
				"round":       round.Number,
				"winner":      roundWinner,
				"heads_score": lobby.HeadsScore,
				"tails_score": lobby.TailsScore,
			},
		}})

		if lobby.Score(roundWinner) >= lobby.RoundsToWin {
			if err := s.finalize(tx, lobby, roundWinner, &events); err != nil {
				return err
			}
		} else {
			lobby.CurrentRound++
		}

		return tx.Save(lobby).Error
	})
	if err != nil {
		return err
	}

	s.publish(events)
	return nil
}

// finalize declares the overall winner, snapshots the protocol fee on the
// lobby and accrues it to the protocol balance. The remaining pot stays in
// escrow; payout is pull-based via ClaimWinnings.
func (s *Service) finalize(tx *gorm.DB, lobby *models.Lobby, winner models.Team, events *[]pendingEvent) error {
	state, err := protocolState(tx)
	if err != nil {
		return err
	}

	lobby.State = models.StateFinished
	lobby.Winner = winner
	lobby.FeeCharged = ProtocolFee(lobby.Pot(), state.FeeBps)

	if err := tx.Model(state).
		Update("accrued_fees", gorm.Expr("accrued_fees + ?", lobby.FeeCharged)).Error; err != nil {
		return err
	}

	*events = append(*events, pendingEvent{lobby.ID, hub.Event{
		Type: hub.EventGameFinished,
		Payload: map[string]interface{}{
			"lobby_id":    lobby.ID,
			"winner":      winner,
			"heads_score": lobby.HeadsScore,
			"tails_score": lobby.TailsScore,
		},
	}})
	return nil
}
