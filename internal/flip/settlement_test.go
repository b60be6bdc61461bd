package flip

import (
	"context"
	"testing"
	"time"

	"github.com/CoinClashFun/flipoff-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimWinnings(t *testing.T) {
	svc, mock, _ := newTestService(t)
	ctx := context.Background()
	lobbyID, winner, loser := startedLobby(t, svc, 1, 1000)

	// Claiming before the game finishes fails.
	_, err := svc.ClaimWinnings(ctx, winner, lobbyID)
	assert.ErrorIs(t, err, ErrLobbyNotFinished)

	require.NoError(t, svc.HandleCallback(ctx, mock.lastToken, 2)) // heads wins

	// The losing side cannot claim.
	_, err = svc.ClaimWinnings(ctx, loser, lobbyID)
	assert.ErrorIs(t, err, ErrNotWinner)

	// A stranger cannot claim.
	stranger := createUser(t, svc, "stranger", 0)
	_, err = svc.ClaimWinnings(ctx, stranger, lobbyID)
	assert.ErrorIs(t, err, ErrNotPlayer)

	before := balanceOf(t, svc, winner)
	payout, err := svc.ClaimWinnings(ctx, winner, lobbyID)
	require.NoError(t, err)
	// Pot 2000 at 250 bps: fee 50, payout 1950.
	assert.Equal(t, int64(1950), payout)
	assert.Equal(t, before+1950, balanceOf(t, svc, winner))

	// Second claim always fails and moves nothing.
	_, err = svc.ClaimWinnings(ctx, winner, lobbyID)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, before+1950, balanceOf(t, svc, winner))
}

func TestPotConservationAtSettlement(t *testing.T) {
	svc, mock, _ := newTestService(t)
	ctx := context.Background()
	lobbyID, winner, _ := startedLobby(t, svc, 1, 1000)
	require.NoError(t, svc.HandleCallback(ctx, mock.lastToken, 2))

	lobby := getLobby(t, svc, lobbyID)
	payout, err := svc.ClaimWinnings(ctx, winner, lobbyID)
	require.NoError(t, err)

	assert.Equal(t, lobby.BetAmount*int64(lobby.TeamSize)*2, lobby.Pot())
	assert.LessOrEqual(t, payout*int64(lobby.TeamSize)+lobby.FeeCharged, lobby.Pot())
}

// Scenario C: abandoned lobby is voided after the timeout and the creator
// recovers exactly the original bet, once.
func TestVoidThenWithdraw(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	creator := createUser(t, svc, "c", 100000)

	lobby, err := svc.CreateLobby(ctx, creator, CreateParams{
		TeamSize: 1, RoundsToWin: 1, Team: models.TeamHeads, BetAmount: 1000,
	})
	require.NoError(t, err)

	// Withdrawing before the void fails.
	_, err = svc.WithdrawVoid(ctx, creator, lobby.ID)
	assert.ErrorIs(t, err, ErrLobbyNotVoid)

	clock.advance(testVoidAfter + time.Minute)
	require.NoError(t, svc.VoidLobby(ctx, lobby.ID))

	refund, err := svc.WithdrawVoid(ctx, creator, lobby.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), refund)
	assert.Equal(t, int64(100000), balanceOf(t, svc, creator), "refund restores the original balance")

	_, err = svc.WithdrawVoid(ctx, creator, lobby.ID)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, int64(100000), balanceOf(t, svc, creator))
}

func TestVoidInProgressRefundsEveryStake(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	lobbyID, creator, joiner := startedLobby(t, svc, 1, 1000)

	clock.advance(testVoidAfter + time.Minute)
	require.NoError(t, svc.VoidLobby(ctx, lobbyID))

	r1, err := svc.WithdrawVoid(ctx, creator, lobbyID)
	require.NoError(t, err)
	r2, err := svc.WithdrawVoid(ctx, joiner, lobbyID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), r1)
	assert.Equal(t, int64(1000), r2)
}

// Scenario D: fee 500 bps on a 200-unit pot: 10 fee, 190 split among winners.
func TestMaxFeeScenario(t *testing.T) {
	svc, mock, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetFeeBps(ctx, 500))

	creator := createUser(t, svc, "c", 100000)
	joiner := createUser(t, svc, "j", 100000)
	lobby, err := svc.CreateLobby(ctx, creator, CreateParams{
		TeamSize: 1, RoundsToWin: 1, Team: models.TeamHeads, BetAmount: 1000,
	})
	require.NoError(t, err)
	_, err = svc.JoinLobby(ctx, joiner, lobby.ID, models.TeamTails)
	require.NoError(t, err)
	_, err = svc.StartGame(ctx, creator, lobby.ID, testFee)
	require.NoError(t, err)
	require.NoError(t, svc.HandleCallback(ctx, mock.lastToken, 2))

	finished := getLobby(t, svc, lobby.ID)
	// Pot 2000 at 500 bps: fee 100, payout 1900.
	assert.Equal(t, int64(100), finished.FeeCharged)

	payout, err := svc.ClaimWinnings(ctx, creator, lobby.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1900), payout)
}

func TestSweepFees(t *testing.T) {
	svc, mock, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SweepFees(ctx)
	assert.ErrorIs(t, err, ErrNothingToSweep)

	startedLobby(t, svc, 1, 1000)
	require.NoError(t, svc.HandleCallback(ctx, mock.lastToken, 2))

	// Fees accrued but no treasury configured yet.
	_, err = svc.SweepFees(ctx)
	assert.ErrorIs(t, err, ErrNoTreasury)

	treasury := createUser(t, svc, "treasury", 0)
	require.NoError(t, svc.SetTreasury(ctx, treasury))

	swept, err := svc.SweepFees(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), swept)
	assert.Equal(t, int64(50), balanceOf(t, svc, treasury))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.AccruedFees)

	_, err = svc.SweepFees(ctx)
	assert.ErrorIs(t, err, ErrNothingToSweep)
}

func TestAdminParameterGuards(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.SetFeeBps(ctx, MaxFeeBps+1), ErrFeeTooHigh)
	assert.ErrorIs(t, svc.SetFeeBps(ctx, -1), ErrFeeTooHigh)
	assert.ErrorIs(t, svc.SetTreasury(ctx, 0), ErrInvalidTreasury)
	assert.ErrorIs(t, svc.SetTreasury(ctx, 99999), ErrInvalidTreasury)
}

func TestFeeSnapshotSurvivesFeeChange(t *testing.T) {
	svc, mock, _ := newTestService(t)
	ctx := context.Background()
	lobbyID, winner, _ := startedLobby(t, svc, 1, 1000)
	require.NoError(t, svc.HandleCallback(ctx, mock.lastToken, 2))

	// changing the fee after finalization must not change the payout
	require.NoError(t, svc.SetFeeBps(ctx, 500))

	payout, err := svc.ClaimWinnings(ctx, winner, lobbyID)
	require.NoError(t, err)
	assert.Equal(t, int64(1950), payout, "payout uses the fee snapshotted at finalization")
}

func TestCreditUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := createUser(t, svc, "u", 0)

	assert.ErrorIs(t, svc.CreditUser(ctx, user, 0), ErrInvalidAmount)
	assert.ErrorIs(t, svc.CreditUser(ctx, 99999, 100), ErrUserNotFound)

	require.NoError(t, svc.CreditUser(ctx, user, 5000))
	assert.Equal(t, int64(5000), balanceOf(t, svc, user))
}
