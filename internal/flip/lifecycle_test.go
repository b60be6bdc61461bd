package flip

import (
	"context"
	"testing"
	"time"

	"github.com/CoinClashFun/flipoff-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLobbyValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	user := createUser(t, svc, "alice", 100000)

	valid := CreateParams{TeamSize: 2, RoundsToWin: 2, Team: models.TeamHeads, BetAmount: 5000}

	tests := []struct {
		name   string
		mutate func(*CreateParams)
		want   error
	}{
		{"team size too small", func(p *CreateParams) { p.TeamSize = 0 }, ErrInvalidTeamSize},
		{"team size too large", func(p *CreateParams) { p.TeamSize = 6 }, ErrInvalidTeamSize},
		{"rounds too small", func(p *CreateParams) { p.RoundsToWin = 0 }, ErrInvalidRoundsToWin},
		{"rounds too large", func(p *CreateParams) { p.RoundsToWin = 6 }, ErrInvalidRoundsToWin},
		{"bad team", func(p *CreateParams) { p.Team = "edge" }, ErrInvalidTeam},
		{"bet below minimum", func(p *CreateParams) { p.BetAmount = testMinBet - 1 }, ErrBetTooSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			_, err := svc.CreateLobby(ctx, user, p)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	lobby, err := svc.CreateLobby(ctx, user, valid)
	require.NoError(t, err)
	assert.Equal(t, models.StateOpen, lobby.State)
	assert.Equal(t, 1, lobby.CurrentRound)
	assert.Equal(t, int64(20000), lobby.Pot())
	assert.Equal(t, int64(95000), balanceOf(t, svc, user), "stake escrowed on create")
}

func TestCreateLobbyInsufficientBalance(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := createUser(t, svc, "broke", 500)

	_, err := svc.CreateLobby(context.Background(), user, CreateParams{
		TeamSize: 1, RoundsToWin: 1, Team: models.TeamHeads, BetAmount: 1000,
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(500), balanceOf(t, svc, user), "failed create must not move funds")
}

func TestJoinLobby(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	creator := createUser(t, svc, "creator", 100000)
	joiner := createUser(t, svc, "joiner", 100000)

	lobby, err := svc.CreateLobby(ctx, creator, CreateParams{
		TeamSize: 1, RoundsToWin: 1, Team: models.TeamHeads, BetAmount: 2000,
	})
	require.NoError(t, err)

	_, err = svc.JoinLobby(ctx, joiner, lobby.ID+100, models.TeamTails)
	assert.ErrorIs(t, err, ErrLobbyNotFound)

	_, err = svc.JoinLobby(ctx, joiner, lobby.ID, "edge")
	assert.ErrorIs(t, err, ErrInvalidTeam)

	_, err = svc.JoinLobby(ctx, creator, lobby.ID, models.TeamTails)
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	_, err = svc.JoinLobby(ctx, joiner, lobby.ID, models.TeamHeads)
	assert.ErrorIs(t, err, ErrTeamFull)

	joined, err := svc.JoinLobby(ctx, joiner, lobby.ID, models.TeamTails)
	require.NoError(t, err)
	assert.Equal(t, models.StateFull, joined.State, "both teams at capacity transitions to full")
	assert.Equal(t, int64(98000), balanceOf(t, svc, joiner))

	// No joining once full, and no second transition.
	third := createUser(t, svc, "third", 100000)
	_, err = svc.JoinLobby(ctx, third, lobby.ID, models.TeamTails)
	assert.ErrorIs(t, err, ErrLobbyNotOpen)
}

func TestJoinSameUserTwiceAlwaysFails(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	creator := createUser(t, svc, "c", 100000)
	joiner := createUser(t, svc, "j", 100000)

	lobby, err := svc.CreateLobby(ctx, creator, CreateParams{
		TeamSize: 2, RoundsToWin: 1, Team: models.TeamHeads, BetAmount: 1000,
	})
	require.NoError(t, err)

	_, err = svc.JoinLobby(ctx, joiner, lobby.ID, models.TeamTails)
	require.NoError(t, err)

	// Same identity, either team: always rejected.
	_, err = svc.JoinLobby(ctx, joiner, lobby.ID, models.TeamTails)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	_, err = svc.JoinLobby(ctx, joiner, lobby.ID, models.TeamHeads)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
}

func TestCancelLobby(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	creator := createUser(t, svc, "c", 100000)
	stranger := createUser(t, svc, "s", 100000)

	lobby, err := svc.CreateLobby(ctx, creator, CreateParams{
		TeamSize: 1, RoundsToWin: 1, Team: models.TeamHeads, BetAmount: 1000,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.CancelLobby(ctx, stranger, lobby.ID), ErrNotCreator)

	require.NoError(t, svc.CancelLobby(ctx, creator, lobby.ID))
	assert.Equal(t, models.StateVoid, getLobby(t, svc, lobby.ID).State)

	// Terminal: no second cancel.
	assert.ErrorIs(t, svc.CancelLobby(ctx, creator, lobby.ID), ErrLobbyNotOpen)
}

func TestCancelFailsOnceJoined(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	creator := createUser(t, svc, "c", 100000)
	joiner := createUser(t, svc, "j", 100000)

	lobby, err := svc.CreateLobby(ctx, creator, CreateParams{
		TeamSize: 2, RoundsToWin: 1, Team: models.TeamHeads, BetAmount: 1000,
	})
	require.NoError(t, err)

	_, err = svc.JoinLobby(ctx, joiner, lobby.ID, models.TeamTails)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.CancelLobby(ctx, creator, lobby.ID), ErrLobbyNotEmpty)
}

func TestVoidLobbyTimeout(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	creator := createUser(t, svc, "c", 100000)

	lobby, err := svc.CreateLobby(ctx, creator, CreateParams{
		TeamSize: 1, RoundsToWin: 1, Team: models.TeamHeads, BetAmount: 1000,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.VoidLobby(ctx, lobby.ID), ErrVoidTooEarly)

	canVoid, remaining, err := svc.CanVoid(ctx, lobby.ID)
	require.NoError(t, err)
	assert.False(t, canVoid)
	assert.Greater(t, remaining, time.Duration(0))

	clock.advance(testVoidAfter + time.Minute)

	canVoid, _, err = svc.CanVoid(ctx, lobby.ID)
	require.NoError(t, err)
	assert.True(t, canVoid)

	require.NoError(t, svc.VoidLobby(ctx, lobby.ID))
	assert.Equal(t, models.StateVoid, getLobby(t, svc, lobby.ID).State)
}

func TestVoidStuckInProgressLobby(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	lobbyID, _, _ := startedLobby(t, svc, 1, 1000)

	// Request is in flight but the callback never arrives.
	assert.ErrorIs(t, svc.VoidLobby(ctx, lobbyID), ErrVoidTooEarly)

	clock.advance(testVoidAfter + time.Minute)
	require.NoError(t, svc.VoidLobby(ctx, lobbyID))
	assert.Equal(t, models.StateVoid, getLobby(t, svc, lobbyID).State)
}

func TestVoidFailsInTerminalStates(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	creator := createUser(t, svc, "c", 100000)

	lobby, err := svc.CreateLobby(ctx, creator, CreateParams{
		TeamSize: 1, RoundsToWin: 1, Team: models.TeamHeads, BetAmount: 1000,
	})
	require.NoError(t, err)
	require.NoError(t, svc.CancelLobby(ctx, creator, lobby.ID))

	clock.advance(testVoidAfter * 2)
	assert.ErrorIs(t, svc.VoidLobby(ctx, lobby.ID), ErrNotVoidable)
}

func TestCreateUpdatesProtocolStats(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	creator := createUser(t, svc, "c", 100000)
	joiner := createUser(t, svc, "j", 100000)

	lobby, err := svc.CreateLobby(ctx, creator, CreateParams{
		TeamSize: 1, RoundsToWin: 1, Team: models.TeamHeads, BetAmount: 3000,
	})
	require.NoError(t, err)
	_, err = svc.JoinLobby(ctx, joiner, lobby.ID, models.TeamTails)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.GamesCreated)
	assert.Equal(t, int64(6000), stats.VolumeStaked)
}
