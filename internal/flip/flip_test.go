package flip

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CoinClashFun/flipoff-backend/internal/database"
	"github.com/CoinClashFun/flipoff-backend/internal/hub"
	"github.com/CoinClashFun/flipoff-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mockOracle is a deterministic stand-in for the randomness oracle.
type mockOracle struct {
	fee         int64
	requests    int
	lastToken   string
	failRequest bool
}

func (m *mockOracle) QuoteFee(ctx context.Context, callbackGas uint64) (int64, error) {
	return m.fee, nil
}

func (m *mockOracle) RequestRandomness(ctx context.Context, callbackGas uint64, feePaid int64) (string, error) {
	if m.failRequest {
		return "", errors.New("oracle unavailable")
	}
	m.requests++
	m.lastToken = uuid.NewString()
	return m.lastToken, nil
}

// fakeClock lets tests move time forward without waiting.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

var testDBCounter int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:flip_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

const (
	testMinBet    = int64(1000)
	testVoidAfter = 50 * time.Minute
	testFee       = int64(100)
)

func newTestService(t *testing.T) (*Service, *mockOracle, *fakeClock) {
	t.Helper()

	db := newTestDB(t)
	require.NoError(t, EnsureProtocolState(db, 250))

	mock := &mockOracle{fee: testFee}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := New(db, mock, hub.NewHub(), Params{
		MinBet:      testMinBet,
		VoidAfter:   testVoidAfter,
		CallbackGas: 200000,
	}, clock)
	return svc, mock, clock
}

func createUser(t *testing.T, svc *Service, nickname string, balance int64) uint {
	t.Helper()

	user := models.User{
		Nickname:     nickname,
		Email:        nickname + "@example.com",
		PasswordHash: "x",
		Balance:      balance,
	}
	require.NoError(t, svc.db.Create(&user).Error)
	return user.ID
}

func balanceOf(t *testing.T, svc *Service, userID uint) int64 {
	t.Helper()

	var user models.User
	require.NoError(t, svc.db.First(&user, userID).Error)
	return user.Balance
}

// startedLobby runs create/join/start for a team-size-1 lobby and returns
// (lobbyID, creatorID, joinerID). The creator bets heads, the joiner tails.
func startedLobby(t *testing.T, svc *Service, roundsToWin int, bet int64) (uint, uint, uint) {
	t.Helper()

	ctx := context.Background()
	creator := createUser(t, svc, fmt.Sprintf("creator-%d", atomic.AddInt64(&testDBCounter, 1)), bet*10)
	joiner := createUser(t, svc, fmt.Sprintf("joiner-%d", atomic.AddInt64(&testDBCounter, 1)), bet*10)

	lobby, err := svc.CreateLobby(ctx, creator, CreateParams{
		TeamSize:    1,
		RoundsToWin: roundsToWin,
		Team:        models.TeamHeads,
		BetAmount:   bet,
	})
	require.NoError(t, err)

	_, err = svc.JoinLobby(ctx, joiner, lobby.ID, models.TeamTails)
	require.NoError(t, err)

	_, err = svc.StartGame(ctx, creator, lobby.ID, testFee)
	require.NoError(t, err)

	return lobby.ID, creator, joiner
}

func getLobby(t *testing.T, svc *Service, id uint) *models.Lobby {
	t.Helper()

	var lobby models.Lobby
	require.NoError(t, svc.db.First(&lobby, id).Error)
	return &lobby
}
