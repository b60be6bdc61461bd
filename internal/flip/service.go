// Package flip implements the escrow and state machine for the coin-flip
// wagering game: lobby lifecycle, randomness bridge, round resolution and
// settlement. Each public operation runs to completion as one serialized
// database transaction; an error return always means no state changed.
package flip

import (
	"sync"
	"time"

	"github.com/CoinClashFun/flipoff-backend/internal/hub"
	"github.com/CoinClashFun/flipoff-backend/internal/models"
	"github.com/CoinClashFun/flipoff-backend/internal/oracle"

	"gorm.io/gorm"
)

// Clock abstracts time so timeout behavior is testable without waiting.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Params are the protocol parameters fixed at service construction.
type Params struct {
	// MinBet is the smallest allowed per-player stake.
	MinBet int64
	// VoidAfter is how long an open lobby may wait for players, or an
	// in-progress lobby for a randomness callback, before anyone may void it.
	VoidAfter time.Duration
	// CallbackGas is the fixed callback budget quoted to the oracle.
	CallbackGas uint64
}

// Service owns all game state mutations. The mutex serializes mutating
// operations, which both matches the contract execution model and acts as
// the exclusive-execution guard: no operation can re-enter another while a
// ledger transfer is being written.
type Service struct {
	db     *gorm.DB
	oracle oracle.Client
	hub    *hub.Hub
	clock  Clock
	params Params

	mu sync.Mutex
}

// New creates a Service. A nil clock falls back to the system clock.
func New(db *gorm.DB, oracleClient oracle.Client, h *hub.Hub, params Params, clock Clock) *Service {
	if clock == nil {
		clock = systemClock{}
	}
	return &Service{
		db:     db,
		oracle: oracleClient,
		hub:    h,
		clock:  clock,
		params: params,
	}
}

// EnsureProtocolState creates the singleton protocol row if it does not
// exist yet, seeding the initial fee from config.
func EnsureProtocolState(db *gorm.DB, initialFeeBps int64) error {
	state := models.ProtocolState{ID: 1, FeeBps: initialFeeBps}
	return db.Where(models.ProtocolState{ID: 1}).FirstOrCreate(&state).Error
}

// pendingEvent is a notification built inside a transaction and broadcast
// only after the transaction commits.
type pendingEvent struct {
	lobbyID uint
	event   hub.Event
}

func (s *Service) publish(events []pendingEvent) {
	if s.hub == nil {
		return
	}
	for _, e := range events {
		s.hub.Broadcast(e.lobbyID, e.event)
	}
}

func protocolState(tx *gorm.DB) (*models.ProtocolState, error) {
	var state models.ProtocolState
	if err := tx.First(&state, 1).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

func lobbyByID(tx *gorm.DB, id uint) (*models.Lobby, error) {
	var lobby models.Lobby
	if err := tx.First(&lobby, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrLobbyNotFound
		}
		return nil, err
	}
	return &lobby, nil
}

func userByID(tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// debit removes amount from a user's ledger balance, failing without
// side effects when the balance does not cover it.
func debit(tx *gorm.DB, userID uint, amount int64) error {
	user, err := userByID(tx, userID)
	if err != nil {
		return err
	}
	if user.Balance < amount {
		return ErrInsufficientBalance
	}
	return tx.Model(user).Update("balance", gorm.Expr("balance - ?", amount)).Error
}

// credit adds amount to a user's ledger balance.
func credit(tx *gorm.DB, userID uint, amount int64) error {
	return tx.Model(&models.User{}).Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
}
