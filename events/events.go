package events

import (
	"context"
	"sync"

	"luckyten/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAccountRegistered   EventType = "account_registered"
	EventTypeAccountActivated    EventType = "account_activated"
	EventTypeBalanceChange       EventType = "balance_change"
	EventTypeGamePlayed          EventType = "game_played"
	EventTypeCommissionClaimed   EventType = "commission_claimed"
	EventTypeSettlementCompleted EventType = "settlement_completed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AccountRegisteredEvent represents a new account registration
type AccountRegisteredEvent struct {
	AccountID     int64
	WalletAddress string
	ReferralCode  string
	ReferredBy    string
}

func (e AccountRegisteredEvent) Type() EventType {
	return EventTypeAccountRegistered
}

// AccountActivatedEvent represents a Free -> Basic or Basic -> Pro transition
type AccountActivatedEvent struct {
	AccountID int64
	OldStatus models.AccountStatus
	NewStatus models.AccountStatus
}

func (e AccountActivatedEvent) Type() EventType {
	return EventTypeAccountActivated
}

// BalanceChangeEvent represents a ledger entry applied to a bucket
type BalanceChangeEvent struct {
	AccountID       int64
	TransactionType models.TransactionType
	Amount          int64
	FromBucket      *models.Bucket
	ToBucket        *models.Bucket
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// GamePlayedEvent represents a resolved round
type GamePlayedEvent struct {
	AccountID int64
	RoundID   int64
	Tier      models.GameTier
	Entry     int64
	Won       bool
	Payout    int64
}

func (e GamePlayedEvent) Type() EventType {
	return EventTypeGamePlayed
}

// CommissionClaimedEvent represents a referral commission claim
type CommissionClaimedEvent struct {
	AccountID int64
	Amount    int64
}

func (e CommissionClaimedEvent) Type() EventType {
	return EventTypeCommissionClaimed
}

// SettlementCompletedEvent represents a finished daily settlement sweep
type SettlementCompletedEvent struct {
	RunID            int64
	PayoutsSettled   int
	CashbacksSettled int
	TotalPaidOut     int64
}

func (e SettlementCompletedEvent) Type() EventType {
	return EventTypeSettlementCompleted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the caller
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional wrapper around a bus
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes an event until Flush
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events. Called after a successful DB commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events outlive the transaction context
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events. Called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
