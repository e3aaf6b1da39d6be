package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"luckyten/models"

	"github.com/stretchr/testify/assert"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			select {
			case eventReceived <- balanceEvent:
			case <-time.After(1 * time.Second):
				t.Error("Timeout sending event to channel")
			}
		} else {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
		}
	})

	toBucket := models.BucketCash
	testEvent := BalanceChangeEvent{
		AccountID:       123456,
		TransactionType: models.TransactionTypeGameWin,
		Amount:          500,
		ToBucket:        &toBucket,
	}

	// Publish event to transactional bus (simulating service layer)
	transactionalBus.Publish(testEvent)

	// Flush events (simulating successful transaction commit)
	transactionalBus.Flush(context.Background())

	wg.Wait()

	select {
	case receivedEvent := <-eventReceived:
		assert.Equal(t, testEvent.AccountID, receivedEvent.AccountID)
		assert.Equal(t, testEvent.TransactionType, receivedEvent.TransactionType)
		assert.Equal(t, testEvent.Amount, receivedEvent.Amount)
		assert.Equal(t, testEvent.ToBucket, receivedEvent.ToBucket)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventsReceived := make(chan GamePlayedEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeGamePlayed, func(ctx context.Context, event Event) {
		defer wg.Done()
		if gameEvent, ok := event.(GamePlayedEvent); ok {
			eventsReceived <- gameEvent
		}
	})

	testEvents := []GamePlayedEvent{
		{AccountID: 1, RoundID: 100, Tier: models.GameTierBasic, Entry: 1_00, Won: true, Payout: 8_00},
		{AccountID: 2, RoundID: 101, Tier: models.GameTierBasic, Entry: 2_00, Won: false},
		{AccountID: 3, RoundID: 102, Tier: models.GameTierPro, Entry: 3_00, Won: true, Payout: 24_00},
	}

	for _, event := range testEvents {
		transactionalBus.Publish(event)
	}

	transactionalBus.Flush(context.Background())
	wg.Wait()

	receivedEvents := make([]GamePlayedEvent, 0, 3)
	for i := 0; i < 3; i++ {
		select {
		case event := <-eventsReceived:
			receivedEvents = append(receivedEvents, event)
		case <-time.After(2 * time.Second):
			t.Fatalf("Only received %d out of 3 events", len(receivedEvents))
		}
	}

	assert.Len(t, receivedEvents, 3)

	// Handlers run on goroutines, so order may vary
	accountIDs := make(map[int64]bool)
	for _, received := range receivedEvents {
		accountIDs[received.AccountID] = true
	}

	assert.True(t, accountIDs[1])
	assert.True(t, accountIDs[2])
	assert.True(t, accountIDs[3])
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)

	mainBus.Subscribe(EventTypeCommissionClaimed, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(CommissionClaimedEvent{AccountID: 123456, Amount: 500})

	// Discard instead of flush (simulating transaction rollback)
	transactionalBus.Discard()

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
		// Expected - no event should be received
	}
}
