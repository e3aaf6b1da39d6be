package service

import (
	"context"
	"fmt"

	"luckyten/events"
	"luckyten/models"
)

// RecordTransaction appends a ledger entry and emits a balance change event.
// This is the single entry point for all balance movements in the system:
// buckets are mutated in place, so the ledger is the only durable record of
// how funds moved.
func RecordTransaction(ctx context.Context, uow UnitOfWork, txn *models.Transaction) error {
	if txn.Status == "" {
		txn.Status = models.TransactionStatusCompleted
	}

	if err := uow.TransactionRepository().Record(ctx, txn); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	// Flushed after the surrounding transaction commits
	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:       txn.AccountID,
		TransactionType: txn.Type,
		Amount:          txn.Amount,
		FromBucket:      txn.FromBucket,
		ToBucket:        txn.ToBucket,
	})

	return nil
}

// bucketPtr is a convenience for ledger entries that name a bucket.
func bucketPtr(b models.Bucket) *models.Bucket {
	return &b
}
