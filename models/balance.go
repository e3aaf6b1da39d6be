package models

import "time"

// Bucket identifies one of the four balance buckets.
type Bucket string

const (
	BucketFrozen Bucket = "frozen"
	BucketBasic  Bucket = "basic"
	BucketPro    Bucket = "pro"
	BucketCash   Bucket = "cash"
)

// Balance holds the four per-account buckets. Buckets never go negative;
// the schema enforces this with CHECK constraints and debits use guarded
// updates.
type Balance struct {
	ID        int64     `db:"id"`
	AccountID int64     `db:"account_id"`
	Frozen    int64     `db:"frozen"`
	Basic     int64     `db:"basic"`
	Pro       int64     `db:"pro"`
	Cash      int64     `db:"cash"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Bucket returns the current amount in the named bucket.
func (b *Balance) Bucket(bucket Bucket) int64 {
	switch bucket {
	case BucketFrozen:
		return b.Frozen
	case BucketBasic:
		return b.Basic
	case BucketPro:
		return b.Pro
	case BucketCash:
		return b.Cash
	}
	return 0
}

// Total returns the sum of all four buckets.
func (b *Balance) Total() int64 {
	return b.Frozen + b.Basic + b.Pro + b.Cash
}

// Snapshot is the balance view returned to callers after every mutating
// operation.
type Snapshot struct {
	Frozen int64
	Basic  int64
	Pro    int64
	Cash   int64
}

// Snapshot copies the current bucket amounts.
func (b *Balance) Snapshot() Snapshot {
	return Snapshot{Frozen: b.Frozen, Basic: b.Basic, Pro: b.Pro, Cash: b.Cash}
}
