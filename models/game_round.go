package models

import "time"

// GameTier selects which bucket a round plays against.
type GameTier string

const (
	GameTierBasic GameTier = "basic"
	GameTierPro   GameTier = "pro"
)

// GameOutcome is the result of a resolved round.
type GameOutcome string

const (
	OutcomeWin  GameOutcome = "win"
	OutcomeLoss GameOutcome = "loss"
)

// GameRound is the immutable record of one wager. It is written once at
// resolution time and never updated.
type GameRound struct {
	ID             int64       `db:"id"`
	AccountID      int64       `db:"account_id"`
	Tier           GameTier    `db:"tier"`
	EntryAmount    int64       `db:"entry_amount"`
	SelectedNumber int         `db:"selected_number"`
	DrawnNumber    int         `db:"drawn_number"`
	Outcome        GameOutcome `db:"outcome"`
	Payout         int64       `db:"payout"` // 0 on loss
	CreatedAt      time.Time   `db:"created_at"`
}

// PlayResult is returned to the caller after a round resolves.
type PlayResult struct {
	RoundID        int64
	Tier           GameTier
	SelectedNumber int
	DrawnNumber    int
	Won            bool
	EntryAmount    int64
	Payout         int64
	Scheduled      bool // true when the payout went to a 10-day schedule
	Balance        Snapshot
}

// GameStats aggregates a player's round history.
type GameStats struct {
	TotalRounds int
	Wins        int
	Losses      int
	TotalWon    int64
	TotalLost   int64
	NetProfit   int64
}
