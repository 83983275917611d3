package store

import (
	"context"
	"time"

	"github.com/Abtechguru/veritusblogs-engagement/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Events() Events
	Accounts() Accounts
}

// Events is the append-only XP ledger. Rows are never mutated or deleted.
type Events interface {
	// Append inserts e and returns the stored row. When e.EventID was
	// already recorded the existing row is returned with inserted=false;
	// the uniqueness constraint on event_id makes the check atomic with
	// the insert.
	Append(ctx context.Context, e *model.GrantEvent) (stored *model.GrantEvent, inserted bool, err error)

	GetByEventID(ctx context.Context, eventID string) (*model.GrantEvent, error)

	// SumByUser totals all XP ever granted to a user.
	SumByUser(ctx context.Context, userID string) (int64, error)
	// SumByUserSince totals XP granted to a user at or after since.
	SumByUserSince(ctx context.Context, userID string, since time.Time) (int64, error)
	// CountByUserKind counts accepted events of one kind for a user.
	CountByUserKind(ctx context.Context, userID, kind string) (int64, error)

	// ListRecent returns the newest events joined with account display
	// metadata, newest first. Used to warm the activity feed.
	ListRecent(ctx context.Context, limit int) ([]*model.ActivityRecord, error)
	// ListAfter returns up to limit events with seq > afterSeq in append
	// order. Used by ledger replay.
	ListAfter(ctx context.Context, afterSeq int64, limit int) ([]*model.GrantEvent, error)
}

// Accounts holds the per-user materialized aggregates.
type Accounts interface {
	// Ensure creates a zero-valued account for userID if absent and
	// returns the current row. anchor seeds week_anchor on creation.
	Ensure(ctx context.Context, userID string, anchor time.Time) (*model.Account, error)
	Get(ctx context.Context, userID string) (*model.Account, error)

	// UpdateTotals overwrites the derived aggregate columns.
	UpdateTotals(ctx context.Context, userID string, totalXP, weeklyXP int64, anchor time.Time, level int) error
	// SetDisplay upserts display metadata owned by the surrounding app.
	SetDisplay(ctx context.Context, userID, displayName, avatarRef string) (*model.Account, error)
	// AddAchievement appends a badge if the account does not carry it yet.
	AddAchievement(ctx context.Context, userID, badge string) error

	// TopByTotal ranks accounts by materialized total XP.
	TopByTotal(ctx context.Context, n int) ([]*model.LeaderboardEntry, error)
	// TopByWeekly ranks accounts by XP granted within the week starting
	// at anchor, recomputed from the ledger so stale weekly_xp columns
	// can never leak into the board.
	TopByWeekly(ctx context.Context, anchor time.Time, n int) ([]*model.LeaderboardEntry, error)

	// RankByTotal and RankByWeekly return the 1-based positional rank of
	// a user under the same ordering as the Top queries, or
	// model.ErrNotFound when the user has no account.
	RankByTotal(ctx context.Context, userID string) (int, error)
	RankByWeekly(ctx context.Context, userID string, anchor time.Time) (int, error)
}
