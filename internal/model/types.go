package model

import "time"

// GrantEvent is an immutable ledger fact recording a single XP award.
// Seq is the storage-assigned append order and is not exposed over the wire.
type GrantEvent struct {
	Seq         int64     `json:"-"`
	EventID     string    `json:"eventId"`
	UserID      string    `json:"userId"`
	Kind        string    `json:"kind"`
	XPAmount    int64     `json:"xpAmount"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Account is the per-user aggregate derived from the ledger. The ledger is
// the source of truth; an Account can always be rebuilt by replay.
type Account struct {
	Seq          int64     `json:"-"`
	UserID       string    `json:"userId"`
	DisplayName  string    `json:"displayName"`
	AvatarRef    string    `json:"avatarRef,omitempty"`
	TotalXP      int64     `json:"totalXP"`
	WeeklyXP     int64     `json:"weeklyXP"`
	WeekAnchor   time.Time `json:"weekAnchor"`
	Level        int       `json:"level"`
	Achievements []string  `json:"achievements"`
	CreationTime time.Time `json:"creationTime"`
}

// LeaderboardEntry is a read-time projection of an Account within a scope.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	AvatarRef   string `json:"avatarRef,omitempty"`
	XP          int64  `json:"xp"`
	Level       int    `json:"level"`
}

// ActivityRecord is the public projection of a GrantEvent plus display
// metadata. ID equals the originating event id.
type ActivityRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	AvatarRef   string    `json:"avatarRef,omitempty"`
	Kind        string    `json:"kind"`
	Description string    `json:"description,omitempty"`
	XPEarned    int64     `json:"xpEarned"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// GrantRequest carries a single award through the service layer.
// EventID may be empty, in which case the server generates one.
// Override is only honoured for trusted internal callers.
type GrantRequest struct {
	UserID      string
	Kind        string
	Description string
	XPAmount    int64
	EventID     string
	Override    bool
}

// UserXP is the per-user read model served by the XP endpoint.
// WeeklyRank is nil when the user has no account yet.
type UserXP struct {
	UserID       string   `json:"userId"`
	TotalXP      int64    `json:"totalXP"`
	WeeklyXP     int64    `json:"weeklyXP"`
	Level        int      `json:"level"`
	WeeklyRank   *int     `json:"weeklyRank,omitempty"`
	Achievements []string `json:"achievements"`
}

// Scope selects the leaderboard time window.
type Scope string

const (
	ScopeWeekly  Scope = "weekly"
	ScopeAllTime Scope = "alltime"
)

// RebuildResult reports progress of a ledger replay.
type RebuildResult struct {
	Accounts int   `json:"accounts"`
	Events   int   `json:"events"`
	LastSeq  int64 `json:"lastSeq"`
}
