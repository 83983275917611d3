// Package xp holds the pure scoring rules of the engagement engine:
// the per-action reward policy, the level table and week anchoring.
package xp

// Award kinds accepted by the engine. Clients and server must agree on
// the reward amounts, so the table lives server-side only.
const (
	KindReadArticle     = "read_article"
	KindComment         = "comment"
	KindContributeTopic = "contribute_topic"
	KindShare           = "share"
	KindReaction        = "reaction"
	KindDailyLogin      = "daily_login"
)

var rewards = map[string]int64{
	KindReadArticle:     5,
	KindComment:         10,
	KindContributeTopic: 25,
	KindShare:           15,
	KindReaction:        2,
	KindDailyLogin:      10,
}

// Reward returns the fixed XP amount for kind, or false for unknown kinds.
func Reward(kind string) (int64, bool) {
	r, ok := rewards[kind]
	return r, ok
}

// KnownKind reports whether kind is part of the award enumeration.
func KnownKind(kind string) bool {
	_, ok := rewards[kind]
	return ok
}
