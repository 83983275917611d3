package xp

import "testing"

func TestRewardTable(t *testing.T) {
	want := map[string]int64{
		KindReadArticle:     5,
		KindComment:         10,
		KindContributeTopic: 25,
		KindShare:           15,
		KindReaction:        2,
		KindDailyLogin:      10,
	}
	for kind, amount := range want {
		got, ok := Reward(kind)
		if !ok {
			t.Fatalf("Reward(%q): kind not known", kind)
		}
		if got != amount {
			t.Fatalf("Reward(%q) = %d, want %d", kind, got, amount)
		}
	}
}

func TestUnknownKind(t *testing.T) {
	if KnownKind("downvote") {
		t.Fatal("downvote should not be a known kind")
	}
	if _, ok := Reward(""); ok {
		t.Fatal("empty kind should not have a reward")
	}
}
