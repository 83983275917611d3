package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Abtechguru/veritusblogs-engagement/internal/model"
	"github.com/Abtechguru/veritusblogs-engagement/internal/store"
	"github.com/Abtechguru/veritusblogs-engagement/internal/xp"
)

// Run exercises a compliance suite against a store.Store implementation.
// makeStore must return a clean, isolated store per test.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("AppendIdempotent", func(t *testing.T) { testAppendIdempotent(t, makeStore(t)) })
	t.Run("Sums", func(t *testing.T) { testSums(t, makeStore(t)) })
	t.Run("Accounts", func(t *testing.T) { testAccounts(t, makeStore(t)) })
	t.Run("LeaderboardOrdering", func(t *testing.T) { testLeaderboardOrdering(t, makeStore(t)) })
	t.Run("WeeklyWindow", func(t *testing.T) { testWeeklyWindow(t, makeStore(t)) })
	t.Run("ListAfter", func(t *testing.T) { testListAfter(t, makeStore(t)) })
	t.Run("ListRecent", func(t *testing.T) { testListRecent(t, makeStore(t)) })
}

func grant(userID, kind string, amount int64, at time.Time) *model.GrantEvent {
	return &model.GrantEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		Kind:       kind,
		XPAmount:   amount,
		OccurredAt: at,
	}
}

func testAppendIdempotent(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	e := grant("u1", xp.KindComment, 10, now)
	first, inserted, err := s.Events().Append(ctx, e)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if !inserted {
		t.Fatal("first append must report inserted")
	}
	if first.Seq == 0 {
		t.Fatal("append must assign a sequence number")
	}

	second, inserted, err := s.Events().Append(ctx, e)
	if err != nil {
		t.Fatalf("duplicate Append: %v", err)
	}
	if inserted {
		t.Fatal("duplicate append must not report inserted")
	}
	if second.Seq != first.Seq {
		t.Fatalf("duplicate returned different row: seq %d vs %d", second.Seq, first.Seq)
	}

	sum, err := s.Events().SumByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("SumByUser: %v", err)
	}
	if sum != 10 {
		t.Fatalf("XP counted twice: sum=%d", sum)
	}

	if _, err := s.Events().GetByEventID(ctx, "no-such-event"); err != model.ErrNotFound {
		t.Fatalf("GetByEventID miss: want ErrNotFound, got %v", err)
	}
}

func testSums(t *testing.T, s store.Store) {
	ctx := context.Background()
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	for i, amount := range []int64{5, 10, 25} {
		e := grant("u1", xp.KindReadArticle, amount, base.Add(time.Duration(i)*time.Hour))
		if _, _, err := s.Events().Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	// Event for another user must not leak into u1's totals.
	if _, _, err := s.Events().Append(ctx, grant("u2", xp.KindShare, 15, base)); err != nil {
		t.Fatalf("Append u2: %v", err)
	}

	if sum, err := s.Events().SumByUser(ctx, "u1"); err != nil || sum != 40 {
		t.Fatalf("SumByUser = %d, %v; want 40", sum, err)
	}
	if sum, err := s.Events().SumByUserSince(ctx, "u1", base.Add(90*time.Minute)); err != nil || sum != 25 {
		t.Fatalf("SumByUserSince = %d, %v; want 25", sum, err)
	}
	if n, err := s.Events().CountByUserKind(ctx, "u1", xp.KindReadArticle); err != nil || n != 3 {
		t.Fatalf("CountByUserKind = %d, %v; want 3", n, err)
	}
}

func testAccounts(t *testing.T, s store.Store) {
	ctx := context.Background()
	anchor := xp.WeekAnchor(time.Now())

	acct, err := s.Accounts().Ensure(ctx, "u1", anchor)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if acct.TotalXP != 0 || acct.Level != 1 {
		t.Fatalf("new account not zero-valued: %+v", acct)
	}
	if len(acct.Achievements) != 0 {
		t.Fatalf("new account has achievements: %v", acct.Achievements)
	}

	// Ensure is idempotent and keeps the registration seq stable.
	again, err := s.Accounts().Ensure(ctx, "u1", anchor)
	if err != nil {
		t.Fatalf("Ensure again: %v", err)
	}
	if again.Seq != acct.Seq {
		t.Fatalf("Ensure changed seq: %d vs %d", again.Seq, acct.Seq)
	}

	if err := s.Accounts().UpdateTotals(ctx, "u1", 115, 15, anchor, 2); err != nil {
		t.Fatalf("UpdateTotals: %v", err)
	}
	got, err := s.Accounts().Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TotalXP != 115 || got.WeeklyXP != 15 || got.Level != 2 {
		t.Fatalf("totals not updated: %+v", got)
	}
	if !got.WeekAnchor.UTC().Equal(anchor) {
		t.Fatalf("week anchor = %v, want %v", got.WeekAnchor, anchor)
	}

	if _, err := s.Accounts().SetDisplay(ctx, "u1", "Ada", "avatars/ada.png"); err != nil {
		t.Fatalf("SetDisplay: %v", err)
	}
	got, _ = s.Accounts().Get(ctx, "u1")
	if got.DisplayName != "Ada" || got.AvatarRef != "avatars/ada.png" {
		t.Fatalf("display not set: %+v", got)
	}

	if err := s.Accounts().AddAchievement(ctx, "u1", "first-read"); err != nil {
		t.Fatalf("AddAchievement: %v", err)
	}
	// Adding the same badge twice keeps a single copy.
	if err := s.Accounts().AddAchievement(ctx, "u1", "first-read"); err != nil {
		t.Fatalf("AddAchievement repeat: %v", err)
	}
	got, _ = s.Accounts().Get(ctx, "u1")
	if len(got.Achievements) != 1 || got.Achievements[0] != "first-read" {
		t.Fatalf("achievements = %v", got.Achievements)
	}

	if _, err := s.Accounts().Get(ctx, "ghost"); err != model.ErrNotFound {
		t.Fatalf("Get(ghost): want ErrNotFound, got %v", err)
	}
	if err := s.Accounts().UpdateTotals(ctx, "ghost", 1, 1, anchor, 1); err != model.ErrNotFound {
		t.Fatalf("UpdateTotals(ghost): want ErrNotFound, got %v", err)
	}
}

func testLeaderboardOrdering(t *testing.T, s store.Store) {
	ctx := context.Background()
	anchor := xp.WeekAnchor(time.Now())

	// Registration order: alice, bob, carol. Bob and carol tie on XP.
	totals := []struct {
		user string
		xp   int64
	}{{"alice", 50}, {"bob", 120}, {"carol", 120}}
	for _, tt := range totals {
		if _, err := s.Accounts().Ensure(ctx, tt.user, anchor); err != nil {
			t.Fatalf("Ensure %s: %v", tt.user, err)
		}
		if err := s.Accounts().UpdateTotals(ctx, tt.user, tt.xp, tt.xp, anchor, xp.LevelFromXP(tt.xp)); err != nil {
			t.Fatalf("UpdateTotals %s: %v", tt.user, err)
		}
	}

	top, err := s.Accounts().TopByTotal(ctx, 10)
	if err != nil {
		t.Fatalf("TopByTotal: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("TopByTotal size = %d, want 3", len(top))
	}
	wantOrder := []string{"bob", "carol", "alice"}
	for i, want := range wantOrder {
		if top[i].UserID != want {
			t.Fatalf("rank %d = %s, want %s", i+1, top[i].UserID, want)
		}
		if top[i].Rank != i+1 {
			t.Fatalf("rank field = %d, want %d", top[i].Rank, i+1)
		}
	}

	// Repeated call with no writes returns identical ordering.
	again, err := s.Accounts().TopByTotal(ctx, 10)
	if err != nil {
		t.Fatalf("TopByTotal again: %v", err)
	}
	for i := range top {
		if again[i].UserID != top[i].UserID {
			t.Fatalf("ordering unstable at %d: %s vs %s", i, again[i].UserID, top[i].UserID)
		}
	}

	if rank, err := s.Accounts().RankByTotal(ctx, "alice"); err != nil || rank != 3 {
		t.Fatalf("RankByTotal(alice) = %d, %v; want 3", rank, err)
	}
	if _, err := s.Accounts().RankByTotal(ctx, "ghost"); err != model.ErrNotFound {
		t.Fatalf("RankByTotal(ghost): want ErrNotFound, got %v", err)
	}

	// TopByTotal honours n.
	top2, err := s.Accounts().TopByTotal(ctx, 2)
	if err != nil || len(top2) != 2 {
		t.Fatalf("TopByTotal(2): n=%d err=%v", len(top2), err)
	}
}

func testWeeklyWindow(t *testing.T, s store.Store) {
	ctx := context.Background()
	anchor := xp.WeekAnchor(time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC))

	if _, err := s.Accounts().Ensure(ctx, "u1", anchor); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if _, err := s.Accounts().Ensure(ctx, "u2", anchor); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	// u1: one event last week, one this week. u2: one this week, larger.
	lastWeek := anchor.AddDate(0, 0, -2)
	appendAll := []*model.GrantEvent{
		grant("u1", xp.KindContributeTopic, 25, lastWeek),
		grant("u1", xp.KindReadArticle, 5, anchor.Add(2*time.Hour)),
		grant("u2", xp.KindComment, 10, anchor.Add(3*time.Hour)),
	}
	for _, e := range appendAll {
		if _, _, err := s.Events().Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	top, err := s.Accounts().TopByWeekly(ctx, anchor, 10)
	if err != nil {
		t.Fatalf("TopByWeekly: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("TopByWeekly size = %d, want 2", len(top))
	}
	// Only in-window XP counts: u2=10 beats u1=5 despite u1's larger history.
	if top[0].UserID != "u2" || top[0].XP != 10 {
		t.Fatalf("weekly rank 1 = %s/%d, want u2/10", top[0].UserID, top[0].XP)
	}
	if top[1].UserID != "u1" || top[1].XP != 5 {
		t.Fatalf("weekly rank 2 = %s/%d, want u1/5", top[1].UserID, top[1].XP)
	}

	if rank, err := s.Accounts().RankByWeekly(ctx, "u1", anchor); err != nil || rank != 2 {
		t.Fatalf("RankByWeekly(u1) = %d, %v; want 2", rank, err)
	}
}

func testListAfter(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	var seqs []int64
	for i := 0; i < 5; i++ {
		stored, _, err := s.Events().Append(ctx, grant("u1", xp.KindReaction, 2, now.Add(time.Duration(i)*time.Second)))
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
		seqs = append(seqs, stored.Seq)
	}

	batch, err := s.Events().ListAfter(ctx, 0, 3)
	if err != nil {
		t.Fatalf("ListAfter: %v", err)
	}
	if len(batch) != 3 || batch[0].Seq != seqs[0] {
		t.Fatalf("first batch wrong: n=%d", len(batch))
	}
	rest, err := s.Events().ListAfter(ctx, batch[2].Seq, 10)
	if err != nil {
		t.Fatalf("ListAfter rest: %v", err)
	}
	if len(rest) != 2 || rest[1].Seq != seqs[4] {
		t.Fatalf("second batch wrong: n=%d", len(rest))
	}
}

func testListRecent(t *testing.T, s store.Store) {
	ctx := context.Background()
	anchor := xp.WeekAnchor(time.Now())
	now := time.Now().UTC()

	if _, err := s.Accounts().Ensure(ctx, "u1", anchor); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if _, err := s.Accounts().SetDisplay(ctx, "u1", "Ada", ""); err != nil {
		t.Fatalf("SetDisplay: %v", err)
	}

	ids := make([]string, 3)
	for i := range ids {
		e := grant("u1", xp.KindComment, 10, now.Add(time.Duration(i)*time.Second))
		if _, _, err := s.Events().Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
		ids[i] = e.EventID
	}

	recent, err := s.Events().ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("ListRecent size = %d, want 2", len(recent))
	}
	// Newest first, carrying display metadata.
	if recent[0].ID != ids[2] || recent[1].ID != ids[1] {
		t.Fatalf("ListRecent order wrong: %s, %s", recent[0].ID, recent[1].ID)
	}
	if recent[0].DisplayName != "Ada" {
		t.Fatalf("display name not joined: %+v", recent[0])
	}
}
