package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Abtechguru/veritusblogs-engagement/internal/events"
	"github.com/Abtechguru/veritusblogs-engagement/internal/model"
	"github.com/Abtechguru/veritusblogs-engagement/internal/store"
	"github.com/Abtechguru/veritusblogs-engagement/internal/store/sqlite"
	"github.com/Abtechguru/veritusblogs-engagement/internal/xp"
)

// testClock is a settable clock safe for concurrent reads.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "engagement.db"))
	require.NoError(t, err)
	return s
}

func newTestService(t *testing.T) (*AwardService, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)}
	svc := NewAwardServiceWithClock(newTestStore(t), nil, zerolog.Nop(), clock.Now)
	return svc, clock
}

func TestGrantAppliesPolicyAmount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, created, err := svc.Grant(ctx, model.GrantRequest{UserID: "alice", Kind: xp.KindReadArticle})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, int64(5), rec.XPEarned)
	require.NotEmpty(t, rec.ID, "server must mint an event id when the caller omits one")

	got, err := svc.UserXP(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(5), got.TotalXP)
	require.Equal(t, int64(5), got.WeeklyXP)
	require.Equal(t, 1, got.Level)
	require.Contains(t, got.Achievements, AchievementFirstRead)
	require.NotNil(t, got.WeeklyRank)
	require.Equal(t, 1, *got.WeeklyRank)
}

func TestGrantDuplicateReplaysPriorRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := model.GrantRequest{UserID: "alice", Kind: xp.KindComment, EventID: "evt-1", Description: "first"}
	first, created, err := svc.Grant(ctx, req)
	require.NoError(t, err)
	require.True(t, created)

	req.Description = "changed on retry"
	second, created, err := svc.Grant(ctx, req)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "first", second.Description, "replay returns the stored event, not the retry payload")

	got, err := svc.UserXP(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(10), got.TotalXP, "duplicate must not double-count")
}

func TestGrantSequenceWithDuplicate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	grants := []model.GrantRequest{
		{UserID: "alice", Kind: xp.KindComment, EventID: "e1"},
		{UserID: "alice", Kind: xp.KindShare, EventID: "e2"},
		{UserID: "alice", Kind: xp.KindComment, EventID: "e1"}, // duplicate
		{UserID: "alice", Kind: xp.KindReaction, EventID: "e3"},
	}
	for _, g := range grants {
		_, _, err := svc.Grant(ctx, g)
		require.NoError(t, err)
	}

	got, err := svc.UserXP(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(27), got.TotalXP) // 10 + 15 + 2, e1 counted once
	require.Equal(t, int64(27), got.WeeklyXP)
}

func TestGrantLevelTransition(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Grant(ctx, model.GrantRequest{UserID: "u", Kind: xp.KindReadArticle, EventID: "e1"})
	require.NoError(t, err)
	_, _, err = svc.Grant(ctx, model.GrantRequest{UserID: "u", Kind: xp.KindComment, EventID: "e2"})
	require.NoError(t, err)
	_, _, err = svc.Grant(ctx, model.GrantRequest{UserID: "u", Kind: xp.KindComment, EventID: "e2"})
	require.NoError(t, err)

	got, err := svc.UserXP(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, int64(15), got.TotalXP)
	require.Equal(t, 1, got.Level)

	// Four distinct topic contributions push the total to 115, crossing
	// the 100 XP threshold exactly once.
	for i := 0; i < 4; i++ {
		_, _, err = svc.Grant(ctx, model.GrantRequest{
			UserID:  "u",
			Kind:    xp.KindContributeTopic,
			EventID: fmt.Sprintf("t-%d", i),
		})
		require.NoError(t, err)
	}

	got, err = svc.UserXP(ctx, "u")
	require.NoError(t, err)
	require.Equal(t, int64(115), got.TotalXP)
	require.Equal(t, 2, got.Level)
}

func TestGrantRejectsUnknownKind(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Grant(context.Background(), model.GrantRequest{UserID: "alice", Kind: "bribe"})
	require.ErrorIs(t, err, model.ErrInvalidKind)
}

func TestGrantRejectsMissingUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Grant(context.Background(), model.GrantRequest{Kind: xp.KindComment})
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestGrantAmountMismatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Grant(ctx, model.GrantRequest{UserID: "alice", Kind: xp.KindComment, XPAmount: 99})
	require.ErrorIs(t, err, model.ErrAmountMismatch)

	rec, created, err := svc.Grant(ctx, model.GrantRequest{UserID: "alice", Kind: xp.KindComment, XPAmount: 99, Override: true})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, int64(99), rec.XPEarned)
}

func TestGrantWeeklyRollover(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Grant(ctx, model.GrantRequest{UserID: "alice", Kind: xp.KindContributeTopic})
	require.NoError(t, err)

	// Next UTC week.
	clock.Set(time.Date(2026, time.August, 25, 9, 0, 0, 0, time.UTC))

	_, _, err = svc.Grant(ctx, model.GrantRequest{UserID: "alice", Kind: xp.KindComment})
	require.NoError(t, err)

	got, err := svc.UserXP(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(35), got.TotalXP, "total accumulates across weeks")
	require.Equal(t, int64(10), got.WeeklyXP, "weekly resets at the week boundary")
}

func TestUserXPRolloverOnRead(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Grant(ctx, model.GrantRequest{UserID: "alice", Kind: xp.KindShare})
	require.NoError(t, err)

	clock.Set(time.Date(2026, time.September, 2, 8, 0, 0, 0, time.UTC))

	got, err := svc.UserXP(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(15), got.TotalXP)
	require.Equal(t, int64(0), got.WeeklyXP, "a read in a new week must not show last week's XP")
}

func TestUserXPUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.UserXP(context.Background(), "ghost")
	require.NoError(t, err)
	require.Equal(t, int64(0), got.TotalXP)
	require.Equal(t, 1, got.Level)
	require.Nil(t, got.WeeklyRank)
	require.NotNil(t, got.Achievements)
	require.Empty(t, got.Achievements)
}

func TestGrantConcurrentSameUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.Grant(ctx, model.GrantRequest{
				UserID:  "alice",
				Kind:    xp.KindReaction,
				EventID: fmt.Sprintf("evt-%d", i),
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	got, err := svc.UserXP(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(2*n), got.TotalXP)
}

func TestRankOf(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Grant(ctx, model.GrantRequest{UserID: "alice", Kind: xp.KindContributeTopic})
	require.NoError(t, err)
	_, _, err = svc.Grant(ctx, model.GrantRequest{UserID: "bob", Kind: xp.KindReaction})
	require.NoError(t, err)

	rank, err := svc.RankOf(ctx, "alice", model.ScopeWeekly)
	require.NoError(t, err)
	require.Equal(t, 1, rank)

	rank, err = svc.RankOf(ctx, "bob", model.ScopeAllTime)
	require.NoError(t, err)
	require.Equal(t, 2, rank)

	_, err = svc.RankOf(ctx, "ghost", model.ScopeWeekly)
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.RankOf(ctx, "alice", model.Scope("monthly"))
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestSetDisplay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	acct, err := svc.SetDisplay(ctx, "alice", "Alice A.", "avatars/alice.png")
	require.NoError(t, err)
	require.Equal(t, "Alice A.", acct.DisplayName)
	require.Equal(t, "avatars/alice.png", acct.AvatarRef)

	// Display metadata flows into subsequent activity records.
	rec, _, err := svc.Grant(ctx, model.GrantRequest{UserID: "alice", Kind: xp.KindComment})
	require.NoError(t, err)
	require.Equal(t, "Alice A.", rec.DisplayName)
}

func TestRebuildRestoresAggregates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := svc.Grant(ctx, model.GrantRequest{
			UserID:  "alice",
			Kind:    xp.KindComment,
			EventID: fmt.Sprintf("a-%d", i),
		})
		require.NoError(t, err)
	}
	_, _, err := svc.Grant(ctx, model.GrantRequest{UserID: "bob", Kind: xp.KindShare, EventID: "b-0"})
	require.NoError(t, err)

	// Corrupt the aggregates, then replay the ledger.
	anchor := xp.WeekAnchor(svc.now())
	require.NoError(t, svc.store.Accounts().UpdateTotals(ctx, "alice", 0, 0, anchor, 1))

	res, err := svc.Rebuild(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 2, res.Accounts)
	require.Equal(t, 4, res.Events)
	require.Equal(t, int64(4), res.LastSeq)

	got, err := svc.UserXP(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(30), got.TotalXP)
	require.Equal(t, int64(30), got.WeeklyXP)
}

func TestGrantPublishesActivity(t *testing.T) {
	clock := &testClock{t: time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)}
	bus := events.NewBus(4)
	svc := NewAwardServiceWithClock(newTestStore(t), bus, zerolog.Nop(), clock.Now)

	rec, _, err := svc.Grant(context.Background(), model.GrantRequest{UserID: "alice", Kind: xp.KindDailyLogin})
	require.NoError(t, err)

	select {
	case got := <-bus.Subscribe():
		require.Equal(t, rec.ID, got.ID)
		require.Equal(t, int64(10), got.XPEarned)
	default:
		t.Fatal("expected an activity record on the bus")
	}
}
