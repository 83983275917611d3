package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Abtechguru/veritusblogs-engagement/internal/model"
	"github.com/Abtechguru/veritusblogs-engagement/internal/xp"
)

func TestLeaderboardRanksAndTieBreak(t *testing.T) {
	svc, clock := newTestService(t)
	lb := NewLeaderboardServiceWithClock(svc.store, zerolog.Nop(), 100, clock.Now)
	ctx := context.Background()

	// alice and carol tie on XP; alice registered first and must rank
	// ahead of carol.
	_, _, err := svc.Grant(ctx, model.GrantRequest{UserID: "alice", Kind: xp.KindComment})
	require.NoError(t, err)
	_, _, err = svc.Grant(ctx, model.GrantRequest{UserID: "bob", Kind: xp.KindContributeTopic})
	require.NoError(t, err)
	_, _, err = svc.Grant(ctx, model.GrantRequest{UserID: "carol", Kind: xp.KindComment})
	require.NoError(t, err)

	require.NoError(t, lb.Refresh(ctx))

	weekly, err := lb.WeeklyTop(ctx, 0)
	require.NoError(t, err)
	require.Len(t, weekly, 3)
	require.Equal(t, []int{1, 2, 3}, ranks(weekly))
	require.Equal(t, "bob", weekly[0].UserID)
	require.Equal(t, "alice", weekly[1].UserID)
	require.Equal(t, "carol", weekly[2].UserID)

	allTime, err := lb.AllTimeTop(ctx, 2)
	require.NoError(t, err)
	require.Len(t, allTime, 2)
	require.Equal(t, "bob", allTime[0].UserID)
}

func TestLeaderboardColdStartRefreshes(t *testing.T) {
	svc, clock := newTestService(t)
	lb := NewLeaderboardServiceWithClock(svc.store, zerolog.Nop(), 100, clock.Now)
	ctx := context.Background()

	_, _, err := svc.Grant(ctx, model.GrantRequest{UserID: "alice", Kind: xp.KindShare})
	require.NoError(t, err)

	require.True(t, lb.RefreshedAt().IsZero())

	weekly, err := lb.WeeklyTop(ctx, 10)
	require.NoError(t, err)
	require.Len(t, weekly, 1)
	require.False(t, lb.RefreshedAt().IsZero())
}

func TestLeaderboardSnapshotIsStableBetweenRefreshes(t *testing.T) {
	svc, clock := newTestService(t)
	lb := NewLeaderboardServiceWithClock(svc.store, zerolog.Nop(), 100, clock.Now)
	ctx := context.Background()

	_, _, err := svc.Grant(ctx, model.GrantRequest{UserID: "alice", Kind: xp.KindComment})
	require.NoError(t, err)
	require.NoError(t, lb.Refresh(ctx))

	_, _, err = svc.Grant(ctx, model.GrantRequest{UserID: "bob", Kind: xp.KindContributeTopic})
	require.NoError(t, err)

	weekly, err := lb.WeeklyTop(ctx, 0)
	require.NoError(t, err)
	require.Len(t, weekly, 1, "new grants surface on the next refresh, not mid-snapshot")

	require.NoError(t, lb.Refresh(ctx))
	weekly, err = lb.WeeklyTop(ctx, 0)
	require.NoError(t, err)
	require.Len(t, weekly, 2)
	require.Equal(t, "bob", weekly[0].UserID)
}

func TestLeaderboardWeeklyWindowExcludesPriorWeeks(t *testing.T) {
	svc, clock := newTestService(t)
	lb := NewLeaderboardServiceWithClock(svc.store, zerolog.Nop(), 100, clock.Now)
	ctx := context.Background()

	_, _, err := svc.Grant(ctx, model.GrantRequest{UserID: "alice", Kind: xp.KindContributeTopic})
	require.NoError(t, err)

	clock.Set(time.Date(2026, time.August, 26, 10, 0, 0, 0, time.UTC))
	_, _, err = svc.Grant(ctx, model.GrantRequest{UserID: "bob", Kind: xp.KindReaction})
	require.NoError(t, err)

	require.NoError(t, lb.Refresh(ctx))

	weekly, err := lb.WeeklyTop(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "bob", weekly[0].UserID, "only this week's XP counts for the weekly board")
	require.Equal(t, int64(2), weekly[0].XP)

	allTime, err := lb.AllTimeTop(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, "alice", allTime[0].UserID)
	require.Equal(t, int64(25), allTime[0].XP)
}

func ranks(entries []model.LeaderboardEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Rank
	}
	return out
}
