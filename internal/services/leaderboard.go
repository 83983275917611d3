package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Abtechguru/veritusblogs-engagement/internal/model"
	"github.com/Abtechguru/veritusblogs-engagement/internal/store"
	"github.com/Abtechguru/veritusblogs-engagement/internal/xp"
)

// Snapshot is one consistent pair of leaderboard views. Readers get the
// whole struct atomically; a half-refreshed board is never observable.
type Snapshot struct {
	Weekly      []model.LeaderboardEntry
	AllTime     []model.LeaderboardEntry
	RefreshedAt time.Time
}

// LeaderboardService serves ranked views from a periodically refreshed
// snapshot. On refresh failure the last known good snapshot keeps
// serving.
type LeaderboardService struct {
	store store.Store
	log   zerolog.Logger
	size  int
	now   func() time.Time
	snap  atomic.Pointer[Snapshot]
}

func NewLeaderboardService(s store.Store, log zerolog.Logger, size int) *LeaderboardService {
	return &LeaderboardService{store: s, log: log, size: size, now: time.Now}
}

// NewLeaderboardServiceWithClock wires an explicit clock for tests.
func NewLeaderboardServiceWithClock(s store.Store, log zerolog.Logger, size int, clock func() time.Time) *LeaderboardService {
	svc := NewLeaderboardService(s, log, size)
	svc.now = clock
	return svc
}

// Refresh rebuilds both boards from the store and swaps the snapshot.
func (s *LeaderboardService) Refresh(ctx context.Context) error {
	anchor := xp.WeekAnchor(s.now())
	weekly, err := s.store.Accounts().TopByWeekly(ctx, anchor, s.size)
	if err != nil {
		return storeErr("weekly leaderboard", err)
	}
	allTime, err := s.store.Accounts().TopByTotal(ctx, s.size)
	if err != nil {
		return storeErr("all-time leaderboard", err)
	}
	s.snap.Store(&Snapshot{
		Weekly:      deref(weekly),
		AllTime:     deref(allTime),
		RefreshedAt: s.now().UTC(),
	})
	return nil
}

// Start refreshes the snapshot every interval until ctx is cancelled.
func (s *LeaderboardService) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					s.log.Warn().Err(err).Msg("leaderboard refresh failed; serving previous snapshot")
				}
			}
		}
	}()
}

// WeeklyTop returns the top n entries of the current week's board.
func (s *LeaderboardService) WeeklyTop(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return prefix(snap.Weekly, n), nil
}

// AllTimeTop returns the top n entries of the all-time board.
func (s *LeaderboardService) AllTimeTop(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return prefix(snap.AllTime, n), nil
}

// RefreshedAt reports the age of the served snapshot; zero before the
// first successful refresh.
func (s *LeaderboardService) RefreshedAt() time.Time {
	if snap := s.snap.Load(); snap != nil {
		return snap.RefreshedAt
	}
	return time.Time{}
}

// snapshot returns the current snapshot, refreshing once on a cold
// start.
func (s *LeaderboardService) snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.snap.Load(); snap != nil {
		return snap, nil
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.snap.Load(), nil
}

func prefix(entries []model.LeaderboardEntry, n int) []model.LeaderboardEntry {
	if n <= 0 || n > len(entries) {
		n = len(entries)
	}
	out := make([]model.LeaderboardEntry, n)
	copy(out, entries[:n])
	return out
}

func deref(entries []*model.LeaderboardEntry) []model.LeaderboardEntry {
	out := make([]model.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e)
	}
	return out
}
