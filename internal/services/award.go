package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Abtechguru/veritusblogs-engagement/internal/events"
	"github.com/Abtechguru/veritusblogs-engagement/internal/model"
	"github.com/Abtechguru/veritusblogs-engagement/internal/store"
	"github.com/Abtechguru/veritusblogs-engagement/internal/xp"
)

// AchievementFirstRead is granted on a user's first accepted article read.
const AchievementFirstRead = "first-read"

// rebuildBatch is the ledger page size used during replay.
const rebuildBatch = 500

// AwardService is the single entry point for granting XP. It owns the
// per-user write serialization; the ledger's event_id uniqueness owns
// idempotency across processes.
type AwardService struct {
	store store.Store
	bus   *events.Bus
	log   zerolog.Logger
	now   func() time.Time
	locks sync.Map // userID -> *sync.Mutex
}

func NewAwardService(s store.Store, bus *events.Bus, log zerolog.Logger) *AwardService {
	return &AwardService{store: s, bus: bus, log: log, now: time.Now}
}

// NewAwardServiceWithClock wires an explicit clock; used by tests to
// exercise week rollover.
func NewAwardServiceWithClock(s store.Store, bus *events.Bus, log zerolog.Logger, clock func() time.Time) *AwardService {
	svc := NewAwardService(s, bus, log)
	svc.now = clock
	return svc
}

func (s *AwardService) userLock(userID string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Grant validates and applies one XP award. Retries with the same event
// id are no-ops returning the prior record with created=false.
func (s *AwardService) Grant(ctx context.Context, req model.GrantRequest) (*model.ActivityRecord, bool, error) {
	if req.UserID == "" {
		return nil, false, fmt.Errorf("%w: userId is required", model.ErrValidation)
	}
	reward, ok := xp.Reward(req.Kind)
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", model.ErrInvalidKind, req.Kind)
	}
	amount := reward
	if req.XPAmount != 0 && req.XPAmount != reward {
		if !req.Override {
			return nil, false, fmt.Errorf("%w: %s awards %d XP", model.ErrAmountMismatch, req.Kind, reward)
		}
		if req.XPAmount < 0 {
			return nil, false, fmt.Errorf("%w: xpAmount must be positive", model.ErrValidation)
		}
		amount = req.XPAmount
	}
	eventID := req.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	mu := s.userLock(req.UserID)
	mu.Lock()
	defer mu.Unlock()

	now := s.now().UTC()
	anchor := xp.WeekAnchor(now)

	acct, err := s.store.Accounts().Ensure(ctx, req.UserID, anchor)
	if err != nil {
		return nil, false, storeErr("ensure account", err)
	}

	stored, inserted, err := s.store.Events().Append(ctx, &model.GrantEvent{
		EventID:     eventID,
		UserID:      req.UserID,
		Kind:        req.Kind,
		XPAmount:    amount,
		Description: req.Description,
		OccurredAt:  now,
	})
	if err != nil {
		return nil, false, storeErr("append event", err)
	}
	if !inserted {
		// At-most-once: replay the earlier outcome, not an error.
		s.log.Info().
			Err(model.ErrDuplicateEvent).
			Str("event_id", eventID).
			Str("user_id", req.UserID).
			Msg("duplicate grant replayed")
		return activityFrom(stored, acct), false, nil
	}

	total := acct.TotalXP + stored.XPAmount
	var weekly int64
	if acct.WeekAnchor.UTC().Equal(anchor) {
		weekly = acct.WeeklyXP + stored.XPAmount
	} else {
		// Week rolled over: recompute the window from the ledger. The
		// appended event is already included, so repeating this on a
		// concurrent trigger converges to the same value.
		weekly, err = s.store.Events().SumByUserSince(ctx, req.UserID, anchor)
		if err != nil {
			return nil, false, storeErr("recompute weekly xp", err)
		}
	}

	if err := s.store.Accounts().UpdateTotals(ctx, req.UserID, total, weekly, anchor, xp.LevelFromXP(total)); err != nil {
		// The ledger write committed; the aggregate is repairable by
		// replay, so surface a retriable failure.
		return nil, false, storeErr("update account totals", err)
	}

	if req.Kind == xp.KindReadArticle && !hasBadge(acct.Achievements, AchievementFirstRead) {
		if err := s.store.Accounts().AddAchievement(ctx, req.UserID, AchievementFirstRead); err != nil {
			s.log.Warn().Err(err).Str("user_id", req.UserID).Msg("achievement grant failed")
		}
	}

	rec := activityFrom(stored, acct)
	if s.bus != nil {
		s.bus.Publish(*rec)
	}
	return rec, true, nil
}

// UserXP returns the per-user read model. A user without history gets a
// zero-valued result, not an error.
func (s *AwardService) UserXP(ctx context.Context, userID string) (*model.UserXP, error) {
	acct, err := s.store.Accounts().Get(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return &model.UserXP{UserID: userID, Level: xp.LevelFromXP(0), Achievements: []string{}}, nil
	}
	if err != nil {
		return nil, storeErr("get account", err)
	}

	anchor := xp.WeekAnchor(s.now())
	if !acct.WeekAnchor.UTC().Equal(anchor) {
		acct, err = s.rolloverWeek(ctx, userID, anchor)
		if err != nil {
			return nil, err
		}
	}

	out := &model.UserXP{
		UserID:       userID,
		TotalXP:      acct.TotalXP,
		WeeklyXP:     acct.WeeklyXP,
		Level:        xp.LevelFromXP(acct.TotalXP),
		Achievements: acct.Achievements,
	}
	if rank, err := s.store.Accounts().RankByWeekly(ctx, userID, anchor); err == nil {
		out.WeeklyRank = &rank
	}
	return out, nil
}

// rolloverWeek advances a stale account into the week at anchor. Safe
// under concurrent triggering: the value is recomputed from the ledger,
// so repeating it converges.
func (s *AwardService) rolloverWeek(ctx context.Context, userID string, anchor time.Time) (*model.Account, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	acct, err := s.store.Accounts().Get(ctx, userID)
	if err != nil {
		return nil, storeErr("get account", err)
	}
	if acct.WeekAnchor.UTC().Equal(anchor) {
		return acct, nil // another caller already rolled over
	}
	weekly, err := s.store.Events().SumByUserSince(ctx, userID, anchor)
	if err != nil {
		return nil, storeErr("recompute weekly xp", err)
	}
	if err := s.store.Accounts().UpdateTotals(ctx, userID, acct.TotalXP, weekly, anchor, xp.LevelFromXP(acct.TotalXP)); err != nil {
		return nil, storeErr("update account totals", err)
	}
	acct.WeeklyXP = weekly
	acct.WeekAnchor = anchor
	return acct, nil
}

// RankOf returns the 1-based rank of a user in the requested scope, or
// model.ErrNotFound when the user has no account yet.
func (s *AwardService) RankOf(ctx context.Context, userID string, scope model.Scope) (int, error) {
	switch scope {
	case model.ScopeWeekly:
		return s.store.Accounts().RankByWeekly(ctx, userID, xp.WeekAnchor(s.now()))
	case model.ScopeAllTime:
		return s.store.Accounts().RankByTotal(ctx, userID)
	default:
		return 0, fmt.Errorf("%w: unknown scope %q", model.ErrValidation, scope)
	}
}

// SetDisplay upserts the display metadata mirrored from the main app.
func (s *AwardService) SetDisplay(ctx context.Context, userID, displayName, avatarRef string) (*model.Account, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	if _, err := s.store.Accounts().Ensure(ctx, userID, xp.WeekAnchor(s.now())); err != nil {
		return nil, storeErr("ensure account", err)
	}
	acct, err := s.store.Accounts().SetDisplay(ctx, userID, displayName, avatarRef)
	if err != nil {
		return nil, storeErr("set display", err)
	}
	return acct, nil
}

// Rebuild replays the ledger from fromSeq and rewrites every touched
// account aggregate. It is interruptible: on cancellation the result
// reports the last processed ledger offset so a retry can resume.
func (s *AwardService) Rebuild(ctx context.Context, fromSeq int64) (*model.RebuildResult, error) {
	res := &model.RebuildResult{LastSeq: fromSeq}
	touched := make(map[string]struct{})

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		batch, err := s.store.Events().ListAfter(ctx, res.LastSeq, rebuildBatch)
		if err != nil {
			return res, storeErr("list events", err)
		}
		if len(batch) == 0 {
			break
		}
		for _, ev := range batch {
			touched[ev.UserID] = struct{}{}
			res.Events++
			res.LastSeq = ev.Seq
		}
	}

	anchor := xp.WeekAnchor(s.now())
	for userID := range touched {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.rebuildAccount(ctx, userID, anchor); err != nil {
			return res, err
		}
		res.Accounts++
	}
	s.log.Info().
		Int("accounts", res.Accounts).
		Int("events", res.Events).
		Msg("account rebuild complete")
	return res, nil
}

func (s *AwardService) rebuildAccount(ctx context.Context, userID string, anchor time.Time) error {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	if _, err := s.store.Accounts().Ensure(ctx, userID, anchor); err != nil {
		return storeErr("ensure account", err)
	}
	total, err := s.store.Events().SumByUser(ctx, userID)
	if err != nil {
		return storeErr("sum total xp", err)
	}
	weekly, err := s.store.Events().SumByUserSince(ctx, userID, anchor)
	if err != nil {
		return storeErr("sum weekly xp", err)
	}
	if err := s.store.Accounts().UpdateTotals(ctx, userID, total, weekly, anchor, xp.LevelFromXP(total)); err != nil {
		return storeErr("update account totals", err)
	}
	return nil
}

func activityFrom(ev *model.GrantEvent, acct *model.Account) *model.ActivityRecord {
	return &model.ActivityRecord{
		ID:          ev.EventID,
		UserID:      ev.UserID,
		DisplayName: acct.DisplayName,
		AvatarRef:   acct.AvatarRef,
		Kind:        ev.Kind,
		Description: ev.Description,
		XPEarned:    ev.XPAmount,
		OccurredAt:  ev.OccurredAt,
	}
}

func hasBadge(badges []string, badge string) bool {
	for _, b := range badges {
		if b == badge {
			return true
		}
	}
	return false
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", model.ErrStoreUnavailable, op, err)
}
