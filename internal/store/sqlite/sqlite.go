package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Abtechguru/veritusblogs-engagement/internal/model"
	"github.com/Abtechguru/veritusblogs-engagement/internal/store"
)

// New opens (or creates) a SQLite-backed store at path.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wires a store over an existing connection (used by tests).
func NewWithDB(db *sql.DB) store.Store { return &liteStore{db: db} }

type liteStore struct{ db *sql.DB }

func (s *liteStore) Events() store.Events     { return &events{db: s.db} }
func (s *liteStore) Accounts() store.Accounts { return &accounts{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *liteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// --- Events ---

type events struct{ db *sql.DB }

func (e *events) Append(ctx context.Context, ev *model.GrantEvent) (*model.GrantEvent, bool, error) {
	res, err := e.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO grant_events (event_id, user_id, kind, xp_amount, description, occurred_at)
        VALUES (?,?,?,?,?,?)`,
		ev.EventID, ev.UserID, ev.Kind, ev.XPAmount, ev.Description, ev.OccurredAt.UTC())
	if err != nil {
		return nil, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if n == 0 {
		existing, err := e.GetByEventID(ctx, ev.EventID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return nil, false, err
	}
	out := *ev
	out.Seq = seq
	out.OccurredAt = ev.OccurredAt.UTC()
	return &out, true, nil
}

func (e *events) GetByEventID(ctx context.Context, eventID string) (*model.GrantEvent, error) {
	row := e.db.QueryRowContext(ctx, `
        SELECT seq, user_id, kind, xp_amount, description, occurred_at
        FROM grant_events WHERE event_id = ?`, eventID)
	var ev model.GrantEvent
	ev.EventID = eventID
	if err := row.Scan(&ev.Seq, &ev.UserID, &ev.Kind, &ev.XPAmount, &ev.Description, &ev.OccurredAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &ev, nil
}

func (e *events) SumByUser(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := e.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(xp_amount),0) FROM grant_events WHERE user_id = ?`, userID).Scan(&sum)
	return sum, err
}

func (e *events) SumByUserSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var sum int64
	err := e.db.QueryRowContext(ctx, `
        SELECT COALESCE(SUM(xp_amount),0) FROM grant_events
        WHERE user_id = ? AND occurred_at >= ?`, userID, since.UTC()).Scan(&sum)
	return sum, err
}

func (e *events) CountByUserKind(ctx context.Context, userID, kind string) (int64, error) {
	var n int64
	err := e.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM grant_events WHERE user_id = ? AND kind = ?`, userID, kind).Scan(&n)
	return n, err
}

func (e *events) ListRecent(ctx context.Context, limit int) ([]*model.ActivityRecord, error) {
	rows, err := e.db.QueryContext(ctx, `
        SELECT e.event_id, e.user_id, COALESCE(a.display_name,''), COALESCE(a.avatar_ref,''),
               e.kind, e.description, e.xp_amount, e.occurred_at
        FROM grant_events e
        LEFT JOIN accounts a ON a.user_id = e.user_id
        ORDER BY e.seq DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.ActivityRecord
	for rows.Next() {
		var r model.ActivityRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.DisplayName, &r.AvatarRef,
			&r.Kind, &r.Description, &r.XPEarned, &r.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (e *events) ListAfter(ctx context.Context, afterSeq int64, limit int) ([]*model.GrantEvent, error) {
	rows, err := e.db.QueryContext(ctx, `
        SELECT seq, event_id, user_id, kind, xp_amount, description, occurred_at
        FROM grant_events WHERE seq > ? ORDER BY seq ASC LIMIT ?`, afterSeq, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.GrantEvent
	for rows.Next() {
		var ev model.GrantEvent
		if err := rows.Scan(&ev.Seq, &ev.EventID, &ev.UserID, &ev.Kind,
			&ev.XPAmount, &ev.Description, &ev.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, &ev)
	}
	return out, rows.Err()
}

// --- Accounts ---

type accounts struct{ db *sql.DB }

func (a *accounts) Ensure(ctx context.Context, userID string, anchor time.Time) (*model.Account, error) {
	_, err := a.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO accounts (user_id, week_anchor, created_at)
        VALUES (?,?,?)`, userID, anchor.UTC(), time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return a.Get(ctx, userID)
}

func (a *accounts) Get(ctx context.Context, userID string) (*model.Account, error) {
	row := a.db.QueryRowContext(ctx, `
        SELECT seq, display_name, avatar_ref, total_xp, weekly_xp, week_anchor, level, achievements, created_at
        FROM accounts WHERE user_id = ?`, userID)
	return scanAccount(row, userID)
}

func (a *accounts) UpdateTotals(ctx context.Context, userID string, totalXP, weeklyXP int64, anchor time.Time, level int) error {
	res, err := a.db.ExecContext(ctx, `
        UPDATE accounts SET total_xp = ?, weekly_xp = ?, week_anchor = ?, level = ?
        WHERE user_id = ?`, totalXP, weeklyXP, anchor.UTC(), level, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (a *accounts) SetDisplay(ctx context.Context, userID, displayName, avatarRef string) (*model.Account, error) {
	res, err := a.db.ExecContext(ctx, `
        UPDATE accounts SET display_name = ?, avatar_ref = ? WHERE user_id = ?`,
		displayName, avatarRef, userID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return a.Get(ctx, userID)
}

func (a *accounts) AddAchievement(ctx context.Context, userID, badge string) error {
	acct, err := a.Get(ctx, userID)
	if err != nil {
		return err
	}
	for _, b := range acct.Achievements {
		if b == badge {
			return nil
		}
	}
	data, err := json.Marshal(append(acct.Achievements, badge))
	if err != nil {
		return err
	}
	_, err = a.db.ExecContext(ctx,
		`UPDATE accounts SET achievements = ? WHERE user_id = ?`, string(data), userID)
	return err
}

func (a *accounts) TopByTotal(ctx context.Context, n int) ([]*model.LeaderboardEntry, error) {
	rows, err := a.db.QueryContext(ctx, `
        WITH ranked AS (
            SELECT user_id, display_name, avatar_ref, total_xp AS score, level,
                   ROW_NUMBER() OVER (ORDER BY total_xp DESC, seq ASC) AS rank
            FROM accounts
        )
        SELECT rank, user_id, display_name, avatar_ref, score, level
        FROM ranked ORDER BY rank LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (a *accounts) TopByWeekly(ctx context.Context, anchor time.Time, n int) ([]*model.LeaderboardEntry, error) {
	from, until := anchor.UTC(), anchor.UTC().AddDate(0, 0, 7)
	rows, err := a.db.QueryContext(ctx, `
        WITH weekly_scores AS (
            SELECT user_id, SUM(xp_amount) AS score
            FROM grant_events
            WHERE occurred_at >= ? AND occurred_at < ?
            GROUP BY user_id
        ),
        ranked AS (
            SELECT a.user_id, a.display_name, a.avatar_ref,
                   COALESCE(w.score, 0) AS score, a.level,
                   ROW_NUMBER() OVER (ORDER BY COALESCE(w.score, 0) DESC, a.seq ASC) AS rank
            FROM accounts a
            LEFT JOIN weekly_scores w ON w.user_id = a.user_id
        )
        SELECT rank, user_id, display_name, avatar_ref, score, level
        FROM ranked ORDER BY rank LIMIT ?`, from, until, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (a *accounts) RankByTotal(ctx context.Context, userID string) (int, error) {
	row := a.db.QueryRowContext(ctx, `
        WITH ranked AS (
            SELECT user_id,
                   ROW_NUMBER() OVER (ORDER BY total_xp DESC, seq ASC) AS rank
            FROM accounts
        )
        SELECT rank FROM ranked WHERE user_id = ?`, userID)
	return scanRank(row)
}

func (a *accounts) RankByWeekly(ctx context.Context, userID string, anchor time.Time) (int, error) {
	from, until := anchor.UTC(), anchor.UTC().AddDate(0, 0, 7)
	row := a.db.QueryRowContext(ctx, `
        WITH weekly_scores AS (
            SELECT user_id, SUM(xp_amount) AS score
            FROM grant_events
            WHERE occurred_at >= ? AND occurred_at < ?
            GROUP BY user_id
        ),
        ranked AS (
            SELECT a.user_id,
                   ROW_NUMBER() OVER (ORDER BY COALESCE(w.score, 0) DESC, a.seq ASC) AS rank
            FROM accounts a
            LEFT JOIN weekly_scores w ON w.user_id = a.user_id
        )
        SELECT rank FROM ranked WHERE user_id = ?`, from, until, userID)
	return scanRank(row)
}

// --- helpers ---

func scanAccount(row *sql.Row, userID string) (*model.Account, error) {
	var acct model.Account
	acct.UserID = userID
	var achievements string
	err := row.Scan(&acct.Seq, &acct.DisplayName, &acct.AvatarRef, &acct.TotalXP,
		&acct.WeeklyXP, &acct.WeekAnchor, &acct.Level, &achievements, &acct.CreationTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(achievements), &acct.Achievements); err != nil {
		return nil, err
	}
	if acct.Achievements == nil {
		acct.Achievements = []string{}
	}
	return &acct, nil
}

func scanEntries(rows *sql.Rows) ([]*model.LeaderboardEntry, error) {
	var out []*model.LeaderboardEntry
	for rows.Next() {
		var le model.LeaderboardEntry
		if err := rows.Scan(&le.Rank, &le.UserID, &le.DisplayName, &le.AvatarRef, &le.XP, &le.Level); err != nil {
			return nil, err
		}
		out = append(out, &le)
	}
	return out, rows.Err()
}

func scanRank(row *sql.Row) (int, error) {
	var rank int
	if err := row.Scan(&rank); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, model.ErrNotFound
		}
		return 0, err
	}
	return rank, nil
}
