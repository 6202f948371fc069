package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sync"
	"testing"
	"time"

	"iris-api/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stepKind int

const (
	kindQuery stepKind = iota
	kindExec
)

// queryStep is one expected statement. A nil args slice skips argument
// matching.
type queryStep struct {
	kind    stepKind
	pattern *regexp.Regexp
	args    []driver.Value
	columns []string
	rows    [][]driver.Value
	err     error
	result  driver.Result
}

type scriptedDB struct {
	mu    sync.Mutex
	steps []*queryStep
}

func (db *scriptedDB) next(kind stepKind, query string, args []driver.NamedValue) (*queryStep, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.steps) == 0 {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	step := db.steps[0]
	if step.kind != kind {
		return nil, fmt.Errorf("unexpected kind for query %s: got %v want %v", query, kind, step.kind)
	}
	if !step.pattern.MatchString(query) {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	if step.args != nil {
		if len(step.args) != len(args) {
			return nil, fmt.Errorf("unexpected arg count for %s: got %d want %d", query, len(args), len(step.args))
		}
		for i := range args {
			if args[i].Value != step.args[i] {
				return nil, fmt.Errorf("unexpected arg %d for %s: got %v want %v", i, query, args[i].Value, step.args[i])
			}
		}
	}
	db.steps = db.steps[1:]
	return step, nil
}

func (db *scriptedDB) verifyComplete() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.steps) != 0 {
		return fmt.Errorf("unmet expectations: %d", len(db.steps))
	}
	return nil
}

type scriptedDriver struct {
	db *scriptedDB
}

func (d *scriptedDriver) Open(string) (driver.Conn, error) {
	return &scriptedConn{db: d.db}, nil
}

type scriptedConn struct {
	db *scriptedDB
}

func (c *scriptedConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *scriptedConn) Close() error { return nil }

func (c *scriptedConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

func (c *scriptedConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	step, err := c.db.next(kindQuery, query, args)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if step.err != nil {
		return nil, step.err
	}
	return &scriptedRows{columns: step.columns, rows: step.rows}, nil
}

func (c *scriptedConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	step, err := c.db.next(kindExec, query, args)
	if err != nil {
		return nil, err
	}
	if step.err != nil {
		return nil, step.err
	}
	if step.result != nil {
		return step.result, nil
	}
	return scriptedResult{}, nil
}

type scriptedResult struct {
	lastInsertID int64
	rowsAffected int64
}

func (r scriptedResult) LastInsertId() (int64, error) { return r.lastInsertID, nil }

func (r scriptedResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

type scriptedRows struct {
	columns []string
	rows    [][]driver.Value
	idx     int
}

func (r *scriptedRows) Columns() []string { return r.columns }

func (r *scriptedRows) Close() error { return nil }

func (r *scriptedRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	row := r.rows[r.idx]
	for i := range dest {
		dest[i] = nil
	}
	for i := range row {
		dest[i] = row[i]
	}
	r.idx++
	return nil
}

func newScriptedStore(t *testing.T, steps []*queryStep) (*GormStore, *scriptedDB) {
	t.Helper()
	state := &scriptedDB{steps: steps}
	driverName := fmt.Sprintf("scripted_%d", time.Now().UnixNano())
	sql.Register(driverName, &scriptedDriver{db: state})

	sqlDB, err := sql.Open(driverName, "")
	if err != nil {
		t.Fatalf("failed to open sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	if err != nil {
		t.Fatalf("failed to create gorm db: %v", err)
	}
	return NewGormStore(gormDB), state
}

var (
	updateIdeaStatusSQL = regexp.MustCompile("(?i)^UPDATE `iris_grassroot_ideas` SET .*WHERE idea_id = \\? AND status = \\?")
	pluckIdeaStatusSQL  = regexp.MustCompile("(?i)^SELECT `status` FROM `iris_grassroot_ideas` WHERE idea_id = \\?")
)

func TestGormUpdateIdeaStatusApplies(t *testing.T) {
	store, state := newScriptedStore(t, []*queryStep{
		{kind: kindExec, pattern: updateIdeaStatusSQL, result: scriptedResult{rowsAffected: 1}},
	})

	err := store.UpdateIdeaStatus(context.Background(), "idea-1",
		models.IdeaSubmittedRM, models.IdeaApprovedRM, time.Now())
	if err != nil {
		t.Fatalf("UpdateIdeaStatus returned error: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestGormUpdateIdeaStatusReportsStaleStatus(t *testing.T) {
	store, state := newScriptedStore(t, []*queryStep{
		{kind: kindExec, pattern: updateIdeaStatusSQL, result: scriptedResult{rowsAffected: 0}},
		{
			kind:    kindQuery,
			pattern: pluckIdeaStatusSQL,
			args:    []driver.Value{"idea-1"},
			columns: []string{"status"},
			rows:    [][]driver.Value{{"REJECTED_RM"}},
		},
	})

	err := store.UpdateIdeaStatus(context.Background(), "idea-1",
		models.IdeaSubmittedRM, models.IdeaApprovedRM, time.Now())
	if !errors.Is(err, ErrStaleStatus) {
		t.Fatalf("expected ErrStaleStatus, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestGormUpdateIdeaStatusReportsMissingIdea(t *testing.T) {
	store, state := newScriptedStore(t, []*queryStep{
		{kind: kindExec, pattern: updateIdeaStatusSQL, result: scriptedResult{rowsAffected: 0}},
		{
			kind:    kindQuery,
			pattern: pluckIdeaStatusSQL,
			args:    []driver.Value{"missing"},
			columns: []string{"status"},
		},
	})

	err := store.UpdateIdeaStatus(context.Background(), "missing",
		models.IdeaSubmittedRM, models.IdeaApprovedRM, time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestGormUpdateIdeaStatusPropagatesDriverError(t *testing.T) {
	boom := errors.New("connection reset")
	store, _ := newScriptedStore(t, []*queryStep{
		{kind: kindExec, pattern: updateIdeaStatusSQL, err: boom},
	})

	err := store.UpdateIdeaStatus(context.Background(), "idea-1",
		models.IdeaSubmittedRM, models.IdeaApprovedRM, time.Now())
	if !errors.Is(err, boom) {
		t.Fatalf("expected driver error, got %v", err)
	}
}

func TestGormCountUnread(t *testing.T) {
	store, state := newScriptedStore(t, []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("(?i)^SELECT count\\(\\*\\) FROM `iris_notifications` WHERE recipient_id = \\? AND is_read = \\?"),
			args:    []driver.Value{"user-1", false},
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(4)}},
		},
	})

	n, err := store.CountUnread(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CountUnread returned error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 unread, got %d", n)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

var (
	updateChallengeStatusSQL = regexp.MustCompile("(?i)^UPDATE `iris_challenges` SET .*WHERE challenge_id = \\? AND status = \\?")
	pluckChallengeStatusSQL  = regexp.MustCompile("(?i)^SELECT `status` FROM `iris_challenges` WHERE challenge_id = \\?")
)

func TestGormUpdateChallengeStatus(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		current  [][]driver.Value
		want     error
	}{
		{"applies", 1, nil, nil},
		{"stale", 0, [][]driver.Value{{"COMPLETED"}}, ErrStaleStatus},
		{"missing", 0, nil, ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			steps := []*queryStep{
				{kind: kindExec, pattern: updateChallengeStatusSQL, result: scriptedResult{rowsAffected: tc.affected}},
			}
			if tc.affected == 0 {
				steps = append(steps, &queryStep{
					kind:    kindQuery,
					pattern: pluckChallengeStatusSQL,
					args:    []driver.Value{"ch-1"},
					columns: []string{"status"},
					rows:    tc.current,
				})
			}
			store, state := newScriptedStore(t, steps)

			err := store.UpdateChallengeStatus(context.Background(), "ch-1",
				models.ChallengeLive, models.ChallengeCompleted, time.Now())
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if err := state.verifyComplete(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestGormListChallengesFilters(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	columns := []string{"challenge_id", "title", "status", "start_date", "end_date"}

	tests := []struct {
		name    string
		filter  ChallengeFilter
		pattern *regexp.Regexp
		args    []driver.Value
	}{
		{
			name:    "active",
			filter:  ChallengeFilter{Statuses: []models.ChallengeStatus{models.ChallengeLive}, ActiveAt: &now},
			pattern: regexp.MustCompile("(?i)^SELECT \\* FROM `iris_challenges` WHERE status IN \\(\\?\\) AND \\(start_date <= \\? AND end_date >= \\?\\) ORDER BY end_date ASC"),
			args:    []driver.Value{"LIVE", now, now},
		},
		{
			name:    "expired",
			filter:  ChallengeFilter{Statuses: []models.ChallengeStatus{models.ChallengeLive}, EndedBefore: &now},
			pattern: regexp.MustCompile("(?i)^SELECT \\* FROM `iris_challenges` WHERE status IN \\(\\?\\) AND end_date < \\? ORDER BY created_at DESC"),
			args:    []driver.Value{"LIVE", now},
		},
		{
			name:    "search",
			filter:  ChallengeFilter{Query: " Meeting "},
			pattern: regexp.MustCompile("(?i)^SELECT \\* FROM `iris_challenges` WHERE LOWER\\(title\\) LIKE \\? OR LOWER\\(description\\) LIKE \\? OR LOWER\\(keywords\\) LIKE \\? ORDER BY created_at DESC"),
			args:    []driver.Value{"%meeting%", "%meeting%", "%meeting%"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, state := newScriptedStore(t, []*queryStep{{
				kind:    kindQuery,
				pattern: tc.pattern,
				args:    tc.args,
				columns: columns,
				rows:    [][]driver.Value{{"ch-1", "Cut meeting overload", "LIVE", now.AddDate(0, 0, -1), now.AddDate(0, 0, 30)}},
			}})

			out, err := store.ListChallenges(context.Background(), tc.filter)
			if err != nil {
				t.Fatalf("ListChallenges returned error: %v", err)
			}
			if len(out) != 1 || out[0].ChallengeID != "ch-1" || out[0].Status != models.ChallengeLive {
				t.Fatalf("unexpected challenges %+v", out)
			}
			if err := state.verifyComplete(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestGormCountPanels(t *testing.T) {
	store, state := newScriptedStore(t, []*queryStep{{
		kind:    kindQuery,
		pattern: regexp.MustCompile("(?i)^SELECT count\\(\\*\\) FROM `iris_challenge_panels` WHERE challenge_id = \\? AND round_number = \\?"),
		args:    []driver.Value{"ch-1", int64(2)},
		columns: []string{"count(*)"},
		rows:    [][]driver.Value{{int64(1)}},
	}})

	n, err := store.CountPanels(context.Background(), "ch-1", 2)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 panel, got %d (%v)", n, err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestGormLockChallengeSelectsForUpdate(t *testing.T) {
	lockSQL := regexp.MustCompile("(?i)^SELECT \\* FROM `iris_challenges` WHERE challenge_id = \\? .*FOR UPDATE$")
	store, state := newScriptedStore(t, []*queryStep{
		{
			kind:    kindQuery,
			pattern: lockSQL,
			columns: []string{"challenge_id", "status"},
			rows:    [][]driver.Value{{"ch-1", "DRAFT"}},
		},
		{kind: kindQuery, pattern: lockSQL, columns: []string{"challenge_id", "status"}},
	})

	ch, err := store.LockChallenge(context.Background(), "ch-1")
	if err != nil || ch.Status != models.ChallengeDraft {
		t.Fatalf("unexpected lock result %+v (%v)", ch, err)
	}
	if _, err := store.LockChallenge(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestGormFindUsersByEmailIgnoresCase(t *testing.T) {
	store, state := newScriptedStore(t, []*queryStep{{
		kind:    kindQuery,
		pattern: regexp.MustCompile("(?i)^SELECT \\* FROM `iris_users` WHERE LOWER\\(email\\) = \\?"),
		args:    []driver.Value{"milo@example.com"},
		columns: []string{"user_id", "email", "full_name"},
		rows:    [][]driver.Value{{"u-mentor", "Milo@Example.com", "Milo Mentor"}},
	}})

	users, err := store.FindUsersByEmail(context.Background(), "  MILO@example.COM ")
	if err != nil {
		t.Fatalf("FindUsersByEmail returned error: %v", err)
	}
	if len(users) != 1 || users[0].UserID != "u-mentor" {
		t.Fatalf("unexpected users %+v", users)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestGormSumRewardPoints(t *testing.T) {
	store, state := newScriptedStore(t, []*queryStep{{
		kind:    kindQuery,
		pattern: regexp.MustCompile("(?i)^SELECT COALESCE\\(SUM\\(points\\), 0\\) FROM `iris_rewards` WHERE user_id = \\?"),
		args:    []driver.Value{"u-ideator"},
		columns: []string{"total"},
		rows:    [][]driver.Value{{int64(15)}},
	}})

	total, err := store.SumRewardPoints(context.Background(), "u-ideator")
	if err != nil || total != 15 {
		t.Fatalf("expected 15 points, got %d (%v)", total, err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}
