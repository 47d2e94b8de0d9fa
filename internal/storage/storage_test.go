package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "galaxy.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, Migrate(context.Background(), s.DB()))
}

func TestMigrate_AddsColumnsToOlderProfiles(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "old.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, `CREATE TABLE profiles (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		level INTEGER NOT NULL DEFAULT 1,
		xp INTEGER NOT NULL DEFAULT 0,
		max_xp INTEGER NOT NULL DEFAULT 100,
		streak INTEGER NOT NULL DEFAULT 0,
		star_coins INTEGER NOT NULL DEFAULT 0,
		gems INTEGER NOT NULL DEFAULT 0,
		streak_shields INTEGER NOT NULL DEFAULT 0,
		language TEXT NOT NULL DEFAULT 'en',
		updated_at INTEGER NOT NULL
	)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO profiles (user_id, level, updated_at) VALUES ('u1', 4, 0)`)
	require.NoError(t, err)

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db))

	got, err := NewProfileRepo(db).Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 4, got.Level)
	assert.Equal(t, 1.0, got.Multiplier)
	assert.Empty(t, got.Day)
}

func TestProfileRepo_GetMissing(t *testing.T) {
	s := newTestStore(t)

	p, err := s.Profiles().Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileRepo_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	updated := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	p := &Profile{UserID: "u1", Username: "nova", Level: 1, MaxXP: 100, Gems: 100, Language: "en", UpdatedAt: updated}
	require.NoError(t, s.Profiles().Save(ctx, p))

	p.Level, p.XP, p.MaxXP, p.Gems, p.StreakShields = 3, 10, 225, 40, 1
	p.Multiplier, p.CurrentBoss, p.StepsToday, p.Day = 2.0, 2, 4300, "2026-03-14"
	require.NoError(t, s.Profiles().Save(ctx, p))

	got, err := s.Profiles().Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *p, *got)
}

func TestProfileRepo_Leaderboard(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, p := range []Profile{
		{UserID: "a", Username: "ada", Level: 2, XP: 10, Language: "en"},
		{UserID: "b", Username: "bo", Level: 5, XP: 0, Language: "en"},
		{UserID: "c", Username: "cy", Level: 2, XP: 90, Language: "ko"},
	} {
		p := p
		require.NoError(t, s.Profiles().Save(ctx, &p))
	}

	board, err := s.Profiles().Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, RankEntry{Rank: 1, UserID: "b", Username: "bo", Level: 5}, board[0])
	assert.Equal(t, "c", board[1].UserID)
	assert.Equal(t, 2, board[1].Rank)
}

func TestHabitLogRepo_Append(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		l := &HabitLog{UserID: "u1", HabitID: 1, XPGained: 50, DmgDealt: 1500, LoggedAt: time.Now()}
		require.NoError(t, s.HabitLogs().Append(ctx, l))
		assert.NotZero(t, l.ID)
	}

	n, err := s.HabitLogs().CountByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestHabitLogRepo_Between(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	for _, at := range []time.Time{
		day.Add(-time.Second),
		day,
		day.Add(23 * time.Hour),
		day.AddDate(0, 0, 1),
	} {
		require.NoError(t, s.HabitLogs().Append(ctx, &HabitLog{UserID: "u1", HabitID: at.Hour(), LoggedAt: at}))
	}
	require.NoError(t, s.HabitLogs().Append(ctx, &HabitLog{UserID: "u2", HabitID: 1, LoggedAt: day}))

	got, err := s.HabitLogs().Between(ctx, "u1", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, day, got[0].LoggedAt)
	assert.Equal(t, 23, got[1].HabitID)
}

func TestBossRepo_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Bosses().Save(ctx, "u1", []BossRow{{BossID: 1, HP: 995000}, {BossID: 2, HP: 1500000}}))
	require.NoError(t, s.Bosses().Save(ctx, "u1", []BossRow{{BossID: 1, HP: 990000}}))

	got, err := s.Bosses().Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []BossRow{{BossID: 1, HP: 990000}}, got)

	other, err := s.Bosses().Load(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestInventoryRepo_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Inventory().Save(ctx, "u1", []InventoryRow{
		{ItemID: "orbital_strike", Qty: 2},
		{ItemID: "warp_drive", Qty: 1},
	}))
	require.NoError(t, s.Inventory().Save(ctx, "u1", []InventoryRow{
		{ItemID: "stasis_field", Qty: 4},
	}))

	got, err := s.Inventory().Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []InventoryRow{{ItemID: "stasis_field", Qty: 4}}, got)

	other, err := s.Inventory().Load(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestUserRepo_CreateAndConflict(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := &User{ID: "id-1", Email: "nova@example.com", DisplayName: "Nova", PasswordHash: "x", CreatedAt: time.Unix(1700000000, 0).UTC()}

	require.NoError(t, s.Users().Create(ctx, u))

	got, err := s.Users().GetByEmail(ctx, "nova@example.com")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	dup := *u
	dup.ID = "id-2"
	err = s.Users().Create(ctx, &dup)
	assert.True(t, errors.Is(err, ErrConflict))

	missing, err := s.Users().Get(ctx, "id-9")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	boom := errors.New("boom")

	err := WithTx(ctx, s.DB(), func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO inventory (user_id, item_id, qty) VALUES ('u1', 'warp_drive', 1)`)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Inventory().Load(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
