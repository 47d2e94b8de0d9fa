package root

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/everforgeworks/habit-galaxy/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateThenRankings(t *testing.T) {
	db := filepath.Join(t.TempDir(), "galaxy.db")

	_, err := run(t, "migrate", "--db", db)
	require.NoError(t, err)

	out, err := run(t, "rankings", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "no players yet")

	sqlDB, err := storage.Open(context.Background(), db)
	require.NoError(t, err)
	require.NoError(t, storage.NewProfileRepo(sqlDB).Save(context.Background(), &storage.Profile{
		UserID: "u1", Username: "nova", Level: 7, XP: 3, MaxXP: 1139, Language: "en",
		Multiplier: 2.0, Day: "2026-03-14", StepsToday: 420,
	}))
	require.NoError(t, storage.NewBossRepo(sqlDB).Save(context.Background(), "u1", []storage.BossRow{{BossID: 1, HP: 995000}}))
	require.NoError(t, sqlDB.Close())

	out, err = run(t, "rankings", "--db", db, "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "nova")
	assert.Contains(t, out, "Lv.7")

	out, err = run(t, "profile", "u1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "3/1139")
	assert.Contains(t, out, "2.0x")
	assert.Contains(t, out, "2026-03-14 (420 steps)")
	assert.Contains(t, out, "995000 hp")
	assert.Contains(t, out, "no account for this profile")

	sqlDB, err = storage.Open(context.Background(), db)
	require.NoError(t, err)
	require.NoError(t, storage.NewUserRepo(sqlDB).Create(context.Background(), &storage.User{
		ID: "u1", Email: "nova@example.com", DisplayName: "Nova", PasswordHash: "x",
	}))
	require.NoError(t, sqlDB.Close())

	out, err = run(t, "profile", "u1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "nova@example.com")
	assert.NotContains(t, out, "no account")

	_, err = run(t, "profile", "ghost", "--db", db)
	assert.Error(t, err)
}

func TestOddsAndCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "galaxy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gacha:\n  cost: 120\n"), 0o644))

	out, err := run(t, "odds", "--catalog", path, "--draws", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "120 gems")
	assert.Contains(t, out, "Orbital Strike")
	assert.Contains(t, out, " 50.0%")

	out, err = run(t, "catalog", "--catalog", path)
	require.NoError(t, err)
	assert.Contains(t, out, "King Sloth")

	_, err = run(t, "odds", "--catalog", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
