package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/everforgeworks/habit-galaxy/internal/storage"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewService(storage.NewUserRepo(db), testSecret, time.Hour)
	s.cost = bcrypt.MinCost
	return s
}

func TestSignUp_HashesAndNormalizes(t *testing.T) {
	s := newTestService(t)

	u, err := s.SignUp(context.Background(), "  Nova@Example.com ", "hunter2hunter2", "")
	require.NoError(t, err)

	assert.Equal(t, "nova@example.com", u.Email)
	assert.Equal(t, "nova", u.DisplayName)
	assert.NotEqual(t, "hunter2hunter2", u.PasswordHash)
	assert.Len(t, u.ID, 36)
}

func TestSignUp_Rejects(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.SignUp(ctx, "not-an-email", "hunter2hunter2", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.SignUp(ctx, "a@b.co", "short", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.SignUp(ctx, "a@b.co", "hunter2hunter2", "x")
	require.NoError(t, err)
	_, err = s.SignUp(ctx, "A@B.co", "hunter2hunter2", "y")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignIn_IssuesTokenForUser(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u, err := s.SignUp(ctx, "nova@example.com", "hunter2hunter2", "Nova")
	require.NoError(t, err)

	token, signedIn, err := s.SignIn(ctx, "nova@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, signedIn.ID)

	claims, err := s.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, "Nova", claims.Name)
	assert.NotEmpty(t, claims.ID)
}

func TestSignIn_WrongPassword(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, err := s.SignUp(ctx, "nova@example.com", "hunter2hunter2", "Nova")
	require.NoError(t, err)

	_, _, err = s.SignIn(ctx, "nova@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = s.SignIn(ctx, "ghost@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_ExpiredAndForged(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, err := s.SignUp(ctx, "nova@example.com", "hunter2hunter2", "Nova")
	require.NoError(t, err)
	token, _, err := s.SignIn(ctx, "nova@example.com", "hunter2hunter2")
	require.NoError(t, err)

	other := NewService(nil, "another-secret-another-secret", time.Hour)
	_, err = other.Authenticate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.Authenticate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Authenticate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignOut_RevokesOnlyThatToken(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, err := s.SignUp(ctx, "nova@example.com", "hunter2hunter2", "Nova")
	require.NoError(t, err)
	first, _, err := s.SignIn(ctx, "nova@example.com", "hunter2hunter2")
	require.NoError(t, err)
	second, _, err := s.SignIn(ctx, "nova@example.com", "hunter2hunter2")
	require.NoError(t, err)

	require.NoError(t, s.SignOut(first))

	_, err = s.Authenticate(first)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.Authenticate(second)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.SignOut(first), ErrInvalidToken)
}

func TestContextUserID(t *testing.T) {
	_, ok := UserID(context.Background())
	assert.False(t, ok)

	id, ok := UserID(WithUserID(context.Background(), "u1"))
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}
