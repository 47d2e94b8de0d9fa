/*
Package auth
File: auth.go
Description:
    Email and password accounts for Habit Galaxy.

    Passwords are stored as bcrypt hashes. Signing in issues an HS256 JWT whose
    subject is the user id; each token carries a unique id (jti) so that
    signing out can revoke it before it expires.
*/

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/everforgeworks/habit-galaxy/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrInvalidInput       = errors.New("auth: invalid sign-up input")
)

const minPasswordLen = 8

// Users is the slice of the user repository the service needs.
type Users interface {
	Create(ctx context.Context, u *storage.User) error
	GetByEmail(ctx context.Context, email string) (*storage.User, error)
}

// Claims is the JWT payload issued on sign-in.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// Service signs players up, in and out.
type Service struct {
	users  Users
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> token expiry
}

func NewService(users Users, secret string, ttl time.Duration) *Service {
	return &Service{
		users:   users,
		secret:  []byte(secret),
		ttl:     ttl,
		cost:    bcrypt.DefaultCost,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// SignUp registers a new account and returns it.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*storage.User, error) {
	email = normalizeEmail(email)
	displayName = strings.TrimSpace(displayName)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: bad email", ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password shorter than %d characters", ErrInvalidInput, minPasswordLen)
	}
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &storage.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC().Truncate(time.Second),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// SignIn checks the credentials and issues a signed token.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *storage.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Name: u.DisplayName,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, u, nil
}

// Authenticate validates token and returns its claims.
func (s *Service) Authenticate(token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, fmt.Errorf("%w: signed out", ErrInvalidToken)
	}
	return &claims, nil
}

// SignOut revokes token until it would have expired anyway.
func (s *Service) SignOut(token string) error {
	claims, err := s.Authenticate(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[claims.ID] = claims.ExpiresAt.Time
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
