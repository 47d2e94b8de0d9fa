/*
Package session
File: manager.go
Description:
    Owns the live game.State of every connected player.

    Each player gets one Session guarded by its own mutex. Every operation
    runs a pure internal/game function on the locked state, pushes any new
    notifications to the player's sockets, and queues the resulting writes
    on the outbox. Game operations never wait on the database.
*/

package session

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/everforgeworks/habit-galaxy/internal/game"
	"github.com/everforgeworks/habit-galaxy/internal/storage"
)

// ProfileStore persists progression.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*storage.Profile, error)
	Save(ctx context.Context, p *storage.Profile) error
}

// InventoryStore persists item stacks.
type InventoryStore interface {
	Load(ctx context.Context, userID string) ([]storage.InventoryRow, error)
	Save(ctx context.Context, userID string, items []storage.InventoryRow) error
}

// BossStore persists per-player boss HP.
type BossStore interface {
	Load(ctx context.Context, userID string) ([]storage.BossRow, error)
	Save(ctx context.Context, userID string, bosses []storage.BossRow) error
}

// HabitLogStore appends habit completions and reads back a day's worth.
type HabitLogStore interface {
	Append(ctx context.Context, l *storage.HabitLog) error
	Between(ctx context.Context, userID string, from, to time.Time) ([]storage.HabitLog, error)
}

// Queue accepts background writes. *outbox.Outbox satisfies it.
type Queue interface {
	Enqueue(name string, run func(ctx context.Context) error) bool
}

// Pusher delivers real-time events to every socket of a player.
type Pusher interface {
	Push(userID, kind string, payload any)
}

// Presence reports whether a player has an open socket. *api.Hub satisfies it.
type Presence interface {
	Online(userID string) bool
}

// Deps bundles what a Manager talks to.
type Deps struct {
	Profiles  ProfileStore
	Inventory InventoryStore
	Bosses    BossStore
	HabitLogs HabitLogStore
	Queue     Queue
	Pusher    Pusher
	Presence  Presence
	// NotificationTTL defaults to game.DefaultNotificationTTL.
	NotificationTTL time.Duration
	// IdleTTL is how long a session with no requests and no sockets stays
	// live. Zero keeps sessions until they are evicted explicitly.
	IdleTTL time.Duration
}

// Manager is the registry of live sessions.
type Manager struct {
	catalog atomic.Pointer[game.Catalog]
	deps    Deps
	rng     game.Roller
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(c *game.Catalog, deps Deps) *Manager {
	if deps.NotificationTTL <= 0 {
		deps.NotificationTTL = game.DefaultNotificationTTL
	}
	if deps.Pusher == nil {
		deps.Pusher = discardPusher{}
	}
	if deps.Presence == nil {
		deps.Presence = offline{}
	}
	m := &Manager{
		deps:     deps,
		rng:      globalRoller{},
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	m.catalog.Store(c)
	return m
}

// Catalog returns the catalog currently in effect.
func (m *Manager) Catalog() *game.Catalog {
	return m.catalog.Load()
}

// SetCatalog swaps the catalog. Sessions use it from their next operation on.
func (m *Manager) SetCatalog(c *game.Catalog) {
	m.catalog.Store(c)
}

// Get returns the live session for userID.
func (m *Manager) Get(userID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// Len reports how many sessions are live.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Open returns the live session for userID, loading it from storage on first
// use. A player with no stored profile starts fresh with the signup reward.
// Days that ended while the player had no live session are settled on load.
func (m *Manager) Open(ctx context.Context, userID, username string) (*Session, error) {
	if s, ok := m.Get(userID); ok {
		s.touch(m.now())
		return s, nil
	}

	state, created, err := m.load(ctx, userID, username)
	if err != nil {
		return nil, err
	}
	now := m.now()
	state, days := game.CloseDays(state, now)

	m.mu.Lock()
	if s, ok := m.sessions[userID]; ok {
		// Lost a race with another Open; keep the first one.
		m.mu.Unlock()
		s.touch(now)
		return s, nil
	}
	s := &Session{userID: userID, username: username, m: m, state: state, touched: now}
	m.sessions[userID] = s
	m.mu.Unlock()

	if created {
		if err := m.persistNow(ctx, s); err != nil {
			return nil, err
		}
		log.Printf("SESSION: new player %s", userID)
	} else if len(days) > 0 {
		s.mu.Lock()
		s.queue(writes{progress: true})
		s.mu.Unlock()
		log.Printf("SESSION: %s settled %d missed days", userID, len(days))
	}
	return s, nil
}

// Evict drops the live session for userID once every write it queued so far
// has landed, so the next Open reads them back. A session that is used again
// before then stays live. Evict reports whether the eviction was scheduled.
func (m *Manager) Evict(userID string) bool {
	s, ok := m.Get(userID)
	if !ok {
		return false
	}
	s.mu.Lock()
	gen, touched := s.gen, s.touched
	s.mu.Unlock()

	if m.deps.Queue == nil {
		m.drop(s, gen, touched)
		return true
	}
	return m.deps.Queue.Enqueue("evict:"+userID, func(context.Context) error {
		m.drop(s, gen, touched)
		return nil
	})
}

func (m *Manager) drop(s *Session, gen uint64, touched time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || !s.touched.Equal(touched) {
		return
	}
	m.mu.Lock()
	if m.sessions[s.userID] == s {
		delete(m.sessions, s.userID)
	}
	m.mu.Unlock()
}

func (m *Manager) load(ctx context.Context, userID, username string) (game.State, bool, error) {
	c := m.Catalog()
	now := m.now()

	p, err := m.deps.Profiles.Get(ctx, userID)
	if err != nil {
		return game.State{}, false, fmt.Errorf("load profile: %w", err)
	}
	if p == nil {
		s := c.NewState(c.StarterProfile(), now)
		s = c.SignupReward(s, now)
		return s, true, nil
	}

	s := c.NewState(game.UserProfile{
		Level:         p.Level,
		XP:            p.XP,
		MaxXP:         p.MaxXP,
		StarCoins:     p.StarCoins,
		Gems:          p.Gems,
		Streak:        p.Streak,
		Multiplier:    p.Multiplier,
		StreakShields: p.StreakShields,
		StepsToday:    p.StepsToday,
	}, now)
	if p.Language != "" {
		s.Language = p.Language
	}
	if p.CurrentBoss >= 0 && p.CurrentBoss < len(s.Bosses) {
		s.CurrentBoss = p.CurrentBoss
	}
	if p.Day != "" {
		s.Day = p.Day
	}

	rows, err := m.deps.Inventory.Load(ctx, userID)
	if err != nil {
		return game.State{}, false, fmt.Errorf("load inventory: %w", err)
	}
	for _, r := range rows {
		restoreItem(&s, game.ItemID(r.ItemID), r.Qty)
	}

	if m.deps.Bosses != nil {
		bosses, err := m.deps.Bosses.Load(ctx, userID)
		if err != nil {
			return game.State{}, false, fmt.Errorf("load bosses: %w", err)
		}
		for _, b := range bosses {
			restoreBoss(&s, b.BossID, b.HP)
		}
	}

	if from, err := time.ParseInLocation(game.DayLayout, s.Day, now.Location()); err == nil {
		logs, err := m.deps.HabitLogs.Between(ctx, userID, from, from.AddDate(0, 0, 1))
		if err != nil {
			return game.State{}, false, fmt.Errorf("load habit logs: %w", err)
		}
		for _, l := range logs {
			restoreCompletion(&s, l.HabitID, l.LoggedAt.In(now.Location()))
		}
	}
	return s, false, nil
}

// restoreBoss applies stored HP to a catalog boss. Bosses no longer in the
// catalog are ignored.
func restoreBoss(s *game.State, id, hp int) {
	for i := range s.Bosses {
		if s.Bosses[i].ID == id {
			s.Bosses[i].HP = max(0, min(hp, s.Bosses[i].MaxHP))
			return
		}
	}
}

func restoreCompletion(s *game.State, habitID int, at time.Time) {
	for i := range s.Habits {
		if s.Habits[i].ID == habitID && !s.Habits[i].Completed {
			s.Habits[i].Completed = true
			s.Habits[i].CompletedAt = &at
			return
		}
	}
}

func restoreItem(s *game.State, id game.ItemID, qty int) {
	for i := range s.Inventory {
		if s.Inventory[i].ID == id {
			s.Inventory[i].Qty = qty
			return
		}
	}
	s.Inventory = append(s.Inventory, game.InventoryItem{ID: id, Qty: qty})
}

// TickReport summarizes one heartbeat.
type TickReport struct {
	DaysClosed int
	Expired    int
	Evicted    int
}

// Tick closes finished days and expires stale notifications in every session,
// then evicts sessions idle for longer than IdleTTL with no open socket.
func (m *Manager) Tick(now time.Time) TickReport {
	m.mu.RLock()
	live := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		live = append(live, s)
	}
	m.mu.RUnlock()

	var rep TickReport
	for _, s := range live {
		closed, expired := s.tick(now)
		rep.DaysClosed += closed
		rep.Expired += expired

		if m.deps.IdleTTL > 0 && now.Sub(s.lastTouched()) >= m.deps.IdleTTL && !m.deps.Presence.Online(s.userID) {
			if m.Evict(s.userID) {
				rep.Evicted++
			}
		}
	}
	return rep
}

type globalRoller struct{}

func (globalRoller) Float64() float64 { return rand.Float64() }
func (globalRoller) Intn(n int) int   { return rand.IntN(n) }

type discardPusher struct{}

func (discardPusher) Push(string, string, any) {}

type offline struct{}

func (offline) Online(string) bool { return false }
