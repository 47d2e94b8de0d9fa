package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/everforgeworks/habit-galaxy/internal/game"
	"github.com/everforgeworks/habit-galaxy/internal/storage"
)

// Event kinds pushed to a player's sockets.
const (
	EventNotification = "notification"
	EventState        = "state"
	EventNewDay       = "new_day"
)

// Session is one player's live state.
type Session struct {
	userID   string
	username string
	m        *Manager

	mu      sync.Mutex
	state   game.State
	touched time.Time // Last request that opened the session
	gen     uint64    // Bumped on every queued write
}

func (s *Session) UserID() string { return s.userID }

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.touched = now
	s.mu.Unlock()
}

func (s *Session) lastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// writes says which rows an operation dirtied.
type writes struct {
	progress  bool
	inventory bool
	bosses    bool
	habitLog  *storage.HabitLog
}

// commit installs next, pushes the notifications it added and queues writes.
// Callers hold s.mu.
func (s *Session) commit(next game.State, w writes) {
	prev := s.state
	s.state = next
	for _, n := range newNotifications(prev, next) {
		s.m.deps.Pusher.Push(s.userID, EventNotification, n)
	}
	s.queue(w)
}

func newNotifications(prev, next game.State) []game.Notification {
	var last int64
	if k := len(prev.Notifications); k > 0 {
		last = prev.Notifications[k-1].ID
	}
	var out []game.Notification
	for _, n := range next.Notifications {
		if n.ID > last {
			out = append(out, n)
		}
	}
	return out
}

func (s *Session) queue(w writes) {
	q := s.m.deps.Queue
	if q == nil {
		return
	}
	if w.habitLog != nil || w.progress || w.inventory || w.bosses {
		s.gen++
	}
	if w.habitLog != nil {
		l := *w.habitLog
		q.Enqueue("habit_log:"+s.userID, func(ctx context.Context) error {
			return s.m.deps.HabitLogs.Append(ctx, &l)
		})
	}
	if w.progress {
		p := s.profileRow()
		q.Enqueue("progress:"+s.userID, func(ctx context.Context) error {
			return s.m.deps.Profiles.Save(ctx, &p)
		})
	}
	if w.inventory {
		rows := s.inventoryRows()
		q.Enqueue("inventory:"+s.userID, func(ctx context.Context) error {
			return s.m.deps.Inventory.Save(ctx, s.userID, rows)
		})
	}
	if w.bosses && s.m.deps.Bosses != nil {
		rows := s.bossRows()
		q.Enqueue("bosses:"+s.userID, func(ctx context.Context) error {
			return s.m.deps.Bosses.Save(ctx, s.userID, rows)
		})
	}
}

func (s *Session) profileRow() storage.Profile {
	p := s.state.Profile
	return storage.Profile{
		UserID:        s.userID,
		Username:      s.username,
		Level:         p.Level,
		XP:            p.XP,
		MaxXP:         p.MaxXP,
		Streak:        p.Streak,
		StarCoins:     p.StarCoins,
		Gems:          p.Gems,
		StreakShields: p.StreakShields,
		Language:      s.state.Language,
		Multiplier:    p.Multiplier,
		CurrentBoss:   s.state.CurrentBoss,
		StepsToday:    p.StepsToday,
		Day:           s.state.Day,
		UpdatedAt:     s.m.now().UTC(),
	}
}

func (s *Session) bossRows() []storage.BossRow {
	rows := make([]storage.BossRow, 0, len(s.state.Bosses))
	for _, b := range s.state.Bosses {
		rows = append(rows, storage.BossRow{BossID: b.ID, HP: b.HP})
	}
	return rows
}

func (s *Session) inventoryRows() []storage.InventoryRow {
	rows := make([]storage.InventoryRow, 0, len(s.state.Inventory))
	for _, it := range s.state.Inventory {
		rows = append(rows, storage.InventoryRow{ItemID: string(it.ID), Qty: it.Qty})
	}
	return rows
}

// persistNow writes profile, inventory and boss HP synchronously.
func (m *Manager) persistNow(ctx context.Context, s *Session) error {
	s.mu.Lock()
	p := s.profileRow()
	rows := s.inventoryRows()
	bosses := s.bossRows()
	s.mu.Unlock()

	if err := m.deps.Profiles.Save(ctx, &p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if err := m.deps.Inventory.Save(ctx, s.userID, rows); err != nil {
		return fmt.Errorf("save inventory: %w", err)
	}
	if m.deps.Bosses != nil {
		if err := m.deps.Bosses.Save(ctx, s.userID, bosses); err != nil {
			return fmt.Errorf("save bosses: %w", err)
		}
	}
	return nil
}

// CompleteHabit marks a habit done, rewards XP and damages the current boss.
func (s *Session) CompleteHabit(habitID int) (game.HabitResult, game.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.m.now()
	next, res := s.m.Catalog().CompleteHabit(s.state, habitID, now)
	if !res.Applied {
		return res, s.state.Clone()
	}
	s.commit(next, writes{
		progress: true,
		bosses:   res.DmgDealt > 0,
		habitLog: &storage.HabitLog{
			UserID:   s.userID,
			HabitID:  habitID,
			XPGained: res.Reward.XPGained,
			DmgDealt: res.DmgDealt,
			LoggedAt: now,
		},
	})
	return res, s.state.Clone()
}

// UseItem consumes one item from the inventory.
func (s *Session) UseItem(id game.ItemID) (game.ItemResult, game.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, res := s.m.Catalog().UseItem(s.state, id, s.m.now())
	if res.Applied {
		s.commit(next, writes{progress: true, inventory: true, bosses: id == game.ItemOrbitalStrike})
	}
	return res, s.state.Clone()
}

// Draw buys one mystery box. A nil reward means the player could not afford it.
func (s *Session) Draw() (*game.Reward, game.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, reward := s.m.Catalog().DrawReward(s.state, s.m.rng, s.m.now())
	if reward != nil {
		s.commit(next, writes{progress: true, inventory: reward.Kind == game.RewardItem})
	}
	return reward, s.state.Clone()
}

// SelectBoss switches the boss that habits and strikes damage.
func (s *Session) SelectBoss(index int) (bool, game.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := game.SelectBoss(s.state, index)
	if ok {
		s.commit(next, writes{progress: next.CurrentBoss != s.state.CurrentBoss})
	}
	return ok, s.state.Clone()
}

// StartExpedition begins tracking from origin.
func (s *Session) StartExpedition(origin *game.Position) (game.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.m.Catalog().StartExpedition(s.state, origin, s.m.rng)
	if err != nil {
		return s.state.Clone(), err
	}
	s.commit(next, writes{})
	return s.state.Clone(), nil
}

// RecordPosition feeds one position sample into the active expedition.
func (s *Session) RecordPosition(pos game.Position) (game.Movement, game.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, mv := s.m.Catalog().RecordPosition(s.state, pos, s.m.now())
	s.commit(next, writes{progress: mv.GemsFound > 0})
	return mv, s.state.Clone()
}

// StopExpedition ends tracking and pays out distance gems.
func (s *Session) StopExpedition() (game.ExpeditionSummary, bool, game.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, sum, ok := s.m.Catalog().StopExpedition(s.state, s.m.now())
	if ok {
		s.commit(next, writes{progress: sum.GemsEarned > 0})
	}
	return sum, ok, s.state.Clone()
}

// SyncSteps credits steps reported by a health source.
func (s *Session) SyncSteps(steps int) (int, game.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, gems := s.m.Catalog().SyncSteps(s.state, steps, s.m.now())
	if steps > 0 {
		s.commit(next, writes{progress: true})
	}
	return gems, s.state.Clone()
}

// Dismiss removes a notification.
func (s *Session) Dismiss(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := game.Dismiss(s.state, id)
	if ok {
		s.state = next
	}
	return ok
}

// SetLanguage changes the language of future notifications.
func (s *Session) SetLanguage(lang string) (bool, game.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := game.SetLanguage(s.state, lang)
	if ok {
		s.commit(next, writes{progress: true})
	}
	return ok, s.state.Clone()
}

// tick runs the periodic day close and notification expiry. It returns how
// many days were closed and how many notifications expired.
func (s *Session) tick(now time.Time) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, days := game.CloseDays(s.state, now)
	if len(days) > 0 {
		s.commit(next, writes{progress: true})
		for _, day := range days {
			s.m.deps.Pusher.Push(s.userID, EventNewDay, day)
		}
	}

	next, expired := game.ExpireNotifications(s.state, now, s.m.deps.NotificationTTL)
	if expired > 0 {
		s.state = next
		s.m.deps.Pusher.Push(s.userID, EventState, s.state.Clone())
	}
	return len(days), expired
}
