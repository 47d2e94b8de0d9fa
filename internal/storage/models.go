package storage

import "time"

type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile is the persisted slice of a player's progression. Habit completions
// are rebuilt from habit_logs and boss HP lives in boss_hp; expeditions are
// never stored.
type Profile struct {
	UserID        string
	Username      string
	Level         int
	XP            int
	MaxXP         int
	Streak        int
	StarCoins     int
	Gems          int
	StreakShields int
	Language      string
	Multiplier    float64 // Pending XP multiplier; 0 reads as 1.0
	CurrentBoss   int
	StepsToday    int
	Day           string // Calendar day the progress belongs to
	UpdatedAt     time.Time
}

type HabitLog struct {
	ID       int64
	UserID   string
	HabitID  int
	XPGained int
	DmgDealt int
	LoggedAt time.Time
}

// BossRow is one boss's remaining HP for a player.
type BossRow struct {
	BossID int
	HP     int
}

type InventoryRow struct {
	ItemID string
	Qty    int
}

// RankEntry is one row of the leaderboard.
type RankEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	XP       int    `json:"xp"`
	Streak   int    `json:"streak"`
}
