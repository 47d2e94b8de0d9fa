/*
Package game
File: models.go
Description:
    Defines the data structures used throughout Habit Galaxy.
    This file serves as the "schema" for the application, mapping directly to
    the YAML catalog (galaxy.yaml) and to JSON API responses.

    No logic is performed here; this file is strictly for type definitions.
*/

package game

import "time"

// ItemID identifies one of the fixed consumable item kinds.
type ItemID string

const (
	ItemOrbitalStrike ItemID = "orbital_strike"
	ItemWarpDrive     ItemID = "warp_drive"
	ItemStasisField   ItemID = "stasis_field"
)

// UserProfile holds the player's resources and progression counters.
type UserProfile struct {
	Level         int     `json:"level"`          // Positive; starts at 1
	XP            int     `json:"xp"`             // Always < MaxXP after a reward is applied
	MaxXP         int     `json:"max_xp"`         // Threshold for the next level; grows x1.5 per level
	StarCoins     int     `json:"star_coins"`     // Soft currency
	Gems          int     `json:"gems"`           // Hard currency, spent in the gacha store
	Streak        int     `json:"streak"`         // Consecutive active days
	Multiplier    float64 `json:"multiplier"`     // XP scalar consumed by the next habit completion
	StreakShields int     `json:"streak_shields"` // Stasis charges that protect the streak on a missed day
	StepsToday    int     `json:"steps_today"`    // Steps synced from a health source since the day opened
}

// Habit is a daily action the player can complete once per day.
type Habit struct {
	ID          int        `yaml:"id" json:"id"`
	Name        string     `yaml:"name" json:"name"`
	XPReward    int        `yaml:"xp_reward" json:"xp_reward"` // Base XP before the multiplier
	Dmg         int        `yaml:"dmg" json:"dmg"`             // Damage dealt to the current boss
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Boss is a quest target whose HP is worn down by habits and items.
type Boss struct {
	ID    int    `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	HP    int    `yaml:"hp" json:"hp"`         // Clamped to [0, MaxHP]; 0 means defeated
	MaxHP int    `yaml:"max_hp" json:"max_hp"` // Fixed at creation
}

// InventoryItem is a stack of one consumable kind.
type InventoryItem struct {
	ID  ItemID `json:"id"`
	Qty int    `json:"qty"` // Never negative
}

// Notification is a short-lived message shown to the player.
type Notification struct {
	ID        int64     `json:"id"` // Creation time in unix milliseconds, unique per session
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Position is a single sample from the player's position feed.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LootItem is a geofenced crystal placed around an expedition's origin.
type LootItem struct {
	ID       int      `json:"id"`
	Position Position `json:"position"`
	Value    int      `json:"value"`  // Gems granted on pickup
	Active   bool     `json:"active"` // False once collected
}

// Expedition is the transient state of a tracked walk. It is never persisted.
type Expedition struct {
	Active          bool       `json:"active"`
	Path            []Position `json:"path"`
	LastPos         *Position  `json:"last_pos,omitempty"` // Last sample that counted as movement
	TotalDistanceKm float64    `json:"total_distance_km"`
	PointsEarned    int        `json:"points_earned"` // floor(TotalDistanceKm * PointsPerKm)
	Loot            []LootItem `json:"loot"`
}

// ItemConfig describes one consumable kind and the magnitude of its effect.
type ItemConfig struct {
	ID          ItemID  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	StarterQty  int     `yaml:"starter_qty" json:"-"` // Quantity granted to a brand new player
	Damage      int     `yaml:"damage" json:"-"`      // orbital_strike
	Multiplier  float64 `yaml:"multiplier" json:"-"`  // warp_drive
	Charges     int     `yaml:"charges" json:"-"`     // stasis_field
}

// DrawEntry is one bucket of the gacha table. Buckets are checked in order and
// a roll r lands in the first bucket with r < Below.
type DrawEntry struct {
	Below     float64 `yaml:"below"`
	Item      ItemID  `yaml:"item"`       // Empty for a star coin bucket
	StarCoins int     `yaml:"star_coins"` // Used when Item is empty
}

// GachaConfig is the mystery box store configuration.
type GachaConfig struct {
	Cost  int         `yaml:"cost"`
	Table []DrawEntry `yaml:"table"`
}

// ExpeditionConfig tunes distance rewards and loot placement.
type ExpeditionConfig struct {
	NoiseMeters   float64 `yaml:"noise_meters"`    // Movement at or below this is discarded
	PointsPerKm   int     `yaml:"points_per_km"`   // Gems per kilometer walked
	PickupMeters  float64 `yaml:"pickup_meters"`   // Loot strictly within this radius is collected
	LootCount     int     `yaml:"loot_count"`      // Crystals seeded per expedition
	LootSpreadDeg float64 `yaml:"loot_spread_deg"` // Max offset from origin, per axis, in degrees
	LootMinValue  int     `yaml:"loot_min_value"`  // Inclusive
	LootMaxValue  int     `yaml:"loot_max_value"`  // Inclusive
}

// Balance stores global tuning values loaded from 'galaxy.yaml'.
type Balance struct {
	SignupGems      int     `yaml:"signup_gems"`
	StarterMaxXP    int     `yaml:"starter_max_xp"`
	LevelGrowth     float64 `yaml:"level_growth"` // maxXp multiplier per level-up
	StepsPerGem     int     `yaml:"steps_per_gem"`
	DefaultLanguage string  `yaml:"default_language"`
}

// Catalog is the root configuration struct, mapping to the entire 'galaxy.yaml' file.
type Catalog struct {
	Balance    Balance          `yaml:"balance"`
	Habits     []Habit          `yaml:"habits"`
	Bosses     []Boss           `yaml:"bosses"`
	Items      []ItemConfig     `yaml:"items"`
	Gacha      GachaConfig      `yaml:"gacha"`
	Expedition ExpeditionConfig `yaml:"expedition"`
}

// State is everything one player session owns. Game operations take a State
// by value and return the next one; the caller decides where it lives.
type State struct {
	Profile       UserProfile     `json:"profile"`
	Habits        []Habit         `json:"habits"`
	Bosses        []Boss          `json:"bosses"`
	CurrentBoss   int             `json:"current_boss"`
	Inventory     []InventoryItem `json:"inventory"`
	Notifications []Notification  `json:"notifications"`
	Expedition    Expedition      `json:"expedition"`
	Language      string          `json:"language"`
	Day           string          `json:"day"` // Calendar day (YYYY-MM-DD) currently open
}
