/*
Package game
File: state.go
Description:
    Loads the static catalog and builds per-player State values.

    The catalog ('galaxy.yaml') is immutable once loaded. A reload produces a
    fresh *Catalog; sessions pick it up on their next operation.
    State values are owned by whoever holds them (see internal/session);
    nothing in this package keeps global mutable state.
*/

package game

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DayLayout is the calendar-day key format used by State.Day.
const DayLayout = "2006-01-02"

// DefaultCatalog returns the built-in universe used when no YAML is provided
// and as the base that YAML values are merged onto.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Balance: Balance{
			SignupGems:      100,
			StarterMaxXP:    100,
			LevelGrowth:     1.5,
			StepsPerGem:     100,
			DefaultLanguage: "en",
		},
		Habits: []Habit{
			{ID: 1, Name: "30m Walk", XPReward: 50, Dmg: 1500},
			{ID: 2, Name: "Gym Session", XPReward: 150, Dmg: 5000},
			{ID: 3, Name: "Morning Yoga", XPReward: 30, Dmg: 900},
		},
		Bosses: []Boss{
			{ID: 1, Name: "King Sloth", HP: 1000000, MaxHP: 1000000},
			{ID: 2, Name: "Void Dragon", HP: 1500000, MaxHP: 1500000},
			{ID: 3, Name: "Neon Golem", HP: 3000000, MaxHP: 3000000},
		},
		Items: []ItemConfig{
			{ID: ItemOrbitalStrike, Name: "Orbital Strike", Description: "Instantly deal 50,000 damage to the current boss.", Damage: 50000},
			{ID: ItemWarpDrive, Name: "Warp Drive", Description: "Next habit grants 2.0x XP multiplier.", Multiplier: 2.0},
			{ID: ItemStasisField, Name: "Stasis Field", Description: "Protects your streak for 1 day.", Charges: 1},
		},
		Gacha: GachaConfig{
			Cost: 100,
			Table: []DrawEntry{
				{Below: 0.10, Item: ItemOrbitalStrike},
				{Below: 0.25, Item: ItemWarpDrive},
				{Below: 0.50, Item: ItemStasisField},
				{Below: 1.00, StarCoins: 500},
			},
		},
		Expedition: ExpeditionConfig{
			NoiseMeters:   5,
			PointsPerKm:   100,
			PickupMeters:  50,
			LootCount:     8,
			LootSpreadDeg: 0.0015,
			LootMinValue:  20,
			LootMaxValue:  69,
		},
	}
}

// LoadCatalog reads the YAML catalog at path on top of DefaultCatalog.
func LoadCatalog(path string) (*Catalog, error) {
	// 1. Read the YAML file
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	// 2. Unmarshal onto the defaults so omitted sections keep sane values
	c := DefaultCatalog()
	if err := yaml.Unmarshal(f, c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	// 3. Reject tables that would break the reward math
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the invariants the game functions rely on.
func (c *Catalog) Validate() error {
	if c.Balance.StarterMaxXP <= 0 {
		return errors.New("catalog: starter_max_xp must be positive")
	}
	if c.Balance.LevelGrowth <= 1 {
		return errors.New("catalog: level_growth must be greater than 1")
	}
	if c.Gacha.Cost <= 0 {
		return errors.New("catalog: gacha cost must be positive")
	}
	if len(c.Gacha.Table) == 0 {
		return errors.New("catalog: gacha table is empty")
	}
	prev := 0.0
	for i, e := range c.Gacha.Table {
		if e.Below <= prev || e.Below > 1 {
			return fmt.Errorf("catalog: gacha bucket %d bound %.4f must increase within (0, 1]", i, e.Below)
		}
		if e.Item != "" && c.Item(e.Item) == nil {
			return fmt.Errorf("catalog: gacha bucket %d references unknown item %q", i, e.Item)
		}
		prev = e.Below
	}
	if last := c.Gacha.Table[len(c.Gacha.Table)-1]; last.Below != 1 {
		return errors.New("catalog: last gacha bucket must end at 1.0")
	}
	if c.Expedition.LootMaxValue < c.Expedition.LootMinValue {
		return errors.New("catalog: loot_max_value below loot_min_value")
	}
	for _, b := range c.Bosses {
		if b.MaxHP <= 0 {
			return fmt.Errorf("catalog: boss %d needs a positive max_hp", b.ID)
		}
	}
	for _, h := range c.Habits {
		if h.XPReward <= 0 || h.Dmg <= 0 {
			return fmt.Errorf("catalog: habit %d needs a positive xp_reward and dmg", h.ID)
		}
	}
	for _, it := range c.Items {
		if err := it.validate(); err != nil {
			return err
		}
	}
	return nil
}

// validate checks that the item is a known kind with an effect that does
// something when used.
func (it ItemConfig) validate() error {
	if it.StarterQty < 0 {
		return fmt.Errorf("catalog: item %q starter_qty must not be negative", it.ID)
	}
	switch it.ID {
	case ItemOrbitalStrike:
		if it.Damage <= 0 {
			return fmt.Errorf("catalog: item %q needs a positive damage", it.ID)
		}
	case ItemWarpDrive:
		if it.Multiplier <= 1 {
			return fmt.Errorf("catalog: item %q needs a multiplier greater than 1", it.ID)
		}
	case ItemStasisField:
		if it.Charges < 0 {
			return fmt.Errorf("catalog: item %q charges must not be negative", it.ID)
		}
	default:
		return fmt.Errorf("catalog: unknown item %q", it.ID)
	}
	return nil
}

// Item is a helper to retrieve an item's configuration by its ID.
// Returns nil if not found.
func (c *Catalog) Item(id ItemID) *ItemConfig {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}

// StarterProfile returns the resources a brand new player signs up with.
func (c *Catalog) StarterProfile() UserProfile {
	return UserProfile{
		Level:      1,
		XP:         0,
		MaxXP:      c.Balance.StarterMaxXP,
		Gems:       c.Balance.SignupGems,
		Multiplier: 1.0,
	}
}

// NewState builds a fresh session state from the catalog. Bosses start at
// their configured HP (clamped to MaxHP) and every catalog item gets a slot.
func (c *Catalog) NewState(profile UserProfile, now time.Time) State {
	s := State{
		Profile:  profile,
		Language: c.Balance.DefaultLanguage,
		Day:      now.Format(DayLayout),
	}
	if s.Profile.Multiplier <= 0 {
		s.Profile.Multiplier = 1.0
	}

	s.Habits = make([]Habit, len(c.Habits))
	for i, h := range c.Habits {
		s.Habits[i] = Habit{ID: h.ID, Name: h.Name, XPReward: h.XPReward, Dmg: h.Dmg}
	}

	s.Bosses = make([]Boss, len(c.Bosses))
	for i, b := range c.Bosses {
		if b.HP <= 0 || b.HP > b.MaxHP {
			b.HP = b.MaxHP
		}
		s.Bosses[i] = b
	}

	s.Inventory = make([]InventoryItem, len(c.Items))
	for i, it := range c.Items {
		s.Inventory[i] = InventoryItem{ID: it.ID, Qty: it.StarterQty}
	}
	s.Notifications = []Notification{}
	s.Expedition = Expedition{Path: []Position{}, Loot: []LootItem{}}
	return s
}

// Clone returns a deep copy so callers can mutate the result freely.
func (s State) Clone() State {
	out := s
	out.Habits = cloneSlice(s.Habits)
	for i := range out.Habits {
		if t := out.Habits[i].CompletedAt; t != nil {
			tt := *t
			out.Habits[i].CompletedAt = &tt
		}
	}
	out.Bosses = cloneSlice(s.Bosses)
	out.Inventory = cloneSlice(s.Inventory)
	out.Notifications = cloneSlice(s.Notifications)
	out.Expedition.Path = cloneSlice(s.Expedition.Path)
	out.Expedition.Loot = cloneSlice(s.Expedition.Loot)
	if p := s.Expedition.LastPos; p != nil {
		pp := *p
		out.Expedition.LastPos = &pp
	}
	return out
}

// cloneSlice copies in, keeping nil and empty slices distinct.
func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(in[:0:0], in...)
}

// ItemQty returns the quantity held for an item, 0 if the slot is missing.
func (s State) ItemQty(id ItemID) int {
	if i := s.itemIndex(id); i >= 0 {
		return s.Inventory[i].Qty
	}
	return 0
}

func (s State) itemIndex(id ItemID) int {
	for i, it := range s.Inventory {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s State) habitIndex(id int) int {
	for i, h := range s.Habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// addItem credits qty of an item, creating the slot if the inventory lacks it.
func (s *State) addItem(id ItemID, qty int) {
	if i := s.itemIndex(id); i >= 0 {
		s.Inventory[i].Qty += qty
		return
	}
	s.Inventory = append(s.Inventory, InventoryItem{ID: id, Qty: qty})
}
