/*
Package game
File: items.go
Description:
    Consumable item effects.

    Each item kind is its own effect type carrying its payload. effectFor
    resolves an ItemID to its effect with an exhaustive switch, so adding a
    kind without an effect fails loudly instead of silently doing nothing.
*/

package game

import (
	"fmt"
	"time"
)

// ItemEffect is a one-shot effect applied when an item is consumed. Apply
// mutates the (already cloned) state and returns the notification text.
type ItemEffect interface {
	Item() ItemID
	Apply(s *State) string
}

// OrbitalStrike damages the currently selected boss.
type OrbitalStrike struct {
	Damage int
}

func (OrbitalStrike) Item() ItemID { return ItemOrbitalStrike }

func (e OrbitalStrike) Apply(s *State) string {
	s.damageBoss(s.CurrentBoss, e.Damage)
	return s.sprintf(msgOrbitalStrike, e.Damage)
}

// WarpDrive overwrites the XP multiplier for the next habit. It does not stack.
type WarpDrive struct {
	Multiplier float64
}

func (WarpDrive) Item() ItemID { return ItemWarpDrive }

func (e WarpDrive) Apply(s *State) string {
	s.Profile.Multiplier = e.Multiplier
	return s.sprintf(msgWarpDrive, e.Multiplier)
}

// StasisField banks streak shields that CloseDay spends on a missed day.
type StasisField struct {
	Charges int
}

func (StasisField) Item() ItemID { return ItemStasisField }

func (e StasisField) Apply(s *State) string {
	s.Profile.StreakShields += e.Charges
	return s.sprintf(msgStasisField)
}

// ItemResult reports what UseItem did.
type ItemResult struct {
	Applied      bool   `json:"applied"`
	Item         ItemID `json:"item"`
	Remaining    int    `json:"remaining"`
	BossHP       int    `json:"boss_hp,omitempty"`
	BossDefeated bool   `json:"boss_defeated,omitempty"`
}

// effectFor builds the effect for id from the catalog magnitudes.
func (c *Catalog) effectFor(id ItemID) (ItemEffect, error) {
	cfg := c.Item(id)
	if cfg == nil {
		return nil, fmt.Errorf("item %q not in catalog", id)
	}
	switch id {
	case ItemOrbitalStrike:
		return OrbitalStrike{Damage: cfg.Damage}, nil
	case ItemWarpDrive:
		return WarpDrive{Multiplier: cfg.Multiplier}, nil
	case ItemStasisField:
		charges := cfg.Charges
		if charges <= 0 {
			charges = 1
		}
		return StasisField{Charges: charges}, nil
	default:
		return nil, fmt.Errorf("item %q has no effect", id)
	}
}

// UseItem consumes one unit of an item and applies its effect. Unknown items
// and empty stacks are a no-op with no notification.
func (c *Catalog) UseItem(s State, id ItemID, now time.Time) (State, ItemResult) {
	res := ItemResult{Item: id}
	idx := s.itemIndex(id)
	if idx < 0 || s.Inventory[idx].Qty <= 0 {
		return s, res
	}
	effect, err := c.effectFor(id)
	if err != nil {
		return s, res
	}

	next := s.Clone()
	next.Inventory[idx].Qty--
	text := effect.Apply(&next)
	next.notify(text, now)

	res.Applied = true
	res.Remaining = next.Inventory[idx].Qty
	if _, ok := effect.(OrbitalStrike); ok {
		if b, ok := next.CurrentBossState(); ok {
			res.BossHP = b.HP
			res.BossDefeated = b.HP == 0
		}
	}
	return next, res
}
