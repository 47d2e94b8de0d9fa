/*
Package game
File: economy.go
Description:
    Handles the randomized side of the economy.
    This includes:
    1. Resolving mystery box (gacha) draws against the cumulative odds table.
    2. Scattering loot crystals around an expedition's origin.
*/

package game

import (
	"math"
	"time"
)

// Roller is the randomness source for draws and loot placement.
// *math/rand.Rand satisfies it.
type Roller interface {
	Float64() float64
	Intn(n int) int
}

// RewardKind tags what a gacha draw granted.
type RewardKind string

const (
	RewardItem      RewardKind = "item"
	RewardStarCoins RewardKind = "star_coins"
)

// Reward is the outcome of one gacha draw.
type Reward struct {
	Kind   RewardKind `json:"type"`
	Item   ItemID     `json:"id,omitempty"`
	Amount int        `json:"amount"`
}

// ResolveDraw maps a roll r in [0,1) onto the table. Buckets are half-open:
// r lands in the first bucket whose Below bound is strictly greater than r.
func ResolveDraw(table []DrawEntry, r float64) Reward {
	return table[DrawBucket(table, r)].reward()
}

// DrawBucket returns the index of the bucket r lands in. A roll at or past
// the last bound, only possible from a misbehaving roller, maps to the last
// bucket.
func DrawBucket(table []DrawEntry, r float64) int {
	for i, e := range table {
		if r < e.Below {
			return i
		}
	}
	return len(table) - 1
}

func (e DrawEntry) reward() Reward {
	if e.Item != "" {
		return Reward{Kind: RewardItem, Item: e.Item, Amount: 1}
	}
	return Reward{Kind: RewardStarCoins, Amount: e.StarCoins}
}

// DrawReward spends the gacha cost in gems and grants one reward. It returns
// a nil reward and the unchanged state when the player cannot afford it.
func (c *Catalog) DrawReward(s State, rng Roller, now time.Time) (State, *Reward) {
	if s.Profile.Gems < c.Gacha.Cost {
		return s, nil
	}

	next := s.Clone()
	next.Profile.Gems -= c.Gacha.Cost

	reward := ResolveDraw(c.Gacha.Table, rng.Float64())
	switch reward.Kind {
	case RewardItem:
		next.addItem(reward.Item, reward.Amount)
		name := string(reward.Item)
		if cfg := c.Item(reward.Item); cfg != nil {
			name = cfg.Name
		}
		next.notify(next.sprintf(msgGachaItem, name), now)
	case RewardStarCoins:
		next.Profile.StarCoins += reward.Amount
		next.notify(next.sprintf(msgGachaStarCoins, reward.Amount), now)
	}
	return next, &reward
}

// GenerateLoot scatters the configured number of crystals uniformly within
// LootSpreadDeg of origin on each axis.
func (c *Catalog) GenerateLoot(origin Position, rng Roller) []LootItem {
	cfg := c.Expedition
	span := cfg.LootMaxValue - cfg.LootMinValue + 1
	loot := make([]LootItem, 0, cfg.LootCount)
	for i := 0; i < cfg.LootCount; i++ {
		value := cfg.LootMinValue
		if span > 1 {
			value += rng.Intn(span)
		}
		loot = append(loot, LootItem{
			ID: i,
			Position: Position{
				Latitude:  origin.Latitude + (rng.Float64()*2-1)*cfg.LootSpreadDeg,
				Longitude: origin.Longitude + (rng.Float64()*2-1)*cfg.LootSpreadDeg,
			},
			Value:  value,
			Active: true,
		})
	}
	return loot
}

// DrawOdds returns the probability of each bucket, in table order.
func DrawOdds(table []DrawEntry) []float64 {
	odds := make([]float64, len(table))
	prev := 0.0
	for i, e := range table {
		odds[i] = math.Max(0, e.Below-prev)
		prev = e.Below
	}
	return odds
}
