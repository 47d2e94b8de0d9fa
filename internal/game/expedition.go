/*
Package game
File: expedition.go
Description:
    Tracks a real-world walk: Idle -> Active -> Idle.

    While active, every position sample is checked against the loot crystals
    and, when it moves far enough from the last counted sample, extends the
    path and the distance reward. Stopping pays the distance reward out in a
    single transfer.
*/

package game

import (
	"errors"
	"time"
)

// ErrNoPositionFeed is returned when an expedition is started without an
// origin sample. Tracking never starts in that case.
var ErrNoPositionFeed = errors.New("no position feed available")

// ErrExpeditionActive is returned when starting an expedition that is already running.
var ErrExpeditionActive = errors.New("expedition already active")

// Movement is the outcome of one position sample.
type Movement struct {
	Counted       bool       `json:"counted"`
	DistanceDelta float64    `json:"distance_delta_km"`
	PointsDelta   int        `json:"points_delta"`
	Collected     []LootItem `json:"collected"`
	GemsFound     int        `json:"gems_found"`
}

// StartExpedition resets distance, points and path and seeds loot around
// origin. A nil origin means the position feed is missing.
func (c *Catalog) StartExpedition(s State, origin *Position, rng Roller) (State, error) {
	if origin == nil {
		return s, ErrNoPositionFeed
	}
	if s.Expedition.Active {
		return s, ErrExpeditionActive
	}
	next := s.Clone()
	start := *origin
	next.Expedition = Expedition{
		Active:  true,
		Path:    []Position{start},
		LastPos: &start,
		Loot:    c.GenerateLoot(start, rng),
	}
	return next, nil
}

// RecordPosition feeds one sample into the active expedition. Samples while
// idle are ignored.
func (c *Catalog) RecordPosition(s State, pos Position, now time.Time) (State, Movement) {
	var mv Movement
	if !s.Expedition.Active {
		return s, mv
	}
	next := s.Clone()
	exp := &next.Expedition

	if exp.LastPos == nil {
		// First sample of a feed that started without an anchor.
		p := pos
		exp.LastPos = &p
		exp.Path = append(exp.Path, pos)
	} else if km, moved := MeasureStep(*exp.LastPos, pos, c.Expedition.NoiseMeters); moved {
		before := exp.PointsEarned
		exp.TotalDistanceKm += km
		exp.PointsEarned = PointsForDistance(exp.TotalDistanceKm, c.Expedition.PointsPerKm)
		exp.Path = append(exp.Path, pos)
		p := pos
		exp.LastPos = &p

		mv.Counted = true
		mv.DistanceDelta = km
		mv.PointsDelta = exp.PointsEarned - before
	}

	var collected []LootItem
	exp.Loot, collected, mv.GemsFound = CheckLootProximity(pos, exp.Loot, c.Expedition.PickupMeters)
	mv.Collected = collected
	if mv.GemsFound > 0 {
		next.Profile.Gems += mv.GemsFound
		next.notify(next.sprintf(msgLootFound, mv.GemsFound), now)
	}
	return next, mv
}

// CheckLootProximity collects every active crystal strictly within radius
// meters of pos. Collected crystals are deactivated, so a repeat check at the
// same spot collects nothing.
func CheckLootProximity(pos Position, loot []LootItem, radiusMeters float64) ([]LootItem, []LootItem, int) {
	out := make([]LootItem, len(loot))
	copy(out, loot)

	var collected []LootItem
	total := 0
	for i := range out {
		if !out[i].Active {
			continue
		}
		if Haversine(pos, out[i].Position)*1000 < radiusMeters {
			out[i].Active = false
			collected = append(collected, out[i])
			total += out[i].Value
		}
	}
	return out, collected, total
}

// ExpeditionSummary is what StopExpedition paid out.
type ExpeditionSummary struct {
	DistanceKm float64 `json:"distance_km"`
	GemsEarned int     `json:"gems_earned"`
}

// StopExpedition ends tracking and credits the accumulated points as gems.
// Stopping an idle expedition is a no-op.
func (c *Catalog) StopExpedition(s State, now time.Time) (State, ExpeditionSummary, bool) {
	if !s.Expedition.Active {
		return s, ExpeditionSummary{}, false
	}
	next := s.Clone()
	sum := ExpeditionSummary{
		DistanceKm: next.Expedition.TotalDistanceKm,
		GemsEarned: next.Expedition.PointsEarned,
	}
	next.Expedition.Active = false
	next.Expedition.LastPos = nil
	if sum.GemsEarned > 0 {
		next.Profile.Gems += sum.GemsEarned
		next.notify(next.sprintf(msgExpeditionDone, sum.GemsEarned), now)
	}
	return next, sum, true
}
