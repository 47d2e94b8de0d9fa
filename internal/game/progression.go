/*
Package game
File: progression.go
Description:
    XP, levels and habit completion.

    A habit completion is the main reward loop: XP scaled by the one-shot
    multiplier, level rollover, and damage dealt to the selected boss.
*/

package game

import (
	"math"
	"time"
)

// HabitReward is the XP side of a habit completion.
type HabitReward struct {
	XPGained     int  `json:"xp_gained"`
	LeveledUp    bool `json:"leveled_up"`
	LevelsGained int  `json:"levels_gained"`
}

// HabitResult reports what CompleteHabit did. Applied is false when the
// habit was unknown or already completed and nothing changed.
type HabitResult struct {
	Applied      bool        `json:"applied"`
	HabitID      int         `json:"habit_id"`
	Reward       HabitReward `json:"reward"`
	DmgDealt     int         `json:"dmg_dealt"`
	BossHP       int         `json:"boss_hp"`
	BossDefeated bool        `json:"boss_defeated"`
}

// ApplyHabitReward credits floor(xpReward * multiplier) XP, rolls over as
// many levels as the gain covers, and consumes the multiplier.
func ApplyHabitReward(p UserProfile, h Habit, growth float64) (UserProfile, HabitReward) {
	mult := p.Multiplier
	if mult <= 0 {
		mult = 1.0
	}
	gained := int(math.Floor(float64(h.XPReward) * mult))

	p.XP += gained
	levels := 0
	for p.MaxXP > 0 && p.XP >= p.MaxXP {
		p.XP -= p.MaxXP
		p.Level++
		p.MaxXP = int(math.Floor(float64(p.MaxXP) * growth))
		levels++
	}
	p.Multiplier = 1.0

	return p, HabitReward{XPGained: gained, LeveledUp: levels > 0, LevelsGained: levels}
}

// CompleteHabit marks a habit done, applies its reward, damages the current
// boss and emits one notification. Unknown or completed habits are a no-op.
func (c *Catalog) CompleteHabit(s State, habitID int, now time.Time) (State, HabitResult) {
	idx := s.habitIndex(habitID)
	if idx < 0 || s.Habits[idx].Completed {
		return s, HabitResult{HabitID: habitID}
	}

	next := s.Clone()
	h := &next.Habits[idx]
	h.Completed = true
	completedAt := now
	h.CompletedAt = &completedAt

	var reward HabitReward
	next.Profile, reward = ApplyHabitReward(next.Profile, *h, c.Balance.LevelGrowth)

	res := HabitResult{Applied: true, HabitID: habitID, Reward: reward, DmgDealt: h.Dmg}
	if hp, ok := next.damageBoss(next.CurrentBoss, h.Dmg); ok {
		res.BossHP = hp
		res.BossDefeated = hp == 0
	}

	next.notify(next.sprintf(msgHabitDone, h.Dmg, reward.XPGained), now)
	return next, res
}
