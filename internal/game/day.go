package game

import "time"

// DayResult reports how CloseDay settled the streak.
type DayResult struct {
	Closed      bool   `json:"closed"`
	ClosedDay   string `json:"closed_day"`
	Active      bool   `json:"active"`       // At least one habit was completed
	ShieldUsed  bool   `json:"shield_used"`  // A stasis charge saved the streak
	StreakReset bool   `json:"streak_reset"` // The streak dropped to zero
	Streak      int    `json:"streak"`
}

// CloseDay settles the open day once the calendar has moved past it. An
// active day extends the streak; an idle day spends a stasis charge if one is
// banked and otherwise resets the streak. Habits and step counts reset for
// the new day.
func CloseDay(s State, now time.Time) (State, DayResult) {
	return closeDay(s, now.Format(DayLayout), now)
}

// CloseDays settles every calendar day between the open day and now, one day
// at a time, so days that passed without a live session still extend, shield
// or reset the streak. Once the streak and the shields are both spent the
// remaining idle days change nothing and are skipped.
func CloseDays(s State, now time.Time) (State, []DayResult) {
	today := now.Format(DayLayout)
	var out []DayResult
	for s.Day != today {
		next := today
		if d, err := time.ParseInLocation(DayLayout, s.Day, now.Location()); err == nil {
			if n := d.AddDate(0, 0, 1).Format(DayLayout); n < today {
				next = n
			}
		}
		var res DayResult
		s, res = closeDay(s, next, now)
		out = append(out, res)
		if s.Day != today && s.Profile.Streak == 0 && s.Profile.StreakShields == 0 {
			s.Day = today
		}
	}
	return s, out
}

func closeDay(s State, today string, now time.Time) (State, DayResult) {
	if s.Day == today {
		return s, DayResult{Streak: s.Profile.Streak}
	}

	next := s.Clone()
	res := DayResult{Closed: true, ClosedDay: s.Day}
	for _, h := range next.Habits {
		if h.Completed {
			res.Active = true
			break
		}
	}

	switch {
	case res.Active:
		next.Profile.Streak++
	case next.Profile.StreakShields > 0:
		next.Profile.StreakShields--
		res.ShieldUsed = true
		if next.Profile.Streak > 0 {
			next.notify(next.sprintf(msgStreakProtected, next.Profile.Streak), now)
		}
	default:
		res.StreakReset = next.Profile.Streak > 0
		next.Profile.Streak = 0
	}

	for i := range next.Habits {
		next.Habits[i].Completed = false
		next.Habits[i].CompletedAt = nil
	}
	next.Profile.StepsToday = 0
	next.Day = today
	res.Streak = next.Profile.Streak
	return next, res
}
