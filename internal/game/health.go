package game

import "time"

// SyncSteps credits steps reported by a health source: one gem per
// StepsPerGem steps, floored. Non-positive step counts are ignored.
func (c *Catalog) SyncSteps(s State, steps int, now time.Time) (State, int) {
	if steps <= 0 {
		return s, 0
	}
	per := c.Balance.StepsPerGem
	if per <= 0 {
		per = 100
	}
	next := s.Clone()
	gems := steps / per
	next.Profile.StepsToday += steps
	next.Profile.Gems += gems
	next.notify(next.sprintf(msgStepsSynced, steps, gems), now)
	return next, gems
}

// SignupReward stamps the welcome notification on a brand new player's state.
func (c *Catalog) SignupReward(s State, now time.Time) State {
	next := s.Clone()
	next.notify(next.sprintf(msgSignupReward, c.Balance.SignupGems), now)
	return next
}

// SetLanguage switches notification text. Unsupported languages are rejected;
// "jp" is stored as "ja".
func SetLanguage(s State, lang string) (State, bool) {
	lang, ok := CanonicalLanguage(lang)
	if !ok {
		return s, false
	}
	next := s.Clone()
	next.Language = lang
	return next, true
}
