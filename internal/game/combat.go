package game

// ApplyDamage subtracts amount from the boss at index, clamping at zero.
// Other bosses are untouched. An invalid index is a no-op and reports false.
func ApplyDamage(s State, bossIndex, amount int) (State, int, bool) {
	if bossIndex < 0 || bossIndex >= len(s.Bosses) {
		return s, 0, false
	}
	next := s.Clone()
	hp, _ := next.damageBoss(bossIndex, amount)
	return next, hp, true
}

// SelectBoss switches the quest target. Defeated bosses stay selectable;
// there is no automatic advance.
func SelectBoss(s State, bossIndex int) (State, bool) {
	if bossIndex < 0 || bossIndex >= len(s.Bosses) {
		return s, false
	}
	if bossIndex == s.CurrentBoss {
		return s, true
	}
	next := s.Clone()
	next.CurrentBoss = bossIndex
	return next, true
}

// CurrentBossState returns the selected boss, if any.
func (s State) CurrentBossState() (Boss, bool) {
	if s.CurrentBoss < 0 || s.CurrentBoss >= len(s.Bosses) {
		return Boss{}, false
	}
	return s.Bosses[s.CurrentBoss], true
}

func (s *State) damageBoss(bossIndex, amount int) (int, bool) {
	if bossIndex < 0 || bossIndex >= len(s.Bosses) {
		return 0, false
	}
	if amount < 0 {
		amount = 0
	}
	b := &s.Bosses[bossIndex]
	b.HP -= amount
	if b.HP < 0 {
		b.HP = 0
	}
	if b.HP > b.MaxHP {
		b.HP = b.MaxHP
	}
	return b.HP, true
}
