package storage

import "database/sql"

// Store groups the repositories over one database handle.
type Store struct {
	db        *sql.DB
	users     *UserRepo
	profiles  *ProfileRepo
	habitLogs *HabitLogRepo
	inventory *InventoryRepo
	bosses    *BossRepo
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:        db,
		users:     NewUserRepo(db),
		profiles:  NewProfileRepo(db),
		habitLogs: NewHabitLogRepo(db),
		inventory: NewInventoryRepo(db),
		bosses:    NewBossRepo(db),
	}
}

func (s *Store) DB() *sql.DB               { return s.db }
func (s *Store) Users() *UserRepo          { return s.users }
func (s *Store) Profiles() *ProfileRepo    { return s.profiles }
func (s *Store) HabitLogs() *HabitLogRepo  { return s.habitLogs }
func (s *Store) Inventory() *InventoryRepo { return s.inventory }
func (s *Store) Bosses() *BossRepo         { return s.bosses }
func (s *Store) Close() error              { return s.db.Close() }
