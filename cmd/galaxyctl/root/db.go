package root

import (
	"context"

	"github.com/everforgeworks/habit-galaxy/internal/storage"
)

func openStore(ctx context.Context) (*storage.Store, func(), error) {
	db, err := storage.Open(ctx, flags.DBPath)
	if err != nil {
		return nil, nil, err
	}
	store := storage.NewStore(db)
	cleanup := func() {
		_ = store.Close()
	}
	return store, cleanup, nil
}
