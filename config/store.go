package config

import (
	"context"
	"fmt"

	"github.com/yoockh/journai/internal/repositories"
	"github.com/yoockh/journai/internal/repositories/firestore"
	"github.com/yoockh/journai/internal/repositories/memory"
	mongostore "github.com/yoockh/journai/internal/repositories/mongo"
	"github.com/yoockh/journai/internal/repositories/postgres"
)

// OpenStore builds the Store selected by STORE_BACKEND. The caller owns Close.
func OpenStore(ctx context.Context, c *Config) (repositories.Store, error) {
	switch c.StoreBackend {
	case BackendMongo:
		client, err := NewMongo(ctx, c.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		db := client.Database(c.MongoDB)
		if err := EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return mongostore.NewStore(client, db), nil

	case BackendPostgres:
		db, err := NewPostgres(c.PostgresURI)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		s := postgres.NewStore(db)
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return s, nil

	case BackendFirestore:
		client, err := NewFirestore(ctx, c.FirestoreProject)
		if err != nil {
			return nil, err
		}
		return firestore.NewStore(client), nil

	case BackendMemory:
		return memory.NewStore(), nil
	}
	return nil, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
}
