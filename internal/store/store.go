// Package store opens the repositories for the configured storage driver.
package store

import (
	"context"

	"github.com/sirupsen/logrus"

	"contesthub/internal/config"
	"contesthub/internal/db"
	"contesthub/internal/repository"
	"contesthub/internal/repository/mongorepo"
)

// Stores bundles the repositories of one backend.
type Stores struct {
	Users    repository.UserRepository
	Contests repository.ContestRepository

	close func(context.Context) error
}

// Close releases the underlying connection pool.
func (s *Stores) Close(ctx context.Context) error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the backend named by cfg.StoreDriver and prepares its schema.
// SQL drivers are auto-migrated; MongoDB gets its indexes.
func Open(ctx context.Context, cfg *config.Config, log *logrus.Entry) (*Stores, error) {
	if cfg.StoreDriver == config.DriverMongo {
		return openMongo(ctx, cfg, log)
	}
	return openSQL(cfg, log)
}

func openMongo(ctx context.Context, cfg *config.Config, log *logrus.Entry) (*Stores, error) {
	client, err := db.NewMongo(ctx, cfg.MongoURI, mongorepo.NewRegistry())
	if err != nil {
		return nil, err
	}
	database := client.Database(cfg.MongoDatabase)
	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping database")
		if err := database.Drop(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
	}
	if err := mongorepo.EnsureIndexes(ctx, database); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &Stores{
		Users:    mongorepo.NewUserRepository(database),
		Contests: mongorepo.NewContestRepository(database),
		close:    client.Disconnect,
	}, nil
}

func openSQL(cfg *config.Config, log *logrus.Entry) (*Stores, error) {
	open := db.NewMySQL
	if cfg.StoreDriver == config.DriverPostgres {
		open = db.NewPostgres
	}
	gormDB, err := open(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		return nil, err
	}
	return &Stores{
		Users:    repository.NewUserRepository(gormDB),
		Contests: repository.NewContestRepository(gormDB),
		close: func(context.Context) error {
			sqlDB, err := gormDB.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}, nil
}
