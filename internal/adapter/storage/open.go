package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rl1809/pizzan/internal/config"
	"github.com/rl1809/pizzan/internal/port"
)

// Open connects the backend named by cfg.Driver. MySQL migrations run
// first when cfg.AutoMigrate is set. The caller pings and closes the store.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (port.Store, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if cfg.AutoMigrate {
			applied, err := Migrate(ctx, db)
			if err != nil {
				db.Close()
				return nil, err
			}
			logger.Info("migrations applied", "files", applied)
		}
		return NewMySQLAdapter(db), nil

	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoConnectionURI()))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		return NewMongoAdapter(client, cfg.Database), nil

	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on exit")
		return NewMemoryAdapter(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
