package db

import (
	"context"
	"time"

	"infinite-experiment/wayfinder/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/gorm"
)

const connectAttempts = 10

// InitSQLX returns the raw SQL handle used by the lookup cache. Postgres gets
// its own pool, retried while the database comes up; sqlite shares the ORM's
// connection so both see the same file lock.
func InitSQLX(ctx context.Context, cfg config.DatabaseConfig, orm *gorm.DB) (*sqlx.DB, error) {
	if cfg.Driver == "sqlite" {
		sqlDB, err := orm.DB()
		if err != nil {
			return nil, err
		}
		return sqlx.NewDb(sqlDB, "sqlite3"), nil
	}

	var (
		db  *sqlx.DB
		err error
	)
	for i := 0; i < connectAttempts; i++ {
		db, err = sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
		if err == nil {
			db.SetMaxOpenConns(20)
			db.SetConnMaxIdleTime(5 * time.Minute)
			return db, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return nil, err
}
