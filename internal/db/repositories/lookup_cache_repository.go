package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"infinite-experiment/wayfinder/internal/constants"
	"infinite-experiment/wayfinder/internal/models/gorm"

	"github.com/jmoiron/sqlx"
)

// LookupCacheRepository is the SQL backend of the durable lookup cache
type LookupCacheRepository struct {
	db *sqlx.DB
}

func NewLookupCacheRepository(db *sqlx.DB) *LookupCacheRepository {
	return &LookupCacheRepository{db: db}
}

// Get returns the entry stored under key, or nil when there is none
func (r *LookupCacheRepository) Get(ctx context.Context, key string) (*gorm.LocationLookupCache, error) {
	var entry gorm.LocationLookupCache
	err := r.db.GetContext(ctx, &entry, r.db.Rebind(constants.GetLookupCacheEntry), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// Upsert inserts entry with hit_count 1, or on conflict replaces the result,
// bumps hit_count and refreshes last_accessed.
func (r *LookupCacheRepository) Upsert(ctx context.Context, entry *gorm.LocationLookupCache) error {
	now := entry.LastAccessed.UTC()
	if now.IsZero() {
		now = time.Now().UTC()
	}
	created := entry.CreatedAt.UTC()
	if entry.CreatedAt.IsZero() {
		created = now
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(constants.UpsertLookupCacheEntry),
		entry.Query,
		entry.ResultType,
		entry.ResultIATA,
		entry.ResultID,
		entry.Alternatives,
		entry.Confidence,
		now,
		created,
	)
	return err
}

// DeleteOlderThan removes entries last accessed before cutoff
func (r *LookupCacheRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(constants.DeleteLookupCacheOlderThan), cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of stored entries
func (r *LookupCacheRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, constants.CountLookupCacheEntries)
	return n, err
}

// Ping checks the underlying connection (used by the health check)
func (r *LookupCacheRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
