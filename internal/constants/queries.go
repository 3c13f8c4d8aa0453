package constants

// Durable lookup cache. Written with ? placeholders; LookupCacheRepository
// rebinds them for the active driver. ON CONFLICT upserts work on both
// Postgres and SQLite >= 3.24.
const (
	GetLookupCacheEntry = `
	SELECT query, result_type, result_iata, result_id, alternatives, confidence, hit_count, last_accessed, created_at
	FROM location_lookup_cache
	WHERE query = ?
	`

	UpsertLookupCacheEntry = `
	INSERT INTO location_lookup_cache
		(query, result_type, result_iata, result_id, alternatives, confidence, hit_count, last_accessed, created_at)
	VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)
	ON CONFLICT (query) DO UPDATE SET
		result_type   = excluded.result_type,
		result_iata   = excluded.result_iata,
		result_id     = excluded.result_id,
		alternatives  = excluded.alternatives,
		confidence    = excluded.confidence,
		hit_count     = location_lookup_cache.hit_count + 1,
		last_accessed = excluded.last_accessed
	`

	DeleteLookupCacheOlderThan = `
	DELETE FROM location_lookup_cache WHERE last_accessed < ?
	`

	CountLookupCacheEntries = `
	SELECT COUNT(*) FROM location_lookup_cache
	`
)
