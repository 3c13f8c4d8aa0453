package gorm

import "time"

// LocationLookupCache is the durable query -> resolution cache. The GORM tags
// drive migrations; the db tags are used by the sqlx queries in
// LookupCacheRepository.
type LocationLookupCache struct {
	Query        string    `gorm:"column:query;primaryKey;type:varchar(300)" db:"query" json:"query"`
	ResultType   string    `gorm:"column:result_type;type:varchar(10);not null" db:"result_type" json:"result_type"`
	ResultIATA   string    `gorm:"column:result_iata;type:varchar(3);not null" db:"result_iata" json:"result_iata"`
	ResultID     string    `gorm:"column:result_id;type:varchar(36)" db:"result_id" json:"result_id"`
	Alternatives string    `gorm:"column:alternatives;type:text" db:"alternatives" json:"alternatives"`
	Confidence   float64   `gorm:"column:confidence;not null" db:"confidence" json:"confidence"`
	HitCount     int64     `gorm:"column:hit_count;not null;default:1" db:"hit_count" json:"hit_count"`
	LastAccessed time.Time `gorm:"column:last_accessed;not null;index" db:"last_accessed" json:"last_accessed"`
	CreatedAt    time.Time `gorm:"column:created_at;not null" db:"created_at" json:"created_at"`
}

func (LocationLookupCache) TableName() string {
	return "location_lookup_cache"
}
