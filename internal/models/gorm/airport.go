package gorm

import (
	"time"

	"infinite-experiment/wayfinder/internal/textsim"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// Airport represents an airport record with geographic coordinates
type Airport struct {
	ID             string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	IATA           string    `gorm:"column:iata;type:varchar(3);not null;uniqueIndex"`
	ICAO           string    `gorm:"column:icao;type:varchar(4);index"`
	Name           string    `gorm:"column:name;type:text;not null"`
	City           string    `gorm:"column:city;type:varchar(100);index"`
	SearchName     string    `gorm:"column:search_name;type:text;index"`
	SearchCity     string    `gorm:"column:search_city;type:varchar(100);index"`
	Country        string    `gorm:"column:country;type:varchar(100)"`
	CountryCode    string    `gorm:"column:country_code;type:varchar(2)"`
	Latitude       float64   `gorm:"column:latitude;type:numeric(10,6);not null"`
	Longitude      float64   `gorm:"column:longitude;type:numeric(10,6);not null"`
	Timezone       string    `gorm:"column:timezone;type:varchar(50)"`
	AirportType    string    `gorm:"column:airport_type;type:varchar(30)"`
	PassengerCount *int64    `gorm:"column:passenger_count"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	MetroAreaID    *string   `gorm:"column:metro_area_id;type:varchar(36);index"`
	MetroRank      int       `gorm:"column:metro_rank;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Airport) TableName() string {
	return "airports"
}

// BeforeCreate assigns a UUID so inserts work on drivers without gen_random_uuid()
func (a *Airport) BeforeCreate(tx *gormlib.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave keys name and city for exact-name lookups
func (a *Airport) BeforeSave(tx *gormlib.DB) error {
	a.SearchName = textsim.Key(a.Name)
	a.SearchCity = textsim.Key(a.City)
	return nil
}

// Passengers returns the popularity signal, treating unknown as zero
func (a *Airport) Passengers() int64 {
	if a.PassengerCount == nil {
		return 0
	}
	return *a.PassengerCount
}

// InMetro reports whether the airport is grouped under a metro area
func (a *Airport) InMetro() bool {
	return a.MetroAreaID != nil && *a.MetroAreaID != ""
}
