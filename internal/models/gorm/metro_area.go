package gorm

import (
	"sort"
	"time"

	"infinite-experiment/wayfinder/internal/textsim"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// MetroArea groups the airports serving one urban area under a metro-level
// IATA code (NYC, LON, PAR, ...).
type MetroArea struct {
	ID          string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	IATA        string    `gorm:"column:iata;type:varchar(3);not null;uniqueIndex"`
	Name        string    `gorm:"column:name;type:varchar(100);not null;index"`
	SearchName  string    `gorm:"column:search_name;type:varchar(100);index"`
	Country     string    `gorm:"column:country;type:varchar(100)"`
	CountryCode string    `gorm:"column:country_code;type:varchar(2)"`
	Latitude    float64   `gorm:"column:latitude;type:numeric(10,6)"`
	Longitude   float64   `gorm:"column:longitude;type:numeric(10,6)"`
	Timezone    string    `gorm:"column:timezone;type:varchar(50)"`
	Airports    []Airport `gorm:"foreignKey:MetroAreaID"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (MetroArea) TableName() string {
	return "metro_areas"
}

func (m *MetroArea) BeforeCreate(tx *gormlib.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *MetroArea) BeforeSave(tx *gormlib.DB) error {
	m.SearchName = textsim.Key(m.Name)
	return nil
}

// AirportCodes returns member codes ordered by rank. Airports must be preloaded.
func (m *MetroArea) AirportCodes() []string {
	codes := make([]string, 0, len(m.Airports))
	for _, a := range m.orderedAirports() {
		codes = append(codes, a.IATA)
	}
	return codes
}

// PrimaryAirport returns the rank-0 member, or nil when members were not preloaded
func (m *MetroArea) PrimaryAirport() *Airport {
	ordered := m.orderedAirports()
	if len(ordered) == 0 {
		return nil
	}
	return &ordered[0]
}

// Passengers sums member passenger counts; used only as a ranking tie-breaker
func (m *MetroArea) Passengers() int64 {
	var total int64
	for i := range m.Airports {
		total += m.Airports[i].Passengers()
	}
	return total
}

func (m *MetroArea) orderedAirports() []Airport {
	out := make([]Airport, len(m.Airports))
	copy(out, m.Airports)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MetroRank < out[j].MetroRank })
	return out
}
