package resolver

import (
	gormModels "infinite-experiment/wayfinder/internal/models/gorm"
)

type LocationType string

const (
	LocationTypeMetro   LocationType = "metro"
	LocationTypeAirport LocationType = "airport"
)

// LocationMatch is either a MetroMatch or an AirportMatch.
type LocationMatch interface {
	Type() LocationType
	Code() string
	ID() string
	Name() string
	City() string
	Country() string
	Passengers() int64

	isLocationMatch()
}

type MetroMatch struct {
	Metro *gormModels.MetroArea
}

func (m MetroMatch) Type() LocationType { return LocationTypeMetro }
func (m MetroMatch) Code() string { return m.Metro.IATA }
func (m MetroMatch) ID() string { return m.Metro.ID }
func (m MetroMatch) Name() string { return m.Metro.Name }
func (m MetroMatch) City() string { return m.Metro.Name }
func (m MetroMatch) Country() string { return m.Metro.Country }
func (m MetroMatch) Passengers() int64 { return m.Metro.Passengers() }
func (MetroMatch) isLocationMatch() {}

type AirportMatch struct {
	Airport *gormModels.Airport
}

func (a AirportMatch) Type() LocationType { return LocationTypeAirport }
func (a AirportMatch) Code() string { return a.Airport.IATA }
func (a AirportMatch) ID() string { return a.Airport.ID }
func (a AirportMatch) Name() string { return a.Airport.Name }
func (a AirportMatch) City() string { return a.Airport.City }
func (a AirportMatch) Country() string { return a.Airport.Country }
func (a AirportMatch) Passengers() int64 { return a.Airport.Passengers() }
func (AirportMatch) isLocationMatch() {}

// candidate is a scored match produced by one strategy
type candidate struct {
	Match      LocationMatch
	Confidence float64
	Strategy   string
}

func matchKey(m LocationMatch) string {
	return string(m.Type()) + ":" + m.Code()
}
