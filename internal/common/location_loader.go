package common

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"infinite-experiment/wayfinder/internal/db/repositories"
	"infinite-experiment/wayfinder/internal/logging"
	"infinite-experiment/wayfinder/internal/models/gorm"
	"infinite-experiment/wayfinder/internal/textsim"

	"github.com/google/uuid"
)

//go:embed data/locations.json
var embeddedLocations []byte

var iataCode = regexp.MustCompile(`^[A-Z]{3}$`)

// LocationDataset is the import format: metros, airports and aliases
// cross-referenced by IATA code
type LocationDataset struct {
	Metros   []RawMetroData   `json:"metros"`
	Airports []RawAirportData `json:"airports"`
	Aliases  []RawAliasData   `json:"aliases"`
}

type RawMetroData struct {
	IATA        string  `json:"iata"`
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	TZ          string  `json:"tz"`
}

type RawAirportData struct {
	IATA        string  `json:"iata"`
	ICAO        string  `json:"icao"`
	Name        string  `json:"name"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	TZ          string  `json:"tz"`
	Type        string  `json:"type"`
	Passengers  *int64  `json:"passengers"`
	Metro       string  `json:"metro"`
	MetroRank   int     `json:"metroRank"`
	Active      *bool   `json:"active"`
}

type RawAliasData struct {
	Alias      string   `json:"alias"`
	IATA       string   `json:"iata"`
	Confidence *float64 `json:"confidence"`
	Source     string   `json:"source"`
}

// ImportSummary reports what an import wrote
type ImportSummary struct {
	Metros   int `json:"metros"`
	Airports int `json:"airports"`
	Aliases  int `json:"aliases"`
	Skipped  int `json:"skipped"`
}

// LocationLoaderService handles loading the location dataset from JSON
type LocationLoaderService struct {
	repo   *repositories.LocationRepository
	client *http.Client
}

// NewLocationLoaderService creates a new loader; client may be nil
func NewLocationLoaderService(repo *repositories.LocationRepository, client *http.Client) *LocationLoaderService {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second, Transport: NewLoggingTransport(nil)}
	}
	return &LocationLoaderService{repo: repo, client: client}
}

// LoadFromJSON parses a dataset and replaces the stored one with it.
// Invalid or duplicate records are skipped and counted.
func (s *LocationLoaderService) LoadFromJSON(ctx context.Context, reader io.Reader) (ImportSummary, error) {
	var raw LocationDataset
	if err := json.NewDecoder(reader).Decode(&raw); err != nil {
		return ImportSummary{}, fmt.Errorf("failed to decode JSON: %w", err)
	}
	if len(raw.Airports) == 0 {
		return ImportSummary{}, errors.New("no airport data found in JSON")
	}

	metros, airports, aliases, summary := convertDataset(raw)
	if len(airports) == 0 {
		return summary, errors.New("no valid airports found after parsing")
	}

	if err := s.repo.ReplaceAll(ctx, metros, airports, aliases); err != nil {
		return summary, fmt.Errorf("failed to import locations: %w", err)
	}

	logging.Info("Imported location dataset",
		"metros", summary.Metros,
		"airports", summary.Airports,
		"aliases", summary.Aliases,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// LoadEmbedded imports the dataset compiled into the binary
func (s *LocationLoaderService) LoadEmbedded(ctx context.Context) (ImportSummary, error) {
	return s.LoadFromJSON(ctx, bytes.NewReader(embeddedLocations))
}

// LoadFromURL fetches a dataset over HTTP and imports it
func (s *LocationLoaderService) LoadFromURL(ctx context.Context, url string) (ImportSummary, error) {
	logging.Info("Fetching location dataset", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ImportSummary{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("failed to fetch location dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ImportSummary{}, fmt.Errorf("failed to fetch location dataset: HTTP %d", resp.StatusCode)
	}

	return s.LoadFromJSON(ctx, resp.Body)
}

// SeedIfEmpty imports the embedded dataset when no airports are stored yet
func (s *LocationLoaderService) SeedIfEmpty(ctx context.Context) (bool, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return false, err
	}
	if counts["airports"] > 0 {
		return false, nil
	}

	if _, err := s.LoadEmbedded(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// GetStats returns row counts per location table
func (s *LocationLoaderService) GetStats(ctx context.Context) (map[string]int64, error) {
	return s.repo.Counts(ctx)
}

func convertDataset(raw LocationDataset) ([]gorm.MetroArea, []gorm.Airport, []gorm.AirportAlias, ImportSummary) {
	var summary ImportSummary

	metroIDs := make(map[string]string, len(raw.Metros))
	metros := make([]gorm.MetroArea, 0, len(raw.Metros))
	for _, m := range raw.Metros {
		code := normalizeCode(m.IATA)
		name := strings.TrimSpace(m.Name)
		if !iataCode.MatchString(code) || name == "" || metroIDs[code] != "" {
			summary.Skipped++
			continue
		}

		id := uuid.NewString()
		metroIDs[code] = id
		metros = append(metros, gorm.MetroArea{
			ID:          id,
			IATA:        code,
			Name:        name,
			Country:     strings.TrimSpace(m.Country),
			CountryCode: normalizeCode(m.CountryCode),
			Latitude:    m.Lat,
			Longitude:   m.Lon,
			Timezone:    m.TZ,
		})
	}

	airportIDs := make(map[string]string, len(raw.Airports))
	airports := make([]gorm.Airport, 0, len(raw.Airports))
	for _, a := range raw.Airports {
		code := normalizeCode(a.IATA)
		name := strings.TrimSpace(a.Name)
		if !iataCode.MatchString(code) || name == "" || airportIDs[code] != "" {
			summary.Skipped++
			continue
		}

		airport := gorm.Airport{
			ID:             uuid.NewString(),
			IATA:           code,
			ICAO:           normalizeCode(a.ICAO),
			Name:           name,
			City:           strings.TrimSpace(a.City),
			Country:        strings.TrimSpace(a.Country),
			CountryCode:    normalizeCode(a.CountryCode),
			Latitude:       a.Lat,
			Longitude:      a.Lon,
			Timezone:       a.TZ,
			AirportType:    a.Type,
			PassengerCount: a.Passengers,
			IsActive:       a.Active == nil || *a.Active,
			MetroRank:      a.MetroRank,
		}
		if metro := normalizeCode(a.Metro); metro != "" {
			if id, ok := metroIDs[metro]; ok {
				airport.MetroAreaID = &id
			} else {
				logging.Warn("Airport references unknown metro area", "airport", code, "metro", metro)
			}
		}

		airportIDs[code] = airport.ID
		airports = append(airports, airport)
	}

	seen := make(map[string]bool, len(raw.Aliases))
	aliases := make([]gorm.AirportAlias, 0, len(raw.Aliases))
	for _, al := range raw.Aliases {
		alias := textsim.Fold(al.Alias)
		airportID, ok := airportIDs[normalizeCode(al.IATA)]
		key := alias + "|" + airportID
		if alias == "" || !ok || seen[key] || (al.Confidence != nil && (*al.Confidence < 0 || *al.Confidence > 1)) {
			summary.Skipped++
			continue
		}

		seen[key] = true
		aliases = append(aliases, gorm.AirportAlias{
			Alias:      alias,
			AirportID:  airportID,
			Confidence: al.Confidence,
			Source:     al.Source,
		})
	}

	summary.Metros = len(metros)
	summary.Airports = len(airports)
	summary.Aliases = len(aliases)
	return metros, airports, aliases, summary
}

func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
