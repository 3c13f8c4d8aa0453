package resolver

// fallbackLocation is a hard-coded resolution used only when the repository
// missed or failed.
type fallbackLocation struct {
	IATACode   string
	Name       string
	City       string
	Country    string
	Type       LocationType
	Confidence float64
}

// fallbackLocations is keyed by normalized query. Metro codes are used where a
// city has several commercial airports.
var fallbackLocations = map[string]fallbackLocation{
	"new york":      {"NYC", "New York City", "New York", "United States", LocationTypeMetro, 0.9},
	"nyc":           {"NYC", "New York City", "New York", "United States", LocationTypeMetro, 0.85},
	"los angeles":   {"LAX", "Los Angeles International Airport", "Los Angeles", "United States", LocationTypeAirport, 0.9},
	"la":            {"LAX", "Los Angeles International Airport", "Los Angeles", "United States", LocationTypeAirport, 0.8},
	"chicago":       {"CHI", "Chicago", "Chicago", "United States", LocationTypeMetro, 0.9},
	"washington":    {"WAS", "Washington", "Washington", "United States", LocationTypeMetro, 0.85},
	"san francisco": {"SFO", "San Francisco International Airport", "San Francisco", "United States", LocationTypeAirport, 0.9},
	"sf":            {"SFO", "San Francisco International Airport", "San Francisco", "United States", LocationTypeAirport, 0.8},
	"miami":         {"MIA", "Miami International Airport", "Miami", "United States", LocationTypeAirport, 0.85},
	"boston":        {"BOS", "Logan International Airport", "Boston", "United States", LocationTypeAirport, 0.9},
	"seattle":       {"SEA", "Seattle-Tacoma International Airport", "Seattle", "United States", LocationTypeAirport, 0.9},
	"atlanta":       {"ATL", "Hartsfield-Jackson Atlanta International Airport", "Atlanta", "United States", LocationTypeAirport, 0.9},
	"toronto":       {"YYZ", "Toronto Pearson International Airport", "Toronto", "Canada", LocationTypeAirport, 0.85},
	"vancouver":     {"YVR", "Vancouver International Airport", "Vancouver", "Canada", LocationTypeAirport, 0.9},
	"montreal":      {"YUL", "Montréal-Trudeau International Airport", "Montreal", "Canada", LocationTypeAirport, 0.9},
	"london":        {"LON", "London", "London", "United Kingdom", LocationTypeMetro, 0.9},
	"paris":         {"PAR", "Paris", "Paris", "France", LocationTypeMetro, 0.9},
	"tokyo":         {"TYO", "Tokyo", "Tokyo", "Japan", LocationTypeMetro, 0.9},
	"dubai":         {"DXB", "Dubai International Airport", "Dubai", "United Arab Emirates", LocationTypeAirport, 0.85},
	"singapore":     {"SIN", "Singapore Changi Airport", "Singapore", "Singapore", LocationTypeAirport, 0.9},
	"sydney":        {"SYD", "Sydney Kingsford Smith Airport", "Sydney", "Australia", LocationTypeAirport, 0.9},
	"mexico city":   {"MEX", "Mexico City International Airport", "Mexico City", "Mexico", LocationTypeAirport, 0.85},
}

func lookupFallback(normalized string) (fallbackLocation, bool) {
	loc, ok := fallbackLocations[normalized]
	return loc, ok
}

func (f fallbackLocation) result() *LookupResult {
	return &LookupResult{
		Type:       f.Type,
		IATACode:   f.IATACode,
		Name:       f.Name,
		City:       f.City,
		Country:    f.Country,
		Confidence: f.Confidence,
		Source:     SourceFallback,
	}
}
