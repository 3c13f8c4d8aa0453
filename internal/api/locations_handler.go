package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"infinite-experiment/wayfinder/internal/models/dtos/responses"
	"infinite-experiment/wayfinder/internal/resolver"
)

// LookupLocation handles GET /api/v1/locations/lookup
//
// @Summary Resolve a free-text location
// @Description Resolves an airport code, city, metro name or alias to an IATA code with confidence and alternatives.
// @Tags Locations
// @Param q query string true "Free-text location"
// @Param preferMetro query bool false "Prefer the metro code for multi-airport cities (default true)"
// @Param fuzzy query bool false "Allow fuzzy matching (default true)"
// @Param maxResults query int false "Result plus alternatives cap, 1-5 (default 5)"
// @Router /api/v1/locations/lookup [get]
func (h *Handlers) LookupLocation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		opts, err := lookupOptionsFromQuery(q.Get("preferMetro"), q.Get("fuzzy"), q.Get("maxResults"))
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		start := time.Now()
		res, err := h.deps.Locations.Lookup(r.Context(), q.Get("q"), opts...)
		h.observeLookup(start, err)
		if err != nil {
			respondWithLookupError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, res)
	}
}

// ResolveAirportCode handles GET /api/v1/locations/resolve
func (h *Handlers) ResolveAirportCode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")

		start := time.Now()
		code, err := h.deps.Locations.ResolveAirportCode(r.Context(), query)
		h.observeLookup(start, err)
		if err != nil {
			respondWithLookupError(w, err)
			return
		}
		respondWithSuccess(w, http.StatusOK, &responses.ResolveCodeResponse{Query: query, Code: code})
	}
}

// GetAirportInfo handles GET /api/v1/locations/info
func (h *Handlers) GetAirportInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if strings.TrimSpace(query) == "" {
			respondWithError(w, http.StatusBadRequest, "query parameter q is required")
			return
		}

		info := h.deps.Locations.GetAirportInfo(r.Context(), query)
		if info == nil {
			respondWithError(w, http.StatusNotFound, "no location matches "+strconv.Quote(query))
			return
		}
		respondWithSuccess(w, http.StatusOK, info)
	}
}

// CanResolve handles GET /api/v1/locations/can-resolve
func (h *Handlers) CanResolve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		ok := h.deps.Locations.CanResolve(r.Context(), query)
		respondWithSuccess(w, http.StatusOK, &responses.CanResolveResponse{Query: query, Resolvable: ok})
	}
}

// GetLookupStats handles GET /api/v1/locations/stats
func (h *Handlers) GetLookupStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := h.deps.Locations.GetStats(r.Context())
		respondWithSuccess(w, http.StatusOK, &st)
	}
}

func (h *Handlers) observeLookup(start time.Time, err error) {
	if h.deps.Metrics == nil {
		return
	}
	outcome := "resolved"
	if err != nil {
		switch lookupStatus(err) {
		case http.StatusBadRequest:
			outcome = "invalid"
		case http.StatusNotFound:
			outcome = "not_found"
		default:
			outcome = "unavailable"
		}
	}
	h.deps.Metrics.LookupDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

// lookupOptionsFromQuery parses the optional lookup flags; blank values keep
// the resolver defaults.
func lookupOptionsFromQuery(preferMetro, fuzzy, maxResults string) ([]resolver.LookupOption, error) {
	var opts []resolver.LookupOption

	if preferMetro != "" {
		v, err := strconv.ParseBool(preferMetro)
		if err != nil {
			return nil, errInvalidParam("preferMetro", preferMetro)
		}
		opts = append(opts, resolver.WithPreferMetro(v))
	}
	if fuzzy != "" {
		v, err := strconv.ParseBool(fuzzy)
		if err != nil {
			return nil, errInvalidParam("fuzzy", fuzzy)
		}
		opts = append(opts, resolver.WithFuzzy(v))
	}
	if maxResults != "" {
		n, err := strconv.Atoi(maxResults)
		if err != nil || n < 1 {
			return nil, errInvalidParam("maxResults", maxResults)
		}
		opts = append(opts, resolver.WithMaxResults(n))
	}
	return opts, nil
}

func errInvalidParam(name, value string) error {
	return fmt.Errorf("invalid value %q for query parameter %s", value, name)
}
