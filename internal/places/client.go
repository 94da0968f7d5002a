package places

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"foodbot/internal/logger"
	"foodbot/pkg"
)

const (
	defaultBaseURL   = "https://maps.googleapis.com"
	requestTimeout   = 10 * time.Second
	statusOK         = "OK"
	reviewCharBudget = 1500
	noReviewSentinel = "無評論資料"
)

// Config holds places-API client settings.
type Config struct {
	APIKey       string
	BaseURL      string
	Language     string
	RadiusMeters int
}

// Client wraps the geocoding, text-search, distance-matrix and
// place-details endpoints. Every method degrades instead of panicking:
// lookups report not-found, enrichment returns a zero value.
type Client struct {
	http     *resty.Client
	apiKey   string
	language string
	radius   int
}

// New creates a places client. BaseURL is overridable for tests.
func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(base, "/")).
		SetTimeout(requestTimeout)

	return &Client{
		http:     c,
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		radius:   cfg.RadiusMeters,
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location pkg.LatLng `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Resolve looks up the coordinates of a free-text place name. Empty input,
// a non-OK upstream status or any transport failure all report not-found.
func (c *Client) Resolve(ctx context.Context, name string) (pkg.LatLng, bool) {
	if name == "" {
		return pkg.LatLng{}, false
	}

	var out geocodeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"address":  name,
			"language": c.language,
			"key":      c.apiKey,
		}).
		SetResult(&out).
		Get("/maps/api/geocode/json")
	if err != nil || resp.StatusCode() != http.StatusOK {
		logger.Warn().Err(err).Str("location", name).Msg("geocode lookup failed")
		return pkg.LatLng{}, false
	}
	if out.Status != statusOK || len(out.Results) == 0 {
		return pkg.LatLng{}, false
	}
	return out.Results[0].Geometry.Location, true
}

type searchResponse struct {
	Status  string               `json:"status"`
	Results []pkg.PlaceCandidate `json:"results"`
}

// Search runs a text search for keyword near origin, restricted to open
// restaurants inside the configured radius. The raw upstream order is
// returned untrimmed; the caller caps it. A non-OK status (including
// ZERO_RESULTS) yields an empty slice; only transport failures error.
func (c *Client) Search(ctx context.Context, keyword string, origin pkg.LatLng) ([]pkg.PlaceCandidate, error) {
	var out searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":    keyword,
			"location": fmt.Sprintf("%f,%f", origin.Lat, origin.Lng),
			"radius":   fmt.Sprintf("%d", c.radius),
			"language": c.language,
			"opennow":  "true",
			"type":     "restaurant",
			"key":      c.apiKey,
		}).
		SetResult(&out).
		Get("/maps/api/place/textsearch/json")
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("text search status %d", resp.StatusCode())
	}
	if out.Status != statusOK {
		return nil, nil
	}
	return out.Results, nil
}

type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration struct {
				Text  string `json:"text"`
				Value int    `json:"value"` // seconds
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// TravelTimes fetches driving-time estimates for all placeIDs in one
// distance-matrix call. Minutes are rounded up so an estimate never
// understates the drive. Elements with a non-OK status are omitted.
func (c *Client) TravelTimes(ctx context.Context, origin pkg.LatLng, placeIDs []string) (map[string]pkg.TravelTime, error) {
	if len(placeIDs) == 0 {
		return map[string]pkg.TravelTime{}, nil
	}

	dests := make([]string, len(placeIDs))
	for i, id := range placeIDs {
		dests[i] = "place_id:" + id
	}

	var out matrixResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"origins":      fmt.Sprintf("%f,%f", origin.Lat, origin.Lng),
			"destinations": strings.Join(dests, "|"),
			"mode":         "driving",
			"language":     c.language,
			"key":          c.apiKey,
		}).
		SetResult(&out).
		Get("/maps/api/distancematrix/json")
	if err != nil {
		return nil, fmt.Errorf("distance matrix: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("distance matrix status %d", resp.StatusCode())
	}

	travel := make(map[string]pkg.TravelTime)
	if out.Status != statusOK || len(out.Rows) == 0 {
		return travel, nil
	}
	for i, element := range out.Rows[0].Elements {
		if i >= len(placeIDs) || element.Status != statusOK {
			continue
		}
		travel[placeIDs[i]] = pkg.TravelTime{
			Text:    element.Duration.Text,
			Minutes: int(math.Ceil(float64(element.Duration.Value) / 60)),
		}
	}
	return travel, nil
}

type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		OpeningHours struct {
			WeekdayText []string `json:"weekday_text"`
		} `json:"opening_hours"`
		Reviews []struct {
			Text string `json:"text"`
		} `json:"reviews"`
		EditorialSummary struct {
			Overview string `json:"overview"`
		} `json:"editorial_summary"`
	} `json:"result"`
}

// Details retrieves opening hours, a truncated review digest and the
// editorial summary for one place. Details are enrichment only: any
// failure returns the zero value with the no-review sentinel.
func (c *Client) Details(ctx context.Context, placeID string) pkg.PlaceDetails {
	info := pkg.PlaceDetails{
		OpeningHours:   []string{},
		ReviewsSummary: noReviewSentinel,
	}

	var out detailsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"place_id": placeID,
			"fields":   "opening_hours,reviews,editorial_summary",
			"language": c.language,
			"key":      c.apiKey,
		}).
		SetResult(&out).
		Get("/maps/api/place/details/json")
	if err != nil || resp.StatusCode() != http.StatusOK {
		logger.Warn().Err(err).Str("place_id", placeID).Msg("place details fetch failed")
		return info
	}
	if out.Status != statusOK {
		return info
	}

	info.OpeningHours = out.Result.OpeningHours.WeekdayText
	if info.OpeningHours == nil {
		info.OpeningHours = []string{}
	}
	info.EditorialSummary = out.Result.EditorialSummary.Overview
	if len(out.Result.Reviews) > 0 {
		texts := make([]string, len(out.Result.Reviews))
		for i, r := range out.Result.Reviews {
			texts[i] = r.Text
		}
		info.ReviewsSummary = truncate(strings.Join(texts, " | "), reviewCharBudget)
	}
	return info
}

// truncate cuts at a character boundary, not a byte one; review text is
// mostly CJK.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
