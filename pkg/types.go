package pkg

// Core types shared across the recommendation flow.

// SearchParameters are the structured parameters inferred from a user
// utterance. They are rebuilt on every request and merged with the prior
// conversation context when the utterance omits a field.
type SearchParameters struct {
	Location  string `json:"location"`
	Keyword   string `json:"keyword"`
	TimeLimit int    `json:"time_limit"` // minutes, default 20
}

// ConversationContext is the one-slot per-user memory: the last parameters
// used plus every place already shown for that location/keyword pair.
type ConversationContext struct {
	Location  string   `json:"location"`
	Keyword   string   `json:"keyword"`
	TimeLimit int      `json:"time_limit"`
	SeenIDs   []string `json:"seen_ids"`
}

// LatLng is a resolved coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceCandidate is a raw search result, discarded within one pipeline run.
type PlaceCandidate struct {
	PlaceID          string  `json:"place_id"`
	Name             string  `json:"name"`
	Rating           float64 `json:"rating"`
	UserRatingsTotal int     `json:"user_ratings_total"`
	FormattedAddress string  `json:"formatted_address"`
}

// TravelTime is one distance-matrix element. Minutes is rounded up so the
// estimate never understates the drive.
type TravelTime struct {
	Text    string `json:"text"`
	Minutes int    `json:"minutes"`
}

// PlaceDetails is per-place enrichment. Failures at the details layer
// produce the zero value with the no-review sentinel, never an error.
type PlaceDetails struct {
	OpeningHours     []string `json:"opening_hours"`
	ReviewsSummary   string   `json:"reviews_summary"`
	EditorialSummary string   `json:"editorial_summary"`
}

// RecommendedRestaurant is the output unit of the pipeline, at most three
// per request.
type RecommendedRestaurant struct {
	Name       string       `json:"name"`
	Rating     string       `json:"rating"` // "<value> (<count> reviews)"
	TravelTime string       `json:"travel_time"`
	Address    string       `json:"address"`
	MapLink    string       `json:"map_link"`
	Details    PlaceDetails `json:"details_data"`
}

// SavedEntry is the persisted subset of a recommendation.
type SavedEntry struct {
	Name    string `json:"name"`
	MapLink string `json:"map_link"`
	Rating  string `json:"rating"`
}

// ToSavedEntry projects a recommendation onto its persisted form.
func (r RecommendedRestaurant) ToSavedEntry() SavedEntry {
	return SavedEntry{Name: r.Name, MapLink: r.MapLink, Rating: r.Rating}
}
