package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/bytedance/sonic"

	"foodbot/internal/logger"
	"foodbot/pkg"
)

// PlacesAPI is the slice of the places client the pipeline needs.
type PlacesAPI interface {
	Resolve(ctx context.Context, name string) (pkg.LatLng, bool)
	Search(ctx context.Context, keyword string, origin pkg.LatLng) ([]pkg.PlaceCandidate, error)
	TravelTimes(ctx context.Context, origin pkg.LatLng, placeIDs []string) (map[string]pkg.TravelTime, error)
	Details(ctx context.Context, placeID string) pkg.PlaceDetails
}

// Narrator generates the user-facing reply from an assembled prompt.
type Narrator interface {
	Narrate(ctx context.Context, promptText string) (string, error)
}

// Options tune filtering and selection.
type Options struct {
	MinRating     float64
	MinReviews    int
	MaxResults    int
	ShortlistSize int
}

// Pipeline orchestrates resolve → search → filter → travel-time gate →
// sample → details → narration. Upstream failures surface as tagged
// results; nothing escapes as a fault.
type Pipeline struct {
	places   PlacesAPI
	narrator Narrator
	opts     Options
	rng      *rand.Rand
}

// New builds a pipeline. Zero option fields get the standard thresholds.
func New(places PlacesAPI, narrator Narrator, opts Options) *Pipeline {
	if opts.MinRating == 0 {
		opts.MinRating = 3.5
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 3
	}
	if opts.ShortlistSize <= 0 {
		opts.ShortlistSize = 15
	}
	return &Pipeline{
		places:   places,
		narrator: narrator,
		opts:     opts,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run executes one recommendation pass. excludeIDs are places already
// shown in the current turn-chain; candidates in it are skipped so
// repeated "more" requests keep surfacing new places.
func (p *Pipeline) Run(ctx context.Context, params pkg.SearchParameters, originalText string, excludeIDs map[string]struct{}) Result {
	origin, found := p.places.Resolve(ctx, params.Location)
	if !found {
		return empty(ReasonLocationNotFound)
	}

	raw, err := p.places.Search(ctx, params.Keyword, origin)
	if err != nil {
		return upstreamError(err)
	}
	if len(raw) == 0 {
		return empty(ReasonNoMatch)
	}

	candidates := p.filter(raw, excludeIDs)
	if len(candidates) == 0 {
		if len(excludeIDs) > 0 {
			// Everything nearby has been shown already; different message
			// than a plain miss.
			return empty(ReasonAllSeen)
		}
		return empty(ReasonNoMatch)
	}

	if len(candidates) > p.opts.ShortlistSize {
		candidates = candidates[:p.opts.ShortlistSize]
	}
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.PlaceID
	}

	travel, err := p.places.TravelTimes(ctx, origin, ids)
	if err != nil {
		return upstreamError(err)
	}

	var reachable []pkg.PlaceCandidate
	for _, c := range candidates {
		if t, ok := travel[c.PlaceID]; ok && t.Minutes <= params.TimeLimit {
			reachable = append(reachable, c)
		}
	}
	if len(reachable) == 0 {
		return empty(ReasonNoneWithinTime)
	}

	selected := p.sample(reachable)

	shownIDs := make([]string, len(selected))
	restaurants := make([]pkg.RecommendedRestaurant, len(selected))
	for i, c := range selected {
		shownIDs[i] = c.PlaceID
		restaurants[i] = pkg.RecommendedRestaurant{
			Name:       c.Name,
			Rating:     fmt.Sprintf("%v (%d reviews)", c.Rating, c.UserRatingsTotal),
			TravelTime: travel[c.PlaceID].Text,
			Address:    c.FormattedAddress,
			MapLink:    MapLink(c.PlaceID),
			Details:    p.places.Details(ctx, c.PlaceID),
		}
	}

	narrationPrompt, err := buildNarrationPrompt(originalText, params, restaurants)
	if err != nil {
		return upstreamError(err)
	}

	logger.Info().
		Str("keyword", params.Keyword).
		Str("location", params.Location).
		Int("candidates", len(raw)).
		Int("reachable", len(reachable)).
		Int("selected", len(selected)).
		Msg("recommendation pipeline run")

	narration, err := p.narrator.Narrate(ctx, narrationPrompt)
	if err != nil {
		return upstreamError(err)
	}

	return success(narration, shownIDs, restaurants)
}

// MapLink builds the shareable map URL for a place.
func MapLink(placeID string) string {
	return "https://www.google.com/maps/place/?q=place_id:" + placeID
}

// filter drops candidates below the rating/review thresholds and those
// already shown.
func (p *Pipeline) filter(raw []pkg.PlaceCandidate, excludeIDs map[string]struct{}) []pkg.PlaceCandidate {
	var kept []pkg.PlaceCandidate
	for _, c := range raw {
		if c.Rating < p.opts.MinRating {
			continue
		}
		if c.UserRatingsTotal < p.opts.MinReviews {
			continue
		}
		if _, seen := excludeIDs[c.PlaceID]; seen {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// sample picks up to MaxResults candidates uniformly, with no bias toward
// rating or distance: variety across repeated calls beats always
// returning the top-rated place.
func (p *Pipeline) sample(eligible []pkg.PlaceCandidate) []pkg.PlaceCandidate {
	n := p.opts.MaxResults
	if len(eligible) <= n {
		out := make([]pkg.PlaceCandidate, len(eligible))
		copy(out, eligible)
		return out
	}
	shuffled := make([]pkg.PlaceCandidate, len(eligible))
	copy(shuffled, eligible)
	p.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

// buildNarrationPrompt combines the original utterance, the keyword and
// the serialized restaurant data with the reply-formatting instructions.
func buildNarrationPrompt(originalText string, params pkg.SearchParameters, restaurants []pkg.RecommendedRestaurant) (string, error) {
	data, err := sonic.MarshalIndent(restaurants, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal restaurant data: %w", err)
	}

	return fmt.Sprintf(`你是一個專業的台南美食嚮導。請根據以下的餐廳數據回覆使用者。
----------------
【使用者原始需求】: "%s"
【搜尋關鍵字】: %s
----------------
The user is looking for "%s" within %d mins from "%s".
Here are the selected restaurants with reviews data:

%s

Instruction for AI (Reply in Traditional Chinese):
1. **Contextual Response**: If the user mentioned a specific situation (e.g., "It's cold"), start or end by explaining why these restaurants fit that situation.
2. **List the restaurants** using this EXACT format:

[Emoji Number] **[Restaurant Name]**
評分：[Rating]
車程：[Travel Time]
地圖：[Link]
營業時間：[Summarize opening hours]
推薦菜品
  • [Dish 1] – [Brief description based on reviews]
  • [Dish 2] – [Description based on reviews]

3. **Analyze & Recommend Dishes**: Extract specific dishes from reviews_summary.
4. Keep the tone friendly and helpful.
`, originalText, params.Keyword, params.Keyword, params.TimeLimit, params.Location, string(data)), nil
}
