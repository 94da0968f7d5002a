package recommend

import "foodbot/pkg"

// OutcomeKind tags a pipeline result instead of overloading the narration
// string with error text.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeEmpty
	OutcomeUpstreamError
)

// EmptyReason distinguishes the no-result cases so the chat surface can
// phrase each one differently.
type EmptyReason int

const (
	ReasonNone EmptyReason = iota
	ReasonLocationNotFound
	ReasonNoMatch
	ReasonAllSeen
	ReasonNoneWithinTime
)

// Result is the outcome of one pipeline run.
type Result struct {
	Kind        OutcomeKind
	Narration   string
	Reason      EmptyReason
	Err         error
	ShownIDs    []string
	Restaurants []pkg.RecommendedRestaurant
}

func success(narration string, ids []string, restaurants []pkg.RecommendedRestaurant) Result {
	return Result{Kind: OutcomeSuccess, Narration: narration, ShownIDs: ids, Restaurants: restaurants}
}

func empty(reason EmptyReason) Result {
	return Result{Kind: OutcomeEmpty, Reason: reason}
}

func upstreamError(err error) Result {
	return Result{Kind: OutcomeUpstreamError, Err: err}
}
