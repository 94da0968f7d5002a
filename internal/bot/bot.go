package bot

import (
	"context"

	"foodbot/internal/logger"
	"foodbot/internal/recommend"
	"foodbot/pkg"
)

// maxMessageRunes is the chunking limit for one outgoing chat message.
const maxMessageRunes = 1900

// IntentAnalyzer infers search parameters from an utterance.
type IntentAnalyzer interface {
	Analyze(ctx context.Context, userText string, prior *pkg.ConversationContext) pkg.SearchParameters
}

// Recommender runs one recommendation pass.
type Recommender interface {
	Run(ctx context.Context, params pkg.SearchParameters, originalText string, excludeIDs map[string]struct{}) recommend.Result
}

// ContextStore is the per-user conversational memory.
type ContextStore interface {
	Get(ctx context.Context, userID string) (pkg.ConversationContext, bool, error)
	Put(ctx context.Context, userID string, c pkg.ConversationContext) error
}

// SaveAction is a declarative save affordance: the chat surface renders
// the label and posts the payload back when the user taps it. No closures
// captured anywhere.
type SaveAction struct {
	Label   string                    `json:"label"`
	Payload pkg.RecommendedRestaurant `json:"payload"`
}

// Reply is one turn's outgoing content, already chunked for the surface.
type Reply struct {
	Messages []string     `json:"messages"`
	Actions  []SaveAction `json:"actions,omitempty"`
}

// Bot glues intent analysis, the pipeline and the context store into the
// conversational recommend flow.
type Bot struct {
	analyzer IntentAnalyzer
	pipeline Recommender
	contexts ContextStore
}

// New wires the bot.
func New(analyzer IntentAnalyzer, pipeline Recommender, contexts ContextStore) *Bot {
	return &Bot{analyzer: analyzer, pipeline: pipeline, contexts: contexts}
}

// Recommend handles one free-text request: analyze, decide whether the
// prior dedup set still applies, run the pipeline, update the context,
// and render the reply.
func (b *Bot) Recommend(ctx context.Context, userID, text string) Reply {
	prior, hasPrior, err := b.contexts.Get(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("context load failed, treating as new conversation")
		hasPrior = false
	}

	var priorPtr *pkg.ConversationContext
	if hasPrior {
		priorPtr = &prior
	}
	params := b.analyzer.Analyze(ctx, text, priorPtr)

	// The dedup set carries over only while the user keeps asking for the
	// same location/keyword pair; a change of either starts fresh. A
	// time_limit change alone does not reset it.
	exclude := make(map[string]struct{})
	var seen []string
	if hasPrior && params.Location == prior.Location && params.Keyword == prior.Keyword {
		seen = prior.SeenIDs
		for _, id := range seen {
			exclude[id] = struct{}{}
		}
	}

	res := b.pipeline.Run(ctx, params, text, exclude)

	if res.Kind == recommend.OutcomeSuccess && len(res.ShownIDs) > 0 {
		next := pkg.ConversationContext{
			Location:  params.Location,
			Keyword:   params.Keyword,
			TimeLimit: params.TimeLimit,
			SeenIDs:   append(append([]string{}, seen...), res.ShownIDs...),
		}
		if err := b.contexts.Put(ctx, userID, next); err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("context store update failed")
		}
	}

	return Reply{
		Messages: chunkMessage(renderResult(params, res), maxMessageRunes),
		Actions:  buildActions(res.Restaurants),
	}
}

var actionEmoji = []string{"1️⃣", "2️⃣", "3️⃣"}

func buildActions(restaurants []pkg.RecommendedRestaurant) []SaveAction {
	actions := make([]SaveAction, 0, len(restaurants))
	for i, r := range restaurants {
		emoji := "🍽️"
		if i < len(actionEmoji) {
			emoji = actionEmoji[i]
		}
		actions = append(actions, SaveAction{
			Label:   emoji + " 加入 " + truncateRunes(r.Name, 10),
			Payload: r,
		})
	}
	return actions
}

// chunkMessage splits long narrations so each chat message stays under
// the surface's length cap.
func chunkMessage(s string, limit int) []string {
	runes := []rune(s)
	if len(runes) <= limit {
		return []string{s}
	}
	var chunks []string
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
