package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"foodbot/internal/logger"
	"foodbot/pkg"
)

// Location used when analysis fails with no prior context to fall back on.
const hardFallbackLocation = "台南"

const analyzerSystemPrompt = `你是一個意圖分析助手。請根據使用者的輸入以及「目前的對話情境」，回傳 JSON 格式的分析結果。
--------------------------------------------------
【目前的對話情境】: {context_str}
--------------------------------------------------
請遵循以下邏輯提取參數：
1. **location**: 優先使用新地點；若無且有情境，則沿用舊地點；否則預設 '{default_location}'。
2. **keyword**:
   - 優先使用新需求。
   - 若說 '推薦更多'、'還有嗎' -> 沿用舊關鍵字。
   - 若描述情境 (如 '天氣冷') -> 推論關鍵字 (如 '火鍋')。
   - 預設 '{default_keyword}'。
3. **time_limit**: 預設 {default_time_limit}。

請只回傳 JSON 字串，欄位為 location、keyword、time_limit。`

// Defaults are the fallback parameter values baked into the analysis
// instruction and applied again to whatever the model returns.
type Defaults struct {
	Location  string
	Keyword   string
	TimeLimit int
}

// ParseResult is the tagged outcome of one parse attempt over raw model
// output. There is no retry: one call, one attempt, then the fallback
// chain takes over.
type ParseResult struct {
	OK     bool
	Params pkg.SearchParameters
}

// Analyzer turns a raw utterance plus prior conversational context into
// SearchParameters, delegating inference to the chat model.
type Analyzer struct {
	chain    compose.Runnable[map[string]any, *schema.Message]
	defaults Defaults
}

// NewAnalyzer compiles the analysis chain: ChatTemplate → ChatModel.
func NewAnalyzer(ctx context.Context, cm model.BaseChatModel, defaults Defaults) (*Analyzer, error) {
	template := prompt.FromMessages(schema.FString,
		schema.SystemMessage(analyzerSystemPrompt),
		schema.UserMessage("使用者輸入: {user_input}"),
	)

	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(template).
		AppendChatModel(cm).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating analyzer chain: %w", err)
	}

	return &Analyzer{chain: chain, defaults: defaults}, nil
}

// Analyze infers search parameters from userText. On any model or parse
// failure it falls back to the prior context verbatim, or to the
// hard-coded default pair when there is none.
func (a *Analyzer) Analyze(ctx context.Context, userText string, prior *pkg.ConversationContext) pkg.SearchParameters {
	contextStr := "無 (這是新的對話)"
	if prior != nil {
		contextStr = fmt.Sprintf("地點=%s, 關鍵字=%s", prior.Location, prior.Keyword)
	}

	out, err := a.chain.Invoke(ctx, map[string]any{
		"context_str":        contextStr,
		"user_input":         userText,
		"default_location":   a.defaults.Location,
		"default_keyword":    a.defaults.Keyword,
		"default_time_limit": a.defaults.TimeLimit,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("intent analysis call failed, using fallback")
		return a.fallback(prior)
	}

	parsed := ParseParameters(out.Content)
	if !parsed.OK {
		logger.Warn().Str("raw", out.Content).Msg("intent analysis output unparsable, using fallback")
		return a.fallback(prior)
	}

	return a.normalize(parsed.Params, prior)
}

// ParseParameters permissively parses raw model output: code-fence markers
// are stripped before the single decode attempt.
func ParseParameters(raw string) ParseResult {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var params pkg.SearchParameters
	if err := sonic.Unmarshal([]byte(cleaned), &params); err != nil {
		return ParseResult{}
	}
	return ParseResult{OK: true, Params: params}
}

func (a *Analyzer) fallback(prior *pkg.ConversationContext) pkg.SearchParameters {
	if prior != nil {
		return a.normalize(pkg.SearchParameters{
			Location:  prior.Location,
			Keyword:   prior.Keyword,
			TimeLimit: prior.TimeLimit,
		}, nil)
	}
	return pkg.SearchParameters{
		Location:  hardFallbackLocation,
		Keyword:   a.defaults.Keyword,
		TimeLimit: a.defaults.TimeLimit,
	}
}

// normalize fills blanks the model left: prior context first, then the
// configured defaults.
func (a *Analyzer) normalize(params pkg.SearchParameters, prior *pkg.ConversationContext) pkg.SearchParameters {
	if params.Location == "" {
		if prior != nil && prior.Location != "" {
			params.Location = prior.Location
		} else {
			params.Location = a.defaults.Location
		}
	}
	if params.Keyword == "" {
		if prior != nil && prior.Keyword != "" {
			params.Keyword = prior.Keyword
		} else {
			params.Keyword = a.defaults.Keyword
		}
	}
	if params.TimeLimit <= 0 {
		params.TimeLimit = a.defaults.TimeLimit
	}
	return params
}
