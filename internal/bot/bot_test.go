package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodbot/internal/recommend"
	"foodbot/internal/storage"
	"foodbot/pkg"
)

type fakeAnalyzer struct {
	params pkg.SearchParameters
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string, _ *pkg.ConversationContext) pkg.SearchParameters {
	return f.params
}

type fakeRecommender struct {
	result      recommend.Result
	lastExclude map[string]struct{}
}

func (f *fakeRecommender) Run(_ context.Context, _ pkg.SearchParameters, _ string, excludeIDs map[string]struct{}) recommend.Result {
	f.lastExclude = excludeIDs
	return f.result
}

func restaurant(name string) pkg.RecommendedRestaurant {
	return pkg.RecommendedRestaurant{Name: name, Rating: "4.5 (100 reviews)", MapLink: "https://example.test/" + name}
}

func successResult(narration string, ids ...string) recommend.Result {
	restaurants := make([]pkg.RecommendedRestaurant, len(ids))
	for i, id := range ids {
		restaurants[i] = restaurant("店-" + id)
	}
	return recommend.Result{
		Kind:        recommend.OutcomeSuccess,
		Narration:   narration,
		ShownIDs:    ids,
		Restaurants: restaurants,
	}
}

func TestRecommendCarriesDedupSetForSameParams(t *testing.T) {
	ctx := context.Background()
	contexts := storage.NewMemoryContextStore()
	require.NoError(t, contexts.Put(ctx, "u1", pkg.ConversationContext{
		Location: "成大", Keyword: "牛肉湯", TimeLimit: 20, SeenIDs: []string{"a", "b"},
	}))

	rec := &fakeRecommender{result: successResult("更多推薦", "c")}
	b := New(&fakeAnalyzer{params: pkg.SearchParameters{Location: "成大", Keyword: "牛肉湯", TimeLimit: 20}}, rec, contexts)

	b.Recommend(ctx, "u1", "還有嗎")

	assert.Contains(t, rec.lastExclude, "a")
	assert.Contains(t, rec.lastExclude, "b")

	got, ok, err := contexts.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, got.SeenIDs)
}

func TestRecommendResetsDedupOnKeywordChange(t *testing.T) {
	ctx := context.Background()
	contexts := storage.NewMemoryContextStore()
	require.NoError(t, contexts.Put(ctx, "u1", pkg.ConversationContext{
		Location: "成大", Keyword: "牛肉湯", SeenIDs: []string{"a"},
	}))

	rec := &fakeRecommender{result: successResult("火鍋推薦", "x")}
	b := New(&fakeAnalyzer{params: pkg.SearchParameters{Location: "成大", Keyword: "火鍋", TimeLimit: 20}}, rec, contexts)

	b.Recommend(ctx, "u1", "天氣冷想吃鍋")

	assert.Empty(t, rec.lastExclude)

	got, _, err := contexts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.SeenIDs, "context replaced wholesale on keyword change")
	assert.Equal(t, "火鍋", got.Keyword)
}

func TestRecommendKeepsContextOnEmptyResult(t *testing.T) {
	ctx := context.Background()
	contexts := storage.NewMemoryContextStore()
	require.NoError(t, contexts.Put(ctx, "u1", pkg.ConversationContext{
		Location: "成大", Keyword: "牛肉湯", SeenIDs: []string{"a"},
	}))

	rec := &fakeRecommender{result: recommend.Result{Kind: recommend.OutcomeEmpty, Reason: recommend.ReasonAllSeen}}
	b := New(&fakeAnalyzer{params: pkg.SearchParameters{Location: "成大", Keyword: "牛肉湯", TimeLimit: 20}}, rec, contexts)

	reply := b.Recommend(ctx, "u1", "還有嗎")

	require.Len(t, reply.Messages, 1)
	assert.Contains(t, reply.Messages[0], "已經推薦過")

	got, _, err := contexts.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.SeenIDs, "empty run must not grow the dedup set")
}

func TestRecommendChunksLongNarration(t *testing.T) {
	long := strings.Repeat("好吃", 1500) // 3000 runes
	rec := &fakeRecommender{result: successResult(long, "a")}
	b := New(&fakeAnalyzer{params: pkg.SearchParameters{Location: "成大", Keyword: "美食", TimeLimit: 20}}, rec, storage.NewMemoryContextStore())

	reply := b.Recommend(context.Background(), "u1", "推薦")

	require.Len(t, reply.Messages, 2)
	assert.Len(t, []rune(reply.Messages[0]), maxMessageRunes)
	assert.Equal(t, long, reply.Messages[0]+reply.Messages[1])
}

func TestBuildActionsLabels(t *testing.T) {
	rec := &fakeRecommender{result: successResult("推薦如下", "a", "b", "c")}
	b := New(&fakeAnalyzer{params: pkg.SearchParameters{Location: "成大", Keyword: "美食", TimeLimit: 20}}, rec, storage.NewMemoryContextStore())

	reply := b.Recommend(context.Background(), "u1", "推薦")

	require.Len(t, reply.Actions, 3)
	assert.True(t, strings.HasPrefix(reply.Actions[0].Label, "1️⃣ 加入 "))
	assert.True(t, strings.HasPrefix(reply.Actions[1].Label, "2️⃣ 加入 "))
	assert.Equal(t, "店-b", reply.Actions[1].Payload.Name)
}

func TestBuildActionsTruncatesLongNames(t *testing.T) {
	long := restaurant(strings.Repeat("很長的店名", 5))
	actions := buildActions([]pkg.RecommendedRestaurant{long})

	require.Len(t, actions, 1)
	assert.Equal(t, "1️⃣ 加入 "+string([]rune(long.Name)[:10]), actions[0].Label)
	assert.Equal(t, long.Name, actions[0].Payload.Name, "payload keeps the full name")
}

func TestRenderResultUpstreamError(t *testing.T) {
	rec := &fakeRecommender{result: recommend.Result{Kind: recommend.OutcomeUpstreamError, Err: assert.AnError}}
	b := New(&fakeAnalyzer{params: pkg.SearchParameters{Location: "成大", Keyword: "美食", TimeLimit: 20}}, rec, storage.NewMemoryContextStore())

	reply := b.Recommend(context.Background(), "u1", "推薦")

	require.Len(t, reply.Messages, 1)
	assert.Contains(t, reply.Messages[0], "連線錯誤")
	assert.Empty(t, reply.Actions)
}
