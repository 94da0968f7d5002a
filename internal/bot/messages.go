package bot

import (
	"fmt"

	"foodbot/internal/recommend"
	"foodbot/pkg"
)

// renderResult maps a tagged pipeline result to its user-facing text.
// Only here do outcomes become strings; nothing upstream matches on
// message content.
func renderResult(params pkg.SearchParameters, res recommend.Result) string {
	switch res.Kind {
	case recommend.OutcomeSuccess:
		return res.Narration
	case recommend.OutcomeUpstreamError:
		return fmt.Sprintf("連線錯誤: %v", res.Err)
	}

	switch res.Reason {
	case recommend.ReasonLocationNotFound:
		return fmt.Sprintf("找不到地點「%s」，換個說法試試吧。", params.Location)
	case recommend.ReasonAllSeen:
		return fmt.Sprintf("附近的「%s」都已經推薦過囉！試試看換個關鍵字或地點吧。", params.Keyword)
	case recommend.ReasonNoneWithinTime:
		return fmt.Sprintf("找到了一些「%s」，但都超過 %d 分鐘車程。", params.Keyword, params.TimeLimit)
	default:
		return fmt.Sprintf("附近找不到符合條件的「%s」，換個關鍵字試試吧。", params.Keyword)
	}
}

func addedMessage(name string) string {
	return fmt.Sprintf("✅ 已將 **%s** 加入待吃清單！", name)
}

func alreadySavedMessage(name string) string {
	return fmt.Sprintf("❌ **%s** 已經在你的清單裡囉！", name)
}

func removedMessage(name string) string {
	return fmt.Sprintf("🗑️ 已將 **%s** 從清單中移除。", name)
}

func notFoundMessage(name string) string {
	return fmt.Sprintf("❌ 找不到包含「%s」的餐廳。請檢查名稱是否正確。", name)
}

const (
	emptyListMessage       = "📋 你的待吃清單目前是空的！"
	emptyDeleteMessage     = "❌ 你的清單是空的，沒東西可刪。"
	savedListHeaderMessage = "📋 **你的待吃清單：**\n\n"
)

func renderSavedList(entries []pkg.SavedEntry) string {
	if len(entries) == 0 {
		return emptyListMessage
	}
	out := savedListHeaderMessage
	for idx, item := range entries {
		out += fmt.Sprintf("%d. **%s** (%s)\n   🔗 %s\n", idx+1, item.Name, item.Rating, item.MapLink)
	}
	return out
}
