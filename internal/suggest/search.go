package suggest

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// HistoryMatch 是历史搜索的一条结果。
type HistoryMatch struct {
	Text       string
	Index      int
	Highlights []int
}

// SearchHistory 在历史中模糊搜索 query，结果最新者优先且去重。
// query 为空时按时间倒序返回全部条目。
func SearchHistory(entries []string, query string, limit int) []HistoryMatch {
	newestFirst := make([]string, 0, len(entries))
	indexOf := make([]int, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if seen[entries[i]] {
			continue
		}
		seen[entries[i]] = true
		newestFirst = append(newestFirst, entries[i])
		indexOf = append(indexOf, i)
	}

	var out []HistoryMatch
	if strings.TrimSpace(query) == "" {
		for i, text := range newestFirst {
			out = append(out, HistoryMatch{Text: text, Index: indexOf[i]})
		}
	} else {
		// fuzzy.Find 按分数排序且稳定，同分时保留最新优先。
		for _, res := range fuzzy.Find(query, newestFirst) {
			out = append(out, HistoryMatch{
				Text:       res.Str,
				Index:      indexOf[res.Index],
				Highlights: res.MatchedIndexes,
			})
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
