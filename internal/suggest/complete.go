package suggest

import "strings"

// CompletionVocabulary 是 Tab 补全使用的词表。它比 Vocabulary 小且只做前缀匹配。
var CompletionVocabulary = []string{"ls", "cd", "pwd", "python", "pip", "git"}

// Completer 做大小写敏感的前缀补全。零值使用 CompletionVocabulary。
type Completer struct {
	Words []string
}

// Matches 返回以 prefix 开头的全部词。
func (c Completer) Matches(prefix string) []string {
	words := c.Words
	if words == nil {
		words = CompletionVocabulary
	}
	var out []string
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}
	return out
}

// Complete 仅在唯一匹配时返回 "match "；零个或多个匹配时返回 ("", false)。
func (c Completer) Complete(prefix string) (string, bool) {
	matches := c.Matches(prefix)
	if len(matches) != 1 {
		return "", false
	}
	return matches[0] + " ", true
}
