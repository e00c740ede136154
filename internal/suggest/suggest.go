// Package suggest 提供输入提示：子串建议、前缀补全与历史模糊搜索。
package suggest

import "strings"

// MaxSuggestions 是建议条目的上限。
const MaxSuggestions = 5

// MinInputLength 低于该长度的输入不给建议。
const MinInputLength = 2

// Vocabulary 是建议使用的常用命令片段，顺序即展示顺序。
var Vocabulary = []string{
	"ls", "cd", "pwd", "mkdir", "rmdir", "rm", "cp", "mv", "cat", "grep",
	"python", "pip install", "git status", "git add", "git commit",
	"create a folder", "show me files", "list all files", "find files",
}

// Engine 对固定词表做大小写不敏感的子串匹配。零值使用 Vocabulary。
type Engine struct {
	Words []string
	Limit int
}

// Suggest 返回与 partial 匹配的候选（保持词表顺序，最多 Limit 条）。
// partial 少于 MinInputLength 个字符时返回 nil。
func (e Engine) Suggest(partial string) []string {
	if len([]rune(partial)) < MinInputLength {
		return nil
	}
	words := e.Words
	if words == nil {
		words = Vocabulary
	}
	limit := e.Limit
	if limit <= 0 || limit > MaxSuggestions {
		limit = MaxSuggestions
	}
	needle := strings.ToLower(partial)
	var out []string
	for _, w := range words {
		if !strings.Contains(strings.ToLower(w), needle) {
			continue
		}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Suggest 使用默认词表。
func Suggest(partial string) []string {
	return Engine{}.Suggest(partial)
}
