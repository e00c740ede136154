package tui

import (
	"strings"

	"webterm/internal/suggest"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const searchLimit = 8

var highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFB454"))

// historySearch 是 Ctrl+R 打开的反向搜索浮层。
type historySearch struct {
	active   bool
	query    textinput.Model
	matches  []suggest.HistoryMatch
	selected int
	width    int
}

func newHistorySearch() historySearch {
	q := textinput.New()
	q.Prompt = "(reverse-i-search) "
	q.CharLimit = 0
	return historySearch{query: q, width: 80}
}

func (s *historySearch) open(entries []string) {
	s.active = true
	s.query.SetValue("")
	s.query.Focus()
	s.selected = 0
	s.matches = suggest.SearchHistory(entries, "", searchLimit)
}

func (s *historySearch) close() {
	s.active = false
	s.query.Blur()
	s.matches = nil
}

// handleKey 处理浮层内的按键。done 为 true 时浮层已关闭，text 为选中条目（取消时为空）。
func (s *historySearch) handleKey(msg tea.KeyMsg, entries []string) (text string, done bool) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlG:
		s.close()
		return "", true
	case tea.KeyEnter:
		if s.selected < len(s.matches) {
			text = s.matches[s.selected].Text
		}
		s.close()
		return text, true
	case tea.KeyUp, tea.KeyCtrlR:
		if s.selected+1 < len(s.matches) {
			s.selected++
		}
		return "", false
	case tea.KeyDown:
		if s.selected > 0 {
			s.selected--
		}
		return "", false
	}
	before := s.query.Value()
	s.query, _ = s.query.Update(msg)
	if s.query.Value() != before {
		s.matches = suggest.SearchHistory(entries, s.query.Value(), searchLimit)
		s.selected = 0
	}
	return "", false
}

func (s *historySearch) view() string {
	rows := []string{s.query.View()}
	if len(s.matches) == 0 {
		rows = append(rows, hintStyle.Render("no matches"))
	}
	for i, match := range s.matches {
		marker := "  "
		if i == s.selected {
			marker = "› "
		}
		rows = append(rows, marker+highlight(match))
	}
	style := modalStyle
	if s.width > 4 {
		style = style.Width(s.width - 4)
	}
	return style.Render(strings.Join(rows, "\n"))
}

func highlight(match suggest.HistoryMatch) string {
	if len(match.Highlights) == 0 {
		return match.Text
	}
	marked := make(map[int]bool, len(match.Highlights))
	for _, idx := range match.Highlights {
		marked[idx] = true
	}
	var b strings.Builder
	for i, r := range match.Text {
		if marked[i] {
			b.WriteString(highlightStyle.Render(string(r)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
