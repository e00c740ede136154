package tui

import (
	"fmt"
	"strings"

	"webterm/internal/session"
	"webterm/internal/tui/render"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const keyHints = "Enter run • ↑/↓ history • Tab complete • Alt+N pick • Ctrl+R search • Ctrl+Y copy • Ctrl+C quit"

var (
	readyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787"))
	executingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB454"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AFAFD7"))
)

// statusLine 渲染状态字段、提示信息与快捷键，超出宽度时截断快捷键部分。
func statusLine(st session.State, notice string, width int, spin spinner.Model) string {
	status := readyStyle.Render(st.Status.String())
	if st.Status == session.StatusExecuting {
		status = executingStyle.Render(spin.View() + " " + st.Status.String())
	}
	parts := []string{status}
	if st.Pending > 1 {
		parts = append(parts, fmt.Sprintf("%d pending", st.Pending))
	}
	if notice != "" {
		parts = append(parts, notice)
	}
	head := strings.Join(parts, " • ")
	room := width - lipgloss.Width(head) - 5
	if room > 10 {
		head += hintStyle.Render(" • " + render.Truncate(keyHints, room))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(head)
}

// renderSuggestions 渲染建议条；没有建议时输出空行以保持布局稳定。
func renderSuggestions(items []string, width int) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	used := 0
	limit := width - 2
	for i, item := range items {
		cell := fmt.Sprintf("%d %s", i+1, item)
		w := runewidth.StringWidth(cell) + 2
		if limit > 0 && used+w > limit {
			if used == 0 {
				b.WriteString(render.Truncate(cell, limit))
			}
			break
		}
		if used > 0 {
			b.WriteString("  ")
		}
		b.WriteString(cell)
		used += w
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(suggestionStyle.Render(b.String()))
}
