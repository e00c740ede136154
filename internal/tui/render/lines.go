package render

import (
	"strings"

	"webterm/internal/scrollback"

	"github.com/charmbracelet/lipgloss"
)

var (
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787")).Bold(true)
	normalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E4E4E4"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	// 执行器自定义的 type 统一用一种颜色。
	taggedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF"))
)

// StyleFor 返回分类对应的样式。
func StyleFor(class scrollback.Class) lipgloss.Style {
	switch class {
	case scrollback.ClassCommand:
		return commandStyle
	case scrollback.ClassNormal, "":
		return normalStyle
	case scrollback.ClassError:
		return errorStyle
	default:
		return taggedStyle
	}
}

// Lines 把 scrollback 渲染成视口行：先按字面内容清洗，再按宽度换行并着色。
// 制表符展开为 4 个空格，避免宽度计算失真。
func Lines(lines []scrollback.Line, width int) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		text := strings.ReplaceAll(scrollback.Sanitize(line.Text), "\t", "    ")
		style := StyleFor(line.Class)
		for _, row := range WrapText(text, width) {
			out = append(out, style.Render(row))
		}
	}
	return out
}
