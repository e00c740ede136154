package render

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Viewport 包装 bubbles viewport：内容增长时总是跳到底部，
// 用户翻页之后只要有新行追加也会被拉回底部。
type Viewport struct {
	viewport.Model
	lastLines []string
}

func NewViewport(width, height int) Viewport {
	return Viewport{Model: viewport.New(width, height)}
}

// Resize 更新宽高。宽度变化时清掉缓存，下次 SetLines 会全量重排。
func (v *Viewport) Resize(width, height int) {
	if v == nil {
		return
	}
	if v.Width != width {
		v.Invalidate()
	}
	v.Width = width
	v.Height = height
}

// HandleUpdate 代理 bubbles 的 Update（鼠标滚轮等）。
func (v *Viewport) HandleUpdate(msg tea.Msg) tea.Cmd {
	if v == nil {
		return nil
	}
	var cmd tea.Cmd
	v.Model, cmd = v.Model.Update(msg)
	return cmd
}

// SetLines 替换内容。与上次相同则什么都不做；否则内容更新后定位到底部。
func (v *Viewport) SetLines(lines []string) {
	if v == nil {
		return
	}
	if v.lastLines != nil && slices.Equal(lines, v.lastLines) {
		return
	}
	v.lastLines = append([]string{}, lines...)
	v.SetContent(strings.Join(lines, "\n"))
	v.GotoBottom()
}

func (v *Viewport) ScrollPageUp() {
	if v != nil {
		v.PageUp()
	}
}

func (v *Viewport) ScrollPageDown() {
	if v != nil {
		v.PageDown()
	}
}

// Invalidate 清空已缓存的行。
func (v *Viewport) Invalidate() {
	if v == nil {
		return
	}
	v.lastLines = nil
}
