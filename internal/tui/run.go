package tui

import (
	"errors"

	"webterm/internal/scrollback"

	tea "github.com/charmbracelet/bubbletea"
)

// Result 返回 TUI 退出后的会话内容。
type Result struct {
	SessionID string
	History   []string
	Lines     []scrollback.Line
}

// Run 封装 Bubble Tea 入口。inline 为 true 时不进入 alt screen，输出留在终端里便于复制。
func Run(opts Options, inline bool) (Result, error) {
	programOptions := []tea.ProgramOption{}
	if !inline {
		programOptions = append(programOptions, tea.WithAltScreen(), tea.WithMouseCellMotion())
	}
	program := tea.NewProgram(New(opts), programOptions...)
	m, err := program.Run()
	if err != nil {
		return Result{}, err
	}
	tuiModel, ok := m.(*Model)
	if !ok {
		return Result{}, errors.New("unexpected tui model")
	}
	ctrl := tuiModel.Controller()
	ctrl.Close()
	return Result{
		SessionID: ctrl.SessionID(),
		History:   ctrl.History().Entries(),
		Lines:     ctrl.Scrollback().Lines(),
	}, nil
}
