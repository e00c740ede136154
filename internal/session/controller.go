// Package session 持有终端会话的全部可变状态，并实现输入控制器的各个操作。
// Controller 的方法只允许在单一的会话线程上调用（TUI 的 Update 循环或 exec 命令的 goroutine）；
// 真正的网络请求通过 Job 在别处执行，结果再经 Resolve 回到会话线程。
package session

import (
	"context"
	"strings"
	"time"

	"webterm/internal/events"
	"webterm/internal/history"
	"webterm/internal/logger"
	"webterm/internal/protocol"
	"webterm/internal/scrollback"
	"webterm/internal/suggest"
)

var log = logger.Named("session")

// DefaultPrompt 是命令回显前的提示符。
const DefaultPrompt = "user@python-terminal:~$"

// Status 是状态栏显示的会话状态。
type Status int

const (
	StatusReady Status = iota
	StatusExecuting
)

func (s Status) String() string {
	switch s {
	case StatusExecuting:
		return "Executing..."
	default:
		return "Ready"
	}
}

// Executor 执行一条命令并返回分类后的结果，不返回 error。
type Executor interface {
	Execute(ctx context.Context, command string) protocol.Outcome
}

// Job 是一次已提交、等待执行的命令。
type Job struct {
	Command string
	// EchoSeq 是该命令回显行在 scrollback 中的序号。
	EchoSeq int
}

// Run 在调用方的 goroutine 上执行命令。
func (j Job) Run(ctx context.Context, exec Executor) protocol.Outcome {
	return exec.Execute(ctx, j.Command)
}

// Options 配置 Controller。零值字段使用默认值。
type Options struct {
	Prompt     string
	SessionID  string
	History    *history.Buffer
	Store      *history.Store
	Scrollback *scrollback.Scrollback
	Bus        *events.Bus
	Suggester  suggest.Engine
	Completer  suggest.Completer
}

// State 是一次会话状态的快照。
type State struct {
	Buffer      string
	Status      Status
	Suggestions []string
	// Telemetry 为 nil 表示还没有成功的轮询。
	Telemetry *protocol.Snapshot
	// Pending 是已提交但尚未 Resolve 的命令数。
	Pending int
}

// Controller 是输入控制器。
type Controller struct {
	prompt    string
	sessionID string
	history   *history.Buffer
	store     *history.Store
	scroll    *scrollback.Scrollback
	bus       *events.Bus
	suggester suggest.Engine
	completer suggest.Completer
	now       func() time.Time

	state  State
	closed bool
}

func New(opts Options) *Controller {
	c := &Controller{
		prompt:    opts.Prompt,
		sessionID: opts.SessionID,
		history:   opts.History,
		store:     opts.Store,
		scroll:    opts.Scrollback,
		bus:       opts.Bus,
		suggester: opts.Suggester,
		completer: opts.Completer,
		now:       time.Now,
	}
	if c.prompt == "" {
		c.prompt = DefaultPrompt
	}
	if c.history == nil {
		c.history = history.NewBuffer()
	}
	if c.scroll == nil {
		c.scroll = scrollback.New()
	}
	return c
}

// State 返回当前状态的副本。
func (c *Controller) State() State {
	st := c.state
	st.Suggestions = append([]string(nil), c.state.Suggestions...)
	if c.state.Telemetry != nil {
		snap := *c.state.Telemetry
		st.Telemetry = &snap
	}
	return st
}

func (c *Controller) Prompt() string                     { return c.prompt }
func (c *Controller) SessionID() string                  { return c.sessionID }
func (c *Controller) History() *history.Buffer           { return c.history }
func (c *Controller) Scrollback() *scrollback.Scrollback { return c.scroll }
func (c *Controller) Closed() bool                       { return c.closed }

// Submit 提交当前输入。去掉首尾空白后为空时什么都不做并返回 false。
// 否则记录历史、追加回显行、进入 Executing，清空输入与建议，
// 并返回需要异步执行的 Job。
func (c *Controller) Submit() (Job, bool) {
	if c.closed {
		return Job{}, false
	}
	command := strings.TrimSpace(c.state.Buffer)
	if command == "" {
		return Job{}, false
	}

	c.history.Append(command)
	if c.store != nil {
		if err := c.store.Append(command); err != nil {
			log.Warnf("persist history failed: %v", err)
		}
	}
	echo := c.scroll.Append(c.prompt+" "+command, scrollback.ClassCommand)
	c.state.Status = StatusExecuting
	c.state.Pending++
	c.state.Buffer = ""
	c.state.Suggestions = nil

	c.publish(events.TypeExecuteStarted, events.ExecuteStarted{Command: command, Seq: echo.Seq})
	return Job{Command: command, EchoSeq: echo.Seq}, true
}

// Resolve 把一次执行结果追加到 scrollback 并恢复 Ready。
// 多个命令并发时，第一个完成的结果就会把状态置回 Ready。
// 会话关闭后的结果被丢弃，返回 false。
func (c *Controller) Resolve(out protocol.Outcome) bool {
	if c.closed {
		log.Debugf("dropping result for %q after close", out.Command)
		return false
	}
	c.scroll.Append(out.Output, out.Class)
	c.state.Status = StatusReady
	if c.state.Pending > 0 {
		c.state.Pending--
	}
	c.publish(events.TypeExecuteFinished, out)
	return true
}

// Recall 在历史中移动并把输入替换为对应条目，越过最新条目时清空输入。
// 历史为空时输入保持不变。
func (c *Controller) Recall(dir history.Direction) string {
	if c.history.Len() == 0 {
		return c.state.Buffer
	}
	entry, _ := c.history.Recall(dir)
	c.state.Buffer = entry
	return entry
}

// Complete 对当前输入做前缀补全。只有唯一匹配时才替换输入。
func (c *Controller) Complete() bool {
	completed, ok := c.completer.Complete(c.state.Buffer)
	if !ok {
		return false
	}
	c.TextChanged(completed)
	return true
}

// TextChanged 记录新的输入并重新计算建议，旧的建议集直接丢弃。
func (c *Controller) TextChanged(text string) {
	c.state.Buffer = text
	c.state.Suggestions = c.suggester.Suggest(text)
}

// SelectSuggestion 用第 i 个可见建议替换输入并隐藏建议。
func (c *Controller) SelectSuggestion(i int) bool {
	if i < 0 || i >= len(c.state.Suggestions) {
		return false
	}
	c.state.Buffer = c.state.Suggestions[i]
	c.state.Suggestions = nil
	return true
}

// HideSuggestions 清空建议但保留输入。
func (c *Controller) HideSuggestions() {
	c.state.Suggestions = nil
}

// SetBuffer 直接替换输入，不重新计算建议（例如从历史搜索中选中一条）。
func (c *Controller) SetBuffer(text string) {
	c.state.Buffer = text
	c.state.Suggestions = nil
}

// ApplyTelemetry 整体替换遥测快照。
func (c *Controller) ApplyTelemetry(snap protocol.Snapshot) {
	if c.closed {
		return
	}
	c.state.Telemetry = &snap
}

// Close 结束会话；之后到达的结果都会被忽略。
func (c *Controller) Close() {
	c.closed = true
}

func (c *Controller) publish(typ events.Type, payload any) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(events.Event{
		Type:      typ,
		SessionID: c.sessionID,
		Timestamp: c.now(),
		Payload:   payload,
	})
}
