package scrollback

import (
	"fmt"
	"io"
	"time"
)

// Sink 接收每一条新追加的行，例如终端视口或 io.Writer。
type Sink interface {
	LineAppended(line Line)
}

// SinkFunc 让普通函数实现 Sink。
type SinkFunc func(Line)

func (f SinkFunc) LineAppended(line Line) { f(line) }

// Scrollback 是只追加的输出缓冲。行按 Append 调用顺序保存，
// 不提供修改或删除接口。只允许在会话线程上调用。
type Scrollback struct {
	lines []Line
	sinks []Sink
	now   func() time.Time
}

func New(sinks ...Sink) *Scrollback {
	return &Scrollback{sinks: sinks, now: time.Now}
}

// Attach 追加一个 sink，之后的行都会通知到它。
func (s *Scrollback) Attach(sink Sink) {
	if sink != nil {
		s.sinks = append(s.sinks, sink)
	}
}

// Append 在末尾追加一行并通知所有 sink。
func (s *Scrollback) Append(text string, class Class) Line {
	if class == "" {
		class = ClassNormal
	}
	line := Line{
		Seq:   len(s.lines) + 1,
		Text:  text,
		Class: class,
		At:    s.now(),
	}
	s.lines = append(s.lines, line)
	for _, sink := range s.sinks {
		sink.LineAppended(line)
	}
	return line
}

// Lines 返回全部行的副本。
func (s *Scrollback) Lines() []Line {
	return append([]Line(nil), s.lines...)
}

func (s *Scrollback) Len() int {
	return len(s.lines)
}

// Last returns the most recently appended line.
func (s *Scrollback) Last() (Line, bool) {
	if len(s.lines) == 0 {
		return Line{}, false
	}
	return s.lines[len(s.lines)-1], true
}

// LastOutput 返回最近一条非命令回显的行。
func (s *Scrollback) LastOutput() (Line, bool) {
	for i := len(s.lines) - 1; i >= 0; i-- {
		if s.lines[i].Class != ClassCommand {
			return s.lines[i], true
		}
	}
	return Line{}, false
}

// WriterSink 把行以纯文本写到 io.Writer。ErrorsTo 非空时 error 行写到该 writer。
type WriterSink struct {
	Out      io.Writer
	ErrorsTo io.Writer
}

func (w WriterSink) LineAppended(line Line) {
	out := w.Out
	if line.Class == ClassError && w.ErrorsTo != nil {
		out = w.ErrorsTo
	}
	if out == nil {
		return
	}
	_, _ = fmt.Fprintln(out, Sanitize(line.Text))
}
