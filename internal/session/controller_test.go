package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"webterm/internal/events"
	"webterm/internal/history"
	"webterm/internal/protocol"
	"webterm/internal/scrollback"
)

type stubExecutor struct {
	outcomes map[string]protocol.Outcome
	calls    []string
}

func (s *stubExecutor) Execute(_ context.Context, command string) protocol.Outcome {
	s.calls = append(s.calls, command)
	if out, ok := s.outcomes[command]; ok {
		return out
	}
	return protocol.TransportFailure(command, errors.New("connection refused"))
}

func newController(t *testing.T, opts Options) *Controller {
	t.Helper()
	if opts.Scrollback == nil {
		opts.Scrollback = scrollback.New()
	}
	return New(opts)
}

func runJob(t *testing.T, c *Controller, exec Executor, text string) {
	t.Helper()
	c.TextChanged(text)
	job, ok := c.Submit()
	if !ok {
		t.Fatalf("Submit(%q) returned false", text)
	}
	if got := c.State().Status; got != StatusExecuting {
		t.Fatalf("status after submit = %v, want Executing", got)
	}
	c.Resolve(job.Run(context.Background(), exec))
}

func texts(lines []scrollback.Line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, string(l.Class)+"|"+l.Text)
	}
	return out
}

func assertLines(t *testing.T, got []scrollback.Line, want ...string) {
	t.Helper()
	g := texts(got)
	if len(g) != len(want) {
		t.Fatalf("lines = %q, want %q", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("line %d = %q, want %q (all %q)", i, g[i], want[i], g)
		}
	}
}

func TestSubmitSuccess(t *testing.T) {
	exec := &stubExecutor{outcomes: map[string]protocol.Outcome{
		"ls": protocol.Classify("ls", protocol.ExecuteResponse{Success: true, Output: "a.txt\nb.txt", Type: "normal"}),
	}}
	c := newController(t, Options{})
	runJob(t, c, exec, "ls")

	assertLines(t, c.Scrollback().Lines(),
		"command|user@python-terminal:~$ ls",
		"normal|a.txt\nb.txt",
	)
	if got := c.History().Entries(); len(got) != 1 || got[0] != "ls" {
		t.Fatalf("history = %q", got)
	}
	st := c.State()
	if st.Status != StatusReady || st.Buffer != "" || st.Pending != 0 {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestSubmitApplicationFailure(t *testing.T) {
	exec := &stubExecutor{outcomes: map[string]protocol.Outcome{
		"rm /": protocol.Classify("rm /", protocol.ExecuteResponse{Success: false, Output: "Permission denied"}),
	}}
	c := newController(t, Options{})
	runJob(t, c, exec, "  rm /  ")

	assertLines(t, c.Scrollback().Lines(),
		"command|user@python-terminal:~$ rm /",
		"error|Permission denied",
	)
	if c.State().Status != StatusReady {
		t.Fatalf("status not restored")
	}
}

func TestSubmitTransportFailure(t *testing.T) {
	c := newController(t, Options{})
	runJob(t, c, &stubExecutor{}, "pwd")

	assertLines(t, c.Scrollback().Lines(),
		"command|user@python-terminal:~$ pwd",
		"error|Error: connection refused",
	)
	if c.State().Status != StatusReady {
		t.Fatalf("status not restored after transport failure")
	}
	if got := c.History().Entries(); len(got) != 1 || got[0] != "pwd" {
		t.Fatalf("failed commands still belong in history, got %q", got)
	}
}

func TestSubmitWhitespaceIsDiscarded(t *testing.T) {
	bus := events.NewBus(4)
	sub := bus.Subscribe()
	c := newController(t, Options{Bus: bus})
	c.TextChanged("   ")
	if _, ok := c.Submit(); ok {
		t.Fatalf("whitespace input should not be submitted")
	}
	if c.Scrollback().Len() != 0 || c.History().Len() != 0 {
		t.Fatalf("whitespace input must leave no trace")
	}
	if c.State().Status != StatusReady {
		t.Fatalf("status changed on empty submit")
	}
	select {
	case evt := <-sub:
		t.Fatalf("unexpected event %v", evt.Type)
	default:
	}
}

func TestSubmitClearsBufferAndSuggestions(t *testing.T) {
	c := newController(t, Options{Prompt: "me$"})
	c.TextChanged("gi")
	if len(c.State().Suggestions) == 0 {
		t.Fatalf("expected suggestions for gi")
	}
	job, ok := c.Submit()
	if !ok {
		t.Fatalf("submit failed")
	}
	st := c.State()
	if st.Buffer != "" || len(st.Suggestions) != 0 {
		t.Fatalf("buffer/suggestions not cleared: %+v", st)
	}
	if job.Command != "gi" || job.EchoSeq != 1 {
		t.Fatalf("unexpected job %+v", job)
	}
	if line, _ := c.Scrollback().Last(); line.Text != "me$ gi" {
		t.Fatalf("echo line = %q", line.Text)
	}
}

func TestCompletionOrderIsKept(t *testing.T) {
	c := newController(t, Options{})
	c.TextChanged("first")
	first, _ := c.Submit()
	c.TextChanged("second")
	second, _ := c.Submit()
	if c.State().Pending != 2 {
		t.Fatalf("pending = %d", c.State().Pending)
	}

	c.Resolve(protocol.Outcome{Command: second.Command, Output: "two", Class: scrollback.ClassNormal})
	if c.State().Status != StatusReady {
		t.Fatalf("first completion should restore Ready")
	}
	c.Resolve(protocol.Outcome{Command: first.Command, Output: "one", Class: scrollback.ClassNormal})

	assertLines(t, c.Scrollback().Lines(),
		"command|user@python-terminal:~$ first",
		"command|user@python-terminal:~$ second",
		"normal|two",
		"normal|one",
	)
}

func TestRecall(t *testing.T) {
	c := newController(t, Options{History: history.NewBuffer("ls", "pwd")})
	c.TextChanged("draft")

	if got := c.Recall(history.Older); got != "pwd" {
		t.Fatalf("older = %q", got)
	}
	if got := c.Recall(history.Older); got != "ls" {
		t.Fatalf("older = %q", got)
	}
	if got := c.Recall(history.Older); got != "ls" {
		t.Fatalf("older at oldest = %q", got)
	}
	c.Recall(history.Newer)
	if got := c.Recall(history.Newer); got != "" || c.State().Buffer != "" {
		t.Fatalf("past newest should clear buffer, got %q", got)
	}
}

func TestRecallEmptyHistoryKeepsBuffer(t *testing.T) {
	c := newController(t, Options{})
	c.TextChanged("draft")
	if got := c.Recall(history.Older); got != "draft" {
		t.Fatalf("recall on empty history changed buffer to %q", got)
	}
}

func TestComplete(t *testing.T) {
	c := newController(t, Options{})
	c.TextChanged("pw")
	if !c.Complete() || c.State().Buffer != "pwd " {
		t.Fatalf("pw should complete to 'pwd ', got %q", c.State().Buffer)
	}
	c.TextChanged("p")
	if c.Complete() || c.State().Buffer != "p" {
		t.Fatalf("ambiguous prefix should leave buffer unchanged")
	}
	c.TextChanged("mk")
	if c.Complete() {
		t.Fatalf("mkdir is outside the completion vocabulary")
	}
}

func TestSelectSuggestion(t *testing.T) {
	c := newController(t, Options{})
	c.TextChanged("git")
	if !c.SelectSuggestion(1) {
		t.Fatalf("select failed, suggestions %q", c.State().Suggestions)
	}
	st := c.State()
	if st.Buffer != "git add" || len(st.Suggestions) != 0 {
		t.Fatalf("unexpected state %+v", st)
	}
	if c.SelectSuggestion(0) {
		t.Fatalf("selecting from hidden suggestions should fail")
	}
}

func TestTelemetry(t *testing.T) {
	c := newController(t, Options{})
	if c.State().Telemetry != nil {
		t.Fatalf("telemetry should start empty")
	}
	cpu := 12.5
	c.ApplyTelemetry(protocol.Snapshot{CPUPercent: &cpu})
	st := c.State()
	if st.Telemetry == nil || *st.Telemetry.CPUPercent != 12.5 || st.Telemetry.MemoryPercent != nil {
		t.Fatalf("unexpected telemetry %+v", st.Telemetry)
	}
	if c.Scrollback().Len() != 0 {
		t.Fatalf("telemetry must not touch scrollback")
	}
}

func TestResolveAfterClose(t *testing.T) {
	c := newController(t, Options{})
	c.TextChanged("ls")
	job, _ := c.Submit()
	c.Close()
	if c.Resolve(protocol.Outcome{Command: job.Command, Output: "late"}) {
		t.Fatalf("result after close should be dropped")
	}
	if c.Scrollback().Len() != 1 {
		t.Fatalf("late result was rendered")
	}
	if _, ok := c.Submit(); ok {
		t.Fatalf("closed controller accepted a submission")
	}
}

func TestEventsPublished(t *testing.T) {
	bus := events.NewBus(8)
	sub := bus.Subscribe()
	c := newController(t, Options{Bus: bus, SessionID: "s-1"})
	runJob(t, c, &stubExecutor{}, "whoami")

	want := []events.Type{events.TypeExecuteStarted, events.TypeExecuteFinished}
	for _, typ := range want {
		select {
		case evt := <-sub:
			if evt.Type != typ || evt.SessionID != "s-1" {
				t.Fatalf("event = %+v, want type %s", evt, typ)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing %s event", typ)
		}
	}
}

func TestSubmitPersistsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	store, err := history.Open(path, "s-1")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	c := newController(t, Options{Store: store})
	c.TextChanged("ls -la")
	c.Submit()

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0] != "ls -la" {
		t.Fatalf("stored history = %q", got)
	}
}
