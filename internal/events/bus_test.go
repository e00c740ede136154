package events

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"webterm/internal/logger"
	"webterm/internal/protocol"

	"github.com/sirupsen/logrus"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus(4)
	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Publish(Event{Type: TypeExecuteStarted, Payload: ExecuteStarted{Command: "ls", Seq: 1}})

	for _, ch := range []<-chan Event{a, b} {
		select {
		case evt := <-ch:
			if evt.Type != TypeExecuteStarted || evt.Timestamp.IsZero() {
				t.Fatalf("unexpected event %+v", evt)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber did not receive event")
		}
	}
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := NewBus(1)
	_ = bus.Subscribe()
	bus.Publish(Event{Type: TypeTelemetryUpdated})
	bus.Publish(Event{Type: TypeTelemetryUpdated})
	bus.Publish(Event{Type: TypeTelemetryUpdated})
	if got := bus.Dropped(); got != 2 {
		t.Fatalf("Dropped() = %d, want 2", got)
	}
}

func TestBusCloseClosesSubscribers(t *testing.T) {
	bus := NewBus(1)
	ch := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	bus.Publish(Event{Type: TypeTelemetryUpdated}) // no panic after close
	late := bus.Subscribe()
	if _, ok := <-late; ok {
		t.Fatalf("subscribe after close should return closed channel")
	}
	bus.Close()
}

func TestEventAccessors(t *testing.T) {
	cpu := 1.5
	evt := Event{Type: TypeTelemetryUpdated, Payload: protocol.Snapshot{CPUPercent: &cpu}}
	snap, ok := evt.Snapshot()
	if !ok || snap.CPUPercent == nil || *snap.CPUPercent != 1.5 {
		t.Fatalf("Snapshot() = %+v,%v", snap, ok)
	}
	if _, ok := evt.Outcome(); ok {
		t.Fatalf("telemetry event is not an outcome")
	}
	wrongType := Event{Type: TypeExecuteStarted, Payload: protocol.Snapshot{}}
	if _, ok := wrongType.Snapshot(); ok {
		t.Fatalf("payload type alone must not be enough")
	}
}

func TestLogToWritesEvents(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(logger.PlainFormatter{})

	bus := NewBus(8)
	done := LogTo(bus, logrus.NewEntry(l).WithField("component", "events"))
	bus.Publish(Event{Type: TypeExecuteFinished, SessionID: "s1", Payload: protocol.Outcome{Command: "ls", Kind: protocol.OutcomeSuccess, Class: "normal"}})
	bus.Publish(Event{Type: TypeTelemetryDropped, Payload: errors.New("refused")})
	bus.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("LogTo did not exit after Close")
	}
	out := buf.String()
	for _, want := range []string{"[events] session event", "command=ls", "outcome=success", "session_id=s1", "telemetry poll dropped: refused"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestSetupEventLog(t *testing.T) {
	path := t.TempDir() + "/logs/events.log"
	entry, closer, err := SetupEventLog(path)
	if err != nil {
		t.Fatalf("SetupEventLog: %v", err)
	}
	bus := NewBus(4)
	done := LogTo(bus, entry)
	bus.Publish(Event{Type: TypeExecuteStarted, SessionID: "s", Payload: ExecuteStarted{Command: "ls", Seq: 1}})
	bus.Close()
	<-done
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "command=ls") || !strings.Contains(string(data), "type=execute.started") {
		t.Fatalf("event log = %q", data)
	}
}
