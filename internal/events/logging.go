package events

import (
	"io"

	"webterm/internal/logger"
)

// DefaultEventLogPath 是事件流日志文件。
const DefaultEventLogPath = "logs/events.log"

var log = logger.Named("events")

// SetupEventLog 打开独立的事件日志文件，返回写入该文件的 entry。
func SetupEventLog(path string) (*logger.LogEntry, io.Closer, error) {
	if path == "" {
		path = DefaultEventLogPath
	}
	l, closer, err := logger.NewFileLogger(path, "debug")
	if err != nil {
		return nil, nil, err
	}
	return logger.NewEntry(l, "events"), closer, nil
}

// LogTo 订阅总线并把每个事件写入 entry，直到总线关闭。返回的通道在退出时关闭。
func LogTo(bus *Bus, entry *logger.LogEntry) <-chan struct{} {
	if entry == nil {
		entry = log
	}
	done := make(chan struct{})
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		for evt := range sub {
			fields := logger.Fields{"type": string(evt.Type)}
			if evt.SessionID != "" {
				fields["session_id"] = evt.SessionID
			}
			switch evt.Type {
			case TypeExecuteStarted:
				if p, ok := evt.Payload.(ExecuteStarted); ok {
					fields["command"] = p.Command
					fields["seq"] = p.Seq
				}
			case TypeExecuteFinished:
				if o, ok := evt.Outcome(); ok {
					fields["command"] = o.Command
					fields["outcome"] = o.Kind.String()
					fields["class"] = string(o.Class)
				}
			case TypeTelemetryDropped:
				entry.WithFields(fields).Debugf("telemetry poll dropped: %v", evt.Payload)
				continue
			}
			entry.WithFields(fields).Debug("session event")
		}
	}()
	return done
}
