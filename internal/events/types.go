package events

import (
	"time"

	"webterm/internal/protocol"
)

// Type 描述总线上分发的事件类型。
type Type string

const (
	TypeExecuteStarted   Type = "execute.started"
	TypeExecuteFinished  Type = "execute.finished"
	TypeTelemetryUpdated Type = "telemetry.updated"
	TypeTelemetryDropped Type = "telemetry.dropped"
)

// Event 是总线上传递的唯一消息格式，Payload 的结构由 Type 决定：
//   - execute.started:   ExecuteStarted
//   - execute.finished:  protocol.Outcome
//   - telemetry.updated: protocol.Snapshot
//   - telemetry.dropped: error
type Event struct {
	Type      Type
	SessionID string
	Timestamp time.Time
	Payload   any
}

// ExecuteStarted 在命令提交后、请求发出前发布。
type ExecuteStarted struct {
	Command string
	Seq     int
}

// Snapshot 从事件中取出遥测快照。
func (e Event) Snapshot() (protocol.Snapshot, bool) {
	s, ok := e.Payload.(protocol.Snapshot)
	return s, ok && e.Type == TypeTelemetryUpdated
}

// Outcome 从事件中取出执行结果。
func (e Event) Outcome() (protocol.Outcome, bool) {
	o, ok := e.Payload.(protocol.Outcome)
	return o, ok && e.Type == TypeExecuteFinished
}
