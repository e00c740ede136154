package protocol

import "webterm/internal/scrollback"

// 执行器的固定端点。
const (
	ExecutePath   = "/execute"
	TelemetryPath = "/system_info"
)

// 附加在每个请求上的头，便于执行器侧关联日志。
const (
	HeaderSession   = "X-Webterm-Session"
	HeaderRequestID = "X-Request-ID"
)

// ExecuteRequest 是 POST /execute 的请求体。
type ExecuteRequest struct {
	Command string `json:"command"`
}

// ExecuteResponse 是 POST /execute 的响应体。
type ExecuteResponse struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Type    string `json:"type,omitempty"`
}

// TelemetryResponse 是 GET /system_info 的响应体。
type TelemetryResponse struct {
	Success bool          `json:"success"`
	Data    TelemetryData `json:"data"`
}

// TelemetryData 中的字段缺失时为 nil。
type TelemetryData struct {
	CPUPercent    *float64 `json:"cpu_percent,omitempty"`
	MemoryPercent *float64 `json:"memory_percent,omitempty"`
}

// Snapshot 是一次成功轮询得到的主机指标，每次轮询整体替换。
type Snapshot struct {
	CPUPercent    *float64
	MemoryPercent *float64
}

// OutcomeKind 区分执行结果的来源。
type OutcomeKind int

const (
	// OutcomeSuccess 执行器返回 success=true。
	OutcomeSuccess OutcomeKind = iota
	// OutcomeFailure 执行器返回 success=false。
	OutcomeFailure
	// OutcomeTransport 请求本身失败（网络、状态码、响应体解析）。
	OutcomeTransport
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Outcome 是一次 Execute 的分类结果，可以直接交给 scrollback 渲染。
type Outcome struct {
	Command string
	Kind    OutcomeKind
	Output  string
	Class   scrollback.Class
	Err     error
}

// Classify 将执行器响应映射为 Outcome：成功时使用 type（缺省 normal），失败一律 error。
func Classify(command string, resp ExecuteResponse) Outcome {
	if !resp.Success {
		return Outcome{Command: command, Kind: OutcomeFailure, Output: resp.Output, Class: scrollback.ClassError}
	}
	return Outcome{Command: command, Kind: OutcomeSuccess, Output: resp.Output, Class: scrollback.ClassOf(resp.Type)}
}

// TransportFailure 生成传输失败时的合成错误行。
func TransportFailure(command string, err error) Outcome {
	return Outcome{
		Command: command,
		Kind:    OutcomeTransport,
		Output:  "Error: " + err.Error(),
		Class:   scrollback.ClassError,
		Err:     err,
	}
}
