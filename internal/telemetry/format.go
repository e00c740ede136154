package telemetry

import (
	"strconv"

	"webterm/internal/protocol"
)

// Placeholder 用于缺失的指标。
const Placeholder = "--"

// Display 是状态区两个固定字段的文本。
type Display struct {
	CPU string
	MEM string
}

// Format 渲染快照；snap 为 nil（尚未成功轮询）或字段缺失时显示占位符。
func Format(snap *protocol.Snapshot) Display {
	var cpu, mem *float64
	if snap != nil {
		cpu, mem = snap.CPUPercent, snap.MemoryPercent
	}
	return Display{
		CPU: "CPU: " + percent(cpu) + "%",
		MEM: "MEM: " + percent(mem) + "%",
	}
}

func percent(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
