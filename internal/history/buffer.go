package history

// Direction 表示历史浏览方向。
type Direction int

const (
	Older Direction = -1
	Newer Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Older:
		return "older"
	case Newer:
		return "newer"
	default:
		return "unknown"
	}
}

// Buffer 是会话内的命令历史：只追加，插入顺序即时间顺序。
// cursor == len(entries) 表示未在浏览历史（输入框显示新的空行）。
type Buffer struct {
	entries []string
	cursor  int
}

// NewBuffer 以给定的初始条目构造历史（通常为空）。
func NewBuffer(seed ...string) *Buffer {
	b := &Buffer{entries: append([]string(nil), seed...)}
	b.cursor = len(b.entries)
	return b
}

// Append 追加一条命令并把游标复位到最新条目之后。
// Append does not trim or filter; callers hand it already-validated commands.
func (b *Buffer) Append(cmd string) {
	b.entries = append(b.entries, cmd)
	b.cursor = len(b.entries)
}

// Recall 按方向移动游标。返回游标处的条目；越过最新条目时返回 ("", false)。
// 在最旧条目处继续向 Older 移动会停在原处。
func (b *Buffer) Recall(dir Direction) (string, bool) {
	if len(b.entries) == 0 {
		return "", false
	}
	switch dir {
	case Older:
		if b.cursor > 0 {
			b.cursor--
		}
	case Newer:
		if b.cursor < len(b.entries) {
			b.cursor++
		}
	}
	if b.cursor >= len(b.entries) {
		return "", false
	}
	return b.entries[b.cursor], true
}

// Browsing reports whether the cursor points at an existing entry.
func (b *Buffer) Browsing() bool {
	return b.cursor < len(b.entries)
}

// Cursor 返回当前游标位置，范围 [0, Len()]。
func (b *Buffer) Cursor() int {
	return b.cursor
}

func (b *Buffer) Len() int {
	return len(b.entries)
}

// Entries 返回历史副本，按时间顺序。
func (b *Buffer) Entries() []string {
	return append([]string(nil), b.entries...)
}
