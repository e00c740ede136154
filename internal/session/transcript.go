package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"webterm/internal/scrollback"

	"github.com/google/uuid"
)

// Transcript 是会话结束时保存的记录：回显与输出行，以及提交过的命令。
type Transcript struct {
	ID       string            `json:"id"`
	Executor string            `json:"executor,omitempty"`
	Lines    []scrollback.Line `json:"lines"`
	History  []string          `json:"history"`
	Updated  time.Time         `json:"updated"`
}

// DefaultTranscriptDir 返回 ~/.webterm/sessions。
func DefaultTranscriptDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".webterm", "sessions"), nil
}

// SaveTranscript 把记录写到 dir/<id>.json，id 为空时生成新的 id。
func SaveTranscript(dir string, rec Transcript) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	path, err := transcriptPath(dir, rec.ID)
	if err != nil {
		return "", err
	}
	rec.ID = trimExt(filepath.Base(path))
	if rec.Updated.IsZero() {
		rec.Updated = time.Now()
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Transcript 从控制器生成当前会话的记录。
func (c *Controller) Transcript(executor string) Transcript {
	return Transcript{
		ID:       c.sessionID,
		Executor: executor,
		Lines:    c.scroll.Lines(),
		History:  c.history.Entries(),
		Updated:  c.now(),
	}
}

// LoadTranscript 读取 dir/<id>.json，id 必须是 uuid。
func LoadTranscript(dir, id string) (Transcript, error) {
	var rec Transcript
	path, err := transcriptPath(dir, id)
	if err != nil {
		return rec, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decode transcript %s: %w", id, err)
	}
	return rec, nil
}

// transcriptPath 只接受 uuid，防止 id 里带路径分隔符或 ".." 逃出 dir。
func transcriptPath(dir, id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid session id %q", id)
	}
	return filepath.Join(dir, parsed.String()+".json"), nil
}

// ListTranscripts 返回 dir 下所有可读的记录，最近更新的在前。目录不存在时返回空。
func ListTranscripts(dir string) ([]Transcript, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var records []Transcript
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		rec, err := LoadTranscript(dir, trimExt(e.Name()))
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Updated.After(records[j].Updated)
	})
	return records, nil
}

// LastTranscript 返回最近更新的记录。
func LastTranscript(dir string) (Transcript, error) {
	records, err := ListTranscripts(dir)
	if err != nil {
		return Transcript{}, err
	}
	if len(records) == 0 {
		return Transcript{}, fmt.Errorf("no sessions found")
	}
	return records[0], nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
