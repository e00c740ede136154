package scrollback

import (
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Class 是输出行的分类。执行器可以返回任意 type 标签，这里只列出内置的几种。
type Class string

const (
	ClassCommand Class = "command"
	ClassNormal  Class = "normal"
	ClassError   Class = "error"
)

// ClassOf 把执行器的 type 字段映射为 Class，空值视为 normal。
func ClassOf(tag string) Class {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ClassNormal
	}
	return Class(tag)
}

// Line 是一条已追加的输出。追加之后不会再被修改。
type Line struct {
	Seq   int       `json:"seq"`
	Text  string    `json:"text"`
	Class Class     `json:"class"`
	At    time.Time `json:"at"`
}

// Sanitize 去掉转义序列与控制字符（保留换行与制表符），
// 使输出按字面内容显示，不会改写终端状态。
func Sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = ansi.Strip(text)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}
