package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"strings"

	"webterm/internal/protocol"
	"webterm/internal/scrollback"
	"webterm/internal/session"
)

// errUsage 表示参数错误，退出码 2。
var errUsage = errors.New("usage: webterm exec [flags] <command>")

func execMain(root rootArgs, args []string) {
	code, err := runExec(root, args, os.Stdout, os.Stderr)
	if err != nil {
		log.Errorf("exec failed: %v", err)
		if code == 0 {
			code = 1
		}
	}
	os.Exit(code)
}

// runExec 非交互地执行一条命令，scrollback 直接写到 stdout（error 行写 stderr）。
// 结果为错误时退出码为 1。
func runExec(root rootArgs, args []string, stdout, stderr io.Writer) (int, error) {
	fs := flag.NewFlagSet("exec", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonArgs
	var jsonOut bool
	var noEcho bool
	fs.StringVar(&common.cfgPath, "config", "", "Path to config file (default ~/.webterm/config.toml)")
	fs.StringVar(&common.url, "url", "", "Executor base URL")
	fs.Var(&common.overrides, "c", "Override config value key=value (repeatable)")
	fs.BoolVar(&jsonOut, "json", false, "Print each scrollback line as a JSON object")
	fs.BoolVar(&noEcho, "no-echo", false, "Do not print the prompt echo line")
	if err := fs.Parse(args); err != nil {
		return 2, err
	}
	command := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if command == "" {
		return 2, errUsage
	}

	cfg, err := common.resolveConfig(root)
	if err != nil {
		return 1, err
	}
	defer logSetup(cfg)()

	client, err := newClient(cfg)
	if err != nil {
		return 1, err
	}

	var sink scrollback.Sink = scrollback.WriterSink{Out: stdout, ErrorsTo: stderr}
	if jsonOut {
		sink = jsonSink{enc: json.NewEncoder(stdout)}
	}
	if noEcho {
		sink = skipCommands{next: sink}
	}
	ctrl := session.New(session.Options{
		Prompt:     cfg.Prompt,
		SessionID:  client.SessionID(),
		Scrollback: scrollback.New(sink),
	})
	ctrl.TextChanged(command)
	job, ok := ctrl.Submit()
	if !ok {
		return 2, errUsage
	}
	out := job.Run(context.Background(), client)
	ctrl.Resolve(out)
	ctrl.Close()

	if out.Kind != protocol.OutcomeSuccess || out.Class == scrollback.ClassError {
		return 1, nil
	}
	return 0, nil
}

type jsonSink struct {
	enc *json.Encoder
}

func (s jsonSink) LineAppended(line scrollback.Line) {
	line.Text = scrollback.Sanitize(line.Text)
	if err := s.enc.Encode(line); err != nil {
		log.Warnf("encode line: %v", err)
	}
}

type skipCommands struct {
	next scrollback.Sink
}

func (s skipCommands) LineAppended(line scrollback.Line) {
	if line.Class == scrollback.ClassCommand {
		return
	}
	s.next.LineAppended(line)
}
