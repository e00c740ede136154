package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"webterm/internal/config"
	"webterm/internal/events"
	"webterm/internal/features"
	"webterm/internal/history"
	"webterm/internal/protocol"
	"webterm/internal/session"
	"webterm/internal/telemetry"
	"webterm/internal/tui"
)

type interactiveArgs struct {
	commonArgs
	inline bool
}

func newInteractiveFlagSet(name string) (*flag.FlagSet, *interactiveArgs) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	args := &interactiveArgs{}
	fs.StringVar(&args.cfgPath, "config", "", "Path to config file (default ~/.webterm/config.toml)")
	fs.StringVar(&args.url, "url", "", "Executor base URL (overrides config and $"+config.EnvExecutorURL+")")
	fs.Var(&args.overrides, "c", "Override config value key=value (repeatable)")
	fs.BoolVar(&args.inline, "inline", false, "Do not use the alt screen; output stays in the terminal")
	return fs, args
}

func runInteractive(root rootArgs, args []string) {
	fs, cli := newInteractiveFlagSet("webterm")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse args: %v", err)
	}
	cfg, err := cli.resolveConfig(root)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	closeLogs := logSetup(cfg)
	defer closeLogs()

	client, err := newClient(cfg)
	if err != nil {
		log.Fatalf("init executor client: %v", err)
	}
	sessionID := client.SessionID()

	bus := events.NewBus(64)
	logDone := startEventLog(bus)

	buffer, store := openHistory(cfg, sessionID)
	ctrl := session.New(session.Options{
		Prompt:    cfg.Prompt,
		SessionID: sessionID,
		History:   buffer,
		Store:     store,
		Bus:       bus,
	})

	pollCtx, stopPolling := context.WithCancel(context.Background())
	poller := telemetry.NewPoller(telemetry.Options{
		Source:   client,
		Interval: cfg.PollInterval(),
		OnSnapshot: func(snap protocol.Snapshot) {
			bus.Publish(events.Event{Type: events.TypeTelemetryUpdated, SessionID: sessionID, Payload: snap})
		},
		OnDrop: func(err error) {
			bus.Publish(events.Event{Type: events.TypeTelemetryDropped, SessionID: sessionID, Payload: err})
		},
	})
	if features.Enabled(cfg.Features, features.Telemetry) {
		poller.Start(pollCtx)
	}

	log.Infof("interactive session %s against %s", sessionID, cfg.ExecutorURL)
	res, runErr := tui.Run(tui.Options{
		Controller:  ctrl,
		Executor:    client,
		Events:      bus,
		ExecutorURL: cfg.ExecutorURL,

		DisableHistorySearch: !features.Enabled(cfg.Features, features.HistorySearch),
		DisableClipboard:     !features.Enabled(cfg.Features, features.Clipboard),
	}, cli.inline)

	poller.Stop()
	stopPolling()
	bus.Close()
	<-logDone

	if runErr != nil {
		log.Fatalf("tui error: %v", runErr)
	}
	saveTranscript(cfg, ctrl, len(res.Lines))
}

// startEventLog 把总线事件写到独立日志文件；打开失败时回退到全局日志。
func startEventLog(bus *events.Bus) <-chan struct{} {
	entry, closer, err := events.SetupEventLog(events.DefaultEventLogPath)
	if err != nil {
		log.Warnf("failed to initialize event log (%s): %v", events.DefaultEventLogPath, err)
		return events.LogTo(bus, nil)
	}
	inner := events.LogTo(bus, entry)
	done := make(chan struct{})
	go func() {
		<-inner
		_ = closer.Close()
		close(done)
	}()
	return done
}

// openHistory 打开历史文件。只有 history.restore 为 true 时才用旧记录预填缓冲。
func openHistory(cfg config.Config, sessionID string) (*history.Buffer, *history.Store) {
	store, err := history.Open(cfg.History.Path, sessionID)
	if err != nil {
		log.Warnf("history store unavailable: %v", err)
		return history.NewBuffer(), nil
	}
	if !cfg.History.Restore {
		return history.NewBuffer(), store
	}
	entries, err := store.Load()
	if err != nil {
		log.Warnf("restore history from %s: %v", store.Path, err)
		return history.NewBuffer(), store
	}
	return history.NewBuffer(entries...), store
}

func saveTranscript(cfg config.Config, ctrl *session.Controller, lines int) {
	if !cfg.Sessions.Save || lines == 0 {
		return
	}
	dir, err := transcriptDir(cfg)
	if err != nil {
		log.Warnf("resolve sessions dir: %v", err)
		return
	}
	id, err := session.SaveTranscript(dir, ctrl.Transcript(cfg.ExecutorURL))
	if err != nil {
		log.Warnf("save session transcript: %v", err)
		return
	}
	fmt.Fprintf(os.Stdout, "session saved: %s\n", id)
}
