package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"webterm/internal/telemetry"
)

func pingMain(root rootArgs, args []string) {
	if err := runPing(root, args, os.Stdout); err != nil {
		log.Fatalf("ping failed: %v", err)
	}
}

// runPing 轮询一次遥测并打印 "CPU: ..% MEM: ..%"。
func runPing(root rootArgs, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ping", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var common commonArgs
	var timeoutSeconds int
	fs.StringVar(&common.cfgPath, "config", "", "Path to config file (default ~/.webterm/config.toml)")
	fs.StringVar(&common.url, "url", "", "Executor base URL")
	fs.Var(&common.overrides, "c", "Override config value key=value (repeatable)")
	fs.IntVar(&timeoutSeconds, "timeout", 0, "Timeout seconds (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.resolveConfig(root)
	if err != nil {
		return err
	}
	defer logSetup(cfg)()

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	timeout := cfg.RequestTimeout()
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	snap, err := client.PollTelemetry(ctx)
	if err != nil {
		return fmt.Errorf("telemetry poll: %w", err)
	}
	display := telemetry.Format(&snap)
	_, _ = fmt.Fprintf(out, "%s %s\n", display.CPU, display.MEM)
	return nil
}
