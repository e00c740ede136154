package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"webterm/internal/config"
	"webterm/internal/mockexec"
)

func mockExecutorMain(root rootArgs, args []string) {
	fs := flag.NewFlagSet("mock-executor", flag.ExitOnError)
	var cfgPath string
	var addr string
	fs.StringVar(&cfgPath, "config", "", "Path to config file (log settings only)")
	fs.StringVar(&addr, "addr", "127.0.0.1:8000", "Listen address")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse args: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg = config.ApplyKVOverrides(cfg, root.overrides)
	closeLogs := setupLogging(cfg)
	defer closeLogs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = mockexec.New().ListenAndServe(ctx, addr, func(a net.Addr) {
		fmt.Fprintf(os.Stdout, "mock executor listening on http://%s\n", a)
	})
	if err != nil {
		log.Fatalf("mock executor: %v", err)
	}
}
