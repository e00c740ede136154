package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"webterm/internal/logger"
)

var log = logger.Named("cli")

func main() {
	root, rest, err := parseRootArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		printUsage()
		return
	}
	if err != nil {
		log.Fatalf("parse args: %v", err)
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "exec":
			execMain(root, rest[1:])
			return
		case "ping":
			pingMain(root, rest[1:])
			return
		case "mock-executor":
			mockExecutorMain(root, rest[1:])
			return
		case "init-config":
			initConfigMain(root, rest[1:])
			return
		case "sessions":
			sessionsMain(root, rest[1:])
			return
		case "help":
			printUsage()
			return
		}
	}

	runInteractive(root, rest)
}

func printUsage() {
	fmt.Fprint(os.Stdout, `usage: webterm [-c key=value]... [command] [flags]

commands:
  (none)          interactive terminal session
  exec <command>  run one command and print the result
  ping            poll executor telemetry once
  mock-executor   serve a local stub executor
  init-config     write a default config file
  sessions        list or show saved session transcripts
`)
}
