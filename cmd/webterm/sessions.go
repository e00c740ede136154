package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"webterm/internal/scrollback"
	"webterm/internal/session"
)

func sessionsMain(root rootArgs, args []string) {
	if err := runSessions(root, args, os.Stdout); err != nil {
		log.Fatalf("sessions failed: %v", err)
	}
}

// runSessions 列出保存的会话记录；"show <id>" 或 "last" 打印一份记录的 scrollback。
func runSessions(root rootArgs, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var common commonArgs
	fs.StringVar(&common.cfgPath, "config", "", "Path to config file (default ~/.webterm/config.toml)")
	fs.Var(&common.overrides, "c", "Override config value key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := common.resolveConfig(root)
	if err != nil {
		return err
	}
	dir, err := transcriptDir(cfg)
	if err != nil {
		return err
	}

	rest := fs.Args()
	switch {
	case len(rest) == 0:
		return listTranscripts(dir, out)
	case rest[0] == "last":
		rec, err := session.LastTranscript(dir)
		if err != nil {
			return err
		}
		printTranscript(rec, out)
		return nil
	case rest[0] == "show" && len(rest) == 2:
		rec, err := session.LoadTranscript(dir, rest[1])
		if err != nil {
			return err
		}
		printTranscript(rec, out)
		return nil
	default:
		return fmt.Errorf("usage: webterm sessions [last | show <id>]")
	}
}

func listTranscripts(dir string, out io.Writer) error {
	records, err := session.ListTranscripts(dir)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		_, _ = fmt.Fprintln(out, "no sessions found")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUPDATED\tCOMMANDS\tEXECUTOR")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", rec.ID, rec.Updated.Local().Format(time.DateTime), len(rec.History), rec.Executor)
	}
	return tw.Flush()
}

func printTranscript(rec session.Transcript, out io.Writer) {
	sink := scrollback.WriterSink{Out: out}
	for _, line := range rec.Lines {
		sink.LineAppended(line)
	}
}
