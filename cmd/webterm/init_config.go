package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"webterm/internal/config"
)

func initConfigMain(root rootArgs, args []string) {
	if err := runInitConfig(root, args, os.Stdout); err != nil {
		log.Fatalf("init-config failed: %v", err)
	}
}

// runInitConfig 写出默认配置（叠加 -c 覆盖）。文件已存在时需要 --force。
func runInitConfig(root rootArgs, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init-config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var path string
	var force bool
	var overrides overrideList
	fs.StringVar(&path, "config", "", "Path to write (default ~/.webterm/config.toml)")
	fs.BoolVar(&force, "force", false, "Overwrite an existing file")
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return errors.New("cannot resolve config path: $HOME is not set")
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	cfg := config.ApplyKVOverrides(config.Default(), root.with(overrides))
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "wrote %s\n", path)
	return nil
}
