package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"webterm/internal/config"
	"webterm/internal/features"
	"webterm/internal/logger"
	"webterm/internal/protocol"
	"webterm/internal/session"
)

// overrideList 收集可重复的 -c key=value。
type overrideList []string

func (o *overrideList) String() string {
	return strings.Join(*o, ",")
}

func (o *overrideList) Set(v string) error {
	if key, _, ok := strings.Cut(v, "="); !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	*o = append(*o, v)
	return nil
}

// featureToggle 把 --enable/--disable 翻译成 features.<name>=bool 覆盖。
// 两个 flag 共用同一个 target，命令行上后出现的生效。
type featureToggle struct {
	target *overrideList
	on     bool
}

func (f featureToggle) String() string { return "" }

func (f featureToggle) Set(name string) error {
	name = strings.TrimSpace(name)
	if !features.IsKnown(name) {
		return fmt.Errorf("unknown feature %q", name)
	}
	*f.target = append(*f.target, fmt.Sprintf("features.%s=%t", name, f.on))
	return nil
}

// rootArgs 是子命令之前的全局 flag。
type rootArgs struct {
	overrides []string
}

// with 返回根级覆盖后接子命令覆盖的新切片，子命令的值最后生效。
func (r rootArgs) with(sub []string) []string {
	merged := append([]string{}, r.overrides...)
	return append(merged, sub...)
}

// parseRootArgs 解析到第一个非 flag 参数为止，剩余部分原样交给子命令。
func parseRootArgs(args []string) (rootArgs, []string, error) {
	fs := flag.NewFlagSet("webterm", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var overrides overrideList
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	fs.Var(featureToggle{target: &overrides, on: true}, "enable", "Enable a feature (repeatable)")
	fs.Var(featureToggle{target: &overrides, on: false}, "disable", "Disable a feature (repeatable)")
	if err := fs.Parse(args); err != nil {
		return rootArgs{}, nil, err
	}
	return rootArgs{overrides: overrides}, fs.Args(), nil
}

// commonArgs 是各子命令共用的配置相关 flag。
type commonArgs struct {
	cfgPath   string
	url       string
	overrides overrideList
}

// resolveConfig 依次应用配置文件、环境变量、根级 -c、子命令 -c 与 --url。
func (c commonArgs) resolveConfig(root rootArgs) (config.Config, error) {
	cfg, err := config.Load(c.cfgPath)
	if err != nil {
		return cfg, err
	}
	overrides := root.with(c.overrides)
	if u := strings.TrimSpace(c.url); u != "" {
		overrides = append(overrides, "executor_url="+u)
	}
	return config.ApplyKVOverrides(cfg, overrides), nil
}

func newClient(cfg config.Config) (*protocol.Client, error) {
	return protocol.New(protocol.Options{
		BaseURL: cfg.ExecutorURL,
		Timeout: cfg.RequestTimeout(),
	})
}

// logSetup 在子命令解析完配置后调用，测试中替换为空操作。
var logSetup = setupLogging

// setupLogging 按配置设置级别并把日志写入文件，返回关闭函数。
func setupLogging(cfg config.Config) func() {
	logger.Configure(cfg.LogLevel)
	closer, _, err := logger.SetupFile(cfg.LogPath)
	if err != nil {
		log.Warnf("failed to initialize log file: %v", err)
		return func() {}
	}
	return func() { _ = closer.Close() }
}

func transcriptDir(cfg config.Config) (string, error) {
	if dir := strings.TrimSpace(cfg.Sessions.Dir); dir != "" {
		return dir, nil
	}
	return session.DefaultTranscriptDir()
}
