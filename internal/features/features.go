// Package features 是可选交互能力的开关表。配置中的 [features] 覆盖默认值。
package features

// Stage 描述开关的成熟度。
type Stage string

const (
	StageStable       Stage = "stable"
	StageExperimental Stage = "experimental"
)

const (
	HistorySearch = "history_search"
	Clipboard     = "clipboard"
	Telemetry     = "telemetry"
)

// Spec describes a feature flag exposed by the CLI.
type Spec struct {
	Key            string
	Stage          Stage
	DefaultEnabled bool
}

var Specs = []Spec{
	{Key: HistorySearch, Stage: StageStable, DefaultEnabled: true},
	{Key: Clipboard, Stage: StageStable, DefaultEnabled: true},
	{Key: Telemetry, Stage: StageStable, DefaultEnabled: true},
}

var known = func() map[string]Spec {
	m := make(map[string]Spec, len(Specs))
	for _, spec := range Specs {
		m[spec.Key] = spec
	}
	return m
}()

// IsKnown reports whether the feature key is recognized.
func IsKnown(key string) bool {
	_, ok := known[key]
	return ok
}

// StageFor returns the lifecycle stage for a feature, defaulting to experimental.
func StageFor(key string) Stage {
	if spec, ok := known[key]; ok {
		return spec.Stage
	}
	return StageExperimental
}

// DefaultEnabled reports the default value for the given feature key.
func DefaultEnabled(key string) bool {
	if spec, ok := known[key]; ok {
		return spec.DefaultEnabled
	}
	return false
}

// Enabled 先查 overrides，没有设置时回退到默认值。
func Enabled(overrides map[string]bool, key string) bool {
	if v, ok := overrides[key]; ok {
		return v
	}
	return DefaultEnabled(key)
}
