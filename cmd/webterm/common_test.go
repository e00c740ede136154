package main

import (
	"reflect"
	"testing"
)

func TestParseRootArgsStopsAtSubcommand(t *testing.T) {
	orig := []string{"exec", "-c", "prompt=x", "ls"}
	root, rest, err := parseRootArgs(orig)
	if err != nil {
		t.Fatalf("parseRootArgs returned error: %v", err)
	}
	if len(root.overrides) != 0 {
		t.Fatalf("expected no overrides, got %v", root.overrides)
	}
	if !reflect.DeepEqual(rest, orig) {
		t.Fatalf("expected rest to preserve args %v, got %v", orig, rest)
	}
}

func TestParseRootArgsKeepsFlagOrder(t *testing.T) {
	args := []string{"-c", "executor_url=http://a", "--disable", "clipboard", "-c=prompt=$", "-enable=telemetry", "--enable", "clipboard", "ping", "--timeout", "3"}
	root, rest, err := parseRootArgs(args)
	if err != nil {
		t.Fatalf("parseRootArgs returned error: %v", err)
	}
	want := []string{
		"executor_url=http://a",
		"features.clipboard=false",
		"prompt=$",
		"features.telemetry=true",
		"features.clipboard=true",
	}
	if !reflect.DeepEqual(root.overrides, want) {
		t.Fatalf("unexpected overrides: got %v, want %v", root.overrides, want)
	}
	if want := []string{"ping", "--timeout", "3"}; !reflect.DeepEqual(rest, want) {
		t.Fatalf("unexpected rest args: got %v, want %v", rest, want)
	}
}

func TestParseRootArgsRejectsBadValues(t *testing.T) {
	cases := map[string][]string{
		"unknown feature":    {"--enable", "web_search"},
		"override without =": {"-c", "prompt"},
		"empty key":          {"-c", "=x"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := parseRootArgs(args); err == nil {
				t.Fatalf("expected error for %v", args)
			}
		})
	}
}

func TestRootArgsWithAppendsSubcommandOverrides(t *testing.T) {
	root := rootArgs{overrides: []string{"a=1"}}
	got := root.with([]string{"a=2"})
	if !reflect.DeepEqual(got, []string{"a=1", "a=2"}) {
		t.Fatalf("with = %v", got)
	}
	if !reflect.DeepEqual(root.overrides, []string{"a=1"}) {
		t.Fatalf("root overrides mutated: %v", root.overrides)
	}
}
