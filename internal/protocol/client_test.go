package protocol

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"webterm/internal/logger"
	"webterm/internal/scrollback"
)

func silenceRootLogger(t *testing.T) {
	t.Helper()
	root := logger.Root()
	prev := root.Out
	root.SetOutput(io.Discard)
	t.Cleanup(func() {
		root.SetOutput(prev)
	})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(Options{BaseURL: srv.URL, SessionID: "sess-1", Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return client
}

func TestExecute_Classification(t *testing.T) {
	silenceRootLogger(t)

	cases := []struct {
		name       string
		statusCode int
		body       string
		wantKind   OutcomeKind
		wantClass  scrollback.Class
		wantOutput string
	}{
		{
			name:       "success with type",
			statusCode: http.StatusOK,
			body:       `{"success":true,"output":"file.txt","type":"normal"}`,
			wantKind:   OutcomeSuccess,
			wantClass:  scrollback.ClassNormal,
			wantOutput: "file.txt",
		},
		{
			name:       "success without type defaults to normal",
			statusCode: http.StatusOK,
			body:       `{"success":true,"output":"/home/user"}`,
			wantKind:   OutcomeSuccess,
			wantClass:  scrollback.ClassNormal,
			wantOutput: "/home/user",
		},
		{
			name:       "success with custom type",
			statusCode: http.StatusOK,
			body:       `{"success":true,"output":"careful","type":"warning"}`,
			wantKind:   OutcomeSuccess,
			wantClass:  scrollback.Class("warning"),
			wantOutput: "careful",
		},
		{
			name:       "failure ignores type",
			statusCode: http.StatusOK,
			body:       `{"success":false,"output":"Permission denied","type":"normal"}`,
			wantKind:   OutcomeFailure,
			wantClass:  scrollback.ClassError,
			wantOutput: "Permission denied",
		},
		{
			name:       "non-2xx with parsable body is honored",
			statusCode: http.StatusInternalServerError,
			body:       `{"success":false,"output":"executor crashed"}`,
			wantKind:   OutcomeFailure,
			wantClass:  scrollback.ClassError,
			wantOutput: "executor crashed",
		},
		{
			name:       "non-2xx with html body",
			statusCode: http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantKind:   OutcomeTransport,
			wantClass:  scrollback.ClassError,
			wantOutput: "Error: http_502: Bad Gateway",
		},
		{
			name:       "malformed 200 body",
			statusCode: http.StatusOK,
			body:       `{"success":tru`,
			wantKind:   OutcomeTransport,
			wantClass:  scrollback.ClassError,
		},
		{
			name:       "null body",
			statusCode: http.StatusOK,
			body:       `null`,
			wantKind:   OutcomeTransport,
			wantClass:  scrollback.ClassError,
			wantOutput: "Error: malformed response: missing success",
		},
		{
			name:       "empty object",
			statusCode: http.StatusOK,
			body:       `{}`,
			wantKind:   OutcomeTransport,
			wantClass:  scrollback.ClassError,
			wantOutput: "Error: malformed response: missing success",
		},
		{
			name:       "non-2xx json without success",
			statusCode: http.StatusInternalServerError,
			body:       `{"detail":"Internal Server Error"}`,
			wantKind:   OutcomeTransport,
			wantClass:  scrollback.ClassError,
			wantOutput: "Error: http_500: Internal Server Error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				_, _ = w.Write([]byte(tc.body))
			})
			got := client.Execute(context.Background(), "ls")
			if got.Kind != tc.wantKind {
				t.Fatalf("Kind = %v, want %v", got.Kind, tc.wantKind)
			}
			if got.Class != tc.wantClass {
				t.Fatalf("Class = %q, want %q", got.Class, tc.wantClass)
			}
			if tc.wantOutput != "" && got.Output != tc.wantOutput {
				t.Fatalf("Output = %q, want %q", got.Output, tc.wantOutput)
			}
			if tc.wantKind == OutcomeTransport {
				if got.Err == nil || !strings.HasPrefix(got.Output, "Error: ") {
					t.Fatalf("transport outcome should carry error text, got %+v", got)
				}
			}
			if got.Command != "ls" {
				t.Fatalf("Command = %q", got.Command)
			}
		})
	}
}

func TestExecute_RequestShape(t *testing.T) {
	silenceRootLogger(t)

	var gotMethod, gotPath, gotType, gotSession, gotReqID string
	var gotBody ExecuteRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotSession = r.Header.Get(HeaderSession)
		gotReqID = r.Header.Get(HeaderRequestID)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"success":true,"output":""}`))
	})

	client.Execute(context.Background(), "git status")

	if gotMethod != http.MethodPost || gotPath != ExecutePath {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	if gotType != "application/json" {
		t.Fatalf("Content-Type = %q", gotType)
	}
	if gotBody.Command != "git status" {
		t.Fatalf("body command = %q", gotBody.Command)
	}
	if gotSession != "sess-1" || gotReqID == "" {
		t.Fatalf("headers session=%q request=%q", gotSession, gotReqID)
	}
}

func TestExecute_BasePathIsKept(t *testing.T) {
	silenceRootLogger(t)

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"success":true,"output":"ok"}`))
	}))
	t.Cleanup(srv.Close)

	client, err := New(Options{BaseURL: srv.URL + "/term/"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	client.Execute(context.Background(), "pwd")
	if gotPath != "/term/execute" {
		t.Fatalf("path = %q, want /term/execute", gotPath)
	}
}

func TestExecute_NetworkDown(t *testing.T) {
	silenceRootLogger(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	client, err := New(Options{BaseURL: "http://" + addr, Timeout: 500 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := client.Execute(context.Background(), "pwd")
	if got.Kind != OutcomeTransport || got.Class != scrollback.ClassError {
		t.Fatalf("unexpected outcome %+v", got)
	}
	if !strings.HasPrefix(got.Output, "Error: ") {
		t.Fatalf("Output = %q", got.Output)
	}
}

func TestExecute_Timeout(t *testing.T) {
	silenceRootLogger(t)

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client, err := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := client.Execute(context.Background(), "sleep 100")
	if got.Kind != OutcomeTransport {
		t.Fatalf("expected transport failure on timeout, got %+v", got)
	}
}

func TestPollTelemetry(t *testing.T) {
	silenceRootLogger(t)

	cases := []struct {
		name    string
		body    string
		wantErr bool
		wantCPU string
		wantMem string
	}{
		{name: "both fields", body: `{"success":true,"data":{"cpu_percent":12.5,"memory_percent":40}}`, wantCPU: "12.5", wantMem: "40"},
		{name: "missing memory", body: `{"success":true,"data":{"cpu_percent":3}}`, wantCPU: "3", wantMem: "nil"},
		{name: "missing data", body: `{"success":true}`, wantCPU: "nil", wantMem: "nil"},
		{name: "success false", body: `{"success":false}`, wantErr: true},
		{name: "garbage", body: `oops`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != TelemetryPath {
					http.NotFound(w, r)
					return
				}
				_, _ = w.Write([]byte(tc.body))
			})
			snap, err := client.PollTelemetry(context.Background())
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("PollTelemetry: %v", err)
			}
			if got := fmtPtr(snap.CPUPercent); got != tc.wantCPU {
				t.Fatalf("cpu = %s, want %s", got, tc.wantCPU)
			}
			if got := fmtPtr(snap.MemoryPercent); got != tc.wantMem {
				t.Fatalf("mem = %s, want %s", got, tc.wantMem)
			}
		})
	}
}

func TestNew_Validation(t *testing.T) {
	for _, raw := range []string{"", "   ", "://bad", "ftp://host", "http://"} {
		if _, err := New(Options{BaseURL: raw}); err == nil {
			t.Fatalf("New(%q) expected error", raw)
		}
	}
	c, err := New(Options{BaseURL: "http://127.0.0.1:8000"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.SessionID() == "" {
		t.Fatalf("session id should be generated")
	}
}

func fmtPtr(v *float64) string {
	if v == nil {
		return "nil"
	}
	b, _ := json.Marshal(*v)
	return string(b)
}
