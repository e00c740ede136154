// Package mockexec 是一个本地执行器桩，实现 /execute 与 /system_info，
// 用于演示与端到端测试。它不会真正执行任何命令，只返回固定的回答。
package mockexec

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"runtime"
	"strings"
	"time"

	"webterm/internal/logger"
	"webterm/internal/protocol"

	"github.com/gorilla/mux"
)

var log = logger.Named("mockexec")

// Server 持有桩执行器的固定环境。
type Server struct {
	User string
	Cwd  string
	// Files 是 ls 返回的条目。
	Files []string
	// Telemetry 生成 /system_info 的数据，默认读取 Go 运行时统计。
	Telemetry func() protocol.TelemetryData
	now       func() time.Time
}

func New() *Server {
	return &Server{
		User:      "user",
		Cwd:       "/home/user",
		Files:     []string{"README.md", "main.py", "requirements.txt"},
		Telemetry: RuntimeTelemetry,
		now:       time.Now,
	}
}

// Router 返回挂好全部路由的 mux.Router。
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK\n"))
	}).Methods(http.MethodGet)
	r.HandleFunc(protocol.ExecutePath, s.handleExecute).Methods(http.MethodPost)
	r.HandleFunc(protocol.TelemetryPath, s.handleTelemetry).Methods(http.MethodGet)
	return r
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req protocol.ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, protocol.ExecuteResponse{Success: false, Output: "invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, s.Run(req.Command))
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	data := protocol.TelemetryData{}
	if s.Telemetry != nil {
		data = s.Telemetry()
	}
	writeJSON(w, http.StatusOK, protocol.TelemetryResponse{Success: true, Data: data})
}

// Run 返回命令对应的固定回答。未知命令返回 success=false。
func (s *Server) Run(command string) protocol.ExecuteResponse {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return protocol.ExecuteResponse{Success: false, Output: "empty command"}
	}
	switch fields[0] {
	case "pwd":
		return ok(s.Cwd)
	case "ls":
		return ok(strings.Join(s.Files, "\n"))
	case "echo":
		return ok(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(command), "echo")))
	case "whoami":
		return ok(s.User)
	case "date":
		now := time.Now
		if s.now != nil {
			now = s.now
		}
		return ok(now().Format(time.RFC1123))
	case "help":
		return protocol.ExecuteResponse{
			Success: true,
			Output:  "available: pwd ls echo whoami date help",
			Type:    "info",
		}
	default:
		return protocol.ExecuteResponse{Success: false, Output: "command not found: " + fields[0]}
	}
}

func ok(output string) protocol.ExecuteResponse {
	return protocol.ExecuteResponse{Success: true, Output: output, Type: "normal"}
}

// RuntimeTelemetry 用 Go 运行时的统计值近似主机指标：
// goroutine 数相对 CPU 核数的比例作为 CPU，堆占用相对向系统申请的内存作为 MEM。
func RuntimeTelemetry() protocol.TelemetryData {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	cpu := math.Min(100, float64(runtime.NumGoroutine())/float64(runtime.NumCPU())*10)
	mem := 0.0
	if ms.Sys > 0 {
		mem = float64(ms.HeapAlloc) / float64(ms.Sys) * 100
	}
	cpu, mem = round1(cpu), round1(mem)
	return protocol.TelemetryData{CPUPercent: &cpu, MemoryPercent: &mem}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warnf("write response: %v", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.WithFields(logger.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"request_id":  r.Header.Get(protocol.HeaderRequestID),
			"session":     r.Header.Get(protocol.HeaderSession),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("request")
	})
}

// ListenAndServe 在 addr 上提供服务，ctx 取消时优雅退出。ready 非空时在监听成功后收到实际地址。
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if ready != nil {
		ready(ln.Addr())
	}
	log.Infof("mock executor listening on %s", ln.Addr())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
