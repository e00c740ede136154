package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"webterm/internal/logger"

	"github.com/google/uuid"
)

var log = logger.Named("protocol")

// maxBodyBytes 限制读取的响应体大小。
const maxBodyBytes = 8 << 20

// Options 配置执行器客户端。
type Options struct {
	BaseURL    string
	SessionID  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client 是远端执行器的会话协议客户端。方法可以并发调用。
type Client struct {
	base      *url.URL
	sessionID string
	timeout   time.Duration
	http      *http.Client
}

// New 校验 BaseURL 并创建客户端。
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("executor url is empty")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid executor url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported executor url scheme %q (url=%q)", base.Scheme, opts.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid executor url %q: missing host", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &Client{base: base, sessionID: sessionID, timeout: timeout, http: hc}, nil
}

// SessionID 返回随请求发送的会话标识。
func (c *Client) SessionID() string {
	return c.sessionID
}

// Execute 把命令发送给执行器。它不会返回 error：任何失败都会被转换为
// error 分类的 Outcome，调用方只管渲染。
func (c *Client) Execute(ctx context.Context, command string) Outcome {
	start := time.Now()
	reqID := uuid.NewString()
	entry := log.WithField("request_id", reqID)

	resp, status, err := c.execute(ctx, reqID, command)
	if err != nil {
		entry.WithField("status", status).WithField("duration_ms", time.Since(start).Milliseconds()).
			Warnf("execute failed: %v", err)
		return TransportFailure(command, err)
	}
	out := Classify(command, resp)
	entry.WithField("status", status).WithField("duration_ms", time.Since(start).Milliseconds()).
		WithField("outcome", out.Kind.String()).Info("execute finished")
	return out
}

func (c *Client) execute(ctx context.Context, reqID, command string) (ExecuteResponse, int, error) {
	body, err := json.Marshal(ExecuteRequest{Command: command})
	if err != nil {
		return ExecuteResponse{}, 0, fmt.Errorf("encode request: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(ExecutePath), bytes.NewReader(body))
	if err != nil {
		return ExecuteResponse{}, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.stamp(req, reqID)

	var wire executeWire
	status, err := c.do(req, &wire)
	if err != nil {
		return ExecuteResponse{}, status, err
	}
	if wire.Success == nil {
		// null、{} 或框架自带的错误体（如 {"detail":...}）都没有 success 字段。
		if status < 200 || status > 299 {
			return ExecuteResponse{}, status, fmt.Errorf("http_%d: %s", status, http.StatusText(status))
		}
		return ExecuteResponse{}, status, errMissingSuccess
	}
	return ExecuteResponse{Success: *wire.Success, Output: wire.Output, Type: wire.Type}, status, nil
}

var errMissingSuccess = errors.New("malformed response: missing success")

// executeWire 只用于解码，用来区分 success 缺失与 success=false。
type executeWire struct {
	Success *bool  `json:"success"`
	Output  string `json:"output"`
	Type    string `json:"type"`
}

// PollTelemetry 读取一次主机指标。success=false 同样视为失败。
func (c *Client) PollTelemetry(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(TelemetryPath), nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.stamp(req, uuid.NewString())

	var out TelemetryResponse
	if _, err := c.do(req, &out); err != nil {
		return Snapshot{}, err
	}
	if !out.Success {
		return Snapshot{}, errors.New("system_info reported success=false")
	}
	return Snapshot{CPUPercent: out.Data.CPUPercent, MemoryPercent: out.Data.MemoryPercent}, nil
}

// do 发送请求并解码 JSON。非 2xx 但响应体可解析时仍按响应体处理，
// 与执行器在错误状态码下返回结构化结果的行为保持一致。
func (c *Client) do(req *http.Request, into any) (int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return resp.StatusCode, fmt.Errorf("http_%d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return resp.StatusCode, fmt.Errorf("malformed response: %w", err)
	}
	return resp.StatusCode, nil
}

func (c *Client) stamp(req *http.Request, reqID string) {
	req.Header.Set(HeaderSession, c.sessionID)
	req.Header.Set(HeaderRequestID, reqID)
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = ""
	return u.String()
}
