package telemetry

import (
	"context"
	"sync"
	"time"

	"webterm/internal/logger"
	"webterm/internal/protocol"
)

var log = logger.Named("telemetry")

// DefaultInterval 是遥测轮询间隔。
const DefaultInterval = 5 * time.Second

// Source 提供一次遥测读取。
type Source interface {
	PollTelemetry(ctx context.Context) (protocol.Snapshot, error)
}

// Options 配置 Poller。OnSnapshot 在每次成功轮询后调用；OnDrop 在失败时调用（可为空）。
type Options struct {
	Source     Source
	Interval   time.Duration
	OnSnapshot func(protocol.Snapshot)
	OnDrop     func(error)
}

// Poller 以固定间隔轮询遥测。启动时立即轮询一次，之后每个 tick 一次；
// 失败直接丢弃，不做额外重试。
type Poller struct {
	opts Options

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

func NewPoller(opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Poller{opts: opts}
}

// Start 启动后台轮询；重复调用无效。ctx 取消或 Stop 都会结束轮询。
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil || p.stopped {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(runCtx, p.done)
}

// Stop 取消轮询并等待后台 goroutine 退出。进行中的请求被放弃，其结果不会发布。
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.stopped = true
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	p.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	if p.opts.Source == nil {
		return
	}
	snap, err := p.opts.Source.PollTelemetry(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Debugf("telemetry poll dropped: %v", err)
		if p.opts.OnDrop != nil {
			p.opts.OnDrop(err)
		}
		return
	}
	if p.opts.OnSnapshot != nil {
		p.opts.OnSnapshot(snap)
	}
}
