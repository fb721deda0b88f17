package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marinelab/underwater-detect/detections"
)

const (
	DefaultPoolSize   = 2
	AcquireTimeout    = 5 * time.Second
	HealthCheckPeriod = 60 * time.Second
)

// SessionFactory creates one ONNX session for a weights file. Swapped out in
// tests.
type SessionFactory func(modelPath string) (*detections.ModelSession, error)

// SessionPool hands out ONNX sessions for a single weights file. Sessions
// are not safe for concurrent Run calls, so each request holds one
// exclusively between Acquire and Release.
type SessionPool struct {
	sessions  chan *detections.ModelSession
	size      int
	modelPath string
	factory   SessionFactory

	mu sync.Mutex
	// live counts every session the pool owns, idle or checked out. The
	// health check replaces only sessions that were discarded, never the
	// ones a request is still holding.
	live       int
	closed     bool
	lastErrors []error

	metrics poolMetrics
}

type poolMetrics struct {
	mu              sync.RWMutex
	inUse           int
	totalAcquired   int64
	totalReleased   int64
	acquireFailures int64
	waitTime        time.Duration
}

// MetricsSnapshot is a point-in-time copy of pool counters.
type MetricsSnapshot struct {
	Size            int           `json:"pool_size"`
	InUse           int           `json:"sessions_in_use"`
	TotalAcquired   int64         `json:"total_acquired"`
	TotalReleased   int64         `json:"total_released"`
	AcquireFailures int64         `json:"acquire_failures"`
	TotalWaitTime   time.Duration `json:"total_wait_ns"`
}

func NewSessionPool(modelPath string, size int) (*SessionPool, error) {
	return newSessionPool(modelPath, size, detections.InitSession)
}

func newSessionPool(modelPath string, size int, factory SessionFactory) (*SessionPool, error) {
	if size <= 0 {
		size = DefaultPoolSize
	}

	pool := &SessionPool{
		sessions:  make(chan *detections.ModelSession, size),
		size:      size,
		modelPath: modelPath,
		factory:   factory,
	}

	for i := 0; i < size; i++ {
		session, err := factory(modelPath)
		if err != nil {
			pool.Destroy()
			return nil, fmt.Errorf("failed to initialize session %d: %w", i, err)
		}
		pool.live++
		pool.sessions <- session
	}

	go pool.healthCheck()

	return pool, nil
}

func (p *SessionPool) Acquire(ctx context.Context) (*detections.ModelSession, error) {
	if p.isClosed() {
		return nil, fmt.Errorf("pool is closed")
	}

	start := time.Now()
	defer func() {
		p.metrics.mu.Lock()
		p.metrics.waitTime += time.Since(start)
		p.metrics.mu.Unlock()
	}()

	select {
	case session := <-p.sessions:
		if session == nil {
			// Channel closed by Destroy while we were waiting.
			return nil, fmt.Errorf("pool is closed")
		}
		p.metrics.mu.Lock()
		p.metrics.inUse++
		p.metrics.totalAcquired++
		p.metrics.mu.Unlock()
		return session, nil
	case <-time.After(AcquireTimeout):
		p.metrics.mu.Lock()
		p.metrics.acquireFailures++
		p.metrics.mu.Unlock()
		return nil, fmt.Errorf("timeout waiting for available session")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a session to the pool. At most `live` sessions exist, so
// the send below never blocks; holding the lock across it keeps the send
// ordered before any close in Destroy.
func (p *SessionPool) Release(session *detections.ModelSession) {
	p.mu.Lock()
	if p.closed {
		p.live--
		p.mu.Unlock()
		session.Destroy()
		return
	}
	p.sessions <- session
	p.mu.Unlock()

	p.metrics.mu.Lock()
	p.metrics.inUse--
	p.metrics.totalReleased++
	p.metrics.mu.Unlock()
}

// Discard destroys a session that came back broken instead of returning it.
// The next health check creates a replacement.
func (p *SessionPool) Discard(session *detections.ModelSession) {
	session.Destroy()

	p.mu.Lock()
	p.live--
	p.mu.Unlock()

	p.metrics.mu.Lock()
	p.metrics.inUse--
	p.metrics.totalReleased++
	p.metrics.mu.Unlock()
}

func (p *SessionPool) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.closed = true
	close(p.sessions)

	for session := range p.sessions {
		p.live--
		session.Destroy()
	}
}

func (p *SessionPool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *SessionPool) healthCheck() {
	ticker := time.NewTicker(HealthCheckPeriod)
	defer ticker.Stop()

	for range ticker.C {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		deficit := p.size - p.live
		p.mu.Unlock()

		if deficit > 0 {
			p.replenishSessions(deficit)
		}
	}
}

func (p *SessionPool) replenishSessions(count int) {
	for i := 0; i < count; i++ {
		session, err := p.factory(p.modelPath)
		if err != nil {
			p.recordError(err)
			continue
		}

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			session.Destroy()
			return
		}
		p.live++
		p.sessions <- session
		p.mu.Unlock()
	}
}

func (p *SessionPool) recordError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastErrors = append(p.lastErrors, err)
	if len(p.lastErrors) > 10 {
		p.lastErrors = p.lastErrors[1:]
	}
}

func (p *SessionPool) Metrics() MetricsSnapshot {
	p.metrics.mu.RLock()
	defer p.metrics.mu.RUnlock()
	return MetricsSnapshot{
		Size:            p.size,
		InUse:           p.metrics.inUse,
		TotalAcquired:   p.metrics.totalAcquired,
		TotalReleased:   p.metrics.totalReleased,
		AcquireFailures: p.metrics.acquireFailures,
		TotalWaitTime:   p.metrics.waitTime,
	}
}
