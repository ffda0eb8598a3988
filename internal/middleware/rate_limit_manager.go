package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitManager manages rate limiters with lifecycle control
type RateLimitManager struct {
	visitors     map[string]*visitor
	visitorsMu   sync.Mutex
	operations   map[string]*visitor
	operationsMu sync.Mutex
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewRateLimitManager creates a new rate limit manager with context-based lifecycle
func NewRateLimitManager(ctx context.Context) *RateLimitManager {
	managerCtx, cancel := context.WithCancel(ctx)

	m := &RateLimitManager{
		visitors:   make(map[string]*visitor),
		operations: make(map[string]*visitor),
		ctx:        managerCtx,
		cancel:     cancel,
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// GetVisitor retrieves or creates a rate limiter for the given IP
func (m *RateLimitManager) GetVisitor(ip string, requestsPerWindow int, windowSeconds int, burst int) *rate.Limiter {
	if requestsPerWindow <= 0 {
		return nil
	}

	m.visitorsMu.Lock()
	defer m.visitorsMu.Unlock()

	if burst < requestsPerWindow {
		burst = requestsPerWindow
	}
	return getOrCreate(m.visitors, ip, requestsPerWindow, windowSeconds, burst)
}

// GetOperationLimiter retrieves or creates a limiter for an expensive operation, such as a
// batch migration, keyed by IP and operation name.
func (m *RateLimitManager) GetOperationLimiter(ip string, operation string, requestsPerWindow int, windowSeconds int) *rate.Limiter {
	if requestsPerWindow <= 0 {
		return nil
	}

	m.operationsMu.Lock()
	defer m.operationsMu.Unlock()

	return getOrCreate(m.operations, operation+"|"+ip, requestsPerWindow, windowSeconds, requestsPerWindow)
}

func getOrCreate(limiters map[string]*visitor, key string, requestsPerWindow, windowSeconds, burst int) *rate.Limiter {
	if v, exists := limiters[key]; exists {
		v.lastSeen = time.Now()
		return v.limiter
	}

	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	limit := rate.Limit(float64(requestsPerWindow) / float64(windowSeconds))

	limiter := rate.NewLimiter(limit, burst)
	limiters[key] = &visitor{limiter, time.Now()}
	return limiter
}

// cleanupLoop periodically removes inactive rate limiters
func (m *RateLimitManager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.cleanup(time.Now())
		}
	}
}

func (m *RateLimitManager) cleanup(now time.Time) {
	m.visitorsMu.Lock()
	for ip, v := range m.visitors {
		if now.Sub(v.lastSeen) > 3*time.Minute {
			delete(m.visitors, ip)
		}
	}
	m.visitorsMu.Unlock()

	m.operationsMu.Lock()
	for key, v := range m.operations {
		if now.Sub(v.lastSeen) > 10*time.Minute {
			delete(m.operations, key)
		}
	}
	m.operationsMu.Unlock()
}

// Shutdown stops the cleanup goroutine and waits for it to finish
func (m *RateLimitManager) Shutdown() error {
	m.cancel()
	m.wg.Wait()
	return nil
}
