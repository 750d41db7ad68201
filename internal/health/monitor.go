package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coopco/postpilot/internal/bus"
)

// Monitor polls the gateway's health endpoint from the client process
// and announces reachability changes on the bus. Only transitions are
// announced, so a long outage produces one notice, not one per tick.
type Monitor struct {
	url      string
	client   *http.Client
	bus      *bus.MessageBus
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	healthy bool
	checked bool
}

func NewMonitor(gatewayURL string, msgBus *bus.MessageBus, interval time.Duration) *Monitor {
	if interval == 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		url:      gatewayURL + "/health",
		client:   &http.Client{Timeout: 5 * time.Second},
		bus:      msgBus,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins polling. The first check runs immediately so a dead
// gateway is reported before the user composes a post.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.mu.Unlock()

	go func() {
		m.check(ctx)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.check(ctx)
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	close(m.stopCh)
}

// Healthy reports the result of the most recent check.
func (m *Monitor) Healthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.healthy
}

func (m *Monitor) check(ctx context.Context) {
	healthy := m.probe(ctx)

	m.mu.Lock()
	changed := !m.checked || healthy != m.healthy
	firstCheck := !m.checked
	m.healthy = healthy
	m.checked = true
	m.mu.Unlock()

	if !changed {
		return
	}
	switch {
	case !healthy:
		m.bus.PublishNotice(bus.Notice{Kind: "gateway", Text: "Gateway is unreachable. Posts will fail until it is back; run 'postpilot serve' if it is not running."})
	case !firstCheck:
		m.bus.PublishNotice(bus.Notice{Kind: "gateway", Text: "Gateway connection restored."})
	}
}

func (m *Monitor) probe(ctx context.Context) bool {
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, m.url, nil)
	if err != nil {
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}
	return true
}

// String describes the current state for diagnostics.
func (m *Monitor) String() string {
	if m.Healthy() {
		return fmt.Sprintf("gateway %s: healthy", m.url)
	}
	return fmt.Sprintf("gateway %s: unreachable", m.url)
}
