package qf

import (
	"math"
	"sync"
	"time"
)

// dispatchQuantile implements the P-Square algorithm for streaming
// quantile estimation (Jain & Chlamtac, 1985): O(1) per-observation
// update and O(1) retrieval, with no need to retain the observations
// themselves — the right fit for tracking RTC-step dispatch latency
// continuously over a long-running framework without unbounded memory
// growth. Not thread-safe; callers serialize access (here, via
// DispatchMetrics.mu).
type dispatchQuantile struct {
	p           float64
	q           [5]float64
	n           [5]int
	np          [5]float64
	dn          [5]float64
	count       int
	initBuffer  [5]float64
}

func newDispatchQuantile(p float64) *dispatchQuantile {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return &dispatchQuantile{p: p, dn: [5]float64{0, p / 2, p, (1 + p) / 2, 1}}
}

func (ps *dispatchQuantile) update(x float64) {
	ps.count++
	if ps.count <= 5 {
		ps.initBuffer[ps.count-1] = x
		if ps.count == 5 {
			ps.initialize()
		}
		return
	}

	var k int
	switch {
	case x < ps.q[0]:
		ps.q[0] = x
		k = 0
	case x >= ps.q[4]:
		ps.q[4] = x
		k = 3
	default:
		for k = 0; k < 4; k++ {
			if ps.q[k] <= x && x < ps.q[k+1] {
				break
			}
		}
	}

	for i := k + 1; i < 5; i++ {
		ps.n[i]++
	}
	for i := 0; i < 5; i++ {
		ps.np[i] += ps.dn[i]
	}

	for i := 1; i < 4; i++ {
		d := ps.np[i] - float64(ps.n[i])
		if (d >= 1 && ps.n[i+1]-ps.n[i] > 1) || (d <= -1 && ps.n[i-1]-ps.n[i] < -1) {
			sign := 1
			if d < 0 {
				sign = -1
			}
			qPrime := ps.parabolic(i, sign)
			if ps.q[i-1] < qPrime && qPrime < ps.q[i+1] {
				ps.q[i] = qPrime
			} else {
				ps.q[i] = ps.linear(i, sign)
			}
			ps.n[i] += sign
		}
	}
}

func (ps *dispatchQuantile) initialize() {
	for i := 1; i < 5; i++ {
		key := ps.initBuffer[i]
		j := i - 1
		for j >= 0 && ps.initBuffer[j] > key {
			ps.initBuffer[j+1] = ps.initBuffer[j]
			j--
		}
		ps.initBuffer[j+1] = key
	}
	for i := 0; i < 5; i++ {
		ps.q[i] = ps.initBuffer[i]
		ps.n[i] = i
	}
	ps.np = [5]float64{0, 2 * ps.p, 4 * ps.p, 2 + 2*ps.p, 4}
}

func (ps *dispatchQuantile) parabolic(i, d int) float64 {
	df := float64(d)
	ni, niPrev, niNext := float64(ps.n[i]), float64(ps.n[i-1]), float64(ps.n[i+1])
	term1 := df / (niNext - niPrev)
	term2 := (ni - niPrev + df) * (ps.q[i+1] - ps.q[i]) / (niNext - ni)
	term3 := (niNext - ni - df) * (ps.q[i] - ps.q[i-1]) / (ni - niPrev)
	return ps.q[i] + term1*(term2+term3)
}

func (ps *dispatchQuantile) linear(i, d int) float64 {
	if d == 1 {
		return ps.q[i] + (ps.q[i+1]-ps.q[i])/float64(ps.n[i+1]-ps.n[i])
	}
	return ps.q[i] - (ps.q[i]-ps.q[i-1])/float64(ps.n[i]-ps.n[i-1])
}

func (ps *dispatchQuantile) value() float64 {
	if ps.count == 0 {
		return 0
	}
	if ps.count < 5 {
		sorted := append([]float64(nil), ps.initBuffer[:ps.count]...)
		for i := 1; i < len(sorted); i++ {
			key := sorted[i]
			j := i - 1
			for j >= 0 && sorted[j] > key {
				sorted[j+1] = sorted[j]
				j--
			}
			sorted[j+1] = key
		}
		idx := int(float64(ps.count-1) * ps.p)
		if idx >= ps.count {
			idx = ps.count - 1
		}
		return sorted[idx]
	}
	return ps.q[2]
}

// DispatchMetrics tracks RTC-step dispatch latency (wall-clock time
// spent inside one HSM.Dispatch call), across every active object,
// exposed as p50/p99/max/mean. This is ambient observability, separate
// from the pool/queue high-water marks, which are
// tracked inline in pool.go/equeue.go since they are part of the core
// contract (get_pool_min/get_queue_min).
type DispatchMetrics struct {
	mu    sync.Mutex
	p50   *dispatchQuantile
	p99   *dispatchQuantile
	count int64
	sum   float64
	max   float64
}

// NewDispatchMetrics returns an empty metrics tracker.
func NewDispatchMetrics() *DispatchMetrics {
	return &DispatchMetrics{
		p50: newDispatchQuantile(0.50),
		p99: newDispatchQuantile(0.99),
		max: -math.MaxFloat64,
	}
}

func (m *DispatchMetrics) observe(d time.Duration) {
	x := float64(d)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
	m.sum += x
	if x > m.max {
		m.max = x
	}
	m.p50.update(x)
	m.p99.update(x)
}

// P50 returns the estimated median dispatch latency.
func (m *DispatchMetrics) P50() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Duration(m.p50.value())
}

// P99 returns the estimated 99th-percentile dispatch latency.
func (m *DispatchMetrics) P99() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Duration(m.p99.value())
}

// Max returns the largest observed dispatch latency.
func (m *DispatchMetrics) Max() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.count == 0 {
		return 0
	}
	return time.Duration(m.max)
}

// Mean returns the arithmetic mean dispatch latency.
func (m *DispatchMetrics) Mean() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.count == 0 {
		return 0
	}
	return time.Duration(m.sum / float64(m.count))
}

// Count returns the number of RTC steps observed.
func (m *DispatchMetrics) Count() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
