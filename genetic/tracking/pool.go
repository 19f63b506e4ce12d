package tracking

import (
	"sync"

	"github.com/lixenwraith/path-evolution/vmath"
)

// CollectorPool manages reusable collectors shared by concurrent evaluations
type CollectorPool struct {
	free []*PathCollector
	mu   sync.Mutex
}

// NewCollectorPool creates a pool with optional pre-allocation
func NewCollectorPool(prealloc int) *CollectorPool {
	p := &CollectorPool{
		free: make([]*PathCollector, 0, prealloc),
	}
	for range prealloc {
		p.free = append(p.free, &PathCollector{})
	}
	return p
}

// Acquire gets or creates a collector reset to goal
func (p *CollectorPool) Acquire(goal vmath.Vec2) *PathCollector {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) > 0 {
		c := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		c.Reset(goal)
		return c
	}
	return NewPathCollector(goal)
}

// Release returns a collector to the pool
func (p *CollectorPool) Release(c *PathCollector) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, c)
}
