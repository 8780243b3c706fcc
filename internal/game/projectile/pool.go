package projectile

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrPoolExhausted is returned by Acquire when no instance is free and
	// the pool may not grow. Callers treat it as a skipped shot.
	ErrPoolExhausted = errors.New("projectile pool exhausted")

	// ErrPoolClosed is returned by Acquire after Close.
	ErrPoolClosed = errors.New("projectile pool closed")

	// ErrPoolBusy is returned by Close while projectiles are still in flight.
	ErrPoolBusy = errors.New("projectile pool has projectiles in flight")
)

// Spec describes the projectile a Mechanism part fires.
type Spec struct {
	Speed    float64 `yaml:"speed"`    // units per second
	Lifetime float64 `yaml:"lifetime"` // seconds
	Radius   float64 `yaml:"radius"`
	PoolSize int     `yaml:"pool_size"`
}

// DefaultSpec returns a fast, short-lived round with a pool of 16.
func DefaultSpec() Spec {
	return Spec{Speed: 120, Lifetime: 2, Radius: 0.05, PoolSize: 16}
}

// Options controls pool growth.
type Options struct {
	// Grow allows Acquire to allocate beyond Spec.PoolSize.
	Grow bool `yaml:"grow"`
	// Max caps total instances when growing. 0 means unbounded.
	Max int `yaml:"max"`
}

// Pool is a preallocated set of projectiles bound to one weapon.
//
// Not thread-safe: owned by its weapon and used on the tick goroutine only.
type Pool struct {
	spec Spec
	opts Options

	all   []*Projectile // every instance, in allocation order
	free  []*Projectile
	inUse int

	closed  bool
	hits    uint64
	expired uint64
}

// NewPool preallocates spec.PoolSize instances.
func NewPool(spec Spec, opts Options) *Pool {
	if spec.PoolSize < 0 {
		spec.PoolSize = 0
	}
	p := &Pool{
		spec: spec,
		opts: opts,
		all:  make([]*Projectile, 0, spec.PoolSize),
		free: make([]*Projectile, 0, spec.PoolSize),
	}
	for range spec.PoolSize {
		p.free = append(p.free, p.allocate())
	}
	// free is a stack; keep allocation order on the first acquisitions
	for i, j := 0, len(p.free)-1; i < j; i, j = i+1, j-1 {
		p.free[i], p.free[j] = p.free[j], p.free[i]
	}
	return p
}

func (p *Pool) allocate() *Projectile {
	pr := &Projectile{id: uuid.New(), pool: p}
	p.all = append(p.all, pr)
	return pr
}

// Spec returns the projectile spec the pool was built from.
func (p *Pool) Spec() Spec { return p.spec }

// Acquire returns an idle projectile.
// Returns ErrPoolExhausted when none is free and growth is disabled or capped.
func (p *Pool) Acquire() (*Projectile, error) {
	if p.closed {
		return nil, ErrPoolClosed
	}

	var pr *Projectile
	switch {
	case len(p.free) > 0:
		pr = p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
	case p.opts.Grow && (p.opts.Max == 0 || len(p.all) < p.opts.Max):
		pr = p.allocate()
	default:
		return nil, fmt.Errorf("%w: %d/%d in use", ErrPoolExhausted, p.inUse, len(p.all))
	}

	pr.active = true
	p.inUse++
	return pr, nil
}

// Release returns pr to the pool. Releasing an idle projectile or one
// from another pool is a no-op.
func (p *Pool) Release(pr *Projectile) {
	if pr == nil || pr.pool != p || !pr.active {
		return
	}
	pr.reset()
	p.inUse--
	if !p.closed {
		p.free = append(p.free, pr)
	}
}

// InUse returns number of projectiles in flight.
func (p *Pool) InUse() int { return p.inUse }

// Count returns total number of instances owned by the pool.
func (p *Pool) Count() int { return len(p.all) }

// Free returns number of idle instances.
func (p *Pool) Free() int { return len(p.free) }

// Hits returns number of projectiles that ended on a hit.
func (p *Pool) Hits() uint64 { return p.hits }

// Expired returns number of projectiles that ran out of lifetime.
func (p *Pool) Expired() uint64 { return p.expired }

// Closed reports whether Close succeeded.
func (p *Pool) Closed() bool { return p.closed }

// Active returns in-flight projectiles in allocation order.
func (p *Pool) Active() []*Projectile {
	out := make([]*Projectile, 0, p.inUse)
	for _, pr := range p.all {
		if pr.active {
			out = append(out, pr)
		}
	}
	return out
}

// Close destroys the pool. It fails with ErrPoolBusy while projectiles are
// in flight; callers wait for InUse to reach zero first.
func (p *Pool) Close() error {
	if p.closed {
		return nil
	}
	if p.inUse > 0 {
		return fmt.Errorf("%w: %d remaining", ErrPoolBusy, p.inUse)
	}
	p.closed = true
	p.free = nil
	p.all = nil
	return nil
}
