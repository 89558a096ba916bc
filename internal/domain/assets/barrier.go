package assets

import (
	"fmt"
	"sync"
)

// Barrier releases once every registered asset has reported loaded.
// Duplicate reports are recorded once.
type Barrier struct {
	mu        sync.Mutex
	pending   map[string]struct{}
	loaded    map[string]struct{}
	callbacks []func()
	ready     chan struct{}
	released  bool
}

// NewBarrier creates a barrier waiting on ids. With no ids it is released
// on the first call to Release or Done.
func NewBarrier(ids ...string) *Barrier {
	b := &Barrier{
		pending: make(map[string]struct{}, len(ids)),
		loaded:  make(map[string]struct{}, len(ids)),
		ready:   make(chan struct{}),
	}
	for _, id := range ids {
		b.pending[id] = struct{}{}
	}
	return b
}

// Register adds an id to wait for. It fails once the barrier is released.
func (b *Barrier) Register(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return ErrBarrierClosed
	}
	if _, done := b.loaded[id]; !done {
		b.pending[id] = struct{}{}
	}
	return nil
}

// Done marks id as loaded. It reports whether this call released the barrier.
func (b *Barrier) Done(id string) (bool, error) {
	b.mu.Lock()
	if _, seen := b.loaded[id]; seen {
		b.mu.Unlock()
		return false, nil
	}
	if _, ok := b.pending[id]; !ok {
		b.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrUnknownAsset, id)
	}
	delete(b.pending, id)
	b.loaded[id] = struct{}{}
	fire := b.releaseLocked()
	b.mu.Unlock()

	b.run(fire)
	return fire != nil, nil
}

// Release forces the barrier open when nothing is pending.
func (b *Barrier) Release() bool {
	b.mu.Lock()
	fire := b.releaseLocked()
	b.mu.Unlock()

	b.run(fire)
	return fire != nil
}

// OnReady runs fn once the barrier is released, immediately if it already is.
func (b *Barrier) OnReady(fn func()) {
	b.mu.Lock()
	if !b.released {
		b.callbacks = append(b.callbacks, fn)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	fn()
}

// Ready is closed when the barrier is released.
func (b *Barrier) Ready() <-chan struct{} { return b.ready }

// IsReady reports whether the barrier has been released.
func (b *Barrier) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

// Progress returns loaded and total counts.
func (b *Barrier) Progress() (loaded, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.loaded), len(b.loaded) + len(b.pending)
}

// releaseLocked must be called with b.mu held. It returns the callbacks to
// run when this call released the barrier, nil otherwise.
func (b *Barrier) releaseLocked() []func() {
	if b.released || len(b.pending) > 0 {
		return nil
	}
	b.released = true
	close(b.ready)
	fire := b.callbacks
	b.callbacks = nil
	if fire == nil {
		fire = []func(){}
	}
	return fire
}

func (b *Barrier) run(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
