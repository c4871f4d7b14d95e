package wsserver

import (
	"sync"

	"github.com/mo-shahab/pong-authority/identity"
)

// playerLocks serialises connection changes per player, so the engine sees
// connect and disconnect requests in the order the room applied them. The
// zero value is ready to use.
type playerLocks struct {
	mu    sync.Mutex
	locks map[identity.Identity]*playerLock
}

type playerLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until id is free and returns the matching unlock.
func (p *playerLocks) lock(id identity.Identity) func() {
	p.mu.Lock()
	if p.locks == nil {
		p.locks = make(map[identity.Identity]*playerLock)
	}
	l, ok := p.locks[id]
	if !ok {
		l = &playerLock{}
		p.locks[id] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, id)
		}
		p.mu.Unlock()
	}
}
