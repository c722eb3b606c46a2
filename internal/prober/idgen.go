package prober

import (
	"math/rand"
	"sync"
)

const idMask = (1 << 16) - 1

// idGen is a process-wide allocator of ICMP echo identifiers. It partitions
// a shared socket across concurrent sessions the way the teacher's
// internal/util.IDGen does, wrapping at 16 bits since the ICMP identifier
// field is a uint16.
type idGen struct {
	mu   sync.Mutex
	next int
}

func newIDGen() *idGen {
	return &idGen{next: rand.Intn(idMask + 1)}
}

// alloc returns the next identifier and advances the generator.
func (g *idGen) alloc() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.next
	g.next = (g.next + 1) & idMask
	return id
}
