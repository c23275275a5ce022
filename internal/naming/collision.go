package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Resolver tracks claimed names and resolves duplicates by appending "_N"
// suffixes before the extension. Resolution is deterministic: given the same
// claims in the same order it always produces the same names. All methods are
// goroutine-safe.
type Resolver struct {
	mu       sync.Mutex
	owners   map[string]string // claimed name → owner that claimed it
	counters map[string]int    // requested name → next suffix to try
}

// NewResolver creates a ready-to-use resolver.
func NewResolver() *Resolver {
	return &Resolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Claim returns the final name for owner. If requested is unclaimed (or
// already owned by owner), it is returned as-is; otherwise the first free
// "_N" variant is generated, starting at 2.
func (r *Resolver) Claim(owner, requested string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.owners[requested]
	if !exists || current == owner {
		r.owners[requested] = owner
		return requested
	}

	ext := filepath.Ext(requested)
	stem := strings.TrimSuffix(requested, ext)

	counter := r.counters[requested]
	if counter < 2 {
		counter = 2
	}
	for {
		candidate := fmt.Sprintf("%s_%d%s", stem, counter, ext)
		cOwner, cExists := r.owners[candidate]
		if !cExists || cOwner == owner {
			r.counters[requested] = counter + 1
			r.owners[candidate] = owner
			return candidate
		}
		counter++
	}
}
