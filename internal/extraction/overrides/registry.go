// Package overrides holds hand-written per-site extraction strategies and
// the host registry that selects them. Registration order is significant:
// the first predicate accepting a host wins.
package overrides

import (
	"strings"
	"sync"

	"github.com/productlens/backend/internal/extraction/resolver"
)

// HostPredicate reports whether a bundle applies to a host.
type HostPredicate func(host string) bool

type entry struct {
	match  HostPredicate
	bundle *resolver.Bundle
}

type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a bundle. Later registrations only apply to hosts no
// earlier predicate claimed.
func (r *Registry) Register(match HostPredicate, bundle *resolver.Bundle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry{match: match, bundle: bundle})
}

// ResolveHost returns the first bundle whose predicate accepts the host,
// or nil when no site override exists.
func (r *Registry) ResolveHost(host string) *resolver.Bundle {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.match(host) {
			return e.bundle
		}
	}
	return nil
}

// HostContains matches any host with the given substring, the common case
// for a retailer with many country TLDs.
func HostContains(fragment string) HostPredicate {
	fragment = strings.ToLower(fragment)
	return func(host string) bool {
		return strings.Contains(host, fragment)
	}
}

// HostEquals matches one exact host.
func HostEquals(name string) HostPredicate {
	name = strings.ToLower(name)
	return func(host string) bool {
		return host == name
	}
}
