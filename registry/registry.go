// Package registry is the authoritative in-memory set of known cluster
// hosts. It tracks discovery order, liveness, and fans out changes to
// registered listeners synchronously on the caller's goroutine.
package registry

import (
	"fmt"
	"sync"

	"github.com/samuraisam/cqlcontrol/host"
)

// Listener receives Registry change notifications. Implementations must
// not block, and must not mutate the Registry that is currently
// notifying them (HostFound, HostUp, HostDown, HostLost) — such a call
// panics rather than being merely undefined. Read-only calls (HostKnown,
// Hosts, IPs) are allowed.
type Listener interface {
	HostFound(h host.Host)
	HostLost(ip string)
	HostUp(ip string)
	HostDown(ip string)
}

// Registry holds the ordered set of known IPs, the IP->Host map for
// every known host (up or down), the per-IP liveness map, and the
// listener list. The zero value is not usable; use New.
type Registry struct {
	mtx       sync.Mutex
	order     []string
	hosts     map[string]host.Host
	up        map[string]bool
	listeners []Listener

	notifying bool // re-entrancy guard, see HostFound et al.
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		hosts: make(map[string]host.Host),
		up:    make(map[string]bool),
	}
}

// AddListener appends l to the listener list. Registry itself does not
// replay past events, so callers that need "every host found exactly
// once" should register before the first discovery.
func (r *Registry) AddListener(l Listener) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.listeners = append(r.listeners, l)
}

// HostFound records ip as known with the given attributes. If ip is
// already known and attrs is unchanged, this is a no-op (idempotence
// law). Otherwise the mapping is updated and HostFound is emitted to
// every listener. The first-ever call for an ip always emits.
func (r *Registry) HostFound(ip string, attrs host.Attributes) {
	r.mtx.Lock()
	r.rejectReentrance()
	existing, known := r.hosts[ip]
	if known && existing.Equal(attrs) {
		r.mtx.Unlock()
		return
	}

	h := host.WithAttributes(ip, attrs)
	r.hosts[ip] = h
	if !known {
		r.order = append(r.order, ip)
	}
	r.up[ip] = true
	listeners := r.snapshotListeners()
	r.mtx.Unlock()

	r.notify(func(l Listener) { l.HostFound(h) }, listeners)
}

// HostUp marks ip live and emits HostUp to every listener iff the
// host's liveness state actually flips from down to up.
func (r *Registry) HostUp(ip string) {
	r.mtx.Lock()
	r.rejectReentrance()
	if _, known := r.hosts[ip]; !known {
		r.mtx.Unlock()
		return
	}
	if r.up[ip] {
		r.mtx.Unlock()
		return
	}
	r.up[ip] = true
	listeners := r.snapshotListeners()
	r.mtx.Unlock()

	r.notify(func(l Listener) { l.HostUp(ip) }, listeners)
}

// HostDown marks ip not-live and emits HostDown to every listener iff
// the host's liveness state actually flips from up to down.
func (r *Registry) HostDown(ip string) {
	r.mtx.Lock()
	r.rejectReentrance()
	if _, known := r.hosts[ip]; !known {
		r.mtx.Unlock()
		return
	}
	if !r.up[ip] {
		r.mtx.Unlock()
		return
	}
	r.up[ip] = false
	listeners := r.snapshotListeners()
	r.mtx.Unlock()

	r.notify(func(l Listener) { l.HostDown(ip) }, listeners)
}

// HostLost removes ip from the registry entirely and emits HostLost iff
// ip was known. No further notifications for ip occur until a
// subsequent HostFound.
func (r *Registry) HostLost(ip string) {
	r.mtx.Lock()
	r.rejectReentrance()
	if _, known := r.hosts[ip]; !known {
		r.mtx.Unlock()
		return
	}
	delete(r.hosts, ip)
	delete(r.up, ip)
	r.order = removeString(r.order, ip)
	listeners := r.snapshotListeners()
	r.mtx.Unlock()

	r.notify(func(l Listener) { l.HostLost(ip) }, listeners)
}

// HostKnown reports whether ip is currently known (constant-time).
func (r *Registry) HostKnown(ip string) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	_, known := r.hosts[ip]
	return known
}

// Hosts returns a snapshot of currently known hosts in insertion order.
func (r *Registry) Hosts() []host.Host {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	out := make([]host.Host, 0, len(r.order))
	for _, ip := range r.order {
		out = append(out, r.hosts[ip])
	}
	return out
}

// IPs returns a snapshot of known IPs in insertion order.
func (r *Registry) IPs() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) snapshotListeners() []Listener {
	out := make([]Listener, len(r.listeners))
	copy(out, r.listeners)
	return out
}

// rejectReentrance panics if called while a notification is already in
// flight: listener re-entry mutating the Registry is detected and
// rejected rather than risk silently corrupting the ordered set.
// Callers must hold r.mtx.
func (r *Registry) rejectReentrance() {
	if r.notifying {
		r.mtx.Unlock()
		panic("registry: re-entrant mutation from within a listener notification")
	}
}

// notify delivers one event to every listener synchronously, with the
// re-entrancy guard armed for the duration.
func (r *Registry) notify(fn func(Listener), listeners []Listener) {
	r.mtx.Lock()
	r.notifying = true
	r.mtx.Unlock()

	defer func() {
		r.mtx.Lock()
		r.notifying = false
		r.mtx.Unlock()
	}()

	for _, l := range listeners {
		fn(l)
	}
}

func removeString(s []string, v string) []string {
	out := s[:0]
	for _, e := range s {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}

// ErrUnknownHost is a sentinel for callers that look up an IP the
// Registry doesn't recognize. Not part of the notification contract
// above; no Registry method returns it.
var ErrUnknownHost = fmt.Errorf("registry: host not known")
