// Package host describes a single member of a CQL cluster as discovered
// by the control connection.
package host

import (
	"fmt"

	"github.com/google/uuid"
)

// Host is an immutable description of one cluster member. Identity is
// the IP; every other attribute is replaced wholesale (never mutated in
// place) when discovery observes a change.
type Host struct {
	ip             string
	datacenter     string
	rack           string
	id             uuid.UUID
	releaseVersion string
}

// New builds a Host. ip is the identity; the remaining fields are the
// attributes discovery extracted from system.local/system.peers.
func New(ip, datacenter, rack string, id uuid.UUID, releaseVersion string) Host {
	return Host{
		ip:             ip,
		datacenter:     datacenter,
		rack:           rack,
		id:             id,
		releaseVersion: releaseVersion,
	}
}

func (h Host) IP() string             { return h.ip }
func (h Host) Datacenter() string     { return h.datacenter }
func (h Host) Rack() string           { return h.rack }
func (h Host) ID() uuid.UUID          { return h.id }
func (h Host) ReleaseVersion() string { return h.releaseVersion }

func (h Host) String() string {
	return fmt.Sprintf("<Host %s dc=%s rack=%s id=%s version=%s>",
		h.ip, h.datacenter, h.rack, h.id, h.releaseVersion)
}

// Attributes are the fields a Registry compares to decide whether a
// rediscovered host actually changed. Two Hosts with the same IP and
// equal Attributes are considered identical for HostFound idempotence
// purposes.
type Attributes struct {
	Datacenter     string
	Rack           string
	ID             uuid.UUID
	ReleaseVersion string
}

// Equal reports whether h's attributes match a, ignoring IP (which is
// the map key a caller already matched on).
func (h Host) Equal(a Attributes) bool {
	return h.datacenter == a.Datacenter &&
		h.rack == a.Rack &&
		h.id == a.ID &&
		h.releaseVersion == a.ReleaseVersion
}

// WithAttributes returns a new Host for ip carrying a's attributes. The
// receiver is never mutated.
func WithAttributes(ip string, a Attributes) Host {
	return New(ip, a.Datacenter, a.Rack, a.ID, a.ReleaseVersion)
}
