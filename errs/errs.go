// Package errs defines the two named failures that escape the control
// connection core: NoHostsAvailable and AuthenticationError. Every
// other failure is internal and handled within connect/reconnect
// bookkeeping.
package errs

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// NoHostsAvailable is raised when every candidate IP failed during a
// connect attempt. Errors maps each attempted IP to the error that
// eliminated it.
type NoHostsAvailable struct {
	Errors map[string]error
}

func (e *NoHostsAvailable) Error() string {
	if len(e.Errors) == 0 {
		return "no hosts available: no candidates were attempted"
	}
	ips := make([]string, 0, len(e.Errors))
	for ip := range e.Errors {
		ips = append(ips, ip)
	}
	sort.Strings(ips)

	var b strings.Builder
	b.WriteString("no hosts available: ")
	for i, ip := range ips {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %v", ip, e.Errors[ip])
	}
	return b.String()
}

// Combined renders every recorded per-IP error as one multierr chain,
// used only to produce a single readable warn-level log line on
// exhaustion — the addressable per-IP surface remains the Errors map.
// If no candidate was ever attempted, Combined returns e itself rather
// than a nil error.
func (e *NoHostsAvailable) Combined() error {
	if len(e.Errors) == 0 {
		return e
	}
	ips := make([]string, 0, len(e.Errors))
	for ip := range e.Errors {
		ips = append(ips, ip)
	}
	sort.Strings(ips)

	var combined error
	for _, ip := range ips {
		combined = multierr.Append(combined, fmt.Errorf("%s: %w", ip, e.Errors[ip]))
	}
	return combined
}

// AuthenticationError is raised when the server rejects credentials, or
// when the negotiated protocol version does not support the
// challenge-response authentication the core implements.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return "authentication error: " + e.Message
}
