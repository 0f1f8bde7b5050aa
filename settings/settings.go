// Package settings holds the driver-wide configuration: the mutable
// record shared between the control connection core and external
// callers, with mutation of ProtocolVersion restricted to the
// negotiation path. Grounded on server/config/config.go's
// AppSettings struct and server/server.go's App singleton, replaced
// here with a plain builder chain since no runtime dispatch beyond the
// listener/reactor contracts is needed.
package settings

import (
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/samuraisam/cqlcontrol/logging"
	"github.com/samuraisam/cqlcontrol/registry"
)

// AuthProvider performs the challenge-response authentication exchange
// the control connection drives during startup. InitialResponse is
// sent as the body of the first AUTH_RESPONSE frame after the server's
// Authenticate reply.
type AuthProvider interface {
	InitialResponse() []byte
}

// LoadBalancingPolicy is the registry.Listener contract a concrete
// load-balancing policy implements.
type LoadBalancingPolicy = registry.Listener

// Settings is the mutable record the core reads and writes. Every
// field the core touches is named explicitly below; everything else an
// embedding application wants to carry (query defaults, pool sizes,
// and the like) is opaque pass-through the core never inspects — this
// module does not model those fields since it owns none of that
// behavior.
type Settings struct {
	// ProtocolVersion is mutated only during negotiation; nowhere
	// else in the core writes it.
	ProtocolVersion int

	// DefaultPort is the port used when opening a candidate
	// connection (default 9042).
	DefaultPort int

	// ReconnectInterval is the delay between reconnection attempts.
	ReconnectInterval time.Duration

	// ConnectionTimeout bounds opening a transport connection and
	// each individual request.
	ConnectionTimeout time.Duration

	// AuthProvider is optional; nil means the core cannot answer an
	// Authenticate challenge.
	AuthProvider AuthProvider

	// LoadBalancingPolicy receives Registry notifications. Optional;
	// a nil policy is treated as "subscribe nothing" by callers that
	// build their own registry.Listener chain.
	LoadBalancingPolicy LoadBalancingPolicy

	// Logger is the core's logging collaborator.
	Logger logging.Logger

	// Metrics is the instrumentation registry, carried forward from
	// server/config/config.go's Timer helper.
	Metrics metrics.Registry
}

// DefaultProtocolVersion is the configured maximum protocol version to
// offer before negotiation downgrades it; individual applications are
// expected to override it to the newest version their codec supports.
const DefaultProtocolVersion = 4

// DefaultPort is the CQL-family default port.
const DefaultPort = 9042

// Default returns hard-coded defaults: protocol version
// DefaultProtocolVersion, port DefaultPort, a 2s reconnect interval, a
// 5s connection timeout, no auth provider, no load-balancing policy, a
// no-op logger, and a fresh metrics registry.
func Default() *Settings {
	return &Settings{
		ProtocolVersion:   DefaultProtocolVersion,
		DefaultPort:       DefaultPort,
		ReconnectInterval: 2 * time.Second,
		ConnectionTimeout: 5 * time.Second,
		Logger:            logging.Nop,
		Metrics:           metrics.NewRegistry(),
	}
}
