// Package control implements the Control Connection: protocol
// negotiation, authentication, topology discovery, event subscription,
// and the reconnection supervisor. Grounded on server/host.go's
// polling loop (StartPollingServers/doPoll, generalized
// into an event-driven reconnect timer), server/pool.go's documented
// multi-step handshake sequence, and server/connection.go's
// Dial-with-timeout shape (generalized into per-candidate iteration
// over the registry's IPs).
package control

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/samuraisam/cqlcontrol/errs"
	"github.com/samuraisam/cqlcontrol/future"
	"github.com/samuraisam/cqlcontrol/reactor"
	"github.com/samuraisam/cqlcontrol/registry"
	"github.com/samuraisam/cqlcontrol/settings"
)

// State is the Control Connection's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Connection is the single long-lived administrative connection owned
// by this component. The zero value is not usable; use New.
type Connection struct {
	mtx sync.Mutex

	state State
	bound reactor.Connection
	timer reactor.TimerHandle

	settings *settings.Settings
	registry *registry.Registry
	reactor  reactor.Reactor
	runner   reactor.RequestRunner
}

// New builds a Control Connection against reg, using rct to open
// connections and schedule timers, and runner to issue requests. s is
// mutated in place during negotiation (its ProtocolVersion field
// only).
func New(s *settings.Settings, reg *registry.Registry, rct reactor.Reactor, runner reactor.RequestRunner) *Connection {
	return &Connection{
		state:    StateIdle,
		settings: s,
		registry: reg,
		reactor:  rct,
		runner:   runner,
	}
}

// State returns the current lifecycle state.
func (c *Connection) State() State {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.state
}

// Connected reports whether the bound connection, if any, is currently
// open, without callers needing to reach into internals.
func (c *Connection) Connected() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.state == StateConnected && c.bound != nil && c.bound.Connected()
}

// ConnectAsync is idempotent: called from StateConnected it resolves
// immediately without touching the network. On success it leaves the
// Control Connection CONNECTED with an active event subscription; on
// exhaustion of every candidate it fails with *errs.NoHostsAvailable.
func (c *Connection) ConnectAsync(ctx context.Context) *future.Future[struct{}] {
	c.mtx.Lock()
	switch c.state {
	case StateConnected:
		c.mtx.Unlock()
		return future.Resolved(struct{}{})
	case StateClosing, StateClosed:
		c.mtx.Unlock()
		return future.Resolved(struct{}{})
	}
	c.state = StateConnecting
	c.mtx.Unlock()

	out := future.New[struct{}]()
	go c.runInitialConnect(ctx, out)
	return out
}

func (c *Connection) runInitialConnect(ctx context.Context, out *future.Future[struct{}]) {
	timer := metrics.GetOrRegisterTimer("controlconn.connect", c.settings.Metrics)
	start := time.Now()

	conn, err := c.connectOnce(ctx)
	timer.UpdateSince(start)

	if err != nil {
		c.logExhaustion(err)
		c.mtx.Lock()
		c.state = StateIdle
		c.mtx.Unlock()
		out.Reject(err)
		return
	}

	c.mtx.Lock()
	c.bound = conn
	c.state = StateConnected
	c.mtx.Unlock()

	conn.OnClose(func(closeErr error) { c.onConnectionLost(closeErr) })
	c.updateHostsGauge()
	out.Resolve(struct{}{})
}

// CloseAsync transitions to CLOSING: cancels any scheduled reconnect
// timer and closes the bound connection if any. If the Control
// Connection never connected, it completes immediately with a
// resolved empty result.
func (c *Connection) CloseAsync(ctx context.Context) *future.Future[struct{}] {
	c.mtx.Lock()
	if c.state == StateClosing || c.state == StateClosed {
		c.mtx.Unlock()
		return future.Resolved(struct{}{})
	}
	c.state = StateClosing
	timer := c.timer
	c.timer = nil
	conn := c.bound
	c.bound = nil
	c.mtx.Unlock()

	if timer != nil {
		timer.Cancel()
	}

	if conn == nil {
		c.mtx.Lock()
		c.state = StateClosed
		c.mtx.Unlock()
		return future.Resolved(struct{}{})
	}

	out := future.New[struct{}]()
	go func() {
		_, _ = conn.Close().AwaitContext(ctx)
		c.mtx.Lock()
		c.state = StateClosed
		c.mtx.Unlock()
		out.Resolve(struct{}{})
	}()
	return out
}

func (c *Connection) updateHostsGauge() {
	g := metrics.GetOrRegisterGauge("controlconn.registry.hosts", c.settings.Metrics)
	g.Update(int64(len(c.registry.Hosts())))
}

// logExhaustion emits one warn-level line summarizing every per-IP
// failure when a connect attempt exhausted every candidate.
func (c *Connection) logExhaustion(err error) {
	var nha *errs.NoHostsAvailable
	if !errors.As(err, &nha) {
		return
	}
	c.settings.Logger.Warn(nha.Combined().Error())
}
