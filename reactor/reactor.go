// Package reactor declares the contracts the control connection
// consumes for I/O: opening transport connections, issuing requests,
// and scheduling timers. Concrete transport, framing, and the event
// loop itself are out of scope for this module — these are interfaces
// a real driver wires a concrete implementation into. The shape
// generalizes server/connection.go's Connection interface
// (Write/Read/Close) into a richer async contract.
package reactor

import (
	"context"
	"time"

	"github.com/samuraisam/cqlcontrol/future"
	"github.com/samuraisam/cqlcontrol/wire"
)

// EventHandler is invoked once per pushed Event while a Connection is
// subscribed via Register.
type EventHandler func(wire.Event)

// CloseHandler is invoked once when a Connection's transport is lost,
// whether by remote close, local close, or error.
type CloseHandler func(err error)

// Connection is one opened transport connection to a single host.
type Connection interface {
	// Send issues req and resolves with the decoded Response (or an
	// error on transport/timeout failure).
	Send(ctx context.Context, req wire.Request) *future.Future[wire.Response]

	// OnEvent installs the handler invoked for every pushed Event.
	// Only meaningful after a successful Register request.
	OnEvent(h EventHandler)

	// OnClose installs the handler invoked when the connection is
	// lost. It may be called at most once.
	OnClose(h CloseHandler)

	// Close closes the connection. Idempotent.
	Close() *future.Future[struct{}]

	// Connected reports whether the connection believes itself open.
	Connected() bool
}

// Reactor opens connections and schedules timers. It is the single
// point of contact with the outside world the control connection uses.
type Reactor interface {
	// Start brings the reactor up. Called once before any Connect.
	Start(ctx context.Context) *future.Future[struct{}]

	// Connect opens a transport connection to ip:port, failing if not
	// established within timeout.
	Connect(ctx context.Context, ip string, port int, timeout time.Duration) *future.Future[Connection]

	// Schedule arranges for fn to run after delay, returning a handle
	// that can cancel the pending fire. fn runs on the reactor's
	// single event-loop goroutine.
	Schedule(delay time.Duration, fn func()) TimerHandle
}

// TimerHandle cancels a scheduled callback. Cancel after the callback
// has already fired is a no-op.
type TimerHandle interface {
	Cancel()
}

// RequestRunner issues one request on one connection and yields a
// pending result, honoring timeout. In most wirings this is a thin
// pass-through to Connection.Send; it is named separately because some
// drivers interpose request-level concerns (framing stream IDs,
// in-flight bookkeeping) between the control connection and the raw
// connection.
type RequestRunner interface {
	Execute(ctx context.Context, conn Connection, req wire.Request, timeout time.Duration) *future.Future[wire.Response]
}
