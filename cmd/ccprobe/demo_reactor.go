package main

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samuraisam/cqlcontrol/future"
	"github.com/samuraisam/cqlcontrol/reactor"
	"github.com/samuraisam/cqlcontrol/wire"
)

// demoReactor is an in-memory stand-in for the real transport and
// codec, which are out of this module's scope. It answers exactly the
// request sequence the control connection issues against a single
// fabricated node, so ccprobe can demonstrate the wiring without a
// cluster to dial.
type demoReactor struct {
	seedIP  string
	localID uuid.UUID
}

func newDemoReactor(seedIP string) *demoReactor {
	return &demoReactor{seedIP: seedIP, localID: uuid.New()}
}

func (d *demoReactor) Start(ctx context.Context) *future.Future[struct{}] {
	return future.Resolved(struct{}{})
}

func (d *demoReactor) Connect(ctx context.Context, ip string, port int, timeout time.Duration) *future.Future[reactor.Connection] {
	return future.Resolved[reactor.Connection](&demoConn{ip: ip})
}

func (d *demoReactor) Schedule(delay time.Duration, fn func()) reactor.TimerHandle {
	t := time.AfterFunc(delay, fn)
	return timerHandle{t}
}

type timerHandle struct{ t *time.Timer }

func (h timerHandle) Cancel() { h.t.Stop() }

type demoConn struct {
	ip string

	mu     sync.Mutex
	closed bool
	onC    reactor.CloseHandler
}

func (c *demoConn) Send(ctx context.Context, req wire.Request) *future.Future[wire.Response] {
	return future.Resolved(wire.Response{Opcode: wire.OpResult})
}
func (c *demoConn) OnEvent(h reactor.EventHandler) {}
func (c *demoConn) OnClose(h reactor.CloseHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onC = h
}
func (c *demoConn) Close() *future.Future[struct{}] {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return future.Resolved(struct{}{})
}
func (c *demoConn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// demoRunner answers every request kind the control connection issues
// with a response that lets negotiation, discovery, and registration all
// succeed immediately against the single fabricated node.
type demoRunner struct {
	localID uuid.UUID
}

func (r *demoRunner) Execute(ctx context.Context, conn reactor.Connection, req wire.Request, timeout time.Duration) *future.Future[wire.Response] {
	switch req.Kind {
	case wire.ReqOptions:
		return future.Resolved(wire.Response{Opcode: wire.OpSupported})
	case wire.ReqStartup:
		return future.Resolved(wire.Response{Opcode: wire.OpReady})
	case wire.ReqQuery:
		if queryIsLocal(req.CQL) {
			return future.Resolved(wire.Response{
				Opcode: wire.OpResult,
				Rows: []wire.Row{{
					"data_center":     "dc-demo",
					"rack":            "rack-demo",
					"host_id":         r.localID.String(),
					"release_version": "4.0.0-ccprobe",
				}},
			})
		}
		return future.Resolved(wire.Response{Opcode: wire.OpResult}) // no peers in the demo cluster
	case wire.ReqRegister:
		return future.Resolved(wire.Response{Opcode: wire.OpResult})
	}
	return future.Resolved(wire.Response{Opcode: wire.OpResult})
}

func queryIsLocal(cql string) bool {
	return strings.Contains(cql, "system.local")
}
