package control

import (
	"context"
	"time"

	"github.com/rcrowley/go-metrics"
)

// onConnectionLost is installed as the bound connection's CloseHandler.
// It fires at most once per connection and drives the RECONNECTING
// state. If CloseAsync already moved the state to CLOSING/CLOSED, this
// is a no-op: CloseAsync is the only cancellation signal, and it has
// already claimed ownership.
func (c *Connection) onConnectionLost(_ error) {
	c.mtx.Lock()
	if c.state == StateClosing || c.state == StateClosed {
		c.mtx.Unlock()
		return
	}
	c.state = StateReconnecting
	c.bound = nil
	interval := c.settings.ReconnectInterval
	c.mtx.Unlock()

	c.armReconnectTimer(interval)
}

// armReconnectTimer schedules reconnectTimerFire after delay and
// records the handle so CloseAsync can cancel it.
func (c *Connection) armReconnectTimer(delay time.Duration) {
	handle := c.reactor.Schedule(delay, c.reconnectTimerFire)

	c.mtx.Lock()
	if c.state == StateClosing || c.state == StateClosed {
		c.mtx.Unlock()
		handle.Cancel()
		return
	}
	c.timer = handle
	c.mtx.Unlock()
}

// reconnectTimerFire is the callback handed to reactor.Schedule. On
// fire it attempts connectOnce against the registry's current IPs; on
// success it installs the new connection and returns to CONNECTED; on
// failure it reschedules another timer and repeats indefinitely. The
// only way this loop stops is CloseAsync.
func (c *Connection) reconnectTimerFire() {
	c.mtx.Lock()
	if c.state == StateClosing || c.state == StateClosed {
		c.mtx.Unlock()
		return
	}
	c.mtx.Unlock()

	metrics.GetOrRegisterCounter("controlconn.reconnect.attempts", c.settings.Metrics).Inc(1)

	conn, err := c.connectOnce(context.Background())

	c.mtx.Lock()
	if c.state == StateClosing || c.state == StateClosed {
		c.mtx.Unlock()
		if err == nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		interval := c.settings.ReconnectInterval
		c.mtx.Unlock()
		c.logExhaustion(err)
		c.armReconnectTimer(interval)
		return
	}

	c.bound = conn
	c.state = StateConnected
	c.mtx.Unlock()

	conn.OnClose(func(closeErr error) { c.onConnectionLost(closeErr) })
	c.updateHostsGauge()
}
