package control

import (
	"context"
	"fmt"

	"github.com/samuraisam/cqlcontrol/wire"
)

// handleEvent dispatches a server-pushed frame received while
// CONNECTED. Errors encountered here are logged and swallowed — they
// must never tear the connection down.
func (c *Connection) handleEvent(ev wire.Event) {
	c.settings.Logger.Debug(fmt.Sprintf("received event %s %s", ev.Family, ev.Subtype()))

	switch ev.Family {
	case wire.EventStatusChange:
		c.handleStatusChange(ev)
	case wire.EventTopologyChange:
		c.handleTopologyChange(ev)
	}
}

func (c *Connection) handleStatusChange(ev wire.Event) {
	switch ev.Status {
	case wire.StatusUp:
		if !c.registry.HostKnown(ev.Address) {
			return
		}
		c.refreshFromPeers(ev.Address)
	case wire.StatusDown:
		c.registry.HostDown(ev.Address)
	}
}

func (c *Connection) handleTopologyChange(ev wire.Event) {
	switch ev.Topology {
	case wire.TopologyNewNode:
		if c.registry.HostKnown(ev.Address) {
			return
		}
		c.refreshFromPeers(ev.Address)
	case wire.TopologyRemovedNode:
		c.registry.HostLost(ev.Address)
		c.updateHostsGauge()
	}
}

// refreshFromPeers re-queries system.peers for a single address and
// feeds the result back into the registry. A query failure, or an
// empty result, is logged and swallowed: the host's attributes are
// left unchanged rather than guessed at.
func (c *Connection) refreshFromPeers(ip string) {
	c.mtx.Lock()
	conn := c.bound
	c.mtx.Unlock()
	if conn == nil {
		return
	}

	resp, err := c.runner.Execute(context.Background(), conn,
		wire.Query("SELECT peer, rpc_address, data_center, rack, host_id, release_version FROM system.peers WHERE peer = ?", ip),
		c.settings.ConnectionTimeout).Await()
	if err != nil {
		c.settings.Logger.Warn(fmt.Sprintf("peers refresh for %s failed, leaving host unchanged: %v", ip, err))
		return
	}
	if len(resp.Rows) == 0 {
		c.settings.Logger.Warn(fmt.Sprintf("peers refresh for %s returned no rows, leaving host unchanged", ip))
		return
	}

	c.registry.HostFound(ip, rowToAttributes(resp.Rows[0]))
	c.updateHostsGauge()
}
