package control

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rcrowley/go-metrics"
	"github.com/samuraisam/cqlcontrol/errs"
	"github.com/samuraisam/cqlcontrol/host"
	"github.com/samuraisam/cqlcontrol/reactor"
	"github.com/samuraisam/cqlcontrol/wire"
)

const cqlVersion = "3.0.0"

// connectOnce runs the connect algorithm once against the registry's
// current IP list, returning the newly opened and fully subscribed
// connection on success, or *errs.NoHostsAvailable if every candidate
// was exhausted.
func (c *Connection) connectOnce(ctx context.Context) (reactor.Connection, error) {
	ips := c.registry.IPs()
	candidatesTried := metrics.GetOrRegisterCounter("controlconn.connect.candidates_tried", c.settings.Metrics)
	errorsByIP := make(map[string]error)

	for _, ip := range ips {
		conn, err := c.tryCandidate(ctx, ip, candidatesTried)
		if err != nil {
			if _, exhausted := err.(*protocolExhausted); exhausted {
				errorsByIP[ip] = err
				return nil, &errs.NoHostsAvailable{Errors: errorsByIP}
			}
			errorsByIP[ip] = err
			continue
		}
		return conn, nil
	}

	return nil, &errs.NoHostsAvailable{Errors: errorsByIP}
}

// protocolExhausted signals that the shared protocol version reached
// zero during negotiation: further candidates cannot possibly succeed,
// so connectOnce aborts immediately instead of trying the next IP.
type protocolExhausted struct{ lastError error }

func (e *protocolExhausted) Error() string { return e.lastError.Error() }

// tryCandidate attempts the full per-candidate sequence (open, Options
// negotiation retried across version downgrades, Startup/auth,
// discovery, Register) for a single IP.
func (c *Connection) tryCandidate(ctx context.Context, ip string, candidatesTried metrics.Counter) (reactor.Connection, error) {
	candidatesTried.Inc(1)
	for {
		conn, err := c.reactor.Connect(ctx, ip, c.settings.DefaultPort, c.settings.ConnectionTimeout).AwaitContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", ip, err)
		}

		resp, err := c.runner.Execute(ctx, conn, wire.Options(), c.settings.ConnectionTimeout).AwaitContext(ctx)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("options on %s: %w", ip, err)
		}

		if resp.IsProtocolMismatch() {
			oldVersion := c.settings.ProtocolVersion
			newVersion := oldVersion - 1
			conn.Close()

			if newVersion == 0 {
				return nil, &protocolExhausted{lastError: fmt.Errorf("%s: protocol version exhausted", ip)}
			}

			c.settings.ProtocolVersion = newVersion
			c.settings.Logger.Warn(fmt.Sprintf(
				"could not connect using protocol version %d (will try again with %d)",
				oldVersion, newVersion))
			continue
		}

		if resp.Opcode == wire.OpError {
			conn.Close()
			return nil, fmt.Errorf("%s: %s", ip, resp.Message)
		}

		if err := c.startupAndDiscover(ctx, ip, conn); err != nil {
			conn.Close()
			return nil, err
		}

		return conn, nil
	}
}

// startupAndDiscover runs startup, optional authentication, topology
// discovery, and event registration on an already-negotiated
// connection.
func (c *Connection) startupAndDiscover(ctx context.Context, ip string, conn reactor.Connection) error {
	resp, err := c.runner.Execute(ctx, conn, wire.Startup(cqlVersion), c.settings.ConnectionTimeout).AwaitContext(ctx)
	if err != nil {
		return fmt.Errorf("startup on %s: %w", ip, err)
	}

	switch resp.Opcode {
	case wire.OpReady:
		// proceed
	case wire.OpAuthenticate:
		if err := c.authenticate(ctx, conn, resp); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%s: unexpected response to STARTUP (opcode %d)", ip, resp.Opcode)
	}

	if err := c.discover(ctx, ip, conn); err != nil {
		return err
	}

	regResp, err := c.runner.Execute(ctx, conn, wire.Register(wire.EventStatusChange, wire.EventTopologyChange), c.settings.ConnectionTimeout).AwaitContext(ctx)
	if err != nil {
		return fmt.Errorf("register on %s: %w", ip, err)
	}
	if regResp.Opcode == wire.OpError {
		return fmt.Errorf("%s: register failed: %s", ip, regResp.Message)
	}

	conn.OnEvent(c.handleEvent)
	return nil
}

// authenticate performs the challenge-response exchange the server
// requested during startup. At protocol version < 2 the core does not
// support this path at all and fails the candidate outright.
func (c *Connection) authenticate(ctx context.Context, conn reactor.Connection, authenticateResp wire.Response) error {
	if c.settings.ProtocolVersion < 2 {
		return &errs.AuthenticationError{
			Message: fmt.Sprintf("server requires %s but protocol version %d does not support challenge-response authentication",
				authenticateResp.Authenticator, c.settings.ProtocolVersion),
		}
	}
	if c.settings.AuthProvider == nil {
		return &errs.AuthenticationError{
			Message: fmt.Sprintf("server requires %s but no auth provider is configured", authenticateResp.Authenticator),
		}
	}

	resp, err := c.runner.Execute(ctx, conn, wire.AuthResponse(c.settings.AuthProvider.InitialResponse()), c.settings.ConnectionTimeout).AwaitContext(ctx)
	if err != nil {
		return &errs.AuthenticationError{Message: err.Error()}
	}
	if resp.Opcode != wire.OpAuthSuccess {
		msg := resp.Message
		if msg == "" {
			msg = "credentials rejected"
		}
		return &errs.AuthenticationError{Message: msg}
	}
	return nil
}

// discover runs the system.local + system.peers query pair, feeding
// every row into the registry; a peers row with neither rpc_address
// nor peer set is skipped.
func (c *Connection) discover(ctx context.Context, ip string, conn reactor.Connection) error {
	localResp, err := c.runner.Execute(ctx, conn, wire.Query("SELECT data_center, rack, host_id, release_version FROM system.local"), c.settings.ConnectionTimeout).AwaitContext(ctx)
	if err != nil {
		return fmt.Errorf("system.local on %s: %w", ip, err)
	}
	if len(localResp.Rows) == 0 {
		return fmt.Errorf("%s: system.local returned no rows (empty cluster)", ip)
	}

	c.registry.HostFound(ip, rowToAttributes(localResp.Rows[0]))

	c.settings.Logger.Debug("Looking for additional nodes")
	peersResp, err := c.runner.Execute(ctx, conn, wire.Query("SELECT peer, rpc_address, data_center, rack, host_id, release_version FROM system.peers"), c.settings.ConnectionTimeout).AwaitContext(ctx)
	if err != nil {
		return fmt.Errorf("system.peers on %s: %w", ip, err)
	}

	n := 0
	for _, row := range peersResp.Rows {
		peerIP := peerAddress(row)
		if peerIP == "" {
			continue
		}
		c.registry.HostFound(peerIP, rowToAttributes(row))
		n++
	}
	c.settings.Logger.Debug(fmt.Sprintf("%d additional nodes found", n))
	c.updateHostsGauge()
	return nil
}

// peerAddress chooses the host IP for a system.peers row: rpc_address
// when present and not the unset sentinel 0.0.0.0, otherwise peer.
func peerAddress(row wire.Row) string {
	if rpc, ok := row["rpc_address"]; ok && rpc != "" && rpc != "0.0.0.0" {
		return rpc
	}
	return row["peer"]
}

func rowToAttributes(row wire.Row) host.Attributes {
	id, _ := uuid.Parse(row["host_id"])
	return host.Attributes{
		Datacenter:     row["data_center"],
		Rack:           row["rack"],
		ID:             id,
		ReleaseVersion: row["release_version"],
	}
}
