// Command ccprobe wires a Control Connection up against an in-memory
// fabricated cluster and logs registry membership as it connects. It
// exists to prove the package wiring compiles end to end; a real
// program would replace the demoReactor/demoRunner pair in this
// directory with a concrete transport and wire codec. Flag parsing
// into a settings builder, then handing off to the core object,
// follows the shape of the original flag.Parse()-then-app-construction
// main.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samuraisam/cqlcontrol/control"
	"github.com/samuraisam/cqlcontrol/host"
	"github.com/samuraisam/cqlcontrol/logging"
	"github.com/samuraisam/cqlcontrol/registry"
	"github.com/samuraisam/cqlcontrol/settings"
)

var (
	seedHost          = flag.String("seed", "127.0.0.1", "Seed host to present to the control connection")
	protocolVersion   = flag.Int("protocol-version", settings.DefaultProtocolVersion, "Maximum CQL protocol version to offer")
	reconnectInterval = flag.Duration("reconnect-interval", 2*time.Second, "Delay between reconnection attempts")
	connectionTimeout = flag.Duration("connection-timeout", 5*time.Second, "Per-request and per-dial timeout")
	configPath        = flag.String("config", "", "Optional YAML file layering overrides onto the defaults")
	logLevel          = flag.String("log-level", "info", "debug, info, warn, or error")
	prettyLog         = flag.Bool("pretty-log", true, "Use the colorized development log encoder")
)

type membershipListener struct {
	log logging.Logger
}

func (l membershipListener) HostFound(h host.Host) {
	l.log.Info(fmt.Sprintf("host found: %s", h))
}
func (l membershipListener) HostLost(ip string) { l.log.Info(fmt.Sprintf("host lost: %s", ip)) }
func (l membershipListener) HostUp(ip string)   { l.log.Info(fmt.Sprintf("host up: %s", ip)) }
func (l membershipListener) HostDown(ip string) { l.log.Info(fmt.Sprintf("host down: %s", ip)) }

func main() {
	flag.Parse()

	overrides := &settings.Overrides{
		ProtocolVersion:   *protocolVersion,
		DefaultPort:       settings.DefaultPort,
		ReconnectInterval: *reconnectInterval,
		ConnectionTimeout: *connectionTimeout,
	}
	if *configPath != "" {
		fileOverrides, err := settings.LoadYAML(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ccprobe:", err)
			os.Exit(1)
		}
		overrides = fileOverrides
	}

	s, err := settings.Build(overrides)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ccprobe:", err)
		os.Exit(1)
	}
	s.Logger = logging.New(*logLevel, *prettyLog)

	reg := registry.New()
	reg.AddListener(membershipListener{log: s.Logger})
	reg.HostFound(*seedHost, host.Attributes{})

	rct := newDemoReactor(*seedHost)
	cc := control.New(s, reg, rct, &demoRunner{localID: rct.localID})

	ctx, cancel := context.WithTimeout(context.Background(), *connectionTimeout)
	defer cancel()
	if _, err := cc.ConnectAsync(ctx).AwaitContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ccprobe: connect failed:", err)
		os.Exit(1)
	}
	s.Logger.Info(fmt.Sprintf("control connection established, state=%s", cc.State()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	closeCtx, closeCancel := context.WithTimeout(context.Background(), *connectionTimeout)
	defer closeCancel()
	if _, err := cc.CloseAsync(closeCtx).AwaitContext(closeCtx); err != nil {
		fmt.Fprintln(os.Stderr, "ccprobe: close failed:", err)
		os.Exit(1)
	}
}
