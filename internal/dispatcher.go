package internal

import (
	"math/rand/v2"
	"net/netip"

	"github.com/bepass-tunl/tunnelcore/internal/config"
)

// Dispatcher routes an inbound WebSocket path to its configured Inbound,
// and a decoded RequestContext to the Outbound that should carry it.
// Grounded on the scoring/selection shape of teacher's (now-removed)
// internal/lb.go, stripped of its health-check state — this core has no
// standing upstream pool to probe, only a per-connection decision.
type Dispatcher struct {
	cfg *config.Config
}

func NewDispatcher(cfg *config.Config) *Dispatcher {
	return &Dispatcher{cfg: cfg}
}

// DispatchInbound finds the inbound whose path exactly equals path.
func (d *Dispatcher) DispatchInbound(path string) *config.Inbound {
	return d.cfg.FindInbound(path)
}

// DispatchOutbound implements spec §4.9: UDP always forces the configured
// outbound; a TCP request whose address is an IP inside outbound.match
// uses the configured outbound; everything else falls back to Freedom.
// With no outbound configured at all, every request gets Freedom.
func (d *Dispatcher) DispatchOutbound(ctx *RequestContext) config.Outbound {
	out := d.cfg.Outbound
	if out.Protocol == "" {
		return config.FreedomOutbound()
	}
	if ctx.Network == NetworkUDP {
		return out
	}
	if addr, err := netip.ParseAddr(ctx.Address); err == nil {
		for _, p := range out.Prefixes {
			if p.Contains(addr) {
				return out
			}
		}
	}
	return config.FreedomOutbound()
}

// UpstreamTarget resolves the (host, port) pair to dial for a dispatched
// outbound, per spec §4.9: a non-Freedom outbound with a configured
// address list samples uniformly at random per connection; Freedom always
// dials the context's own address/port. A non-Freedom outbound still uses
// its own configured port even with no address list to sample from — only
// the host falls back to the context's address in that case.
func UpstreamTarget(out config.Outbound, ctx *RequestContext) (string, uint16) {
	if out.Protocol == config.ProtocolFreedom {
		return ctx.Address, ctx.Port
	}
	if len(out.Addresses) == 0 {
		return ctx.Address, out.Port
	}
	addr := out.Addresses[rand.IntN(len(out.Addresses))]
	return addr, out.Port
}
