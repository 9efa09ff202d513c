// Package config holds the typed configuration document this core loads
// once at process start and shares read-only with every request. Grounded
// on teacher's internal/config/types.go, restructured around the spec's
// inbound/outbound record shape instead of a single-server Outline key.
package config

import (
	"fmt"
	"net/netip"

	"github.com/google/uuid"
)

type Protocol string

const (
	ProtocolVMess     Protocol = "vmess"
	ProtocolVLESS     Protocol = "vless"
	ProtocolTrojan    Protocol = "trojan"
	ProtocolBepass    Protocol = "bepass"
	ProtocolRelayV1   Protocol = "relay_v1"
	ProtocolRelayV2   Protocol = "relay_v2"
	ProtocolBlackhole Protocol = "blackhole"
	ProtocolFreedom   Protocol = "freedom"
)

// Inbound is immutable after load. UUID/Password apply per protocol (VMess
// and VLESS use UUID, Trojan uses Password; Bepass uses neither).
type Inbound struct {
	Protocol Protocol  `toml:"protocol"`
	UUIDStr  string    `toml:"uuid"`
	Password string    `toml:"password"`
	Path     string    `toml:"path"`
	UUID     uuid.UUID `toml:"-"`
}

// Outbound is immutable after load. At most one non-Freedom outbound is
// configured; Freedom is synthesized on demand by the dispatcher.
type Outbound struct {
	Protocol  Protocol       `toml:"protocol"`
	Match     []string       `toml:"match"`
	Addresses []string       `toml:"addresses"`
	Port      uint16         `toml:"port"`
	UUIDStr   string         `toml:"uuid"`
	Password  string         `toml:"password"`
	Prefixes  []netip.Prefix `toml:"-"`
	UUID      uuid.UUID      `toml:"-"`
}

type Config struct {
	Inbound  []Inbound `toml:"inbound"`
	Outbound Outbound  `toml:"outbound"`
}

// FreedomOutbound synthesizes the always-available direct outbound, per
// spec §3: Freedom need not be configured (though "freedom" is accepted as
// the configured outbound protocol); the dispatcher synthesizes it as its
// fallback.
func FreedomOutbound() Outbound {
	return Outbound{Protocol: ProtocolFreedom}
}

// Validate resolves string fields (UUID parsing, CIDR parsing) into their
// typed form. Call after unmarshaling; on any error the caller falls back
// to an empty Config per spec §3 ("invalid TOML yields the default (empty)
// config without aborting").
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Inbound))
	for i := range c.Inbound {
		in := &c.Inbound[i]
		if in.Path == "" {
			return fmt.Errorf("inbound[%d]: empty path", i)
		}
		if _, dup := seen[in.Path]; dup {
			return fmt.Errorf("inbound[%d]: duplicate path %q", i, in.Path)
		}
		seen[in.Path] = struct{}{}

		switch in.Protocol {
		case ProtocolVMess, ProtocolVLESS:
			if in.UUIDStr == "" {
				return fmt.Errorf("inbound[%d]: protocol %s requires uuid", i, in.Protocol)
			}
			id, err := uuid.Parse(in.UUIDStr)
			if err != nil {
				return fmt.Errorf("inbound[%d]: invalid uuid: %w", i, err)
			}
			in.UUID = id
		case ProtocolTrojan:
			if in.Password == "" {
				return fmt.Errorf("inbound[%d]: protocol trojan requires password", i)
			}
		case ProtocolBepass:
			// no credential carried in config; bepass auth lives entirely
			// in the request's query string.
		default:
			return fmt.Errorf("inbound[%d]: unknown protocol %q", i, in.Protocol)
		}
	}

	out := &c.Outbound
	for _, m := range out.Match {
		p, err := netip.ParsePrefix(m)
		if err != nil {
			return fmt.Errorf("outbound.match %q: %w", m, err)
		}
		out.Prefixes = append(out.Prefixes, p)
	}
	switch out.Protocol {
	case "":
		// no outbound configured; dispatcher always falls back to Freedom.
	case ProtocolVMess, ProtocolVLESS:
		if out.UUIDStr != "" {
			id, err := uuid.Parse(out.UUIDStr)
			if err != nil {
				return fmt.Errorf("outbound: invalid uuid: %w", err)
			}
			out.UUID = id
		}
	case ProtocolTrojan, ProtocolBepass, ProtocolRelayV1, ProtocolRelayV2, ProtocolBlackhole, ProtocolFreedom:
		// no uuid required
	default:
		return fmt.Errorf("outbound: unknown protocol %q", out.Protocol)
	}
	return nil
}

// FindInbound returns the inbound whose path exactly equals p, or nil.
// Grounded on teacher's exact-match route lookup in internal/ws_api.go.
func (c *Config) FindInbound(path string) *Inbound {
	for i := range c.Inbound {
		if c.Inbound[i].Path == path {
			return &c.Inbound[i]
		}
	}
	return nil
}
