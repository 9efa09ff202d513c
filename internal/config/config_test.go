package config

import "testing"

func TestLoadConfigBytesValid(t *testing.T) {
	doc := []byte(`
[[inbound]]
protocol = "vless"
uuid = "0fbf4f81-2598-4b6a-a623-0ead4cb9efa8"
path = "/vless"

[outbound]
protocol = "relay_v2"
match = ["10.0.0.0/8"]
addresses = ["relay.example"]
port = 9000
`)
	cfg, err := LoadConfigBytes(doc)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Inbound) != 1 || cfg.Inbound[0].Path != "/vless" {
		t.Fatalf("unexpected inbound: %+v", cfg.Inbound)
	}
	if len(cfg.Outbound.Prefixes) != 1 {
		t.Fatalf("expected one resolved CIDR prefix, got %d", len(cfg.Outbound.Prefixes))
	}
}

// TestLoadConfigBytesInvalidFallsBack mirrors spec §3's invariant: invalid
// TOML yields the default (empty) config rather than aborting the caller.
func TestLoadConfigBytesInvalidFallsBack(t *testing.T) {
	cfg, err := LoadConfigBytes([]byte("not valid toml {{{"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if len(cfg.Inbound) != 0 || cfg.Outbound.Protocol != "" {
		t.Fatalf("expected empty fallback config, got %+v", cfg)
	}
}

func TestValidateRejectsDuplicatePath(t *testing.T) {
	cfg := Config{
		Inbound: []Inbound{
			{Protocol: ProtocolBepass, Path: "/dup"},
			{Protocol: ProtocolBepass, Path: "/dup"},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected duplicate path rejection")
	}
}

func TestValidateRequiresUUIDForVless(t *testing.T) {
	cfg := Config{Inbound: []Inbound{{Protocol: ProtocolVLESS, Path: "/x"}}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected missing uuid rejection")
	}
}

func TestFindInboundExactMatch(t *testing.T) {
	cfg := Config{Inbound: []Inbound{{Protocol: ProtocolBepass, Path: "/bepass"}}}
	if cfg.FindInbound("/bepass") == nil {
		t.Fatal("expected match")
	}
	if cfg.FindInbound("/other") != nil {
		t.Fatal("expected no match")
	}
}
