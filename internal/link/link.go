// Package link formats subscription links for the /link HTTP route. Pure
// string templating from config — no network or crypto — grounded on
// original_source/src/link.rs, generalized from that source's fixed
// single-outbound VLESS/VMess pair to the spec's full inbound list
// (VMess, VLESS, Trojan; Bepass has no standard client link format and is
// skipped).
package link

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/bepass-tunl/tunnelcore/internal/config"
)

const linkName = "tunnelcore"

// Generate builds one subscription link per inbound that has a
// client-importable format, rendered against host (the request's Host
// header).
func Generate(cfg *config.Config, host string) []string {
	links := make([]string, 0, len(cfg.Inbound))
	for _, in := range cfg.Inbound {
		switch in.Protocol {
		case config.ProtocolVLESS:
			links = append(links, vlessLink(in, host))
		case config.ProtocolVMess:
			links = append(links, vmessLink(in, host))
		case config.ProtocolTrojan:
			links = append(links, trojanLink(in, host))
		}
	}
	return links
}

func vlessLink(in config.Inbound, host string) string {
	return fmt.Sprintf(
		"vless://%s@%s:443?type=ws&path=%s&security=tls#%s",
		in.UUID.String(), host, url.QueryEscape(in.Path), linkName,
	)
}

func trojanLink(in config.Inbound, host string) string {
	return fmt.Sprintf(
		"trojan://%s@%s:443?type=ws&path=%s&security=tls#%s",
		url.QueryEscape(in.Password), host, url.QueryEscape(in.Path), linkName,
	)
}

type vmessLinkConfig struct {
	PS   string `json:"ps"`
	V    string `json:"v"`
	Add  string `json:"add"`
	Port string `json:"port"`
	ID   string `json:"id"`
	Aid  string `json:"aid"`
	Scy  string `json:"scy"`
	Net  string `json:"net"`
	Type string `json:"type"`
	Host string `json:"host"`
	Path string `json:"path"`
	TLS  string `json:"tls"`
	SNI  string `json:"sni"`
	ALPN string `json:"alpn"`
}

func vmessLink(in config.Inbound, host string) string {
	cfg := vmessLinkConfig{
		PS:   linkName,
		V:    "2",
		Add:  host,
		Port: "443",
		ID:   in.UUID.String(),
		Aid:  "0",
		Scy:  "zero",
		Net:  "ws",
		Type: "none",
		Host: host,
		Path: in.Path,
		TLS:  "tls",
	}
	encoded, _ := json.Marshal(cfg)
	return "vmess://" + base64.URLEncoding.EncodeToString(encoded)
}
