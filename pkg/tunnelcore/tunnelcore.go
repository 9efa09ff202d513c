// Package tunnelcore provides a small public surface for reusing this
// repository as a library. The implementation lives in internal/ and may
// change without notice. Grounded on teacher's pkg/outlinews/outlinews.go.
package tunnelcore

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bepass-tunl/tunnelcore/internal"
	"github.com/bepass-tunl/tunnelcore/internal/config"
)

// --- Config ---

type Config = config.Config

// LoadConfigFile loads a TOML configuration file.
func LoadConfigFile(path string) (Config, error) { return config.LoadConfigFile(path) }

// LoadConfigBytes parses an in-memory TOML document, as used by a binary
// that embeds its config at build time.
func LoadConfigBytes(data []byte) (Config, error) { return config.LoadConfigBytes(data) }

// --- Core runtime ---

type Dispatcher = internal.Dispatcher

func NewDispatcher(cfg *Config) *Dispatcher { return internal.NewDispatcher(cfg) }

type Tunnel = internal.Tunnel

func NewTunnel(dispatcher *Dispatcher, logger *zap.Logger) *Tunnel {
	return internal.NewTunnel(dispatcher, internal.NewDialer(), logger)
}

// NewRouter builds the HTTP handler serving /link and every configured
// inbound path.
func NewRouter(cfg *Config, tunnel *Tunnel, logger *zap.Logger) http.Handler {
	return internal.NewRouter(cfg, tunnel, logger)
}
