// Package config provides the bootstrap configuration schema for
// multiplex: server transport options, the router table and its
// separators, and the logging sink.
package config

import "gopkg.in/yaml.v3"

// Config is the top-level bootstrap configuration multiplex accepts.
type Config struct {
	// Server configures the listening socket and, when any of
	// Key/Cert/Pfx is set, TLS mode.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Router configures the route table consumed by internal/routing.
	Router RouterConfig `yaml:"router" mapstructure:"router"`

	// Log configures the logging sink.
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the multiplexed listener's transport.
// Presence of Key/Cert or Pfx switches the gateway into TLS mode.
type ServerConfig struct {
	// Addr is the address to listen on (e.g. "127.0.0.1:8443", ":8443").
	// Defaults to "127.0.0.1:8443" if empty.
	Addr string `yaml:"addr" mapstructure:"addr" validate:"omitempty,hostname_port"`

	// Key is the path to a PEM private key. Requires Cert.
	Key string `yaml:"key" mapstructure:"key"`
	// Cert is the path to a PEM certificate chain. Requires Key.
	Cert string `yaml:"cert" mapstructure:"cert"`
	// Pfx is the path to a PKCS#12 bundle, an alternative to Key/Cert.
	Pfx string `yaml:"pfx" mapstructure:"pfx"`

	// MinVersion is the minimum negotiated TLS version, e.g. "TLSv1.2".
	MinVersion string `yaml:"minVersion" mapstructure:"minVersion" validate:"omitempty,oneof=TLSv1.2 TLSv1.3"`
	// MaxVersion is the maximum negotiated TLS version, e.g. "TLSv1.3".
	MaxVersion string `yaml:"maxVersion" mapstructure:"maxVersion" validate:"omitempty,oneof=TLSv1.2 TLSv1.3"`

	// KeepAliveTimeoutMS is the HTTP/1.1 idle-connection timeout in
	// milliseconds, applied as the transport's native idle timeout and
	// surfaced to clients as "Keep-Alive: timeout=<seconds>". Defaults
	// to 300000 (5 minutes) if unset.
	KeepAliveTimeoutMS int `yaml:"keepAliveTimeout" mapstructure:"keepAliveTimeout" validate:"omitempty,gt=0"`
}

// TLSMode reports whether any transport option requires TLS.
func (s ServerConfig) TLSMode() bool {
	return s.Key != "" || s.Cert != "" || s.Pfx != ""
}

// RouterConfig configures the external Router.
type RouterConfig struct {
	// Routes is the raw route table, keyed by criteria string, each
	// entry keyed by a reserved prefix: "method.<verb>|*",
	// "accept.<media>", "content-type.<media>". Left as a raw
	// map here and not read by the gateway: the router's
	// routing.Table is built only from dispatchers the embedder
	// supplies (gateway.WithRoutes, Server.Register).
	Routes map[string]map[string]any `yaml:"routes" mapstructure:"routes"`

	// Seperators is passed through to the Router verbatim — the
	// spelling is deliberate, not a typo, and is never "corrected"
	// on the wire or in code since embedders configure it by this
	// exact key.
	Seperators []string `yaml:"seperators" mapstructure:"seperators"`
}

// LogConfig configures the logging sink.
type LogConfig struct {
	// Mute silences everything below Error.
	Mute bool `yaml:"mute" mapstructure:"mute"`
}

// SetDefaults applies sensible default values to the configuration.
func (c *Config) SetDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8443"
	}
	if c.Server.MinVersion == "" {
		c.Server.MinVersion = "TLSv1.2"
	}
	if c.Server.MaxVersion == "" {
		c.Server.MaxVersion = "TLSv1.3"
	}
	if c.Server.KeepAliveTimeoutMS == 0 {
		c.Server.KeepAliveTimeoutMS = 300000
	}
}

// Dump renders the effective configuration as YAML, the same shape
// operators hand-author in multiplex.yaml.
func (c *Config) Dump() ([]byte, error) {
	return yaml.Marshal(c)
}
