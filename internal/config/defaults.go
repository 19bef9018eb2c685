package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultURL              = "wss://arcade.1010819.xyz/game/blackjack/ws"
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultReconnectDelay   = 1 * time.Second
	DefaultPingInterval     = 15 * time.Second
	DefaultReadTimeout      = 30 * time.Second
	DefaultBufferSize       = 256
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
)

// Default returns a config with every default applied.
func Default() *ClientConfig {
	cfg := &ClientConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields.
func (c *ClientConfig) ApplyDefaults() {
	if c.Endpoint.URL == "" {
		c.Endpoint.URL = DefaultURL
	}
	if c.Endpoint.HandshakeTimeout == 0 {
		c.Endpoint.HandshakeTimeout = DefaultHandshakeTimeout
	}

	if c.Connection.ReconnectDelay == 0 {
		c.Connection.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Connection.PingInterval == 0 {
		c.Connection.PingInterval = DefaultPingInterval
	}
	if c.Connection.ReadTimeout == 0 {
		c.Connection.ReadTimeout = DefaultReadTimeout
	}
	if c.Connection.BufferSize == 0 {
		c.Connection.BufferSize = DefaultBufferSize
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
