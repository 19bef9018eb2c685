package config

import "time"

// ClientConfig is the root configuration for the blackjack client.
type ClientConfig struct {
	Endpoint   EndpointConfig   `yaml:"endpoint"`
	Connection ConnectionConfig `yaml:"connection"`
	Log        LogConfig        `yaml:"log"`
}

// EndpointConfig holds the game server WebSocket settings.
type EndpointConfig struct {
	URL              string        `yaml:"url"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	Origin           string        `yaml:"origin"` // Optional Origin header
}

// ConnectionConfig holds reconnect loop settings.
type ConnectionConfig struct {
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	ReadTimeout    time.Duration `yaml:"read_timeout"` // Stale after this long without any frame
	BufferSize     int           `yaml:"buffer_size"`
}

// LogConfig holds slog handler settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}
