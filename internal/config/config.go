package config

import "time"

// Config is the root configuration for a bookwatch instance.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Stream  StreamConfig  `yaml:"stream"`
	Book    BookConfig    `yaml:"book"`
	Market  MarketConfig  `yaml:"market"`
	Display DisplayConfig `yaml:"display"`
	Poller  PollerConfig  `yaml:"poller"`
	Archive ArchiveConfig `yaml:"archive"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig holds Polymarket endpoints.
type APIConfig struct {
	GammaURL   string        `yaml:"gamma_url"`
	CLOBURL    string        `yaml:"clob_url"`
	WSURL      string        `yaml:"ws_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// StreamConfig holds market-channel session settings.
type StreamConfig struct {
	PingInterval       time.Duration `yaml:"ping_interval"`
	PongTimeout        time.Duration `yaml:"pong_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	BufferSize         int           `yaml:"buffer_size"`
}

// BookConfig holds order book settings.
type BookConfig struct {
	Depth int `yaml:"depth"`
	// ClearBestOnEmptySnapshot clears a side's best price when a snapshot
	// empties that side. Off by default: the last best price is kept.
	ClearBestOnEmptySnapshot bool `yaml:"clear_best_on_empty_snapshot"`
}

// MarketConfig selects what to stream.
type MarketConfig struct {
	EventURL   string `yaml:"event_url"`
	MarketSlug string `yaml:"market_slug"`
	DateText   string `yaml:"date_text"`
}

// DisplayConfig holds console sink settings.
type DisplayConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Headless        bool          `yaml:"headless"`
}

// PollerConfig holds REST resync settings. A zero interval disables it.
type PollerConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
}

// ArchiveConfig holds the top-of-book archive settings.
type ArchiveConfig struct {
	Enabled       bool          `yaml:"enabled"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	Database      DBConfig      `yaml:"database"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// MetricsConfig holds the /metrics and /health listener settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}
