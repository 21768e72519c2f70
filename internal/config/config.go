package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// Game tuning.
	WinThreshold      int           `mapstructure:"win_threshold" yaml:"win_threshold"`
	RevealDelay       time.Duration `mapstructure:"reveal_delay" yaml:"reveal_delay"`
	RoomShutdownDelay time.Duration `mapstructure:"room_shutdown_delay" yaml:"room_shutdown_delay"`
	BotThinkDelay     time.Duration `mapstructure:"bot_think_delay" yaml:"bot_think_delay"`

	// Creature source.
	PokeAPIBaseURL string        `mapstructure:"pokeapi_base_url" yaml:"pokeapi_base_url"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout" yaml:"fetch_timeout"`
}

// Default returns configuration with reasonable starter defaults. The room
// shutdown delay is deliberately long: a player closing a laptop overnight
// should still find the match in the morning.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		WinThreshold:      3,
		RevealDelay:       6 * time.Second,
		RoomShutdownDelay: 24 * time.Hour,
		BotThinkDelay:     1500 * time.Millisecond,
		PokeAPIBaseURL:    "https://pokeapi.co/api/v2",
		FetchTimeout:      10 * time.Second,
	}
}
