package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type Codec struct {
	Kind        string            `mapstructure:"kind"`
	MimeType    string            `mapstructure:"mime_type"`
	ClockRate   uint32            `mapstructure:"clock_rate"`
	Channels    uint16            `mapstructure:"channels"`
	PayloadType uint8             `mapstructure:"payload_type"`
	Parameters  map[string]string `mapstructure:"parameters"`
}

// Forwarding describes the media server used above the mesh threshold.
// The signaling core only publishes it.
type Forwarding struct {
	RTCMinPort uint16  `mapstructure:"rtc_min_port"`
	RTCMaxPort uint16  `mapstructure:"rtc_max_port"`
	LogLevel   string  `mapstructure:"log_level"`
	Codecs     []Codec `mapstructure:"codecs"`
}

type RateLimit struct {
	Events   int           `mapstructure:"events"`
	Interval time.Duration `mapstructure:"interval"`
}

type Config struct {
	Mode           string        `mapstructure:"mode"`
	LogLevel       string        `mapstructure:"log_level"`
	Port           int           `mapstructure:"port"`
	StaticPath     string        `mapstructure:"static_path"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	Secret         string        `mapstructure:"secret"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	Backpressure   string        `mapstructure:"backpressure"`
	MeshMax        int           `mapstructure:"mesh_max"`
	RateLimit      RateLimit     `mapstructure:"rate_limit"`
	ICEServers     []ICEServer   `mapstructure:"ice_servers"`
	Forwarding     Forwarding    `mapstructure:"forwarding"`

	v *viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", 5001)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "meshcall-dev-secret")
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("backpressure", "kick")
	v.SetDefault("mesh_max", 8)
	v.SetDefault("rate_limit.events", 50)
	v.SetDefault("rate_limit.interval", "1s")
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
	v.SetDefault("forwarding.rtc_min_port", 10000)
	v.SetDefault("forwarding.rtc_max_port", 10100)
	v.SetDefault("forwarding.log_level", "warn")
	v.SetDefault("forwarding.codecs", []map[string]any{
		{"kind": "audio", "mime_type": "audio/opus", "clock_rate": 48000, "channels": 2, "payload_type": 111},
		{"kind": "video", "mime_type": "video/VP8", "clock_rate": 90000, "payload_type": 96,
			"parameters": map[string]string{"x-google-start-bitrate": "1000"}},
	})
}

// Load reads config/config.<CONFIG_ENV>.yaml on top of defaults.
// MESHCALL_* environment variables and any bound flags take precedence.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.SetEnvPrefix("meshcall")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Int("mesh_max", cfg.MeshMax).Msg("config ready")
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.v = v
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.MeshMax <= 0 {
		return fmt.Errorf("mesh_max must be positive: %d", c.MeshMax)
	}
	if c.Forwarding.RTCMinPort > c.Forwarding.RTCMaxPort {
		return fmt.Errorf("forwarding rtc port range inverted: %d > %d", c.Forwarding.RTCMinPort, c.Forwarding.RTCMaxPort)
	}
	return nil
}

// OnChange calls fn with the re-read config whenever the file changes.
// A change that fails to decode is logged and skipped.
func (c *Config) OnChange(fn func(*Config)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := decode(c.v)
		if err != nil {
			log.Error().Err(err).Str("module", "config").Str("file", e.Name).Msg("reload failed")
			return
		}
		log.Info().Str("module", "config").Str("file", e.Name).Msg("config reloaded")
		fn(next)
	})
	c.v.WatchConfig()
}
