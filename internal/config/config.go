package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/spf13/viper"

	"github.com/dgallion1/mdrender/internal/highlight"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Request limits
	MaxSourceBytes int64

	// Job state
	JobTTL time.Duration

	// Rendering
	TOCDefault     bool
	AllowHTML      bool
	HighlightStyle string

	// Latency stats window
	StatsWindow time.Duration
}

const (
	defaultPort           = "8090"
	defaultWorkerCount    = 4
	defaultMaxQueueSize   = 100
	defaultMaxSourceBytes = 2 << 20 // 2MB
	defaultJobTTL         = time.Hour
	defaultStatsWindow    = time.Hour
)

// New returns a viper instance with defaults, the MDRENDER_ environment
// prefix and the config file search path set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", defaultPort)
	v.SetDefault("api_key", "")
	v.SetDefault("worker_count", defaultWorkerCount)
	v.SetDefault("max_queue_size", defaultMaxQueueSize)
	v.SetDefault("max_source_bytes", defaultMaxSourceBytes)
	v.SetDefault("job_ttl", defaultJobTTL)
	v.SetDefault("toc_default", false)
	v.SetDefault("allow_html", false)
	v.SetDefault("highlight_style", highlight.DefaultStyle)
	v.SetDefault("stats_window", defaultStatsWindow)

	v.SetConfigName("mdrender")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "mdrender"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("MDRENDER")
	v.AutomaticEnv()
	return v
}

// Load reads configuration from the environment and an optional config file.
func Load() Config {
	v := New()
	// A missing or malformed file leaves defaults and env in place.
	_ = v.ReadInConfig()
	return FromViper(v)
}

// FromViper builds a Config from v, clamping invalid values to defaults.
func FromViper(v *viper.Viper) Config {
	cfg := Config{
		Port:           v.GetString("port"),
		APIKey:         v.GetString("api_key"),
		WorkerCount:    v.GetInt("worker_count"),
		MaxQueueSize:   v.GetInt("max_queue_size"),
		MaxSourceBytes: v.GetInt64("max_source_bytes"),
		JobTTL:         v.GetDuration("job_ttl"),
		TOCDefault:     v.GetBool("toc_default"),
		AllowHTML:      v.GetBool("allow_html"),
		HighlightStyle: v.GetString("highlight_style"),
		StatsWindow:    v.GetDuration("stats_window"),
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultWorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = defaultMaxQueueSize
	}
	if cfg.MaxSourceBytes <= 0 {
		cfg.MaxSourceBytes = defaultMaxSourceBytes
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = defaultJobTTL
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = defaultStatsWindow
	}
	if cfg.HighlightStyle == "" {
		cfg.HighlightStyle = highlight.DefaultStyle
	}
	return cfg
}

func (c Config) Validate() error {
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("port %q is not a valid TCP port", c.Port)
	}
	if _, ok := styles.Registry[c.HighlightStyle]; !ok {
		return fmt.Errorf("unknown highlight_style %q", c.HighlightStyle)
	}
	return nil
}
