package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultBoundarySource is the public federal-state boundary file at its
// lowest resolution.
const DefaultBoundarySource = "https://raw.githubusercontent.com/isellsoap/deutschlandGeoJSON/master/2_bundeslaender/4_niedrig.geo.json"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Data sources. Either may be an http(s) URL or a local path.
	BoundarySource string
	DataDir        string

	// Viewport and legend geometry, in pixels.
	MapWidth    int
	MapHeight   int
	LegendWidth int

	// Year selector range, inclusive.
	YearFirst int
	YearLast  int

	// Remote fetch settings.
	FetchTimeout   time.Duration
	FetchCacheSize int

	// Interaction event stream.
	EventsEnabled      bool
	KafkaBrokers       []string
	KafkaEventsTopic   string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "10s"))
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	ints := map[string]int{}
	for _, spec := range []struct {
		key string
		def int
		min int
	}{
		{"MAP_WIDTH", 400, 1},
		{"MAP_HEIGHT", 600, 1},
		{"LEGEND_WIDTH", 400, 1},
		{"YEAR_FIRST", 1991, 0},
		{"YEAR_LAST", 2019, 0},
		{"FETCH_CACHE_SIZE", 16, 1},
	} {
		v, err := parseInt(spec.key, spec.def, spec.min)
		if err != nil {
			return nil, err
		}
		ints[spec.key] = v
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	eventsEnabled := brokers != ""
	if v := os.Getenv("EVENTS_ENABLED"); v != "" {
		eventsEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		BoundarySource: sharedcfg.EnvOrDefault("BOUNDARY_SOURCE", DefaultBoundarySource),
		DataDir:        sharedcfg.EnvOrDefault("DATA_DIR", "./data"),

		MapWidth:    ints["MAP_WIDTH"],
		MapHeight:   ints["MAP_HEIGHT"],
		LegendWidth: ints["LEGEND_WIDTH"],
		YearFirst:   ints["YEAR_FIRST"],
		YearLast:    ints["YEAR_LAST"],

		FetchTimeout:   fetchTimeout,
		FetchCacheSize: ints["FETCH_CACHE_SIZE"],

		EventsEnabled:      eventsEnabled,
		KafkaEventsTopic:   sharedcfg.EnvOrDefault("KAFKA_EVENTS_TOPIC", "choropleth-interactions"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}
	if brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if cfg.YearLast < cfg.YearFirst {
		return nil, fmt.Errorf("YEAR_LAST (%d) is before YEAR_FIRST (%d)", cfg.YearLast, cfg.YearFirst)
	}
	if strings.TrimSpace(cfg.BoundarySource) == "" {
		return nil, errors.New("BOUNDARY_SOURCE is required")
	}
	if cfg.EventsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("EVENTS_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.EventsEnabled && cfg.KafkaEventsTopic == "" {
		return nil, errors.New("KAFKA_EVENTS_TOPIC is required when events are enabled")
	}

	return cfg, nil
}

// Years returns the selector years, ascending.
func (c *Config) Years() []int {
	years := make([]int, 0, c.YearLast-c.YearFirst+1)
	for y := c.YearFirst; y <= c.YearLast; y++ {
		years = append(years, y)
	}
	return years
}

func parseInt(key string, def, min int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < min {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}
