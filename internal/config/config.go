package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/eigerco/pcbridge/internal/mcepoch"
	"github.com/eigerco/pcbridge/internal/stableblock"
	"github.com/eigerco/pcbridge/pkg/log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Supported raw block sources.
const (
	SourceSQLite = "sqlite"
	SourcePebble = "pebble"
)

type Config struct {
	Mainchain mcepoch.Config `koanf:"mc"`
	// SecurityParameter is the mainchain k.
	SecurityParameter uint32 `koanf:"cardano_security_parameter"`
	// ActiveSlotsCoeff is the mainchain f, in (0, 1].
	ActiveSlotsCoeff float64 `koanf:"cardano_active_slots_coeff"`
	StabilityMargin  uint32  `koanf:"block_stability_margin"`
	CacheSize        uint32  `koanf:"cache_size"`
	// PartnerSlotDurationMillis is the slot duration of the partner chain.
	PartnerSlotDurationMillis uint64 `koanf:"sc_slot_duration_millis"`
	BlockSource               string `koanf:"block_source"`
	DBPath                    string `koanf:"db_path"`
	// HeaderDBPath is the pebble directory holding partner chain headers
	// when the block source is not pebble itself.
	HeaderDBPath string `koanf:"header_db_path"`
	LogLevel     string `koanf:"log_level"`
	LogFormat    string `koanf:"log_format"`
}

func Default() Config {
	return Config{
		Mainchain: mcepoch.Config{
			SlotDurationMillis: 1000,
		},
		CacheSize:                 stableblock.DefaultCacheSize,
		PartnerSlotDurationMillis: 6000,
		BlockSource:               SourceSQLite,
		DBPath:                    "pcbridge.db",
		HeaderDBPath:              "pcbridge-headers",
		LogLevel:                  "info",
		LogFormat:                 "console",
	}
}

// topLevelKeys lists the environment variables, lowercased, that are
// read into the config. Nested keys use a double underscore, MC__SLOT_DURATION_MILLIS.
var topLevelKeys = map[string]struct{}{
	"mc":                         {},
	"cardano_security_parameter": {},
	"cardano_active_slots_coeff": {},
	"block_stability_margin":     {},
	"cache_size":                 {},
	"sc_slot_duration_millis":    {},
	"block_source":               {},
	"db_path":                    {},
	"header_db_path":             {},
	"log_level":                  {},
	"log_format":                 {},
}

// envKey maps an environment variable name to a config key, or to the empty
// string when the variable is not part of the config.
func envKey(s string) string {
	key := strings.ReplaceAll(strings.ToLower(s), "__", ".")
	top, _, _ := strings.Cut(key, ".")
	if _, ok := topLevelKeys[top]; !ok {
		return ""
	}
	if top == "mc" && !strings.Contains(key, ".") {
		return ""
	}
	return key
}

// Load reads the defaults, then the YAML file at path when path is not
// empty, then the environment. Later sources override earlier ones.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Mainchain.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.SecurityParameter == 0 {
		return fmt.Errorf("%w: cardano security parameter is zero", ErrInvalidConfig)
	}
	if !(c.ActiveSlotsCoeff > 0 && c.ActiveSlotsCoeff <= 1) {
		return fmt.Errorf("%w: active slots coefficient %v is outside (0, 1]", ErrInvalidConfig, c.ActiveSlotsCoeff)
	}
	if c.CacheSize == 0 {
		return fmt.Errorf("%w: cache size is zero", ErrInvalidConfig)
	}
	if c.PartnerSlotDurationMillis == 0 {
		return fmt.Errorf("%w: partner chain slot duration is zero", ErrInvalidConfig)
	}
	switch c.BlockSource {
	case SourceSQLite, SourcePebble:
	default:
		return fmt.Errorf("%w: unknown block source %q", ErrInvalidConfig, c.BlockSource)
	}
	if _, err := log.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := log.ParseLoggerType(c.LogFormat); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// StabilityWindow returns the window of ages a referenced mainchain block
// may have.
func (c Config) StabilityWindow() (stableblock.Window, error) {
	return stableblock.NewWindow(c.Mainchain.SlotDuration(), c.SecurityParameter, c.ActiveSlotsCoeff)
}

func (c Config) PartnerSlotDuration() time.Duration {
	return time.Duration(c.PartnerSlotDurationMillis) * time.Millisecond
}

// SourceConfig builds the stable block source parameters.
func (c Config) SourceConfig() (stableblock.Config, error) {
	w, err := c.StabilityWindow()
	if err != nil {
		return stableblock.Config{}, err
	}
	return stableblock.Config{
		SecurityParameter: c.SecurityParameter,
		StabilityMargin:   c.StabilityMargin,
		CacheSize:         c.CacheSize,
		Window:            w,
		Epochs:            c.Mainchain,
	}, nil
}

func (c Config) LogOptions() (log.Options, error) {
	level, err := log.ParseLogLevel(c.LogLevel)
	if err != nil {
		return log.Options{}, err
	}
	typ, err := log.ParseLoggerType(c.LogFormat)
	if err != nil {
		return log.Options{}, err
	}
	return log.Options{LogLevel: level, Type: typ}, nil
}
