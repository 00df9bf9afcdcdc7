package simulation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/flock"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnsupportedFormat is returned for config files that are neither JSON, TOML nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported config format")
	// ErrInvalidConfig wraps schema violations and forbidden runtime changes.
	ErrInvalidConfig = errors.New("invalid config")
)

// MaxAgents is the largest population a config, a flag or a recording may describe.
const MaxAgents = 20000

//go:embed config.schema.json
var configSchema string

var schema = jsonschema.MustCompileString("config.schema.json", configSchema)

type SeekConfig struct {
	MaxForce float64 `json:"maxForce"`
}

type RangeConfig struct {
	EffectiveRange float64 `json:"effectiveRange"`
	MaxForce       float64 `json:"maxForce"`
}

type CohesionConfig struct {
	EffectiveRange float64 `json:"effectiveRange"`
}

type ContainerConfig struct {
	Radius              float64 `json:"radius"`
	AgentBoundingRadius float64 `json:"agentBoundingRadius"`
	MaxForce            float64 `json:"maxForce"`
}

// Config holds everything needed to build and drive a flock.
// AgentCount and Seed only matter when the population is created.
type Config struct {
	// Population
	AgentCount int    `json:"agentCount"`
	Seed       uint64 `json:"seed"`

	// Agent kinematics
	MaxSpeed         float64 `json:"maxSpeed"`
	LookAhead        float64 `json:"lookAhead"`
	OrientationBlend float64 `json:"orientationBlend"`

	// Behaviours
	Seek      SeekConfig      `json:"seek"`
	Align     RangeConfig     `json:"align"`
	Separate  RangeConfig     `json:"separate"`
	Cohesion  CohesionConfig  `json:"cohesion"`
	Container ContainerConfig `json:"container"`

	UpdateMode string `json:"updateMode"` // "snapshot" or "sequential"

	// Drivers
	TickRate int    `json:"tickRate"` // ticks per second
	LogLevel string `json:"logLevel"`
}

// DefaultConfig is the reference school: 300 agents at 60 ticks per second.
func DefaultConfig() *Config {
	s := flock.DefaultSettings()
	return &Config{
		AgentCount:       300,
		Seed:             1,
		MaxSpeed:         s.MaxSpeed,
		LookAhead:        s.LookAhead,
		OrientationBlend: s.OrientationBlend,
		Seek:             SeekConfig{MaxForce: s.Seek.MaxForce},
		Align:            RangeConfig{EffectiveRange: s.Align.EffectiveRange, MaxForce: s.Align.MaxForce},
		Separate:         RangeConfig{EffectiveRange: s.Separate.EffectiveRange, MaxForce: s.Separate.MaxForce},
		Cohesion:         CohesionConfig{EffectiveRange: s.Cohesion.EffectiveRange},
		Container: ContainerConfig{
			Radius:              s.Container.Radius,
			AgentBoundingRadius: s.Container.AgentBoundingRadius,
			MaxForce:            s.Container.MaxForce,
		},
		UpdateMode: string(s.Mode),
		TickRate:   60,
		LogLevel:   "info",
	}
}

// LoadConfig reads a JSON, TOML or YAML file, validates it against the
// embedded schema and overlays it on DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	var decode func([]byte, any) error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		decode = json.Unmarshal
	case ".toml":
		decode = toml.Unmarshal
	case ".yaml", ".yml":
		decode = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var raw map[string]any
	if err := decode(b, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := cfg.merge(raw); err != nil {
		return nil, err
	}
	if _, err := cfg.Settings(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overlays a partial document, keyed like the config file, after the
// same schema and settings checks a file goes through. c is untouched on error.
func (c *Config) Merge(values map[string]any) error {
	next := *c
	if err := next.merge(values); err != nil {
		return err
	}
	if _, err := next.Settings(); err != nil {
		return err
	}
	*c = next
	return nil
}

// merge validates a partial document and decodes it over cfg.
func (c *Config) merge(raw map[string]any) error {
	// TOML and YAML decode to their own number types; a JSON round trip
	// leaves only what the schema validator understands.
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to normalise config: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("failed to normalise config: %w", err)
	}
	if doc == nil {
		return nil
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := json.Unmarshal(b, c); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// Settings converts the behaviour part of the config and validates it.
func (c *Config) Settings() (flock.Settings, error) {
	s := flock.Settings{
		MaxSpeed:         c.MaxSpeed,
		LookAhead:        c.LookAhead,
		OrientationBlend: c.OrientationBlend,
		Seek:             flock.SeekSettings{MaxForce: c.Seek.MaxForce},
		Align:            flock.RangeSettings{EffectiveRange: c.Align.EffectiveRange, MaxForce: c.Align.MaxForce},
		Separate:         flock.RangeSettings{EffectiveRange: c.Separate.EffectiveRange, MaxForce: c.Separate.MaxForce},
		Cohesion:         flock.CohesionSettings{EffectiveRange: c.Cohesion.EffectiveRange},
		Container: flock.ContainerSettings{
			Radius:              c.Container.Radius,
			AgentBoundingRadius: c.Container.AgentBoundingRadius,
			MaxForce:            c.Container.MaxForce,
		},
		Mode: flock.UpdateMode(c.UpdateMode),
	}
	if err := s.Validate(); err != nil {
		return flock.Settings{}, err
	}
	return s, nil
}

// ApplyOverrides returns a copy of c with the runtime overrides applied.
// The population cannot change after start, so agentCount and seed are refused.
func (c *Config) ApplyOverrides(o *structpb.Struct) (*Config, error) {
	raw := o.AsMap()
	for _, k := range []string{"agentCount", "seed"} {
		if _, ok := raw[k]; ok {
			return nil, fmt.Errorf("%w: %s cannot change at runtime", ErrInvalidConfig, k)
		}
	}
	next := *c
	if err := next.merge(raw); err != nil {
		return nil, err
	}
	if _, err := next.Settings(); err != nil {
		return nil, err
	}
	return &next, nil
}

// NewFlock builds the initial population described by c.
func NewFlock(c *Config) (*flock.Flock, error) {
	s, err := c.Settings()
	if err != nil {
		return nil, err
	}
	agents := flock.NewPopulation(c.AgentCount, c.MaxSpeed, flock.NewRand(c.Seed))
	return flock.New(agents, s)
}
