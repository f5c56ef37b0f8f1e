package sim

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every error returned from Config.Validate.
var ErrInvalidConfig = errors.New("invalid simulation config")

// StationConfig groups the parameters of one station.
type StationConfig struct {
	Servers         int     `yaml:"servers"`           // parallel service points (must be > 0)
	MeanServiceTime float64 `yaml:"mean_service_time"` // minutes (must be > 0)
}

// SeedConfig pins individual random streams. Nil fields derive their seed from
// Config.Seed (see PartitionedRNG).
type SeedConfig struct {
	Arrival      *int64 `yaml:"arrival,omitempty"`
	Registration *int64 `yaml:"registration,omitempty"`
	General      *int64 `yaml:"general,omitempty"`
	Specialist   *int64 `yaml:"specialist,omitempty"`
	Class        *int64 `yaml:"class,omitempty"`
}

// Config is everything a run needs. It is supplied once before Initialize and
// never changes during the run.
type Config struct {
	Registration StationConfig `yaml:"registration"`
	General      StationConfig `yaml:"general"`
	Specialist   StationConfig `yaml:"specialist"`

	MeanArrivalInterval float64 `yaml:"mean_arrival_interval"` // minutes between arrivals (must be > 0)
	ServiceVariance     float64 `yaml:"service_variance"`      // variance of every station's Normal service law
	Horizon             float64 `yaml:"horizon"`               // simulated minutes; 0 runs no cycle at all

	Seed  int64      `yaml:"seed"`
	Seeds SeedConfig `yaml:"seeds,omitempty"`

	// Delay is the wall-clock pause between cycles (playback speed).
	// It never changes event order; zero runs as fast as possible.
	Delay time.Duration `yaml:"delay"`
}

// DefaultServiceVariance is the fixed variance of the service-time law.
const DefaultServiceVariance = 6.0

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		Registration:        StationConfig{Servers: 1, MeanServiceTime: 3},
		General:             StationConfig{Servers: 1, MeanServiceTime: 3},
		Specialist:          StationConfig{Servers: 1, MeanServiceTime: 3},
		MeanArrivalInterval: 5,
		ServiceVariance:     DefaultServiceVariance,
		Horizon:             1000,
		Seed:                42,
	}
}

// Station returns the configuration of one station.
// Panics if s is not a station.
func (c *Config) Station(s StationID) StationConfig {
	switch s {
	case StationRegistration:
		return c.Registration
	case StationGeneral:
		return c.General
	case StationSpecialist:
		return c.Specialist
	}
	panic(fmt.Sprintf("Config.Station: %v is not a station", s))
}

// LoadConfig reads and parses a YAML configuration file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
// Fields missing from the file keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects non-positive counts and times.
// A zero horizon is accepted and yields an empty run.
func (c *Config) Validate() error {
	for _, s := range Stations {
		sc := c.Station(s)
		if sc.Servers < 1 {
			return fmt.Errorf("%w: %s.servers must be positive, got %d", ErrInvalidConfig, s, sc.Servers)
		}
		if err := validateFinitePositive(s.String()+".mean_service_time", sc.MeanServiceTime); err != nil {
			return err
		}
	}
	if err := validateFinitePositive("mean_arrival_interval", c.MeanArrivalInterval); err != nil {
		return err
	}
	if err := validateFinitePositive("service_variance", c.ServiceVariance); err != nil {
		return err
	}
	if math.IsNaN(c.Horizon) || math.IsInf(c.Horizon, 0) || c.Horizon < 0 {
		return fmt.Errorf("%w: horizon must be a finite non-negative number, got %v", ErrInvalidConfig, c.Horizon)
	}
	if c.Delay < 0 {
		return fmt.Errorf("%w: delay must be non-negative, got %v", ErrInvalidConfig, c.Delay)
	}
	return nil
}

// rng builds the seed partition described by Seed and Seeds.
func (c *Config) rng() *PartitionedRNG {
	p := NewPartitionedRNG(NewSimulationKey(c.Seed))
	pins := []struct {
		name string
		seed *int64
	}{
		{SubsystemArrival, c.Seeds.Arrival},
		{SubsystemService(StationRegistration), c.Seeds.Registration},
		{SubsystemService(StationGeneral), c.Seeds.General},
		{SubsystemService(StationSpecialist), c.Seeds.Specialist},
		{SubsystemCustomerClass, c.Seeds.Class},
	}
	for _, pin := range pins {
		if pin.seed != nil {
			p.SetSeed(pin.name, *pin.seed)
		}
	}
	return p
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%w: %s must be a finite number, got %f", ErrInvalidConfig, name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %f", ErrInvalidConfig, name, val)
	}
	return nil
}
