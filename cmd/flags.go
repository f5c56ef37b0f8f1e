package cmd

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	sim "github.com/hospital-sim/hospital-sim/sim"
)

// configKey ties a viper key (the same path as in the YAML file) to the flag
// that sets it and to the Config field it overrides.
type configKey struct {
	key   string
	flag  string
	apply func(v *viper.Viper, key string, cfg *sim.Config)
}

var configKeys = []configKey{
	{"registration.servers", "registration-servers", func(v *viper.Viper, k string, c *sim.Config) { c.Registration.Servers = v.GetInt(k) }},
	{"general.servers", "general-servers", func(v *viper.Viper, k string, c *sim.Config) { c.General.Servers = v.GetInt(k) }},
	{"specialist.servers", "specialist-servers", func(v *viper.Viper, k string, c *sim.Config) { c.Specialist.Servers = v.GetInt(k) }},
	{"registration.mean_service_time", "registration-service-time", func(v *viper.Viper, k string, c *sim.Config) {
		c.Registration.MeanServiceTime = v.GetFloat64(k)
	}},
	{"general.mean_service_time", "general-service-time", func(v *viper.Viper, k string, c *sim.Config) { c.General.MeanServiceTime = v.GetFloat64(k) }},
	{"specialist.mean_service_time", "specialist-service-time", func(v *viper.Viper, k string, c *sim.Config) {
		c.Specialist.MeanServiceTime = v.GetFloat64(k)
	}},
	{"mean_arrival_interval", "arrival-interval", func(v *viper.Viper, k string, c *sim.Config) { c.MeanArrivalInterval = v.GetFloat64(k) }},
	{"service_variance", "service-variance", func(v *viper.Viper, k string, c *sim.Config) { c.ServiceVariance = v.GetFloat64(k) }},
	{"horizon", "horizon", func(v *viper.Viper, k string, c *sim.Config) { c.Horizon = v.GetFloat64(k) }},
	{"seed", "seed", func(v *viper.Viper, k string, c *sim.Config) { c.Seed = v.GetInt64(k) }},
	{"delay", "delay", func(v *viper.Viper, k string, c *sim.Config) { c.Delay = v.GetDuration(k) }},
	{"seeds.arrival", "seed-arrival", func(v *viper.Viper, k string, c *sim.Config) { c.Seeds.Arrival = int64Ptr(v.GetInt64(k)) }},
	{"seeds.registration", "seed-registration", func(v *viper.Viper, k string, c *sim.Config) { c.Seeds.Registration = int64Ptr(v.GetInt64(k)) }},
	{"seeds.general", "seed-general", func(v *viper.Viper, k string, c *sim.Config) { c.Seeds.General = int64Ptr(v.GetInt64(k)) }},
	{"seeds.specialist", "seed-specialist", func(v *viper.Viper, k string, c *sim.Config) { c.Seeds.Specialist = int64Ptr(v.GetInt64(k)) }},
	{"seeds.class", "seed-class", func(v *viper.Viper, k string, c *sim.Config) { c.Seeds.Class = int64Ptr(v.GetInt64(k)) }},
}

func int64Ptr(x int64) *int64 { return &x }

// bindConfigFlags defines the configuration flags on fs and binds each one to
// its viper key.
func bindConfigFlags(fs *pflag.FlagSet, v *viper.Viper) {
	d := sim.DefaultConfig()

	fs.String("config", "", "YAML configuration file; flags and HOSPITALSIM_* variables override it")

	// Stations
	fs.Int("registration-servers", d.Registration.Servers, "Service points at registration")
	fs.Int("general-servers", d.General.Servers, "Service points at general examination")
	fs.Int("specialist-servers", d.Specialist.Servers, "Service points at specialist examination")
	fs.Float64("registration-service-time", d.Registration.MeanServiceTime, "Mean registration service time (minutes)")
	fs.Float64("general-service-time", d.General.MeanServiceTime, "Mean general examination time (minutes)")
	fs.Float64("specialist-service-time", d.Specialist.MeanServiceTime, "Mean specialist examination time (minutes)")
	fs.Float64("service-variance", d.ServiceVariance, "Variance of the Normal service-time law")

	// Workload and run
	fs.Float64("arrival-interval", d.MeanArrivalInterval, "Mean time between arrivals (minutes)")
	fs.Float64("horizon", d.Horizon, "Simulated minutes to run")
	fs.Duration("delay", d.Delay, "Wall-clock pause between cycles")

	// Seeds
	fs.Int64("seed", d.Seed, "Master seed; streams without an explicit seed derive from it")
	fs.Int64("seed-arrival", 0, "Seed of the interarrival stream")
	fs.Int64("seed-registration", 0, "Seed of the registration service stream")
	fs.Int64("seed-general", 0, "Seed of the general examination service stream")
	fs.Int64("seed-specialist", 0, "Seed of the specialist examination service stream")
	fs.Int64("seed-class", 0, "Seed of the customer class stream")

	if err := v.BindPFlag("config", fs.Lookup("config")); err != nil {
		panic(err)
	}
	for _, ck := range configKeys {
		if err := v.BindPFlag(ck.key, fs.Lookup(ck.flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", ck.flag, err))
		}
	}
}

// resolveConfig builds the run configuration. Precedence, lowest first:
// defaults, the --config file, HOSPITALSIM_* variables, explicit flags.
// Flag defaults never override a value from the file.
func resolveConfig(v *viper.Viper) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if path := v.GetString("config"); path != "" {
		loaded, err := sim.LoadConfig(path)
		if err != nil {
			return sim.Config{}, err
		}
		cfg = loaded
	}
	for _, ck := range configKeys {
		if v.IsSet(ck.key) {
			ck.apply(v, ck.key, &cfg)
		}
	}
	if err := cfg.Validate(); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}
