package cmd

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tebeka/atexit"
)

// envPrefix namespaces environment overrides, e.g. HOSPITALSIM_HORIZON.
const envPrefix = "HOSPITALSIM"

var (
	logLevel string // Log verbosity level

	// v resolves the simulation configuration from flags, environment and
	// an optional YAML file.
	v = viper.New()
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "hospital-sim",
	Short: "Discrete-event simulator for a three-stage hospital queueing network",
	Long: `hospital-sim simulates customers flowing through registration and then
either a general or a specialist examination before leaving. It reports the
average waiting time and the utilization of every service point.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logLevel)
	},
}

// setupLogging sets the global logrus level from its name.
func setupLogging(name string) error {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindConfigFlags(rootCmd.PersistentFlags(), v)

	rootCmd.SetOut(os.Stdout)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(inspectCmd)
}
