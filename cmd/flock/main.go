// Command flock runs the 3D flocking simulation headless, in a window or in a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	golog "github.com/tochemey/goakt/v3/log"
)

const envPrefix = "FLOCK"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(viper.New()).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flags and FLOCK_* variables land in v.
func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flock",
		Short: "3D boids flocking simulation",
		Long: `Simulates a school of agents steering by alignment, separation and cohesion
inside a spherical container, driven by an actor system.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (.json, .toml, .yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (overrides the config)")
	rootCmd.PersistentFlags().Uint64("seed", 0, "population seed (overrides the config)")
	rootCmd.PersistentFlags().Int("agents", 0, "number of agents (overrides the config)")
	for _, name := range []string{"config", "log-level", "seed", "agents"} {
		_ = v.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(
		runCmd(v),
		viewCmd(v),
		tuiCmd(v),
		inspectCmd(),
	)
	return rootCmd
}

// loadConfig reads the config file, if any, then applies flag and
// environment overrides.
func loadConfig(v *viper.Viper) (*simulation.Config, error) {
	cfg := simulation.DefaultConfig()
	if path := v.GetString("config"); path != "" {
		loaded, err := simulation.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	flags := map[string]any{}
	if v.IsSet("log-level") && v.GetString("log-level") != "" {
		flags["logLevel"] = v.GetString("log-level")
	}
	if v.IsSet("seed") {
		flags["seed"] = v.GetUint64("seed")
	}
	if v.IsSet("agents") {
		flags["agentCount"] = v.GetInt("agents")
	}
	if err := cfg.Merge(flags); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *simulation.Config) (golog.Logger, error) {
	return simulation.NewLogger(cfg.LogLevel, os.Stdout)
}
