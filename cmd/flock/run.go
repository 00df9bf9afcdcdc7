package main

import (
	"fmt"
	"os"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runCmd(v *viper.Viper) *cobra.Command {
	var (
		ticks      int
		statsEvery int
		record     string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation headless for a number of ticks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			sim, err := simulation.Start(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = sim.Stop(ctx) }()

			runner := &simulation.Runner{Sim: sim, Logger: logger, StatsEvery: statsEvery}
			if record != "" {
				f, err := os.Create(record)
				if err != nil {
					return fmt.Errorf("failed to create recording: %w", err)
				}
				defer f.Close()
				if runner.Recorder, err = simulation.NewRecorder(f, cfg.AgentCount); err != nil {
					return err
				}
			}

			last, err := runner.Run(ctx, ticks)
			if err != nil {
				return err
			}
			logger.Infof("✅ %d ticks done | speed %.3f±%.3f | polarization %.3f | radius mean %.1f max %.1f",
				last.Tick, last.MeanSpeed, last.SpeedStdDev, last.Polarization, last.MeanRadius, last.MaxRadius)
			if runner.Recorder != nil {
				logger.Infof("recorded %d frames to %s", runner.Recorder.Frames(), record)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&ticks, "ticks", 600, "number of ticks to simulate")
	cmd.Flags().IntVar(&statsEvery, "stats-every", 60, "log flock stats every N ticks (0 disables)")
	cmd.Flags().StringVar(&record, "record", "", "write every transform buffer to this file")
	return cmd
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <recording>",
		Short: "Summarize a recording written by run --record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return summarize(cmd.OutOrStdout(), f)
		},
	}
}
