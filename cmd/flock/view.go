package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/terminal"
	"github.com/lao-tseu-is-alive/go-flock3d/pkg/viewer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func viewCmd(v *viper.Viper) *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open a window showing the flock",
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

			game := viewer.NewGame(ctx, sim, logger, width, height)
			return viewer.Run(game, fmt.Sprintf("Flock 3D (%d agents)", cfg.AgentCount))
		},
	}
	cmd.Flags().IntVar(&width, "width", 1280, "window width")
	cmd.Flags().IntVar(&height, "height", 800, "window height")
	return cmd
}

func tuiCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Show the flock from above in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			// the screen owns stdout, so only errors are logged and they go to stderr
			logger, err := simulation.NewLogger("error", cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			sim, err := simulation.Start(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = sim.Stop(ctx) }()

			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}
			defer screen.Fini()
			return terminal.NewViewer(screen, sim, logger).Run(ctx)
		},
	}
}
