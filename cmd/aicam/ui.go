package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MBUFFMIRE/AICamera/internal/config"
	"github.com/MBUFFMIRE/AICamera/internal/console"
	"github.com/MBUFFMIRE/AICamera/internal/sink"
	"github.com/MBUFFMIRE/AICamera/internal/supervisor"
)

func createUICommand(globalFlags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Interactive terminal front-end",
		Long: `Run an embedded supervisor with a full-screen terminal UI: task
states at the top, live output below, number keys to toggle tasks.

Examples:
  aicam ui
  aicam ui --config=config.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(globalFlags.ConfigPath)
		},
	}
	return cmd
}

func runUI(configPath string) error {
	cfg := &config.Config{}
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
	}

	buf := sink.NewBuffer(sink.DefaultBufferSize)
	sup := supervisor.New(buf)
	defer sup.Shutdown()

	tasks, err := cfg.TaskList()
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := sup.Register(t); err != nil {
			return fmt.Errorf("register %s: %w", t.Name, err)
		}
	}

	ui, err := console.New(sup, buf)
	if err != nil {
		return err
	}
	return ui.Run()
}
