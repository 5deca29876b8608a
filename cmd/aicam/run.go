package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MBUFFMIRE/AICamera/internal/sink"
	"github.com/MBUFFMIRE/AICamera/internal/supervisor"
	"github.com/MBUFFMIRE/AICamera/internal/task"
)

func createRunCommand() *cobra.Command {
	f := &RunFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the AI viewfinder once, without a daemon",
		Long: `Launch rpicam-hello with the object-detection model directly, stream
its output to the terminal and stop it on Ctrl-C or when the duration
expires.

Examples:
  aicam run                          # run until Ctrl-C
  aicam run -t 10s                   # run for ten seconds
  aicam run -m /path/to/model.json -w 1280 -H 720`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(f)
		},
	}
	cmd.Flags().DurationVarP(&f.Duration, "time", "t", 0, "run duration (0 = until interrupted)")
	cmd.Flags().IntVarP(&f.Width, "width", "w", 0, "viewfinder width")
	cmd.Flags().IntVarP(&f.Height, "height", "H", 0, "viewfinder height")
	cmd.Flags().IntVarP(&f.Framerate, "framerate", "f", 0, "viewfinder framerate")
	cmd.Flags().StringVarP(&f.Model, "model", "m", "", "post-processing model JSON")
	return cmd
}

func runOnce(f *RunFlags) error {
	t := task.Viewfinder("ai-vision", task.CameraOpts{
		Duration:  f.Duration,
		Model:     f.Model,
		Width:     f.Width,
		Height:    f.Height,
		Framerate: f.Framerate,
	})

	sup := supervisor.New(sink.NewWriter(os.Stdout))
	defer sup.Shutdown()
	if err := sup.Register(t); err != nil {
		return err
	}
	if err := sup.Start(t.Name); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// Poll for natural exit; the tool stops on its own when -t is set.
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-sigCh:
			return sup.Stop(t.Name, t.GracePeriod())
		case <-tick.C:
			st, err := sup.Status(t.Name)
			if err != nil {
				return err
			}
			if !st.Running && st.State != "starting" {
				return nil
			}
		}
	}
}
