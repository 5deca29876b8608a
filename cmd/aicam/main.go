package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	c := command{}

	root := &cobra.Command{
		Use:   "aicam",
		Short: "Camera task supervisor for the Raspberry Pi AI camera stack",
		Long: `Aicam supervises the camera tools (rpicam-hello viewfinders and the
libcamera-still QR grabber), enforcing that only one task holds the
display at a time.

Examples:
  aicam serve --config=config.toml     # Start daemon
  aicam toggle --name=ai-vision        # Flip a task on or off
  aicam status                         # Show all tasks
  aicam run -t 10s                     # One-shot viewfinder, no daemon
  aicam ui                             # Interactive terminal front-end`,
	}
	root.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", "", "path to TOML config file (optional)")

	root.AddCommand(
		createStartCommand(c),
		createStopCommand(c),
		createToggleCommand(c),
		createStatusCommand(c),
		createOutputCommand(c),
		createServeCommand(globalFlags),
		createRunCommand(),
		createUICommand(globalFlags),
	)
	return root
}

func addAPIFlags(cmd *cobra.Command, url *string, timeout *time.Duration) {
	cmd.Flags().StringVar(url, "api-url", "", "daemon URL (e.g. http://host:8080/api)")
	cmd.Flags().DurationVar(timeout, "api-timeout", 10*time.Second, "request timeout")
}

func createStartCommand(c command) *cobra.Command {
	f := &TaskFlags{}
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a camera task",
		Long: `Start a registered camera task. Any running task in the same display
group is stopped first.

Examples:
  aicam start --name=ai-vision
  aicam start --name=qr-reader --api-url=http://pi:8080/api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Start(*f)
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "task name (required)")
	addAPIFlags(cmd, &f.APIUrl, &f.APITimeout)
	if err := cmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}
	return cmd
}

func createStopCommand(c command) *cobra.Command {
	f := &StopFlags{}
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a camera task",
		Long: `Stop a running camera task. The task gets the grace period to exit
before it is killed.

Examples:
  aicam stop --name=ai-vision
  aicam stop --name=qr-reader --wait=5s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Stop(*f)
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "task name (required)")
	cmd.Flags().DurationVar(&f.Wait, "wait", 2*time.Second, "grace period before kill")
	addAPIFlags(cmd, &f.APIUrl, &f.APITimeout)
	if err := cmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}
	return cmd
}

func createToggleCommand(c command) *cobra.Command {
	f := &TaskFlags{}
	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Toggle a camera task on or off",
		Long: `Start the task if it is idle, stop it if it is running. This is the
operation the front-end buttons map to.

Examples:
  aicam toggle --name=ai-vision`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Toggle(*f)
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "task name (required)")
	addAPIFlags(cmd, &f.APIUrl, &f.APITimeout)
	if err := cmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}
	return cmd
}

func createStatusCommand(c command) *cobra.Command {
	f := &TaskFlags{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show task status",
		Long: `Show the status of camera tasks managed by the daemon.

Examples:
  aicam status                 # all tasks
  aicam status --name=qr-reader`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Status(*f)
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "task name (optional)")
	addAPIFlags(cmd, &f.APIUrl, &f.APITimeout)
	return cmd
}

func createOutputCommand(c command) *cobra.Command {
	f := &OutputFlags{}
	cmd := &cobra.Command{
		Use:   "output",
		Short: "Show recent task output",
		Long: `Print the most recent lines the camera tasks wrote, newest last.

Examples:
  aicam output
  aicam output --limit=50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Output(*f)
		},
	}
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "max lines to show (0 = server default)")
	addAPIFlags(cmd, &f.APIUrl, &f.APITimeout)
	return cmd
}
