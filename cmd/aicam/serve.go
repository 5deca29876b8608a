package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/MBUFFMIRE/AICamera/internal/config"
	hfactory "github.com/MBUFFMIRE/AICamera/internal/history/factory"
	"github.com/MBUFFMIRE/AICamera/internal/logger"
	"github.com/MBUFFMIRE/AICamera/internal/metrics"
	"github.com/MBUFFMIRE/AICamera/internal/server"
	"github.com/MBUFFMIRE/AICamera/internal/sink"
	sfactory "github.com/MBUFFMIRE/AICamera/internal/store/factory"
	"github.com/MBUFFMIRE/AICamera/internal/supervisor"
)

func createServeCommand(globalFlags *GlobalFlags) *cobra.Command {
	serveFlags := &ServeFlags{}

	cmd := &cobra.Command{
		Use:   "serve [config.toml]",
		Short: "Start the aicam daemon",
		Long: `Start the daemon that supervises the camera tasks and exposes the
control API. Without a config file the three built-in camera tasks are
registered and the API listens on :8080.

Examples:
  aicam serve
  aicam serve config.toml
  aicam serve --daemonize --pidfile=/run/aicam.pid`,
		RunE: func(cmd *cobra.Command, args []string) error {
			serveFlags.ConfigPath = globalFlags.ConfigPath
			if len(args) > 0 {
				serveFlags.ConfigPath = args[0]
			}
			return runServe(serveFlags)
		},
	}
	cmd.Flags().BoolVar(&serveFlags.Daemonize, "daemonize", false, "run in the background")
	cmd.Flags().StringVar(&serveFlags.PidFile, "pidfile", "", "write daemon PID to file")
	cmd.Flags().StringVar(&serveFlags.LogFile, "logfile", "", "redirect daemon logs to file")
	return cmd
}

func runServe(flags *ServeFlags) error {
	var cfg *config.Config
	if flags.ConfigPath != "" {
		var err error
		cfg, err = config.Load(flags.ConfigPath)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
	} else {
		cfg = &config.Config{}
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.BasePath == "" {
		cfg.Server.BasePath = "/api"
	}

	if flags.Daemonize {
		return daemonize(flags.PidFile, flags.LogFile)
	}

	log := logger.New(os.Stderr, cfg.LogLevel)

	buf := sink.NewBuffer(sink.DefaultBufferSize)
	snk := sink.Fanout{buf, sink.NewSlog(log)}

	sup := supervisor.New(snk)
	sup.SetLogger(log)

	st, err := sfactory.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if st != nil {
		if err := sup.SetStore(st); err != nil {
			return fmt.Errorf("init store: %w", err)
		}
	}

	hist, err := hfactory.New(cfg.History)
	if err != nil {
		return fmt.Errorf("open history sink: %w", err)
	}
	if hist != nil {
		sup.SetHistorySinks(hist)
	}

	tasks, err := cfg.TaskList()
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := sup.Register(t); err != nil {
			return fmt.Errorf("register %s: %w", t.Name, err)
		}
	}

	if cfg.Metrics.Enabled {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			log.Warn("metrics registration failed", "error", err)
		}
		if cfg.Metrics.Listen != "" {
			go func() {
				if err := serveMetrics(cfg.Metrics.Listen); err != nil {
					log.Error("metrics server stopped", "error", err)
				}
			}()
		}
	}

	srv, err := server.NewServer(cfg.Server.Listen, cfg.Server.BasePath, sup, buf)
	if err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	log.Info("daemon started",
		"listen", cfg.Server.Listen, "base_path", cfg.Server.BasePath, "tasks", len(tasks))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	sup.Shutdown()
	if hist != nil {
		_ = hist.Close()
	}
	if st != nil {
		_ = st.Close()
	}
	_ = removePidFile(flags.PidFile)
	return srv.Close()
}

func serveMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
