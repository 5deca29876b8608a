package main

import "time"

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
}

// TaskFlags holds the common task-addressing flags for client commands.
type TaskFlags struct {
	Name       string
	APIUrl     string
	APITimeout time.Duration
}

// StopFlags extends TaskFlags with the stop grace period.
type StopFlags struct {
	TaskFlags
	Wait time.Duration
}

// OutputFlags holds flags for the output command.
type OutputFlags struct {
	Limit      int
	APIUrl     string
	APITimeout time.Duration
}

// ServeFlags holds flags for the serve command.
type ServeFlags struct {
	ConfigPath string
	Daemonize  bool
	PidFile    string
	LogFile    string
}

// RunFlags holds the camera flags for the one-shot run command.
type RunFlags struct {
	Duration  time.Duration
	Width     int
	Height    int
	Framerate int
	Model     string
}
