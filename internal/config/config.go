package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/MBUFFMIRE/AICamera/internal/history"
	"github.com/MBUFFMIRE/AICamera/internal/logger"
	"github.com/MBUFFMIRE/AICamera/internal/store"
	"github.com/MBUFFMIRE/AICamera/internal/task"
)

// Config is the top-level TOML structure for the daemon.
type Config struct {
	Env      []string `toml:"env" mapstructure:"env"`
	EnvFiles []string `toml:"env_files" mapstructure:"env_files"`
	UseOSEnv bool     `toml:"use_os_env" mapstructure:"use_os_env"`
	LogLevel string   `toml:"log_level" mapstructure:"log_level"`

	Capture logger.CaptureConfig `toml:"capture" mapstructure:"capture"`
	Server  ServerConfig         `toml:"server" mapstructure:"server"`
	Metrics MetricsConfig        `toml:"metrics" mapstructure:"metrics"`
	Store   store.Config         `toml:"store" mapstructure:"store"`
	History history.Config       `toml:"history" mapstructure:"history"`
	Tasks   []TaskConfig         `toml:"tasks" mapstructure:"tasks"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Listen  string `toml:"listen" mapstructure:"listen"`
}

type ServerConfig struct {
	Listen   string `toml:"listen" mapstructure:"listen"`
	BasePath string `toml:"base_path" mapstructure:"base_path"`
}

// TaskConfig declares one managed task. Either Binary/Args are given
// explicitly, or Preset selects a built-in camera invocation whose numeric
// flags come from the camera fields.
type TaskConfig struct {
	Name    string        `toml:"name" mapstructure:"name"`
	Binary  string        `toml:"binary" mapstructure:"binary"`
	Args    []string      `toml:"args" mapstructure:"args"`
	WorkDir string        `toml:"workdir" mapstructure:"workdir"`
	Env     []string      `toml:"env" mapstructure:"env"`
	Grace   time.Duration `toml:"grace" mapstructure:"grace"`
	Group   string        `toml:"group" mapstructure:"group"`

	Preset    string        `toml:"preset" mapstructure:"preset"` // "viewfinder" or "still"
	Model     string        `toml:"model" mapstructure:"model"`
	Width     int           `toml:"width" mapstructure:"width"`
	Height    int           `toml:"height" mapstructure:"height"`
	Framerate int           `toml:"framerate" mapstructure:"framerate"`
	Duration  time.Duration `toml:"duration" mapstructure:"duration"`
	Output    string        `toml:"output" mapstructure:"output"`

	Capture *logger.CaptureConfig `toml:"capture" mapstructure:"capture"`
}

// Load reads and unmarshals a TOML config file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GlobalEnv merges env sources. Precedence: OS env (when enabled) as base,
// then env files in order, then the top-level env list last.
func (c *Config) GlobalEnv() ([]string, error) {
	m := make(map[string]string)
	if c.UseOSEnv {
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				m[k] = v
			}
		}
	}
	for _, p := range c.EnvFiles {
		pairs, err := loadEnvFile(p)
		if err != nil {
			return nil, err
		}
		for k, v := range pairs {
			m[k] = v
		}
	}
	for _, kv := range c.Env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out, nil
}

// TaskList resolves the configured tasks, applying presets, the default
// capture config, and the merged global environment. With no tasks
// configured it falls back to the built-in camera presets.
func (c *Config) TaskList() ([]task.Task, error) {
	globalEnv, err := c.GlobalEnv()
	if err != nil {
		return nil, err
	}
	apply := func(t task.Task, tc *TaskConfig) task.Task {
		if tc != nil {
			if tc.WorkDir != "" {
				t.WorkDir = tc.WorkDir
			}
			if tc.Grace > 0 {
				t.Grace = tc.Grace
			}
			if tc.Group != "" {
				t.Group = tc.Group
			}
			if tc.Capture != nil {
				t.Capture = *tc.Capture
			} else {
				t.Capture = c.Capture
			}
			t.Env = mergeEnv(globalEnv, tc.Env)
		} else {
			t.Capture = c.Capture
			t.Env = mergeEnv(globalEnv, nil)
		}
		return t
	}

	if len(c.Tasks) == 0 {
		out := make([]task.Task, 0, 3)
		for _, t := range task.Presets() {
			out = append(out, apply(t, nil))
		}
		return out, nil
	}

	out := make([]task.Task, 0, len(c.Tasks))
	for i := range c.Tasks {
		tc := &c.Tasks[i]
		var t task.Task
		switch strings.ToLower(strings.TrimSpace(tc.Preset)) {
		case "":
			t = task.Task{Name: tc.Name, Binary: tc.Binary, Args: tc.Args}
		case "viewfinder":
			t = task.Viewfinder(tc.Name, task.CameraOpts{
				Duration:  tc.Duration,
				Model:     tc.Model,
				Width:     tc.Width,
				Height:    tc.Height,
				Framerate: tc.Framerate,
			})
		case "still":
			t = task.StillGrabber(tc.Name, task.StillOpts{
				Width:   tc.Width,
				Height:  tc.Height,
				Output:  tc.Output,
				Timeout: tc.Duration,
			})
		default:
			return nil, fmt.Errorf("task %q: unknown preset %q", tc.Name, tc.Preset)
		}
		t = apply(t, tc)
		if err := t.Validate(); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func mergeEnv(global, perTask []string) []string {
	if len(global) == 0 && len(perTask) == 0 {
		return nil
	}
	m := make(map[string]string, len(global)+len(perTask))
	order := make([]string, 0, len(global)+len(perTask))
	set := func(kv string) {
		if k, v, ok := strings.Cut(kv, "="); ok {
			if _, seen := m[k]; !seen {
				order = append(order, k)
			}
			m[k] = v
		}
	}
	for _, kv := range global {
		set(kv)
	}
	for _, kv := range perTask {
		set(kv)
	}
	out := make([]string, 0, len(order))
	for _, k := range order {
		out = append(out, k+"="+m[k])
	}
	return out
}

// loadEnvFile parses KEY=VALUE lines; '#' starts a comment, blank lines
// are skipped, single or double quotes around values are stripped.
func loadEnvFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path) // #nosec G304 -- operator-provided path
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if n := len(v); n >= 2 {
			if (v[0] == '\'' && v[n-1] == '\'') || (v[0] == '"' && v[n-1] == '"') {
				v = v[1 : n-1]
			}
		}
		if k != "" {
			out[k] = v
		}
	}
	return out, nil
}
