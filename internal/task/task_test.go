package task

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{"ok", Task{Name: "cam", Binary: "rpicam-hello"}, false},
		{"ok with env", Task{Name: "cam", Binary: "x", Env: []string{"A=1"}}, false},
		{"empty name", Task{Binary: "x"}, true},
		{"whitespace name", Task{Name: "  ", Binary: "x"}, true},
		{"bad chars", Task{Name: "a/b", Binary: "x"}, true},
		{"empty binary", Task{Name: "cam"}, true},
		{"negative grace", Task{Name: "cam", Binary: "x", Grace: -time.Second}, true},
		{"bad env", Task{Name: "cam", Binary: "x", Env: []string{"NOEQUALS"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.task.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestGracePeriodDefaults(t *testing.T) {
	if got := (Task{}).GracePeriod(); got != DefaultGrace {
		t.Fatalf("expected default grace, got %v", got)
	}
	if got := (Task{Grace: 5 * time.Second}).GracePeriod(); got != 5*time.Second {
		t.Fatalf("expected configured grace, got %v", got)
	}
}

func TestBuildCommand(t *testing.T) {
	tk := Task{
		Name:    "cam",
		Binary:  "/bin/echo",
		Args:    []string{"hello", "world"},
		WorkDir: "/tmp",
		Env:     []string{"FOO=bar"},
	}
	cmd := tk.BuildCommand()
	if cmd.Path != "/bin/echo" {
		t.Fatalf("path: %s", cmd.Path)
	}
	if len(cmd.Args) != 3 || cmd.Args[1] != "hello" {
		t.Fatalf("args: %v", cmd.Args)
	}
	if cmd.Dir != "/tmp" {
		t.Fatalf("dir: %s", cmd.Dir)
	}
	if len(cmd.Env) != 1 || cmd.Env[0] != "FOO=bar" {
		t.Fatalf("env: %v", cmd.Env)
	}
}

func TestCommandLine(t *testing.T) {
	tk := Task{Name: "cam", Binary: "rpicam-hello", Args: []string{"-t", "0s"}}
	if got := tk.CommandLine(); got != "rpicam-hello -t 0s" {
		t.Fatalf("command line: %s", got)
	}
}

func TestViewfinderDefaults(t *testing.T) {
	tk := Viewfinder("ai-vision", CameraOpts{})
	if tk.Binary != CameraBinary {
		t.Fatalf("binary: %s", tk.Binary)
	}
	if tk.Group != DisplayGroup {
		t.Fatalf("viewfinder must join the display group, got %q", tk.Group)
	}
	args := strings.Join(tk.Args, " ")
	for _, want := range []string{
		"-t 0s",
		"--post-process-file " + ObjectDetectionModel,
		"--viewfinder-width 1920",
		"--viewfinder-height 1080",
		"--framerate 30",
	} {
		if !strings.Contains(args, want) {
			t.Fatalf("args missing %q: %s", want, args)
		}
	}
}

func TestViewfinderOverrides(t *testing.T) {
	tk := Viewfinder("pose", CameraOpts{
		Duration:  10 * time.Second,
		Model:     PoseModel,
		Width:     1280,
		Height:    720,
		Framerate: 15,
	})
	args := strings.Join(tk.Args, " ")
	for _, want := range []string{
		"-t 10s",
		"--post-process-file " + PoseModel,
		"--viewfinder-width 1280",
		"--viewfinder-height 720",
		"--framerate 15",
	} {
		if !strings.Contains(args, want) {
			t.Fatalf("args missing %q: %s", want, args)
		}
	}
}

func TestStillGrabber(t *testing.T) {
	tk := StillGrabber("qr", StillOpts{})
	if tk.Binary != StillBinary {
		t.Fatalf("binary: %s", tk.Binary)
	}
	if tk.Group != DisplayGroup {
		t.Fatalf("still grabber must join the display group, got %q", tk.Group)
	}
	args := strings.Join(tk.Args, " ")
	for _, want := range []string{"--immediate", "--nopreview"} {
		if !strings.Contains(args, want) {
			t.Fatalf("args missing %q: %s", want, args)
		}
	}
}

func TestPresets(t *testing.T) {
	ps := Presets()
	if len(ps) != 3 {
		t.Fatalf("expected 3 presets, got %d", len(ps))
	}
	seen := map[string]bool{}
	for _, p := range ps {
		if err := p.Validate(); err != nil {
			t.Fatalf("preset %s invalid: %v", p.Name, err)
		}
		if p.Group != DisplayGroup {
			t.Fatalf("preset %s must share the display group", p.Name)
		}
		seen[p.Name] = true
	}
	for _, want := range []string{"ai-vision", "model-ai", "qr-reader"} {
		if !seen[want] {
			t.Fatalf("missing preset %s", want)
		}
	}
}
