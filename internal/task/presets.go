package task

import (
	"fmt"
	"strconv"
	"time"
)

// Fixed flag sets for the Raspberry Pi camera tools. The viewfinder tools
// (rpicam-hello with an IMX500 post-processing model) run until stopped;
// the still grabber snaps single frames for the QR pipeline.

const (
	// DisplayGroup is the mutual-exclusion group shared by every tool that
	// owns the camera and the preview surface.
	DisplayGroup = "display"

	CameraBinary = "rpicam-hello"
	StillBinary  = "libcamera-still"

	ObjectDetectionModel = "/usr/share/rpi-camera-assets/imx500_mobilenet_ssd.json"
	PoseModel            = "/usr/share/rpi-camera-assets/imx500_posenet.json"
)

// CameraOpts are the numeric camera flags. Zero values take the defaults
// the viewfinder tools were always launched with.
type CameraOpts struct {
	Duration  time.Duration // 0 means run until stopped
	Model     string        // post-processing model JSON
	Width     int
	Height    int
	Framerate int
}

func (o CameraOpts) withDefaults(model string) CameraOpts {
	if o.Model == "" {
		o.Model = model
	}
	if o.Width <= 0 {
		o.Width = 1920
	}
	if o.Height <= 0 {
		o.Height = 1080
	}
	if o.Framerate <= 0 {
		o.Framerate = 30
	}
	return o
}

// Viewfinder builds a rpicam-hello task with a post-processing model.
func Viewfinder(name string, o CameraOpts) Task {
	o = o.withDefaults(ObjectDetectionModel)
	return Task{
		Name:   name,
		Binary: CameraBinary,
		Args: []string{
			"-t", fmt.Sprintf("%ds", int(o.Duration.Seconds())),
			"--post-process-file", o.Model,
			"--viewfinder-width", strconv.Itoa(o.Width),
			"--viewfinder-height", strconv.Itoa(o.Height),
			"--framerate", strconv.Itoa(o.Framerate),
		},
		Group: DisplayGroup,
	}
}

// StillOpts configure the single-frame grabber used by the QR pipeline.
type StillOpts struct {
	Width   int
	Height  int
	Output  string // frame destination file
	Timeout time.Duration
}

// StillGrabber builds a libcamera-still task that captures one frame
// immediately with no preview.
func StillGrabber(name string, o StillOpts) Task {
	if o.Width <= 0 {
		o.Width = 640
	}
	if o.Height <= 0 {
		o.Height = 480
	}
	if o.Output == "" {
		o.Output = "/tmp/qr_frame.jpg"
	}
	timeoutMS := 1
	if o.Timeout > 0 {
		timeoutMS = int(o.Timeout.Milliseconds())
	}
	return Task{
		Name:   name,
		Binary: StillBinary,
		Args: []string{
			"--width", strconv.Itoa(o.Width),
			"--height", strconv.Itoa(o.Height),
			"--output", o.Output,
			"--immediate",
			"--nopreview",
			"--timeout", strconv.Itoa(timeoutMS),
		},
		Group: DisplayGroup,
	}
}

// Presets returns the three built-in tasks the desktop front-end exposes:
// AI vision (object detection), model AI (pose detection), and the QR
// frame grabber. All share the display group.
func Presets() []Task {
	aiVision := Viewfinder("ai-vision", CameraOpts{Model: ObjectDetectionModel})
	modelAI := Viewfinder("model-ai", CameraOpts{Model: PoseModel})
	qr := StillGrabber("qr-reader", StillOpts{})
	return []Task{aiVision, modelAI, qr}
}
