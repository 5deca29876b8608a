package aicamera

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfg "github.com/MBUFFMIRE/AICamera/internal/config"
	"github.com/MBUFFMIRE/AICamera/internal/history"
	hfactory "github.com/MBUFFMIRE/AICamera/internal/history/factory"
	"github.com/MBUFFMIRE/AICamera/internal/metrics"
	iapi "github.com/MBUFFMIRE/AICamera/internal/server"
	"github.com/MBUFFMIRE/AICamera/internal/sink"
	"github.com/MBUFFMIRE/AICamera/internal/store"
	sfactory "github.com/MBUFFMIRE/AICamera/internal/store/factory"
	"github.com/MBUFFMIRE/AICamera/internal/supervisor"
	"github.com/MBUFFMIRE/AICamera/internal/task"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Task = task.Task

type CameraOpts = task.CameraOpts

type StillOpts = task.StillOpts

type Status = supervisor.Status

type Sink = sink.Sink

type OutputBuffer = sink.Buffer

type HistorySink = history.Sink

type HistoryConfig = history.Config

type Store = store.Store

type StoreConfig = store.Config

// Supervisor is a thin facade over internal/supervisor.Supervisor.
// It provides a stable public API for embedding.
type Supervisor struct{ inner *supervisor.Supervisor }

func New(snk Sink) *Supervisor { return &Supervisor{inner: supervisor.New(snk)} }

func (s *Supervisor) Register(t Task) error  { return s.inner.Register(t) }
func (s *Supervisor) Start(name string) error { return s.inner.Start(name) }
func (s *Supervisor) Stop(name string, wait time.Duration) error {
	return s.inner.Stop(name, wait)
}
func (s *Supervisor) Toggle(name string) error           { return s.inner.Toggle(name) }
func (s *Supervisor) Status(name string) (Status, error) { return s.inner.Status(name) }
func (s *Supervisor) StatusAll() []Status                { return s.inner.StatusAll() }
func (s *Supervisor) Tasks() []Task                      { return s.inner.Tasks() }
func (s *Supervisor) SetStore(st Store) error            { return s.inner.SetStore(st) }
func (s *Supervisor) SetHistorySinks(sinks ...HistorySink) {
	s.inner.SetHistorySinks(sinks...)
}
func (s *Supervisor) Shutdown() { s.inner.Shutdown() }

// Presets returns the built-in camera tasks: the AI vision viewfinder,
// the pose-model viewfinder and the QR still grabber, all in one
// mutually exclusive display group.
func Presets() []Task { return task.Presets() }

func Viewfinder(name string, o CameraOpts) Task  { return task.Viewfinder(name, o) }
func StillGrabber(name string, o StillOpts) Task { return task.StillGrabber(name, o) }

func NewBuffer(max int) *OutputBuffer { return sink.NewBuffer(max) }

func LoadConfig(path string) (*cfg.Config, error) { return cfg.Load(path) }

// NewStore opens the run store described by c (sqlite or postgres).
func NewStore(c store.Config) (Store, error) { return sfactory.New(c) }

// NewHistorySink opens the event sink described by c; a zero config
// yields (nil, nil), meaning history is disabled.
func NewHistorySink(c history.Config) (HistorySink, error) { return hfactory.New(c) }

// NewHTTPServer starts an HTTP server exposing the control API using the
// given supervisor and output buffer.
func NewHTTPServer(addr, basePath string, s *Supervisor, buf *OutputBuffer) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, s.inner, buf)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// MetricsHandler serves the default Prometheus gatherer.
func MetricsHandler() http.Handler { return metrics.Handler() }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the
// default registry. It returns any immediate listen error; otherwise it
// runs the server in the caller goroutine.
func ServeMetrics(addr string) error {
	http.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
