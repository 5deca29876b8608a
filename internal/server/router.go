package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MBUFFMIRE/AICamera/internal/sink"
	"github.com/MBUFFMIRE/AICamera/internal/supervisor"
)

// Router exposes the supervisor over HTTP so remote front-ends can drive
// the camera stack. Endpoints under basePath:
//
//	POST /start?name=...
//	POST /stop?name=...&wait=2s
//	POST /toggle?name=...
//	GET  /status            all slots
//	GET  /status?name=...   one slot
//	GET  /output?limit=100  recent display-surface lines
type Router struct {
	sup      *supervisor.Supervisor
	buf      *sink.Buffer
	basePath string
}

// NewRouter constructs a Router. buf may be nil when no display buffer is
// exposed.
func NewRouter(sup *supervisor.Supervisor, buf *sink.Buffer, basePath string) *Router {
	return &Router{sup: sup, buf: buf, basePath: sanitizeBase(basePath)}
}

// Handler returns a gin-powered http.Handler mountable in any mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.POST("/start", r.handleStart)
	group.POST("/stop", r.handleStop)
	group.POST("/toggle", r.handleToggle)
	group.GET("/status", r.handleStatus)
	group.GET("/output", r.handleOutput)
	return g
}

// NewServer starts a standalone HTTP server for the router.
func NewServer(addr, basePath string, sup *supervisor.Supervisor, buf *sink.Buffer) (*http.Server, error) {
	r := NewRouter(sup, buf, basePath)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = srv.ListenAndServe() }()
	return srv, nil
}

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

func (r *Router) handleStart(c *gin.Context) {
	name := c.Query("name")
	if !isSafeName(name) {
		c.JSON(http.StatusBadRequest, errorResp{Error: "name required: allowed [A-Za-z0-9._-]"})
		return
	}
	if err := r.sup.Start(name); err != nil {
		c.JSON(statusFor(err), errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, okResp{OK: true})
}

func (r *Router) handleStop(c *gin.Context) {
	name := c.Query("name")
	if !isSafeName(name) {
		c.JSON(http.StatusBadRequest, errorResp{Error: "name required: allowed [A-Za-z0-9._-]"})
		return
	}
	var wait time.Duration
	if w := c.Query("wait"); w != "" {
		d, err := time.ParseDuration(w)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResp{Error: "invalid wait: " + err.Error()})
			return
		}
		wait = d
	}
	if err := r.sup.Stop(name, wait); err != nil {
		c.JSON(statusFor(err), errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, okResp{OK: true})
}

func (r *Router) handleToggle(c *gin.Context) {
	name := c.Query("name")
	if !isSafeName(name) {
		c.JSON(http.StatusBadRequest, errorResp{Error: "name required: allowed [A-Za-z0-9._-]"})
		return
	}
	if err := r.sup.Toggle(name); err != nil {
		c.JSON(statusFor(err), errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, okResp{OK: true})
}

func (r *Router) handleStatus(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusOK, r.sup.StatusAll())
		return
	}
	if !isSafeName(name) {
		c.JSON(http.StatusBadRequest, errorResp{Error: "invalid name"})
		return
	}
	st, err := r.sup.Status(name)
	if err != nil {
		c.JSON(statusFor(err), errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (r *Router) handleOutput(c *gin.Context) {
	if r.buf == nil {
		c.JSON(http.StatusNotFound, errorResp{Error: "no display buffer configured"})
		return
	}
	limit := 0
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, errorResp{Error: "invalid limit"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, r.buf.Tail(limit))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, supervisor.ErrUnknownTask):
		return http.StatusNotFound
	case errors.Is(err, supervisor.ErrAlreadyRunning):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
