package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL matches the daemon's default listen address.
const DefaultBaseURL = "http://127.0.0.1:8080/api"

// Client talks to a running aicam daemon over its HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// IsReachable reports whether the daemon answers at all.
func (c *Client) IsReachable() bool {
	resp, err := c.http.Get(c.baseURL + "/status")
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode != http.StatusNotFound
}

// Start launches the named task.
func (c *Client) Start(name string) error {
	return c.post("/start", url.Values{"name": {name}})
}

// Stop terminates the named task with an optional grace override.
func (c *Client) Stop(name string, wait time.Duration) error {
	v := url.Values{"name": {name}}
	if wait > 0 {
		v.Set("wait", wait.String())
	}
	return c.post("/stop", v)
}

// Toggle flips the named task between running and stopped.
func (c *Client) Toggle(name string) error {
	return c.post("/toggle", url.Values{"name": {name}})
}

// Status fetches one task's status.
func (c *Client) Status(name string) (TaskStatus, error) {
	var st TaskStatus
	err := c.get("/status", url.Values{"name": {name}}, &st)
	return st, err
}

// StatusAll fetches every slot's status.
func (c *Client) StatusAll() ([]TaskStatus, error) {
	var out []TaskStatus
	err := c.get("/status", nil, &out)
	return out, err
}

// Output fetches up to limit recent display lines (0 for all retained).
func (c *Client) Output(limit int) ([]OutputLine, error) {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var out []OutputLine
	err := c.get("/output", v, &out)
	return out, err
}

func (c *Client) post(path string, v url.Values) error {
	resp, err := c.http.Post(c.baseURL+path+"?"+v.Encode(), "application/json", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

func (c *Client) get(path string, v url.Values, out any) error {
	u := c.baseURL + path
	if len(v) > 0 {
		u += "?" + v.Encode()
	}
	resp, err := c.http.Get(u)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var er struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error == "" {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}
	return fmt.Errorf("API error: %s", er.Error)
}
