package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/MBUFFMIRE/AICamera/pkg/client"
)

type command struct{}

func (command) dial(apiUrl string, timeout time.Duration) (*client.Client, error) {
	if apiUrl == "" {
		apiUrl = client.DefaultBaseURL
	}
	c := client.New(apiUrl, timeout)
	if !c.IsReachable() {
		return nil, fmt.Errorf("daemon not reachable at %s - start it first with 'aicam serve'", apiUrl)
	}
	return c, nil
}

func (cmd command) Start(f TaskFlags) error {
	if f.Name == "" {
		return fmt.Errorf("task name is required")
	}
	c, err := cmd.dial(f.APIUrl, f.APITimeout)
	if err != nil {
		return err
	}
	if err := c.Start(f.Name); err != nil {
		return err
	}
	return cmd.printStatus(c, f.Name)
}

func (cmd command) Stop(f StopFlags) error {
	if f.Name == "" {
		return fmt.Errorf("task name is required")
	}
	c, err := cmd.dial(f.APIUrl, f.APITimeout)
	if err != nil {
		return err
	}
	if err := c.Stop(f.Name, f.Wait); err != nil {
		return err
	}
	return cmd.printStatus(c, f.Name)
}

func (cmd command) Toggle(f TaskFlags) error {
	if f.Name == "" {
		return fmt.Errorf("task name is required")
	}
	c, err := cmd.dial(f.APIUrl, f.APITimeout)
	if err != nil {
		return err
	}
	if err := c.Toggle(f.Name); err != nil {
		return err
	}
	return cmd.printStatus(c, f.Name)
}

func (cmd command) Status(f TaskFlags) error {
	c, err := cmd.dial(f.APIUrl, f.APITimeout)
	if err != nil {
		return err
	}
	if f.Name != "" {
		return cmd.printStatus(c, f.Name)
	}
	all, err := c.StatusAll()
	if err != nil {
		return err
	}
	printJSON(all)
	return nil
}

func (cmd command) Output(f OutputFlags) error {
	c, err := cmd.dial(f.APIUrl, f.APITimeout)
	if err != nil {
		return err
	}
	lines, err := c.Output(f.Limit)
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Printf("%s: %s\n", l.Task, l.Line)
	}
	return nil
}

func (command) printStatus(c *client.Client, name string) error {
	st, err := c.Status(name)
	if err != nil {
		return err
	}
	printJSON(st)
	return nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
