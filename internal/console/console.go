// Package console is the interactive terminal front-end for the camera
// stack: a status header, a scrolling output pane fed by the display
// sink, and number keys to toggle each managed tool.
package console

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/MBUFFMIRE/AICamera/internal/sink"
	"github.com/MBUFFMIRE/AICamera/internal/supervisor"
)

type Console struct {
	sup    *supervisor.Supervisor
	buf    *sink.Buffer
	screen tcell.Screen
	quit   chan struct{}
}

func New(sup *supervisor.Supervisor, buf *sink.Buffer) (*Console, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Console{sup: sup, buf: buf, screen: screen, quit: make(chan struct{})}, nil
}

// Run initializes the screen and blocks until the user quits. Toggling is
// driven from the event loop; output redraws are triggered by the display
// buffer and a coarse status ticker.
func (c *Console) Run() error {
	if err := c.screen.Init(); err != nil {
		return err
	}
	defer c.screen.Fini()

	go c.wakeOnOutput()
	go c.wakeOnTick()

	c.draw()
	for {
		ev := c.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			c.screen.Sync()
			c.draw()
		case *tcell.EventInterrupt:
			c.draw()
		case *tcell.EventKey:
			if c.handleKey(ev) {
				close(c.quit)
				return nil
			}
		}
	}
}

func (c *Console) handleKey(ev *tcell.EventKey) (quit bool) {
	switch {
	case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
		return true
	case ev.Rune() == 'q':
		return true
	case ev.Rune() >= '1' && ev.Rune() <= '9':
		idx := int(ev.Rune() - '1')
		tasks := c.sup.Tasks()
		if idx < len(tasks) {
			// Toggle asynchronously; a stop can take the full grace period
			// and the event loop must stay responsive.
			name := tasks[idx].Name
			go func() { _ = c.sup.Toggle(name) }()
		}
	case ev.Rune() == 's':
		for _, st := range c.sup.StatusAll() {
			if st.Running {
				name := st.Name
				go func() { _ = c.sup.Stop(name, 0) }()
			}
		}
	}
	return false
}

func (c *Console) wakeOnOutput() {
	for {
		ch := c.buf.Wait()
		select {
		case <-ch:
			_ = c.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-c.quit:
			return
		}
	}
}

func (c *Console) wakeOnTick() {
	t := time.NewTicker(500 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			_ = c.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-c.quit:
			return
		}
	}
}

func (c *Console) draw() {
	c.screen.Clear()
	w, h := c.screen.Size()

	header := tcell.StyleDefault.Bold(true)
	c.drawText(0, 0, w, header, "AI Vision Camera")

	statuses := c.sup.StatusAll()
	row := 1
	for i, st := range statuses {
		style := tcell.StyleDefault
		if st.Running {
			style = style.Foreground(tcell.ColorGreen)
		} else if st.State == "failed" {
			style = style.Foreground(tcell.ColorRed)
		}
		line := fmt.Sprintf("[%d] %-12s %s", i+1, st.Name, st.State)
		if st.Running {
			line += fmt.Sprintf(" (pid %d)", st.PID)
		}
		c.drawText(0, row, w, style, line)
		row++
	}

	c.drawText(0, row, w, tcell.StyleDefault.Dim(true),
		"1-9 toggle  s stop all  q quit")
	row++

	// output pane fills the rest
	avail := h - row
	if avail <= 0 {
		c.screen.Show()
		return
	}
	entries := c.buf.Tail(avail)
	for i, e := range entries {
		c.drawText(0, row+i, w, tcell.StyleDefault, e.Task+": "+e.Line)
	}
	c.screen.Show()
}

func (c *Console) drawText(x, y, maxWidth int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		if col >= x+maxWidth {
			break
		}
		c.screen.SetContent(col, y, r, nil, style)
		col++
	}
}
