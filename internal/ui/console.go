// File: internal/ui/console.go
// Brief: Line-oriented console renderer for provisioning runs.

package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/example/stackup/internal/provision"
)

type ConsoleOptions struct {
	Enabled bool
	Verbose bool
}

// Console renders provisioning events as colored progress lines. Safe for
// concurrent observers, though the orchestrator emits sequentially.
type Console struct {
	out  io.Writer
	opts ConsoleOptions

	mu        sync.Mutex
	startedAt time.Time
}

func NewConsole(out io.Writer, opts ConsoleOptions) *Console {
	return &Console{out: out, opts: opts, startedAt: time.Now()}
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
)

func (c *Console) ObserveEvent(ev provision.Event) {
	if c == nil || !c.opts.Enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.startedAt).Round(time.Second)
	prefix := dimColor.Sprintf("[%s]", elapsed)

	switch ev.Type {
	case provision.RunStarted:
		fmt.Fprintf(c.out, "%s starting stack (%s)\n", prefix, ev.Message)
	case provision.ResetStarted:
		fmt.Fprintf(c.out, "%s removing previous stack\n", prefix)
	case provision.ResetCompleted:
		fmt.Fprintf(c.out, "%s previous stack removed\n", prefix)
	case provision.NetworkReady:
		fmt.Fprintf(c.out, "%s network %s ready\n", prefix, ev.Message)
	case provision.ServiceStarting:
		fmt.Fprintf(c.out, "%s %s starting (%s)\n", prefix, ev.Service, ev.Message)
	case provision.ServiceSettling:
		fmt.Fprintf(c.out, "%s %s waiting %s to settle\n", prefix, ev.Service, ev.Message)
	case provision.ServiceStarted:
		fmt.Fprintf(c.out, "%s %s %s\n", prefix, ev.Service, okColor.Sprint("started"))
	case provision.ServiceStopped:
		if c.opts.Verbose {
			fmt.Fprintf(c.out, "%s %s removed\n", prefix, ev.Service)
		}
	case provision.ServiceFailed:
		fmt.Fprintf(c.out, "%s %s %s: %v\n", prefix, ev.Service, failColor.Sprint("failed"), ev.Err)
	case provision.HookStarted:
		if c.opts.Verbose {
			fmt.Fprintf(c.out, "%s %s running post-start: %s\n", prefix, ev.Service, ev.Message)
		}
	case provision.HookSucceeded:
		if c.opts.Verbose {
			fmt.Fprintf(c.out, "%s %s post-start %s\n", prefix, ev.Service, okColor.Sprint("ok"))
		}
	case provision.HookFailed:
		fmt.Fprintf(c.out, "%s %s post-start %s: %v\n", prefix, ev.Service, warnColor.Sprint("failed"), ev.Err)
	case provision.RunCompleted:
		if ev.Err != nil {
			fmt.Fprintf(c.out, "%s stack bring-up %s\n", prefix, failColor.Sprint("failed"))
		} else {
			fmt.Fprintf(c.out, "%s stack %s\n", prefix, okColor.Sprint("ready"))
		}
	}
}
