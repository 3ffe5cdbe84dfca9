// This file is part of Syscon.
//
// Syscon is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Syscon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Syscon.  If not, see <https://www.gnu.org/licenses/>.


package hardware

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/jetsetilly/syscon/curated"
	"github.com/jetsetilly/syscon/fiber"
	"github.com/jetsetilly/syscon/filestore"
	"github.com/jetsetilly/syscon/hardware/cassette"
	"github.com/jetsetilly/syscon/hardware/deck"
	"github.com/jetsetilly/syscon/logger"
	"github.com/jetsetilly/syscon/notifications"
)

const logTag = "controller"

// stack budgets for the controller's tasks
const (
	engineStack  = 1024
	serviceStack = 1024
)

// DefaultStackPool is large enough for the controller's tasks.
const DefaultStackPool = engineStack + serviceStack

// Volume is the storage attached to the Controller. The deck transfers tape
// blocks directly to and from the volume.
type Volume interface {
	filestore.Store
	deck.BlockDevice
}

// Config for the Controller.
type Config interface {
	cassette.Config
	TicksPerBlock() int
	StackPool() int
}

// Job is a file system operation run by the service task. The file system
// lock is held for the duration of the job. A Job must not call any function
// of the Controller.
type Job func(store filestore.Store) error

type job struct {
	fn   Job
	done chan error
}

// interrupt source and the handler it is routed to
type interruptLine struct {
	name    string
	pending func() bool
	handler func()
}

// Controller is the system controller.
type Controller struct {
	vol    Volume
	notify notifications.Notify

	sched  *fiber.Scheduler
	fsLock *fiber.Mutex

	Deck   *deck.Simulator
	Engine *cassette.Engine

	// wake signal for the service task and the queue of jobs waiting to
	// run. the queue is written to by other goroutines
	jobSignal *fiber.Signal
	jobsLock  sync.Mutex
	jobs      deque.Deque[job]

	lines []interruptLine

	// held for the duration of Step() and by any function called from
	// outside of the stepping goroutine
	guard sync.Mutex

	steps int
}

// NewController creates a Controller with the storage volume. The notify
// argument can be nil.
//
// Returns an error if the scheduler's stack pool is too small for the
// controller's tasks.
func NewController(vol Volume, cfg Config, notify notifications.Notify) (*Controller, error) {
	if notify == nil {
		notify = notifications.Discard
	}

	c := &Controller{
		vol:    vol,
		notify: notify,
		sched:  fiber.NewScheduler(cfg.StackPool()),
	}

	c.fsLock = fiber.NewMutex(c.sched)
	c.jobSignal = fiber.NewSignal(c.sched)

	c.Deck = deck.NewSimulator(vol, cfg.TicksPerBlock())
	port := deck.NewRegisters(c.Deck, 0x0000)
	c.Engine = cassette.NewEngine(port, vol, c.fsLock, fiber.NewSignal(c.sched), cfg, notify)

	// no task exists yet so the lock is bypassed
	c.fsLock.Acquire(nil)
	files, err := vol.List()
	c.fsLock.Release()
	if err != nil {
		return nil, curated.Errorf("controller: %v", err)
	}
	logger.Logf(logger.Allow, logTag, "volume has %d files", len(files))

	_, err = c.sched.Spawn("cassette", engineStack, c.Engine.Run)
	if err != nil {
		return nil, curated.Errorf("controller: %v", err)
	}

	_, err = c.sched.Spawn("service", serviceStack, c.service)
	if err != nil {
		c.sched.End()
		return nil, curated.Errorf("controller: %v", err)
	}

	c.AttachInterrupt("deck", c.Deck.TakeInterrupt, c.Engine.Interrupt)

	return c, nil
}

// AttachInterrupt adds an interrupt source. The pending function is polled
// once per Step() and the handler is called if it returns true. Handlers must
// not block.
func (c *Controller) AttachInterrupt(name string, pending func() bool, handler func()) {
	c.guard.Lock()
	defer c.guard.Unlock()
	c.lines = append(c.lines, interruptLine{name: name, pending: pending, handler: handler})
}

func (c *Controller) String() string {
	c.guard.Lock()
	defer c.guard.Unlock()
	return fmt.Sprintf("step %d: deck %s: %s", c.steps, c.Deck.State(), c.Engine.Session())
}

// Scheduler returns a summary of the scheduler's tasks.
func (c *Controller) Scheduler() string {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.sched.String()
}

// End the controller. All tasks are stopped.
func (c *Controller) End() {
	c.guard.Lock()
	defer c.guard.Unlock()
	c.sched.End()
}

// SetMonitor attaches a monitor to the deck.
func (c *Controller) SetMonitor(m deck.Monitor) {
	c.guard.Lock()
	defer c.guard.Unlock()
	c.Deck.SetMonitor(m)
}

// SetRecordSource sets the source of data for recordings.
func (c *Controller) SetRecordSource(r io.Reader) {
	c.guard.Lock()
	defer c.guard.Unlock()
	c.Deck.SetRecordSource(r)
}

// Press a button on the deck.
func (c *Controller) Press(cmd deck.Command) {
	c.guard.Lock()
	defer c.guard.Unlock()
	c.Deck.Press(cmd)
}

// DeckState returns the current status of the deck.
func (c *Controller) DeckState() deck.Status {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.Deck.State()
}

// Session returns a snapshot of the tape session.
func (c *Controller) Session() cassette.SessionState {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.Engine.Session()
}

// Blocks returns the number of blocks transferred by the deck since the last
// PLAY or RECORD.
func (c *Controller) Blocks() int {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.Deck.Blocks()
}

// Steps returns the number of steps taken by the controller.
func (c *Controller) Steps() int {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.steps
}

// Idle returns true if the deck is stopped, no tape session exists and there
// are no jobs waiting.
func (c *Controller) Idle() bool {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.idle()
}

func (c *Controller) idle() bool {
	c.jobsLock.Lock()
	defer c.jobsLock.Unlock()
	return c.Deck.State() == 0 && !c.Engine.Session().Active && c.jobs.Len() == 0 && !c.Deck.Busy()
}

// Request queues a job for the service task. The job's error is sent on the
// returned channel once the job has run. The channel is buffered so it is
// not necessary to receive from it.
func (c *Controller) Request(fn Job) <-chan error {
	done := make(chan error, 1)

	c.jobsLock.Lock()
	c.jobs.PushBack(job{fn: fn, done: done})
	c.jobsLock.Unlock()

	c.jobSignal.Raise()
	return done
}

func (c *Controller) nextJob() (job, bool) {
	c.jobsLock.Lock()
	defer c.jobsLock.Unlock()
	if c.jobs.Len() == 0 {
		return job{}, false
	}
	return c.jobs.PopFront(), true
}

// entry point for the service task
func (c *Controller) service(t *fiber.Task) {
	for {
		c.jobSignal.Wait(t)

		for {
			j, ok := c.nextJob()
			if !ok {
				break
			}

			c.fsLock.Acquire(t)
			err := j.fn(c.vol)
			c.fsLock.Release()

			if err != nil {
				logger.Logf(logger.Allow, logTag, "job: %v", err)
			}
			j.done <- err

			if err := c.notify.Notify(notifications.NotifyJobCompleted); err != nil {
				logger.Logf(logger.Allow, logTag, "notify: %v", err)
			}

			// give other tasks a chance to run between jobs
			t.Yield()
		}
	}
}

// Step the controller once. Every ready task is run, the deck is advanced by
// one tick and pending interrupts are dispatched.
func (c *Controller) Step() {
	c.guard.Lock()
	defer c.guard.Unlock()

	c.sched.RunOnce()
	c.Deck.Tick()
	for _, l := range c.lines {
		if l.pending() {
			l.handler()
		}
	}
	c.steps++
}

// RunUntilIdle steps the controller until it is idle or until the maximum
// number of steps have been taken. Returns true if the controller is idle.
//
// The first step is always taken.
func (c *Controller) RunUntilIdle(max int) bool {
	for i := 0; i < max; i++ {
		c.Step()
		if c.Idle() {
			return true
		}
	}
	return c.Idle()
}

// Run the controller until the context is cancelled. The rate argument is the
// number of steps per second. If rate is zero the controller steps as quickly
// as possible.
func (c *Controller) Run(ctx context.Context, rate int) error {
	if rate <= 0 {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			c.Step()
		}
	}

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Step()
		}
	}
}
