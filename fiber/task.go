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

package fiber

import (
	"fmt"
	"runtime"
)

type taskState int

const (
	taskReady taskState = iota
	taskBlocked
	taskFinished
)

func (st taskState) String() string {
	switch st {
	case taskReady:
		return "ready"
	case taskBlocked:
		return "blocked"
	case taskFinished:
		return "finished"
	}
	return "unknown"
}

// Task is a cooperatively scheduled unit of control. Tasks are created with
// Scheduler.Spawn() and are owned by the Scheduler.
type Task struct {
	sched *Scheduler

	id    int
	name  string
	stack int
	entry func(*Task)

	// protected by sched.crit
	state taskState

	// the following fields are only touched by the goroutine holding the
	// baton
	started  bool
	exiting  bool
	panicked interface{}

	// baton passing. the scheduler sends on resume and the task sends on
	// suspend
	resume  chan struct{}
	suspend chan struct{}
}

func (t *Task) String() string {
	return fmt.Sprintf("%s (%d bytes)", t.name, t.stack)
}

// Name returns the name given to the task when it was spawned.
func (t *Task) Name() string {
	return t.name
}

// ID returns the task's position in the scheduler's run order.
func (t *Task) ID() int {
	return t.id
}

// Blocked returns true if the task is waiting on a Signal or a Mutex.
func (t *Task) Blocked() bool {
	t.sched.crit.Lock()
	defer t.sched.crit.Unlock()
	return t.state == taskBlocked
}

// Finished returns true if the task's entry function has returned.
func (t *Task) Finished() bool {
	t.sched.crit.Lock()
	defer t.sched.crit.Unlock()
	return t.state == taskFinished
}

// Yield suspends the task. The task remains ready and will resume on the next
// call to RunOnce().
func (t *Task) Yield() {
	t.mustBeCurrent()
	t.park()
}

// main is the body of the task goroutine.
func (t *Task) main() {
	defer t.sched.live.Done()
	defer func() {
		// a panic during termination is discarded
		if r := recover(); r != nil && !t.exiting {
			t.panicked = r
		}

		t.sched.crit.Lock()
		t.state = taskFinished
		t.sched.crit.Unlock()

		// no one is waiting for the baton if the scheduler is ending
		if !t.exiting {
			t.suspend <- struct{}{}
		}
	}()

	t.entry(t)
}

// park returns the baton to the scheduler and waits for it to be handed back.
func (t *Task) park() {
	t.suspend <- struct{}{}
	select {
	case <-t.resume:
	case <-t.sched.quit:
		t.exiting = true
		runtime.Goexit()
	}
}

// mustBeCurrent panics if the task does not currently hold the baton.
func (t *Task) mustBeCurrent() {
	t.sched.crit.Lock()
	defer t.sched.crit.Unlock()
	if t.sched.current != t {
		panic(fmt.Sprintf("fiber: %s is not the running task", t.name))
	}
}
