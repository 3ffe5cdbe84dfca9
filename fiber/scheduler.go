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
	"strings"
	"sync"

	"github.com/jetsetilly/syscon/curated"
)

// Scheduler runs cooperative tasks. The zero value is not usable. Use
// NewScheduler().
type Scheduler struct {
	// crit protects the state of tasks, signals and mutexes. holding crit is
	// the equivalent of disabling interrupts on the real hardware
	crit sync.Mutex

	// size of the stack pool and the amount remaining
	pool      int
	remaining int

	tasks []*Task

	// the task currently holding the baton. nil if the driver holds it
	current *Task

	// RunOnce() is in progress
	running bool

	// End() has been called
	ended bool
	quit  chan struct{}

	// every started task goroutine
	live sync.WaitGroup
}

// NewScheduler is the preferred method of initialisation for the Scheduler
// type. The pool argument is the total number of bytes available for task
// stacks.
func NewScheduler(pool int) *Scheduler {
	return &Scheduler{
		pool:      pool,
		remaining: pool,
		quit:      make(chan struct{}),
	}
}

func (s *Scheduler) String() string {
	s.crit.Lock()
	defer s.crit.Unlock()

	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("stack %d/%d", s.pool-s.remaining, s.pool))
	for _, t := range s.tasks {
		b.WriteString(fmt.Sprintf(", %s [%s]", t.name, t.state))
	}
	return b.String()
}

// Spawn registers a new task. The task is ready to run but will not run until
// the next call to RunOnce().
//
// An error is returned if the stack budget cannot be satisfied from the stack
// pool. The StackExhausted pattern should be treated as fatal.
func (s *Scheduler) Spawn(name string, stack int, entry func(*Task)) (*Task, error) {
	s.crit.Lock()
	defer s.crit.Unlock()

	if s.ended {
		return nil, curated.Errorf(SchedulerEnded)
	}

	if stack <= 0 {
		return nil, curated.Errorf(InvalidStack, name, stack)
	}

	if stack > s.remaining {
		return nil, curated.Errorf(StackExhausted, name, stack, s.remaining)
	}
	s.remaining -= stack

	t := &Task{
		sched:   s,
		id:      len(s.tasks),
		name:    name,
		stack:   stack,
		entry:   entry,
		resume:  make(chan struct{}),
		suspend: make(chan struct{}),
	}
	s.tasks = append(s.tasks, t)

	return t, nil
}

// Active returns true once at least one task has been spawned.
func (s *Scheduler) Active() bool {
	s.crit.Lock()
	defer s.crit.Unlock()
	return len(s.tasks) > 0
}

// active is the same as Active() but the caller must hold crit.
func (s *Scheduler) active() bool {
	return len(s.tasks) > 0
}

// Remaining returns the number of bytes remaining in the stack pool.
func (s *Scheduler) Remaining() int {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.remaining
}

// RunOnce runs every ready task, in the order in which they were spawned,
// until each one suspends. Blocked and finished tasks are skipped.
//
// RunOnce is not reentrant and must only be called from the one outer driver
// loop. It panics if it is called from inside a task.
//
// If a task panics the panic is re-raised by RunOnce.
func (s *Scheduler) RunOnce() {
	s.crit.Lock()
	if s.running {
		s.crit.Unlock()
		panic("fiber: RunOnce is not reentrant")
	}
	if s.ended {
		s.crit.Unlock()
		panic(SchedulerEnded)
	}
	s.running = true

	// tasks spawned during this pass will be run on the next pass
	tasks := s.tasks
	s.crit.Unlock()

	defer func() {
		s.crit.Lock()
		s.running = false
		s.current = nil
		s.crit.Unlock()
	}()

	for _, t := range tasks {
		s.crit.Lock()
		ready := t.state == taskReady
		s.crit.Unlock()

		if !ready {
			continue
		}

		s.switchTo(t)

		if t.panicked != nil {
			p := t.panicked
			t.panicked = nil
			panic(p)
		}
	}
}

// switchTo hands the baton to the task and waits for it to be returned.
func (s *Scheduler) switchTo(t *Task) {
	s.crit.Lock()
	s.current = t
	s.crit.Unlock()

	if !t.started {
		t.started = true
		s.live.Add(1)
		go t.main()
	} else {
		t.resume <- struct{}{}
	}
	<-t.suspend

	s.crit.Lock()
	s.current = nil
	s.crit.Unlock()
}

// End stops all tasks. Tasks that are suspended are terminated in place and
// any deferred functions in the task body are run. End waits for all task
// goroutines to finish.
//
// End must not be called from inside a task or during RunOnce(). The
// scheduler cannot be used after End() has been called.
func (s *Scheduler) End() {
	s.crit.Lock()
	if s.ended {
		s.crit.Unlock()
		return
	}
	if s.running {
		s.crit.Unlock()
		panic("fiber: End called during RunOnce")
	}
	s.ended = true
	s.crit.Unlock()

	close(s.quit)
	s.live.Wait()
}
