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
	"github.com/gammazero/deque"
)

// Mutex is a binary lock for a resource shared between tasks. Tasks that
// cannot acquire the lock are blocked and queued in the order they asked.
//
// Until the first task is spawned the Mutex is inert. Acquire() and Release()
// return immediately in that case.
type Mutex struct {
	sched   *Scheduler
	locked  bool
	owner   *Task
	waiters deque.Deque[*Task]
}

// NewMutex is the preferred method of initialisation for the Mutex type.
func NewMutex(sched *Scheduler) *Mutex {
	return &Mutex{sched: sched}
}

// Acquire the lock. The task is suspended until the lock is available.
//
// The task argument can be nil if no task has yet been spawned.
func (m *Mutex) Acquire(t *Task) {
	s := m.sched

	if !s.Active() {
		return
	}

	if t == nil {
		panic("fiber: mutex acquired outside of task context")
	}
	t.mustBeCurrent()

	s.crit.Lock()

	if !m.locked {
		m.locked = true
		m.owner = t
		s.crit.Unlock()
		return
	}

	if m.owner == t {
		s.crit.Unlock()
		panic("fiber: mutex already held by " + t.name)
	}

	m.waiters.PushBack(t)
	t.state = taskBlocked
	s.crit.Unlock()

	// ownership is handed to us by Release()
	t.park()
}

// Release the lock. If tasks are waiting for the lock then ownership passes
// to the task that has been waiting longest.
func (m *Mutex) Release() {
	s := m.sched
	s.crit.Lock()
	defer s.crit.Unlock()

	if !s.active() {
		return
	}

	if !m.locked {
		panic("fiber: release of unlocked mutex")
	}

	if m.waiters.Len() > 0 {
		next := m.waiters.PopFront()
		m.owner = next
		next.state = taskReady
		return
	}

	m.locked = false
	m.owner = nil
}

// Locked returns true if the mutex is held by a task.
func (m *Mutex) Locked() bool {
	m.sched.crit.Lock()
	defer m.sched.crit.Unlock()
	return m.locked
}
