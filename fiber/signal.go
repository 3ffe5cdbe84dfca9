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

// Signal is a single-slot, edge-triggered notification from interrupt context
// to a task. Any number of calls to Raise() before the waiting task runs
// result in exactly one wake. Signal does not count events and so the task
// must work out what happened from the current state of the hardware.
type Signal struct {
	sched   *Scheduler
	pending bool
	waiter  *Task
}

// NewSignal is the preferred method of initialisation for the Signal type.
func NewSignal(sched *Scheduler) *Signal {
	return &Signal{sched: sched}
}

// Raise the signal. If a task is waiting on the signal it is made ready to
// run. Raise never blocks and may be called from interrupt context.
func (sig *Signal) Raise() {
	sig.sched.crit.Lock()
	defer sig.sched.crit.Unlock()

	sig.pending = true
	if sig.waiter != nil && sig.waiter.state == taskBlocked {
		sig.waiter.state = taskReady
	}
}

// Pending returns true if the signal has been raised but not yet consumed.
func (sig *Signal) Pending() bool {
	sig.sched.crit.Lock()
	defer sig.sched.crit.Unlock()
	return sig.pending
}

// Wait for the signal to be raised. If the signal is already pending it is
// consumed and Wait returns immediately, without suspending the task.
// Otherwise the task is blocked until the next call to Raise().
//
// Only one task may wait on a signal.
func (sig *Signal) Wait(t *Task) {
	t.mustBeCurrent()

	s := sig.sched
	s.crit.Lock()

	if sig.pending {
		sig.pending = false
		s.crit.Unlock()
		return
	}

	if sig.waiter != nil && sig.waiter != t {
		s.crit.Unlock()
		panic("fiber: signal already has a waiting task")
	}

	sig.waiter = t
	t.state = taskBlocked
	s.crit.Unlock()

	t.park()

	// consume the raise (or raises) that woke us
	s.crit.Lock()
	sig.pending = false
	sig.waiter = nil
	s.crit.Unlock()
}
