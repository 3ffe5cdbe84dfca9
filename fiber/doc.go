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

// Package fiber implements cooperative tasks ("fibers") together with the two
// synchronisation primitives that are used to coordinate them with interrupt
// handlers: the wake Signal and the Mutex.
//
// A Scheduler owns every Task. Tasks are spawned once at startup, each with a
// stack budget drawn from a fixed pool. Spawning fails if the pool is
// exhausted, which should be treated as a fatal startup condition.
//
// RunOnce() runs every task that is not blocked, in the order the tasks were
// spawned. Each task runs until it reaches a suspension point. There are only
// three suspension points:
//
//	Signal.Wait()
//	Mutex.Acquire()
//	Task.Yield()
//
// There is no preemption. A task therefore sees the world as it was at its
// most recent suspension point and must re-examine any live state (hardware
// registers for example) after every wake.
//
// Each task body runs in its own goroutine but only one of the driver
// goroutine and the task goroutines is ever running. Control is passed between
// them explicitly, like a baton.
//
// Signal.Raise() is the only operation that may be called from interrupt
// context. It never blocks and is safe to call from any goroutine.
//
// The Mutex is inert until the first task is spawned. Before then Acquire()
// and Release() return immediately, which allows startup code to call into
// shared resources synchronously.
package fiber
