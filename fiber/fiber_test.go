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

package fiber_test

import (
	"fmt"
	"testing"

	"github.com/jetsetilly/syscon/assert"
	"github.com/jetsetilly/syscon/curated"
	"github.com/jetsetilly/syscon/fiber"
	"github.com/jetsetilly/syscon/test"
)

func TestRunOrder(t *testing.T) {
	sched := fiber.NewScheduler(4096)
	defer sched.End()

	var order []string

	for _, n := range []string{"a", "b", "c"} {
		n := n
		_, err := sched.Spawn(n, 1024, func(t *fiber.Task) {
			for {
				order = append(order, n)
				t.Yield()
			}
		})
		test.DemandSuccess(t, err)
	}

	// spawning does not run the task
	test.ExpectEquality(t, len(order), 0)

	sched.RunOnce()
	test.ExpectEquality(t, fmt.Sprintf("%v", order), "[a b c]")

	sched.RunOnce()
	test.ExpectEquality(t, fmt.Sprintf("%v", order), "[a b c a b c]")
}

func TestStackPool(t *testing.T) {
	sched := fiber.NewScheduler(1024)
	defer sched.End()

	test.ExpectSuccess(t, sched.Active() == false)

	_, err := sched.Spawn("cassette", 512, func(*fiber.Task) {})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, sched.Remaining(), 512)
	test.ExpectSuccess(t, sched.Active())

	_, err = sched.Spawn("service", 600, func(*fiber.Task) {})
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, fiber.StackExhausted))
	test.ExpectEquality(t, sched.Remaining(), 512)

	_, err = sched.Spawn("empty", 0, func(*fiber.Task) {})
	test.ExpectSuccess(t, curated.Is(err, fiber.InvalidStack))

	_, err = sched.Spawn("service", 512, func(*fiber.Task) {})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, sched.Remaining(), 0)
}

func TestSignalWake(t *testing.T) {
	sched := fiber.NewScheduler(1024)
	defer sched.End()

	sig := fiber.NewSignal(sched)
	wakes := 0

	tsk, err := sched.Spawn("waiter", 1024, func(t *fiber.Task) {
		for {
			sig.Wait(t)
			wakes++
		}
	})
	test.DemandSuccess(t, err)

	sched.RunOnce()
	test.ExpectEquality(t, wakes, 0)
	test.ExpectSuccess(t, tsk.Blocked())

	// blocked task is not run
	sched.RunOnce()
	test.ExpectEquality(t, wakes, 0)

	sig.Raise()
	test.ExpectSuccess(t, tsk.Blocked() == false)
	test.ExpectSuccess(t, sig.Pending())

	sched.RunOnce()
	test.ExpectEquality(t, wakes, 1)
	test.ExpectSuccess(t, tsk.Blocked())
	test.ExpectSuccess(t, sig.Pending() == false)
}

func TestSignalCollapse(t *testing.T) {
	sched := fiber.NewScheduler(1024)
	defer sched.End()

	sig := fiber.NewSignal(sched)
	wakes := 0

	_, err := sched.Spawn("waiter", 1024, func(t *fiber.Task) {
		for {
			sig.Wait(t)
			wakes++
		}
	})
	test.DemandSuccess(t, err)

	// raised twice before the task has ever waited
	sig.Raise()
	sig.Raise()
	sched.RunOnce()
	test.ExpectEquality(t, wakes, 1)

	sched.RunOnce()
	test.ExpectEquality(t, wakes, 1)

	// raised twice while the task is blocked
	sig.Raise()
	sig.Raise()
	sched.RunOnce()
	test.ExpectEquality(t, wakes, 2)

	sched.RunOnce()
	test.ExpectEquality(t, wakes, 2)
}

func TestMutexBypass(t *testing.T) {
	sched := fiber.NewScheduler(1024)
	defer sched.End()

	mu := fiber.NewMutex(sched)

	// no task has been spawned so these must return immediately
	mu.Acquire(nil)
	test.ExpectSuccess(t, mu.Locked() == false)
	mu.Acquire(nil)
	mu.Release()
	mu.Release()
	test.ExpectSuccess(t, mu.Locked() == false)
}

func TestMutexContention(t *testing.T) {
	sched := fiber.NewScheduler(2048)
	defer sched.End()

	mu := fiber.NewMutex(sched)
	idle := fiber.NewSignal(sched)

	var events []string

	_, err := sched.Spawn("a", 1024, func(t *fiber.Task) {
		mu.Acquire(t)
		events = append(events, "a acquired")
		t.Yield()
		events = append(events, "a releasing")
		mu.Release()
		for {
			idle.Wait(t)
		}
	})
	test.DemandSuccess(t, err)

	b, err := sched.Spawn("b", 1024, func(t *fiber.Task) {
		mu.Acquire(t)
		events = append(events, "b acquired")
		mu.Release()
		t.Yield()
	})
	test.DemandSuccess(t, err)

	sched.RunOnce()
	test.ExpectEquality(t, fmt.Sprintf("%v", events), "[a acquired]")
	test.ExpectSuccess(t, b.Blocked())
	test.ExpectSuccess(t, mu.Locked())

	sched.RunOnce()
	test.ExpectEquality(t, fmt.Sprintf("%v", events), "[a acquired a releasing b acquired]")
	test.ExpectSuccess(t, mu.Locked() == false)

	sched.RunOnce()
	test.ExpectSuccess(t, b.Finished())
}

func TestReentrancy(t *testing.T) {
	sched := fiber.NewScheduler(1024)
	defer sched.End()

	_, err := sched.Spawn("bad", 1024, func(t *fiber.Task) {
		sched.RunOnce()
	})
	test.DemandSuccess(t, err)

	defer func() {
		r := recover()
		test.ExpectEquality(t, fmt.Sprintf("%v", r), "fiber: RunOnce is not reentrant")
	}()
	sched.RunOnce()
	t.Errorf("RunOnce should have panicked")
}

func TestYieldOutsideTask(t *testing.T) {
	sched := fiber.NewScheduler(1024)
	defer sched.End()

	tsk, err := sched.Spawn("task", 1024, func(t *fiber.Task) {})
	test.DemandSuccess(t, err)

	defer func() {
		test.ExpectInequality(t, recover(), nil)
	}()
	tsk.Yield()
	t.Errorf("Yield should have panicked")
}

func TestEnd(t *testing.T) {
	sched := fiber.NewScheduler(1024)
	sig := fiber.NewSignal(sched)

	cleanedUp := false

	_, err := sched.Spawn("task", 1024, func(t *fiber.Task) {
		defer func() {
			cleanedUp = true
		}()
		sig.Wait(t)
	})
	test.DemandSuccess(t, err)

	sched.RunOnce()
	test.ExpectEquality(t, cleanedUp, false)

	sched.End()
	test.ExpectEquality(t, cleanedUp, true)

	_, err = sched.Spawn("late", 1024, func(t *fiber.Task) {})
	test.ExpectSuccess(t, curated.Is(err, fiber.SchedulerEnded))
}

func TestFinished(t *testing.T) {
	sched := fiber.NewScheduler(1024)
	defer sched.End()

	runs := 0
	tsk, err := sched.Spawn("once", 1024, func(t *fiber.Task) {
		runs++
	})
	test.DemandSuccess(t, err)

	sched.RunOnce()
	sched.RunOnce()
	test.ExpectEquality(t, runs, 1)
	test.ExpectSuccess(t, tsk.Finished())
	test.ExpectEquality(t, tsk.Name(), "once")
	test.ExpectEquality(t, sched.String(), "stack 1024/1024, once [finished]")
}

func TestTaskGoroutine(t *testing.T) {
	sched := fiber.NewScheduler(1024)
	defer sched.End()

	driver := assert.SameGoroutine()

	var onDriver []bool
	var resumed []bool
	_, err := sched.Spawn("engine", 512, func(t *fiber.Task) {
		same := assert.SameGoroutine()
		for {
			onDriver = append(onDriver, driver())
			resumed = append(resumed, same())
			t.Yield()
		}
	})
	test.DemandSuccess(t, err)

	sched.RunOnce()
	sched.RunOnce()
	sched.RunOnce()

	test.DemandEquality(t, len(onDriver), 3)
	for i := range onDriver {
		test.ExpectFailure(t, onDriver[i], i)
		test.ExpectSuccess(t, resumed[i], i)
	}
	test.ExpectSuccess(t, driver())
}
