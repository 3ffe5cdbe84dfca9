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


package console_test

import (
	"sync"

	"github.com/jetsetilly/syscon/hardware"
)

// config is read by the controller's goroutine and written by the console
type config struct {
	crit   sync.Mutex
	source string
}

func (c *config) setSource(fn string) {
	c.crit.Lock()
	defer c.crit.Unlock()
	c.source = fn
}

func (c *config) PlaybackSource() (string, bool) {
	c.crit.Lock()
	defer c.crit.Unlock()
	return c.source, c.source != ""
}

func (c *config) RecordDestination() string {
	return "RECORD.TAP"
}

func (c *config) TicksPerBlock() int {
	return 2
}

func (c *config) StackPool() int {
	return hardware.DefaultStackPool
}
