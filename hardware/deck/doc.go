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

// Package deck describes the hardware interface to the cassette deck. The
// deck is controlled through three memory-mapped registers: a status
// register, a command register and a four byte block address register.
//
// The bit values of the registers are defined by the hardware. Code outside
// this package should only refer to them by name.
//
// The Port interface is the view of the deck that the cassette engine uses.
// Registers implements Port on top of any Bus that maps the registers. The
// Simulator type is a Bus that behaves like the real deck hardware, loading
// and saving tape blocks directly from a BlockDevice.
package deck
