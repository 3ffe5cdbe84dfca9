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


// Package hardware composes the system controller. The Controller type ties
// together the cooperative scheduler, the file system lock, the cassette
// engine, the file service task and the simulated tape deck.
//
// The Controller is driven by calling Step() in a loop, or by Run(). Each
// step runs every ready task once, advances the deck hardware by one tick and
// then dispatches any pending interrupts.
//
// Other goroutines may interact with the Controller through Press(),
// Request() and the state functions. These are safe to call while Run() is
// active in another goroutine.
package hardware
