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


// Package cassette implements the virtual tape engine. The engine runs as a
// task on the fiber scheduler and services the deck whenever the deck raises
// an interrupt.
//
// The deck does not read or write files itself. When it needs the next block
// of tape it sets the NeedBlock status bit and raises an interrupt. The
// engine responds by resolving the storage block for the current position in
// the tape file, writing the block address to the deck and issuing a
// LOAD_BLOCK command. The deck then transfers the block directly from or to
// storage.
//
// The interrupt handler, Engine.Interrupt(), does nothing more than raise the
// wake signal. All work happens in Engine.Step(), which is called by the
// engine task each time the signal is consumed.
//
// Only one tape session can exist at a time. A session starts when the deck
// is observed playing or recording and ends when the deck is observed stopped.
// Any file error causes the deck to be stopped and the session to be
// abandoned. Errors are not reported to the caller but are logged under the
// "cassette" tag and announced with notifications.NotifyTapeAborted.
package cassette
