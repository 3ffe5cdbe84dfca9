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


// Package scenario runs scripted sessions against the system controller.
// Scripts are YAML documents containing a list of actions. For example:
//
//	name: play a tape
//	actions:
//	  - select: GAME.TAP
//	  - press: play
//	  - until: idle
//	  - expect:
//	      deck: stopped
//	      session: false
//	      blocks: 2
//
// The recognised actions are:
//
//	press: play|record|stop    press a button on the deck
//	run: N                     step the controller N times
//	until: idle                step the controller until it is idle
//	select: FILE               select the tape file to play
//	expect: {...}              check the state of the controller
//
// The until action gives up after the number of steps given by the limit
// field, or after DefaultLimit steps if no limit is given.
package scenario
