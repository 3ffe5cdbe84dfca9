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


// Package console is the interactive front end to the system controller. It
// has two modes of operation.
//
// In line mode commands are read a line at a time and split into arguments
// with shell quoting rules. In key mode the terminal is put into cbreak mode
// and single key presses operate the deck buttons directly.
//
// File commands (ls, select and rm) are run as jobs on the controller's
// service task. They therefore compete with the tape engine for the file
// system lock.
//
// The controller should be running in another goroutine while the console is
// active. Commands that wait for a job will otherwise wait forever.
package console
