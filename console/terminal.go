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


package console

import (
	"github.com/jetsetilly/syscon/curated"
	"github.com/pkg/term"
)

// the controlling terminal of the process.
const ttyDevice = "/dev/tty"

// list of ASCII codes for keys with special meaning in key mode.
const (
	KeyCtrlC = 3
	KeyCtrlD = 4
	KeyEsc   = 27
)

// terminal in cbreak mode for key mode. the original mode is restored by
// close().
type terminal struct {
	tty *term.Term
}

func openTerminal() (*terminal, error) {
	tty, err := term.Open(ttyDevice, term.CBreakMode)
	if err != nil {
		return nil, curated.Errorf("console: %v", err)
	}
	return &terminal{tty: tty}, nil
}

// close restores the terminal to its original mode.
func (pt *terminal) close() error {
	if err := pt.tty.Restore(); err != nil {
		pt.tty.Close()
		return curated.Errorf("console: %v", err)
	}
	return pt.tty.Close()
}

// readKey blocks until a key is pressed.
func (pt *terminal) readKey() (byte, error) {
	var b [1]byte
	_, err := pt.tty.Read(b[:])
	return b[0], err
}
