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


package test

import (
	"strings"
	"sync"
)

// CompareWriter captures output so that it can be compared with expected
// strings. It is safe to write to from more than one goroutine.
type CompareWriter struct {
	crit   sync.Mutex
	buffer strings.Builder
}

func (cw *CompareWriter) Write(p []byte) (n int, err error) {
	cw.crit.Lock()
	defer cw.crit.Unlock()
	return cw.buffer.Write(p)
}

// Clear empties the buffer.
func (cw *CompareWriter) Clear() {
	cw.crit.Lock()
	defer cw.crit.Unlock()
	cw.buffer.Reset()
}

// Compare buffered output with the expected string.
func (cw *CompareWriter) Compare(s string) bool {
	return cw.String() == s
}

// Contains returns true if the buffered output contains the substring.
func (cw *CompareWriter) Contains(s string) bool {
	return strings.Contains(cw.String(), s)
}

// Lines returns the buffered output split into lines. A trailing newline does
// not produce an empty final line.
func (cw *CompareWriter) Lines() []string {
	s := strings.TrimSuffix(cw.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func (cw *CompareWriter) String() string {
	cw.crit.Lock()
	defer cw.crit.Unlock()
	return cw.buffer.String()
}
