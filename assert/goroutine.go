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


// Package assert contains helpers for checking assumptions about the running
// program. They should only be used for debugging or testing purposes.
package assert

import (
	"bytes"
	"runtime"
	"strconv"
)

// GoroutineID returns a number that is different between goroutines and
// consistent for a given goroutine. Zero is returned if the number can not be
// found.
func GoroutineID() uint64 {
	var b [64]byte
	s := b[:runtime.Stack(b[:], false)]
	s, ok := bytes.CutPrefix(s, []byte("goroutine "))
	if !ok {
		return 0
	}
	if i := bytes.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	n, _ := strconv.ParseUint(string(s), 10, 64)
	return n
}

// SameGoroutine returns a function that reports whether it is being called on
// the goroutine that called SameGoroutine.
func SameGoroutine() func() bool {
	id := GoroutineID()
	return func() bool {
		return GoroutineID() == id
	}
}
