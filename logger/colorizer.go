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

package logger

import (
	"io"
	"strings"
)

const (
	dimRed    = "\033[2;31m"
	dimYellow = "\033[2;33m"
	normalPen = "\033[0m"
)

// Colorizer applies basic coloring rules to logging output. Entries with a
// tag that ends in "error" are printed in red and entries that indicate a
// tape abort are printed in yellow.
type Colorizer struct {
	out io.Writer
}

// NewColorizer is the preferred method if initialisation for the Colorizer type.
func NewColorizer(out io.Writer) Colorizer {
	return Colorizer{out: out}
}

// Write implements the io.Writer interface.
func (c Colorizer) Write(p []byte) (n int, err error) {
	for _, l := range strings.SplitAfter(string(p), "\n") {
		if l == "" {
			continue
		}

		pen := ""
		tag, detail, _ := strings.Cut(l, ": ")
		switch {
		case strings.HasSuffix(tag, "error"):
			pen = dimRed
		case strings.HasPrefix(detail, "abort"):
			pen = dimYellow
		}

		if pen != "" {
			l = pen + strings.TrimSuffix(l, "\n") + normalPen + "\n"
		}

		m, err := io.WriteString(c.out, l)
		n += m
		if err != nil {
			return n, err
		}
	}

	return len(p), nil
}
