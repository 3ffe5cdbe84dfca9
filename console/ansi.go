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

import "fmt"

// ANSI pens used by the console.
const (
	penReset    = "\033[0m"
	penPrompt   = "\033[1;36m"
	penError    = "\033[31m"
	penFeedback = "\033[2;37m"
	penTape     = "\033[33m"
)

// pen returns the formatted string wrapped in the ANSI pen.
func pen(p string, s string, a ...interface{}) string {
	return fmt.Sprintf("%s%s%s", p, fmt.Sprintf(s, a...), penReset)
}
