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


//go:build !release

package paths

import (
	"os"
	"path/filepath"
)

const sysconConfigDir = ".syscon"

// the development version of getBasePath looks for and if necessary creates
// the sysconConfigDir (and child directories) in the current directory
func getBasePath(subPth string) (string, error) {
	pth := filepath.Join(sysconConfigDir, subPth)

	if err := os.MkdirAll(pth, 0o700); err != nil {
		return "", err
	}

	return pth, nil
}
