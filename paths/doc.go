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


// Package paths contains functions to prepare paths to syscon resources.
//
// The ResourcePath() function returns the path to a file in the resource
// directory, creating the intermediate directories as required. For example,
// the following returns the path to the default volume image.
//
//	pth, err := paths.ResourcePath("", "volume.img")
//
// For development builds the resource directory is ".syscon" in the current
// directory. For release builds (the release build tag) the directory is
// "syscon" in the user's configuration directory, as returned by
// os.UserConfigDir().
package paths
