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

// Package curated wraps the plain Go error type with a pattern that can be
// tested after the fact. Curated errors are created with Errorf(), which takes
// a formatting pattern and placeholder values in the same way as fmt.Errorf().
//
// The pattern is retained and used to identify the error. Patterns intended
// to be tested by other packages should be exported as string constants. For
// example, the filestore package exports:
//
//	const NotFound = "filestore: file not found: %s"
//
// and a caller checks for it with:
//
//	if curated.Is(err, filestore.NotFound) {
//		...
//	}
//
// The Has() function is similar but searches the entire chain of wrapped
// curated errors. A chain is formed when a curated error is a placeholder
// value of another curated error:
//
//	e := curated.Errorf(filestore.NotFound, "RECORD.TAP")
//	f := curated.Errorf("cassette: %v", e)
//
//	curated.Is(f, filestore.NotFound)   // false
//	curated.Has(f, filestore.NotFound)  // true
//
// The Error() implementation normalises the chain so that duplicate adjacent
// parts are removed. Parts are the sub-strings separated by ": ". Wrapping an
// error with the same prefix at every level of a call chain therefore does not
// produce a stuttering message.
//
// Curated errors also support the Unwrap() convention of the standard errors
// package. The first placeholder value that is an error is returned.
package curated
