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

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The Expect* functions report a test error and allow the test to continue.
// The Demand* functions are fatal to the test. Use the Demand* variants where
// the value being tested is used in further tests and so must be correct.
//
// ExpectSuccess() and ExpectFailure() test a value for a success or failure
// condition suitable for its type. Supported types are bool and error. A nil
// value is considered a success because of how errors usually work (nil to
// indicate no error).
//
// All functions accept optional tags which are prefixed to any failure
// message. This is useful when the test is inside a loop.
package test
