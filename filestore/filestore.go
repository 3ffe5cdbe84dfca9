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

// Package filestore defines the interface to the file system used by the
// cassette engine and by other tasks in the controller.
//
// In addition to the usual file operations, a File can report the physical
// storage block that holds the data at a logical offset. This is required
// because the deck hardware loads tape blocks directly from storage and does
// not go through the file system.
package filestore

import "io"

// Sentinal patterns for errors returned by filestore implementations.
const (
	NotFound      = "filestore: file not found: %s"
	NoSpace       = "filestore: no space on volume"
	DirectoryFull = "filestore: directory full"
	ReadOnly      = "filestore: %s is read-only"
	BadOffset     = "filestore: offset %d is outside of %s"
	BadName       = "filestore: invalid filename: %q"
	Closed        = "filestore: %s is closed"
)

// File is an open file.
type File interface {
	io.Reader
	io.Writer

	// Name of the file as it was opened.
	Name() string

	// Size of the file in bytes.
	Size() int64

	// Seek to an absolute offset. The offset can not be beyond the end of the
	// file.
	Seek(offset int64) error

	// Truncate the file to the current position.
	Truncate() error

	// Close the file. The file can not be used after it has been closed.
	Close() error

	// Block returns the physical storage block that holds the data at the
	// offset. The offset must be within the file.
	Block(offset int64) (uint32, error)

	// AllocateBlock returns the physical storage block that will hold the
	// data at the offset, allocating storage and extending the file as
	// required. The file must be open for writing.
	AllocateBlock(offset int64) (uint32, error)
}

// Entry describes a file in the store.
type Entry struct {
	Name string
	Size int64
}

// Store is a collection of named files on a single volume.
type Store interface {
	// Open an existing file for reading.
	Open(name string) (File, error)

	// Create a new file for writing. An existing file of the same name is
	// truncated to zero length.
	Create(name string) (File, error)

	// Remove a file.
	Remove(name string) error

	// List all files in the store, in directory order.
	List() ([]Entry, error)
}
