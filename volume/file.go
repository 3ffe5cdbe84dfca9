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

package volume

import (
	"io"

	"github.com/jetsetilly/syscon/curated"
	"github.com/jetsetilly/syscon/filestore"
)

// file implements the filestore.File interface.
type file struct {
	vol      *Volume
	slot     int
	name     string
	writable bool
	closed   bool
	pos      int64
}

func (f *file) entry() *entry {
	return &f.vol.dir[f.slot]
}

// check returns an error if the file has been closed or if the file has been
// removed from the volume since it was opened.
func (f *file) check() error {
	if f.closed {
		return curated.Errorf(filestore.Closed, f.name)
	}
	e := f.entry()
	if !e.used || e.name != f.name {
		return curated.Errorf(filestore.NotFound, f.name)
	}
	return nil
}

// Name implements the filestore.File interface.
func (f *file) Name() string {
	return f.name
}

// Size implements the filestore.File interface.
func (f *file) Size() int64 {
	return f.entry().size
}

// Read implements the filestore.File interface.
func (f *file) Read(p []byte) (int, error) {
	if err := f.check(); err != nil {
		return 0, err
	}

	size := f.entry().size
	if f.pos >= size {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) && f.pos < size {
		b, err := f.vol.chainBlock(f.slot, f.pos/BlockSize, false)
		if err != nil {
			return n, err
		}

		off := f.pos % BlockSize
		l := min(int64(len(p)-n), BlockSize-off, size-f.pos)

		if _, err := f.vol.dev.ReadAt(p[n:n+int(l)], int64(b)*BlockSize+off); err != nil {
			return n, curated.Errorf("volume: %v", err)
		}

		n += int(l)
		f.pos += l
	}

	return n, nil
}

// Write implements the filestore.File interface.
func (f *file) Write(p []byte) (int, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	if !f.writable {
		return 0, curated.Errorf(filestore.ReadOnly, f.name)
	}

	e := f.entry()

	n := 0
	for n < len(p) {
		b, err := f.vol.chainBlock(f.slot, f.pos/BlockSize, true)
		if err != nil {
			f.vol.sync(f.slot)
			return n, err
		}

		off := f.pos % BlockSize
		l := min(int64(len(p)-n), BlockSize-off)

		if _, err := f.vol.dev.WriteAt(p[n:n+int(l)], int64(b)*BlockSize+off); err != nil {
			f.vol.sync(f.slot)
			return n, curated.Errorf("volume: %v", err)
		}

		n += int(l)
		f.pos += l
		if f.pos > e.size {
			e.size = f.pos
		}
	}

	return n, f.vol.sync(f.slot)
}

// Seek implements the filestore.File interface.
func (f *file) Seek(offset int64) error {
	if err := f.check(); err != nil {
		return err
	}
	if offset < 0 || offset > f.entry().size {
		return curated.Errorf(filestore.BadOffset, offset, f.name)
	}
	f.pos = offset
	return nil
}

// Truncate implements the filestore.File interface.
func (f *file) Truncate() error {
	if err := f.check(); err != nil {
		return err
	}
	if !f.writable {
		return curated.Errorf(filestore.ReadOnly, f.name)
	}
	return f.vol.truncate(f.slot, f.pos)
}

// Close implements the filestore.File interface.
func (f *file) Close() error {
	if f.closed {
		return curated.Errorf(filestore.Closed, f.name)
	}
	f.closed = true
	return nil
}

// Block implements the filestore.File interface.
func (f *file) Block(offset int64) (uint32, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	if offset < 0 || offset >= f.entry().size {
		return 0, curated.Errorf(filestore.BadOffset, offset, f.name)
	}
	return f.vol.chainBlock(f.slot, offset/BlockSize, false)
}

// AllocateBlock implements the filestore.File interface. The file is
// extended to the end of the allocated block.
func (f *file) AllocateBlock(offset int64) (uint32, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	if !f.writable {
		return 0, curated.Errorf(filestore.ReadOnly, f.name)
	}

	e := f.entry()
	if offset < 0 || offset > e.size {
		return 0, curated.Errorf(filestore.BadOffset, offset, f.name)
	}

	b, err := f.vol.chainBlock(f.slot, offset/BlockSize, true)
	if err != nil {
		f.vol.sync(f.slot)
		return 0, err
	}

	end := (offset/BlockSize + 1) * BlockSize
	if end > e.size {
		e.size = end
	}

	return b, f.vol.sync(f.slot)
}
