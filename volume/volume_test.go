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

package volume_test

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/syscon/curated"
	"github.com/jetsetilly/syscon/filestore"
	"github.com/jetsetilly/syscon/volume"
	"github.com/jetsetilly/syscon/test"
)

// small volume: 1 header block, 1 allocation block, 2 directory blocks and
// 60 data blocks
var small = volume.Geometry{Blocks: 64, Entries: 16}

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 7)
	}
	return b
}

func TestGeometry(t *testing.T) {
	_, err := volume.NewMemory(volume.Geometry{Blocks: 3, Entries: 16})
	test.ExpectSuccess(t, curated.Is(err, volume.BadGeometry))

	vol, err := volume.NewMemory(small)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, vol.Free(), 60)
	test.ExpectEquality(t, vol.Geometry(), small)
}

func TestWriteRead(t *testing.T) {
	vol, err := volume.NewMemory(small)
	test.DemandSuccess(t, err)

	f, err := vol.Create("TEST.TAP")
	test.DemandSuccess(t, err)

	data := pattern(700)
	n, err := f.Write(data)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 700)
	test.ExpectEquality(t, f.Size(), int64(700))
	test.ExpectEquality(t, vol.Free(), 58)
	test.ExpectSuccess(t, f.Close())

	// closing twice is an error
	test.ExpectSuccess(t, curated.Is(f.Close(), filestore.Closed))

	g, err := vol.Open("TEST.TAP")
	test.DemandSuccess(t, err)
	defer g.Close()

	b, err := io.ReadAll(g)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(b, data))

	// read-only
	_, err = g.Write([]byte{0})
	test.ExpectSuccess(t, curated.Is(err, filestore.ReadOnly))

	_, err = vol.Open("MISSING.TAP")
	test.ExpectSuccess(t, curated.Is(err, filestore.NotFound))
}

func TestBlocks(t *testing.T) {
	vol, err := volume.NewMemory(small)
	test.DemandSuccess(t, err)

	f, err := vol.Create("TEST.TAP")
	test.DemandSuccess(t, err)
	_, err = f.Write(pattern(1024))
	test.DemandSuccess(t, err)

	b0, err := f.Block(0)
	test.ExpectSuccess(t, err)
	b1, err := f.Block(512)
	test.ExpectSuccess(t, err)
	test.ExpectInequality(t, b0, b1)

	// offset within block resolves to the same block
	b, err := f.Block(511)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, b, b0)

	_, err = f.Block(1024)
	test.ExpectSuccess(t, curated.Is(err, filestore.BadOffset))

	// block data is the data in the file
	data := make([]byte, volume.BlockSize)
	test.ExpectSuccess(t, vol.ReadBlock(b1, data))
	test.ExpectSuccess(t, bytes.Equal(data, pattern(1024)[512:]))

	// blocks outside the data region
	test.ExpectSuccess(t, curated.Is(vol.ReadBlock(0, data), volume.BadBlock))
	test.ExpectSuccess(t, curated.Is(vol.WriteBlock(64, data), volume.BadBlock))
}

func TestAllocateAndTruncate(t *testing.T) {
	vol, err := volume.NewMemory(small)
	test.DemandSuccess(t, err)

	f, err := vol.Create("RECORD.TAP")
	test.DemandSuccess(t, err)

	for pos := int64(0); pos < 2048; pos += volume.BlockSize {
		test.ExpectSuccess(t, f.Seek(pos))
		_, err := f.AllocateBlock(pos)
		test.ExpectSuccess(t, err)
	}
	test.ExpectEquality(t, f.Size(), int64(2048))
	test.ExpectEquality(t, vol.Free(), 56)

	// cannot leave a hole in the file
	_, err = f.AllocateBlock(4096)
	test.ExpectSuccess(t, curated.Is(err, filestore.BadOffset))

	test.ExpectSuccess(t, f.Seek(700))
	test.ExpectSuccess(t, f.Truncate())
	test.ExpectEquality(t, f.Size(), int64(700))
	test.ExpectEquality(t, vol.Free(), 58)

	test.ExpectSuccess(t, f.Seek(0))
	test.ExpectSuccess(t, f.Truncate())
	test.ExpectEquality(t, vol.Free(), 60)

	// seek beyond end of file
	test.ExpectSuccess(t, curated.Is(f.Seek(1), filestore.BadOffset))
}

func TestOverwriteAndRemove(t *testing.T) {
	vol, err := volume.NewMemory(small)
	test.DemandSuccess(t, err)

	f, err := vol.Create("A")
	test.DemandSuccess(t, err)
	_, err = f.Write(pattern(2000))
	test.DemandSuccess(t, err)
	f.Close()

	// creating again truncates
	f, err = vol.Create("A")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, f.Size(), int64(0))
	test.ExpectEquality(t, vol.Free(), 60)
	f.Close()

	_, err = vol.Create("")
	test.ExpectSuccess(t, curated.Is(err, filestore.BadName))

	f, err = vol.Create("B")
	test.DemandSuccess(t, err)

	l, err := vol.List()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(l), 2)

	test.ExpectSuccess(t, vol.Remove("A"))
	test.ExpectSuccess(t, curated.Is(vol.Remove("A"), filestore.NotFound))

	l, _ = vol.List()
	test.DemandEquality(t, len(l), 1)
	test.ExpectEquality(t, l[0].Name, "B")

	// file handle for removed file is no longer usable
	test.ExpectSuccess(t, vol.Remove("B"))
	_, err = f.Write([]byte{0})
	test.ExpectSuccess(t, curated.Is(err, filestore.NotFound))
}

func TestNoSpace(t *testing.T) {
	vol, err := volume.NewMemory(small)
	test.DemandSuccess(t, err)

	f, err := vol.Create("BIG")
	test.DemandSuccess(t, err)

	n, err := f.Write(make([]byte, 61*volume.BlockSize))
	test.ExpectSuccess(t, curated.Is(err, filestore.NoSpace))
	test.ExpectEquality(t, n, 60*volume.BlockSize)
	test.ExpectEquality(t, vol.Free(), 0)
}

func TestDirectoryFull(t *testing.T) {
	vol, err := volume.NewMemory(volume.Geometry{Blocks: 64, Entries: 8})
	test.DemandSuccess(t, err)

	for i := 0; i < 8; i++ {
		_, err := vol.Create(string(rune('A' + i)))
		test.ExpectSuccess(t, err)
	}
	_, err = vol.Create("I")
	test.ExpectSuccess(t, curated.Is(err, filestore.DirectoryFull))
}

func TestImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volume.img")

	test.DemandSuccess(t, volume.Format(path, small))

	vol, err := volume.Open(path)
	test.DemandSuccess(t, err)

	// the image is locked while it is open
	_, err = volume.Open(path)
	test.ExpectSuccess(t, curated.Is(err, volume.Locked))

	f, err := vol.Create("SAVED.TAP")
	test.DemandSuccess(t, err)
	_, err = f.Write(pattern(1000))
	test.DemandSuccess(t, err)
	f.Close()
	test.ExpectSuccess(t, vol.Close())

	// reopen and check contents
	vol, err = volume.Open(path)
	test.DemandSuccess(t, err)
	defer vol.Close()

	g, err := vol.Open("SAVED.TAP")
	test.DemandSuccess(t, err)
	b, err := io.ReadAll(g)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(b, pattern(1000)))
	test.ExpectEquality(t, vol.Free(), 58)

	_, err = volume.Open(filepath.Join(t.TempDir(), "missing.img"))
	test.ExpectFailure(t, err)
}
