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
	"encoding/binary"
	"io"
	"os"

	"github.com/gofrs/flock"
	"github.com/jetsetilly/syscon/curated"
	"github.com/jetsetilly/syscon/filestore"
)

// BlockSize is the size of every block on the volume.
const BlockSize = 512

// Sentinal patterns for errors returned by the volume package.
const (
	Locked      = "volume: %s is in use by another process"
	BadImage    = "volume: not a volume image: %s"
	BadGeometry = "volume: invalid geometry: %d blocks, %d directory entries"
	BadBlock    = "volume: block %d is outside of the data region"
)

const (
	entrySize       = 64
	nameLen         = 52
	entriesPerBlock = BlockSize / entrySize
	linksPerBlock   = BlockSize / 4
)

// values in the allocation table with special meaning.
const (
	linkFree     uint32 = 0x00000000
	linkReserved uint32 = 0xfffffffe
	linkEnd      uint32 = 0xffffffff
)

var magic = [8]byte{'S', 'Y', 'S', 'C', 'V', 'O', 'L', '1'}

// Geometry describes the size of a volume.
type Geometry struct {
	// total number of blocks on the volume, including the blocks used by the
	// header, the allocation table and the directory
	Blocks int

	// number of entries in the directory. the number of files that can exist
	// on the volume at once
	Entries int
}

// DefaultGeometry is a 4MB volume with room for 128 files.
var DefaultGeometry = Geometry{Blocks: 8192, Entries: 128}

// Device is the storage underlying the volume.
type Device interface {
	io.ReaderAt
	io.WriterAt
}

// directory entry. first is zero if the file has no blocks allocated. block
// zero is always the header so can never be the first block of a file
type entry struct {
	used  bool
	name  string
	first uint32
	size  int64
}

// Volume implements the filestore.Store interface. It is not safe for
// concurrent use.
type Volume struct {
	dev  Device
	name string

	// resources for volumes opened from the host file system
	closer io.Closer
	lock   *flock.Flock

	blocks     uint32
	linkBlocks uint32
	dirBlocks  uint32
	dataStart  uint32

	links []uint32
	dir   []entry
}

func layout(g Geometry) (linkBlocks, dirBlocks, dataStart uint32, err error) {
	if g.Blocks <= 0 || g.Entries <= 0 || uint64(g.Blocks) >= uint64(linkReserved) {
		return 0, 0, 0, curated.Errorf(BadGeometry, g.Blocks, g.Entries)
	}

	linkBlocks = uint32((g.Blocks + linksPerBlock - 1) / linksPerBlock)
	dirBlocks = uint32((g.Entries + entriesPerBlock - 1) / entriesPerBlock)
	dataStart = 1 + linkBlocks + dirBlocks

	if dataStart >= uint32(g.Blocks) {
		return 0, 0, 0, curated.Errorf(BadGeometry, g.Blocks, g.Entries)
	}

	return linkBlocks, dirBlocks, dataStart, nil
}

// format writes an empty volume to the device.
func format(dev Device, g Geometry) error {
	linkBlocks, dirBlocks, dataStart, err := layout(g)
	if err != nil {
		return err
	}

	hdr := make([]byte, BlockSize)
	copy(hdr, magic[:])
	binary.LittleEndian.PutUint32(hdr[8:], uint32(g.Blocks))
	binary.LittleEndian.PutUint32(hdr[12:], linkBlocks)
	binary.LittleEndian.PutUint32(hdr[16:], dirBlocks)
	binary.LittleEndian.PutUint32(hdr[20:], dataStart)
	if _, err := dev.WriteAt(hdr, 0); err != nil {
		return curated.Errorf("volume: %v", err)
	}

	links := make([]byte, linkBlocks*BlockSize)
	for b := uint32(0); b < dataStart; b++ {
		binary.LittleEndian.PutUint32(links[b*4:], linkReserved)
	}
	if _, err := dev.WriteAt(links, BlockSize); err != nil {
		return curated.Errorf("volume: %v", err)
	}

	dir := make([]byte, dirBlocks*BlockSize)
	if _, err := dev.WriteAt(dir, int64(1+linkBlocks)*BlockSize); err != nil {
		return curated.Errorf("volume: %v", err)
	}

	return nil
}

// load the volume structures from the device.
func load(dev Device, name string) (*Volume, error) {
	hdr := make([]byte, BlockSize)
	if _, err := dev.ReadAt(hdr, 0); err != nil {
		return nil, curated.Errorf(BadImage, name)
	}

	var m [8]byte
	copy(m[:], hdr)
	if m != magic {
		return nil, curated.Errorf(BadImage, name)
	}

	vol := &Volume{
		dev:        dev,
		name:       name,
		blocks:     binary.LittleEndian.Uint32(hdr[8:]),
		linkBlocks: binary.LittleEndian.Uint32(hdr[12:]),
		dirBlocks:  binary.LittleEndian.Uint32(hdr[16:]),
		dataStart:  binary.LittleEndian.Uint32(hdr[20:]),
	}

	if vol.dataStart != 1+vol.linkBlocks+vol.dirBlocks || vol.dataStart >= vol.blocks {
		return nil, curated.Errorf(BadImage, name)
	}

	links := make([]byte, vol.linkBlocks*BlockSize)
	if _, err := dev.ReadAt(links, BlockSize); err != nil {
		return nil, curated.Errorf("volume: %v", err)
	}
	vol.links = make([]uint32, vol.blocks)
	for b := range vol.links {
		vol.links[b] = binary.LittleEndian.Uint32(links[b*4:])
	}

	dir := make([]byte, vol.dirBlocks*BlockSize)
	if _, err := dev.ReadAt(dir, int64(1+vol.linkBlocks)*BlockSize); err != nil {
		return nil, curated.Errorf("volume: %v", err)
	}
	vol.dir = make([]entry, vol.dirBlocks*entriesPerBlock)
	for i := range vol.dir {
		d := dir[i*entrySize : (i+1)*entrySize]
		if binary.LittleEndian.Uint32(d[60:])&0x01 == 0x00 {
			continue
		}

		n := 0
		for n < nameLen && d[n] != 0x00 {
			n++
		}

		vol.dir[i] = entry{
			used:  true,
			name:  string(d[:n]),
			first: binary.LittleEndian.Uint32(d[52:]),
			size:  int64(binary.LittleEndian.Uint32(d[56:])),
		}
	}

	return vol, nil
}

// NewMemory creates a new, empty volume in memory.
func NewMemory(g Geometry) (*Volume, error) {
	if _, _, _, err := layout(g); err != nil {
		return nil, err
	}

	dev := &memory{data: make([]byte, g.Blocks*BlockSize)}
	if err := format(dev, g); err != nil {
		return nil, err
	}
	return load(dev, "memory")
}

// Format creates a new volume image on the host file system. An existing file
// will be overwritten.
func Format(path string, g Geometry) (rerr error) {
	if _, _, _, err := layout(g); err != nil {
		return err
	}

	lk := flock.New(path)
	ok, err := lk.TryLock()
	if err != nil {
		return curated.Errorf("volume: %v", err)
	}
	if !ok {
		return curated.Errorf(Locked, path)
	}
	defer lk.Unlock()

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return curated.Errorf("volume: %v", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = curated.Errorf("volume: %v", err)
		}
	}()

	if err := f.Truncate(int64(g.Blocks) * BlockSize); err != nil {
		return curated.Errorf("volume: %v", err)
	}

	return format(f, g)
}

// Open an existing volume image on the host file system. The volume must be
// closed with Close() when it is no longer required.
func Open(path string) (*Volume, error) {
	// the lock would create the file if it did not exist
	if _, err := os.Stat(path); err != nil {
		return nil, curated.Errorf("volume: %v", err)
	}

	lk := flock.New(path)
	ok, err := lk.TryLock()
	if err != nil {
		return nil, curated.Errorf("volume: %v", err)
	}
	if !ok {
		return nil, curated.Errorf(Locked, path)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		lk.Unlock()
		return nil, curated.Errorf("volume: %v", err)
	}

	vol, err := load(f, path)
	if err != nil {
		f.Close()
		lk.Unlock()
		return nil, err
	}

	vol.closer = f
	vol.lock = lk

	return vol, nil
}

// Close the volume. Volumes created with NewMemory() do not need to be
// closed.
func (vol *Volume) Close() error {
	var err error
	if vol.closer != nil {
		err = vol.closer.Close()
		vol.closer = nil
	}
	if vol.lock != nil {
		vol.lock.Unlock()
		vol.lock = nil
	}
	if err != nil {
		return curated.Errorf("volume: %v", err)
	}
	return nil
}

func (vol *Volume) String() string {
	return vol.name
}

// Geometry returns the geometry the volume was formatted with. The number of
// entries may be larger than requested because the directory always fills a
// whole number of blocks.
func (vol *Volume) Geometry() Geometry {
	return Geometry{Blocks: int(vol.blocks), Entries: len(vol.dir)}
}

// Free returns the number of unallocated data blocks.
func (vol *Volume) Free() int {
	n := 0
	for b := vol.dataStart; b < vol.blocks; b++ {
		if vol.links[b] == linkFree {
			n++
		}
	}
	return n
}

// ReadBlock implements the deck.BlockDevice interface.
func (vol *Volume) ReadBlock(addr uint32, data []byte) error {
	if addr < vol.dataStart || addr >= vol.blocks {
		return curated.Errorf(BadBlock, addr)
	}
	if _, err := vol.dev.ReadAt(data[:BlockSize], int64(addr)*BlockSize); err != nil {
		return curated.Errorf("volume: %v", err)
	}
	return nil
}

// WriteBlock implements the deck.BlockDevice interface.
func (vol *Volume) WriteBlock(addr uint32, data []byte) error {
	if addr < vol.dataStart || addr >= vol.blocks {
		return curated.Errorf(BadBlock, addr)
	}
	if _, err := vol.dev.WriteAt(data[:BlockSize], int64(addr)*BlockSize); err != nil {
		return curated.Errorf("volume: %v", err)
	}
	return nil
}

// allocate a free data block. the block is marked as the end of a chain.
func (vol *Volume) allocate() (uint32, error) {
	for b := vol.dataStart; b < vol.blocks; b++ {
		if vol.links[b] == linkFree {
			vol.links[b] = linkEnd
			return b, nil
		}
	}
	return 0, curated.Errorf(filestore.NoSpace)
}

// freeChain releases every block in the chain starting at block.
func (vol *Volume) freeChain(b uint32) {
	for b >= vol.dataStart && b < vol.blocks {
		next := vol.links[b]
		vol.links[b] = linkFree
		b = next
	}
}

// chainBlock returns the block number of the index'th block of the file in
// the directory slot. if allocate is true the chain will be extended as
// required.
func (vol *Volume) chainBlock(slot int, index int64, allocate bool) (uint32, error) {
	e := &vol.dir[slot]

	if e.first == 0 {
		if !allocate {
			return 0, curated.Errorf(filestore.BadOffset, index*BlockSize, e.name)
		}
		b, err := vol.allocate()
		if err != nil {
			return 0, err
		}
		e.first = b
	}

	b := e.first
	for i := int64(0); i < index; i++ {
		next := vol.links[b]
		if next == linkEnd {
			if !allocate {
				return 0, curated.Errorf(filestore.BadOffset, index*BlockSize, e.name)
			}
			var err error
			next, err = vol.allocate()
			if err != nil {
				return 0, err
			}
			vol.links[b] = next
		}
		b = next
	}

	return b, nil
}

// truncate the file in the directory slot to size bytes, freeing any blocks
// that are no longer required.
func (vol *Volume) truncate(slot int, size int64) error {
	e := &vol.dir[slot]

	keep := (size + BlockSize - 1) / BlockSize
	if keep == 0 {
		vol.freeChain(e.first)
		e.first = 0
	} else if e.first != 0 {
		last, err := vol.chainBlock(slot, keep-1, false)
		if err != nil {
			return err
		}
		vol.freeChain(vol.links[last])
		vol.links[last] = linkEnd
	}
	e.size = size

	return vol.sync(slot)
}

// sync writes the allocation table and the directory entry for the slot to
// the device.
func (vol *Volume) sync(slot int) error {
	links := make([]byte, len(vol.links)*4)
	for b, l := range vol.links {
		binary.LittleEndian.PutUint32(links[b*4:], l)
	}
	if _, err := vol.dev.WriteAt(links, BlockSize); err != nil {
		return curated.Errorf("volume: %v", err)
	}

	if slot < 0 {
		return nil
	}

	d := make([]byte, entrySize)
	e := vol.dir[slot]
	if e.used {
		copy(d[:nameLen], e.name)
		binary.LittleEndian.PutUint32(d[52:], e.first)
		binary.LittleEndian.PutUint32(d[56:], uint32(e.size))
		binary.LittleEndian.PutUint32(d[60:], 0x01)
	}

	offset := int64(1+vol.linkBlocks)*BlockSize + int64(slot)*entrySize
	if _, err := vol.dev.WriteAt(d, offset); err != nil {
		return curated.Errorf("volume: %v", err)
	}

	return nil
}

// find returns the directory slot for the named file or -1.
func (vol *Volume) find(name string) int {
	for i := range vol.dir {
		if vol.dir[i].used && vol.dir[i].name == name {
			return i
		}
	}
	return -1
}

func validName(name string) bool {
	if len(name) == 0 || len(name) > nameLen {
		return false
	}
	for i := 0; i < len(name); i++ {
		if name[i] == 0x00 {
			return false
		}
	}
	return true
}

// Open implements the filestore.Store interface.
func (vol *Volume) Open(name string) (filestore.File, error) {
	slot := vol.find(name)
	if slot == -1 {
		return nil, curated.Errorf(filestore.NotFound, name)
	}
	return &file{vol: vol, slot: slot, name: name}, nil
}

// Create implements the filestore.Store interface.
func (vol *Volume) Create(name string) (filestore.File, error) {
	if !validName(name) {
		return nil, curated.Errorf(filestore.BadName, name)
	}

	slot := vol.find(name)
	if slot == -1 {
		for i := range vol.dir {
			if !vol.dir[i].used {
				slot = i
				break
			}
		}
		if slot == -1 {
			return nil, curated.Errorf(filestore.DirectoryFull)
		}
		vol.dir[slot] = entry{used: true, name: name}
	}

	if err := vol.truncate(slot, 0); err != nil {
		return nil, err
	}

	return &file{vol: vol, slot: slot, name: name, writable: true}, nil
}

// Remove implements the filestore.Store interface.
func (vol *Volume) Remove(name string) error {
	slot := vol.find(name)
	if slot == -1 {
		return curated.Errorf(filestore.NotFound, name)
	}
	vol.freeChain(vol.dir[slot].first)
	vol.dir[slot] = entry{}
	return vol.sync(slot)
}

// List implements the filestore.Store interface.
func (vol *Volume) List() ([]filestore.Entry, error) {
	l := make([]filestore.Entry, 0, len(vol.dir))
	for _, e := range vol.dir {
		if e.used {
			l = append(l, filestore.Entry{Name: e.name, Size: e.size})
		}
	}
	return l, nil
}

// memory is a Device backed by a byte slice.
type memory struct {
	data []byte
}

func (m *memory) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memory) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, curated.Errorf("volume: write outside of memory device (%d)", off)
	}
	return copy(m.data[off:], p), nil
}
