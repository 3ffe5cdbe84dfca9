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

// Package volume implements the filestore.Store interface on a block device.
// The block device is either a region of memory or an image file on the
// host.
//
// The volume is divided into 512 byte blocks. The layout is:
//
//	block 0             header
//	1 ... n             allocation table. one uint32 per block
//	n+1 ... n+d         directory. 64 byte entries
//	n+d+1 ...           data
//
// The allocation table entry for a block is either zero (free), the number of
// the next block in a file, or the end-of-chain marker. Blocks used by the
// header, the allocation table and the directory are marked as reserved.
//
// All values are stored little-endian.
//
// Block numbers are the physical addresses used by the deck hardware and are
// the values returned by File.Block() and File.AllocateBlock(). The Volume
// type also implements deck.BlockDevice.
//
// An image file can only be opened by one process at a time. This is enforced
// with an advisory lock on the image file.
package volume
