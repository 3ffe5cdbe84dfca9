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

package deck

import "strings"

// Status is the value of the deck's status register.
type Status uint8

// List of status bits.
const (
	Playing Status = 1 << iota
	Recording
	NeedBlock
)

// Active returns true if either the Playing or Recording bit is set.
func (st Status) Active() bool {
	return st&(Playing|Recording) != 0
}

// Is returns true if all bits in mask are set.
func (st Status) Is(mask Status) bool {
	return st&mask == mask
}

func (st Status) String() string {
	if st == 0 {
		return "stopped"
	}
	s := make([]string, 0, 3)
	if st&Playing == Playing {
		s = append(s, "playing")
	}
	if st&Recording == Recording {
		s = append(s, "recording")
	}
	if st&NeedBlock == NeedBlock {
		s = append(s, "need block")
	}
	return strings.Join(s, "|")
}

// Command is a value written to the deck's command register.
type Command uint8

// List of commands.
const (
	CmdStop Command = iota + 1
	CmdLoadBlock
	CmdPlay
	CmdRecord
)

func (cmd Command) String() string {
	switch cmd {
	case CmdStop:
		return "STOP"
	case CmdLoadBlock:
		return "LOAD_BLOCK"
	case CmdPlay:
		return "PLAY"
	case CmdRecord:
		return "RECORD"
	}
	return "unknown"
}

// BlockSize is the number of bytes loaded by the deck with every LOAD_BLOCK
// command.
const BlockSize = 512

// Register offsets from the base address of the deck.
const (
	StatusRegister  uint16 = 0x00
	CommandRegister uint16 = 0x01

	// the block address register is four bytes wide. the value is latched
	// into the tape position register when the final byte is written
	AddressRegister uint16 = 0x02

	// number of addresses occupied by the deck
	RegisterSpan uint16 = 0x06
)

// Port is the view of the deck hardware that the cassette engine requires.
type Port interface {
	Status() Status
	Command(cmd Command)
	WriteBlockAddress(addr uint32)
}

// Bus is a byte wide memory-mapped view of a hardware device.
type Bus interface {
	Peek(addr uint16) uint8
	Poke(addr uint16, data uint8)
}
