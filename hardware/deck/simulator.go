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

import (
	"io"

	"github.com/jetsetilly/syscon/logger"
)

// tag string used in calls to Log().
const logTag = "deck"

// BlockDevice is the storage that the deck reads from and writes to. Tape
// blocks are transferred directly between the deck and the device, bypassing
// the file system.
type BlockDevice interface {
	ReadBlock(addr uint32, data []byte) error
	WriteBlock(addr uint32, data []byte) error
}

// Monitor implementations are sent every block rendered by the deck.
type Monitor interface {
	TapeBlock(mode Status, data []byte)
}

// DefaultTicksPerBlock is the number of calls to Tick() required to render a
// single block of tape data.
const DefaultTicksPerBlock = 4

// Simulator behaves like the deck hardware. It implements the Bus interface
// and should be used with a Registers instance.
//
// Buttons on the deck are pressed with the Press() function. These have the
// same effect as the equivalent command being written to the command
// register.
type Simulator struct {
	dev     BlockDevice
	monitor Monitor

	// logging permission. defaults to logger.Allow
	Log logger.Permission

	status Status

	// bytes written to the address register and whether all four bytes have
	// been written since the last LOAD_BLOCK
	latch   [4]uint8
	latched bool

	// number of ticks to render one block and the number of ticks remaining
	// for the block currently being rendered
	ticksPerBlock int
	rendering     int

	// deck will stop once the current block has been rendered
	stopAfter bool

	// an interrupt has been raised and has not been taken
	irq bool

	// source of data when recording. if nil the recording is silent
	recordSource io.Reader

	// number of blocks transferred since the last PLAY or RECORD
	blocks int

	buf [BlockSize]byte
}

// NewSimulator is the preferred method of initialisation for the Simulator
// type.
func NewSimulator(dev BlockDevice, ticksPerBlock int) *Simulator {
	if ticksPerBlock <= 0 {
		ticksPerBlock = DefaultTicksPerBlock
	}
	return &Simulator{
		dev:           dev,
		Log:           logger.Allow,
		ticksPerBlock: ticksPerBlock,
	}
}

// SetMonitor sets the monitor that will receive every rendered block. A nil
// value removes the monitor.
func (sim *Simulator) SetMonitor(m Monitor) {
	sim.monitor = m
}

// SetRecordSource sets the data that will be recorded when the deck is in
// recording mode. Recording stops automatically when the source is exhausted.
func (sim *Simulator) SetRecordSource(r io.Reader) {
	sim.recordSource = r
}

// State returns the current value of the status register. It is the same as
// Peek(StatusRegister) but without the need to know about register addresses.
func (sim *Simulator) State() Status {
	return sim.status
}

// Blocks returns the number of blocks transferred since the deck started.
func (sim *Simulator) Blocks() int {
	return sim.blocks
}

// Busy returns true if the deck is rendering a block, or the motor is
// spinning up.
func (sim *Simulator) Busy() bool {
	return sim.rendering > 0
}

// Peek implements the Bus interface.
func (sim *Simulator) Peek(addr uint16) uint8 {
	switch addr {
	case StatusRegister:
		return uint8(sim.status)
	case AddressRegister, AddressRegister + 1, AddressRegister + 2, AddressRegister + 3:
		return sim.latch[addr-AddressRegister]
	}
	return 0
}

// Poke implements the Bus interface.
func (sim *Simulator) Poke(addr uint16, data uint8) {
	switch addr {
	case CommandRegister:
		sim.command(Command(data))
	case AddressRegister, AddressRegister + 1, AddressRegister + 2:
		sim.latch[addr-AddressRegister] = data
	case AddressRegister + 3:
		sim.latch[3] = data
		sim.latched = true
	}
}

// Press a button on the deck.
func (sim *Simulator) Press(cmd Command) {
	sim.command(cmd)
}

// TakeInterrupt returns true if the deck has raised an interrupt since the
// last call to TakeInterrupt().
func (sim *Simulator) TakeInterrupt() bool {
	irq := sim.irq
	sim.irq = false
	return irq
}

// Tick advances the deck hardware by one unit of time.
func (sim *Simulator) Tick() {
	if sim.rendering == 0 {
		return
	}

	sim.rendering--
	if sim.rendering > 0 {
		return
	}

	if sim.stopAfter {
		sim.stop()
		return
	}

	sim.status |= NeedBlock
	sim.irq = true
}

func (sim *Simulator) address() uint32 {
	return uint32(sim.latch[0]) | uint32(sim.latch[1])<<8 | uint32(sim.latch[2])<<16 | uint32(sim.latch[3])<<24
}

func (sim *Simulator) command(cmd Command) {
	switch cmd {
	case CmdPlay, CmdRecord:
		if sim.status.Active() {
			logger.Logf(sim.Log, logTag, "%s ignored while %s", cmd, sim.status)
			return
		}

		if cmd == CmdPlay {
			sim.status = Playing
		} else {
			sim.status = Recording
		}
		logger.Logf(sim.Log, logTag, "%s", sim.status)

		// the motor takes the same time as a block to spin up
		sim.rendering = sim.ticksPerBlock
		sim.stopAfter = false
		sim.latched = false
		sim.blocks = 0
		sim.irq = true

	case CmdStop:
		sim.stop()

	case CmdLoadBlock:
		sim.loadBlock()

	default:
		logger.Logf(sim.Log, logTag, "unrecognised command (%#02x)", uint8(cmd))
	}
}

func (sim *Simulator) stop() {
	if sim.status != 0 {
		logger.Logf(sim.Log, logTag, "stopped after %d blocks", sim.blocks)
	}
	sim.status = 0
	sim.rendering = 0
	sim.stopAfter = false
	sim.irq = true
}

func (sim *Simulator) loadBlock() {
	if !sim.status.Active() {
		logger.Logf(sim.Log, logTag, "%s ignored while stopped", CmdLoadBlock)
		return
	}

	sim.status &^= NeedBlock
	sim.rendering = sim.ticksPerBlock

	// a LOAD_BLOCK without a new address keeps the tape moving but nothing is
	// transferred
	if !sim.latched {
		return
	}
	sim.latched = false

	addr := sim.address()

	if sim.status.Is(Playing) {
		if err := sim.dev.ReadBlock(addr, sim.buf[:]); err != nil {
			logger.Logf(sim.Log, logTag, "read error: %v", err)
			sim.stop()
			return
		}
	} else {
		sim.fillRecording()
		if err := sim.dev.WriteBlock(addr, sim.buf[:]); err != nil {
			logger.Logf(sim.Log, logTag, "write error: %v", err)
			sim.stop()
			return
		}
	}

	sim.blocks++

	if sim.monitor != nil {
		sim.monitor.TapeBlock(sim.status, sim.buf[:])
	}
}

// fillRecording fills the block buffer from the record source. short blocks
// are padded with zeros.
func (sim *Simulator) fillRecording() {
	n := 0
	if sim.recordSource != nil {
		var err error
		n, err = io.ReadFull(sim.recordSource, sim.buf[:])
		if err != nil {
			// io.EOF and io.ErrUnexpectedEOF both mean the source is exhausted
			sim.stopAfter = true
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				logger.Logf(sim.Log, logTag, "record source: %v", err)
			}
		}
	}
	for i := n; i < len(sim.buf); i++ {
		sim.buf[i] = 0
	}
}
