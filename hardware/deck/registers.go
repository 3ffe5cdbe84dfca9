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

// Registers implements the Port interface for a deck mapped onto a Bus.
type Registers struct {
	bus  Bus
	base uint16
}

// NewRegisters is the preferred method of initialisation for the Registers
// type. The base argument is the address of the status register on the bus.
func NewRegisters(bus Bus, base uint16) *Registers {
	return &Registers{
		bus:  bus,
		base: base,
	}
}

// Status implements the Port interface.
func (r *Registers) Status() Status {
	return Status(r.bus.Peek(r.base + StatusRegister))
}

// Command implements the Port interface.
func (r *Registers) Command(cmd Command) {
	r.bus.Poke(r.base+CommandRegister, uint8(cmd))
}

// WriteBlockAddress implements the Port interface. The address is written
// little-endian, one byte at a time. The hardware latches the value when the
// last byte is written.
func (r *Registers) WriteBlockAddress(addr uint32) {
	for i := uint16(0); i < 4; i++ {
		r.bus.Poke(r.base+AddressRegister+i, uint8(addr>>(8*i)))
	}
}
