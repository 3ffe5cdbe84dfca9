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


package tapeimage

import (
	"fmt"
	"strings"

	"github.com/inhies/go-bytesize"
	"github.com/sigurn/crc16"
)

// BlockSize of the tape data transferred by the deck.
const BlockSize = 512

var crcTable = crc16.MakeTable(crc16.CRC16_XMODEM)

// Summary of a tape image.
type Summary struct {
	Name   string
	Size   int
	Blocks []uint16
}

// Describe returns a summary of the tape data. Each block is summarised by
// its CRC-16/XMODEM checksum. A partial final block is summarised as if it was
// padded with zeros, as it would be when it is loaded by the deck.
func Describe(name string, data []byte) Summary {
	s := Summary{
		Name: name,
		Size: len(data),
	}

	var block [BlockSize]byte
	for i := 0; i < len(data); i += BlockSize {
		n := copy(block[:], data[i:])
		clear(block[n:])
		s.Blocks = append(s.Blocks, crc16.Checksum(block[:], crcTable))
	}

	return s
}

// Duration of the tape in seconds.
func (s Summary) Duration() float64 {
	return float64(s.Size) / SampleRate
}

func (s Summary) String() string {
	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("%-20s %8s %6.1fs %3d blocks", s.Name, bytesize.New(float64(s.Size)), s.Duration(), len(s.Blocks)))
	for i, c := range s.Blocks {
		if i%8 == 0 {
			b.WriteString("\n   ")
		}
		b.WriteString(fmt.Sprintf(" %04x", c))
	}
	return b.String()
}
