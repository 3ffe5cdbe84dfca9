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


// Package wavwriter allows the tape data rendered by the deck to be written
// to disk as a WAV file. Note that tape data is buffered in memory in its
// entirety, and written to disk when End() is called. It is therefore
// probably only suitable for testing purposes.
package wavwriter

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/jetsetilly/syscon/curated"
	"github.com/jetsetilly/syscon/hardware/deck"
	"github.com/jetsetilly/syscon/logger"
)

// WavWriter implements the deck.Monitor interface.
type WavWriter struct {
	filename   string
	sampleRate int

	// whether recorded blocks are written as well as played blocks
	recorded bool

	buffer []int
}

// New is the preferred method of initialisation for the WavWriter type. The
// sample rate should be the rate at which the tape data was created.
func New(filename string, sampleRate int) (*WavWriter, error) {
	if filename == "" {
		return nil, curated.Errorf("wavwriter: %v", "no filename")
	}
	if sampleRate <= 0 {
		return nil, curated.Errorf("wavwriter: %v", "invalid sample rate")
	}

	return &WavWriter{
		filename:   filename,
		sampleRate: sampleRate,
		buffer:     make([]int, 0, deck.BlockSize*64),
	}, nil
}

// IncludeRecordings specifies whether blocks rendered while recording are
// included in the output. By default, only played blocks are included.
func (aw *WavWriter) IncludeRecordings(include bool) {
	aw.recorded = include
}

// Len returns the number of samples buffered so far.
func (aw *WavWriter) Len() int {
	return len(aw.buffer)
}

// TapeBlock implements the deck.Monitor interface.
func (aw *WavWriter) TapeBlock(mode deck.Status, data []byte) {
	if mode.Is(deck.Recording) && !aw.recorded {
		return
	}
	for _, b := range data {
		aw.buffer = append(aw.buffer, int(b))
	}
}

// End writes the buffered tape data to the WAV file.
func (aw *WavWriter) End() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	enc := wav.NewEncoder(f, aw.sampleRate, 8, 1, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  aw.sampleRate,
		},
		SourceBitDepth: 8,
		Data:           aw.buffer,
	}

	logger.Logf(logger.Allow, "wavwriter", "writing tape audio to %s", aw.filename)

	if err := enc.Write(buf); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	if err := enc.Close(); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	return nil
}
