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
	"io"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jetsetilly/syscon/curated"
	"github.com/jetsetilly/syscon/logger"
)

const logTag = "tapeimage"

// SampleRate of all tape images.
const SampleRate = 22050

// Sentinal patterns for errors returned by the tapeimage package.
const (
	UnsupportedFormat = "tapeimage: unsupported format: %s"
	DecodeError       = "tapeimage: %s: %v"
)

// Image is a tape image.
type Image struct {
	Name string

	// unsigned 8-bit samples. 0x80 is silence
	Data []byte
}

// Import a sound file. The format of the file is decided by the filename
// extension.
func Import(name string, r io.ReadSeeker) (*Image, error) {
	var samples []float64
	var rate int
	var err error

	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		samples, rate, err = decodeWAV(r)
	case ".mp3":
		samples, rate, err = decodeMP3(r)
	default:
		return nil, curated.Errorf(UnsupportedFormat, name)
	}
	if err != nil {
		return nil, err
	}

	logger.Logf(logger.Allow, logTag, "%s: %d samples at %dHz", name, len(samples), rate)

	return &Image{
		Name: name,
		Data: quantise(resample(samples, rate, SampleRate)),
	}, nil
}

// decode WAV file into samples in the range -1.0 to 1.0. only the first
// channel is used
func decodeWAV(r io.ReadSeeker) ([]float64, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, curated.Errorf(DecodeError, "wav", "not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, curated.Errorf(DecodeError, "wav", err)
	}

	chans := int(dec.NumChans)
	if chans == 0 {
		return nil, 0, curated.Errorf(DecodeError, "wav", "no channels")
	}

	depth := int(dec.BitDepth)

	samples := make([]float64, 0, len(buf.Data)/chans)
	for i := 0; i < len(buf.Data); i += chans {
		v := buf.Data[i]

		// 8-bit wav data is unsigned. all other bit depths are signed
		var f float64
		if depth == 8 {
			f = float64(v-128) / 128.0
		} else {
			f = float64(v) / float64(int(1)<<(depth-1))
		}
		samples = append(samples, f)
	}

	return samples, int(dec.SampleRate), nil
}

// decode MP3 file into samples in the range -1.0 to 1.0. the decoded stream
// is always 16-bit little-endian stereo, so four bytes per sample. only the
// left channel is used
func decodeMP3(r io.Reader) ([]float64, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, curated.Errorf(DecodeError, "mp3", err)
	}

	var samples []float64

	chunk := make([]byte, 4096)
	for {
		n, err := io.ReadFull(dec, chunk)
		for i := 0; i+1 < n; i += 4 {
			v := int16(uint16(chunk[i]) | uint16(chunk[i+1])<<8)
			samples = append(samples, float64(v)/32768.0)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, 0, curated.Errorf(DecodeError, "mp3", err)
		}
	}

	return samples, dec.SampleRate(), nil
}

// nearest neighbour resampling
func resample(samples []float64, from int, to int) []float64 {
	if from == to || from <= 0 || len(samples) == 0 {
		return samples
	}

	n := int(int64(len(samples)) * int64(to) / int64(from))
	out := make([]float64, n)
	for i := range out {
		out[i] = samples[int64(i)*int64(from)/int64(to)]
	}
	return out
}

// convert samples to unsigned 8-bit
func quantise(samples []float64) []byte {
	out := make([]byte, len(samples))
	for i, f := range samples {
		v := int(f*128.0) + 128
		out[i] = byte(max(0, min(255, v)))
	}
	return out
}

// Export image as an 8-bit mono WAV file.
func Export(w io.WriteSeeker, img *Image) error {
	enc := wav.NewEncoder(w, SampleRate, 8, 1, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  SampleRate,
		},
		SourceBitDepth: 8,
		Data:           make([]int, len(img.Data)),
	}
	for i, b := range img.Data {
		buf.Data[i] = int(b)
	}

	if err := enc.Write(buf); err != nil {
		return curated.Errorf("tapeimage: export: %v", err)
	}
	if err := enc.Close(); err != nil {
		return curated.Errorf("tapeimage: export: %v", err)
	}

	logger.Logf(logger.Allow, logTag, "exported %s: %d samples", img.Name, len(img.Data))

	return nil
}
