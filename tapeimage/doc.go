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


// Package tapeimage converts between tape images and sound files.
//
// A tape image is a sequence of unsigned 8-bit mono samples at SampleRate.
// This is the format of tape files stored on the volume and is the format of
// the data transferred by the deck, one block of 512 samples at a time.
//
// Sound files can be imported from WAV or MP3 files. Only the first channel
// of a stereo file is used and the samples are resampled to SampleRate.
// Images can be exported as WAV files.
//
// The Describe() function summarises an image as a list of CRC-16 checksums,
// one for each block.
package tapeimage
