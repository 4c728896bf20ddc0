// seehuhn.de/go/qapdf - typeset plain text as minimal PDF files
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package tone turns text into a sequence of short sine tones, one per
// character, and stores the result as a WAV file.
//
// The pitch of each tone is derived from the character code, so that the
// rhythm of a text can be heard.  The output is mono, 16-bit PCM.
package tone

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Default settings.
const (
	DefaultRate     = 8000
	DefaultDuration = 0.01
)

// amplitude is the peak sample value, half of the full 16-bit range.
const amplitude = 32767 * 0.5

// Options control the tone synthesis.  The zero value selects the defaults.
type Options struct {
	// Rate is the number of samples per second.
	Rate int

	// Duration is the length of the tone for a single character, in seconds.
	Duration float64
}

func (opt *Options) rate() int {
	if opt == nil || opt.Rate == 0 {
		return DefaultRate
	}
	return opt.Rate
}

func (opt *Options) duration() float64 {
	if opt == nil || opt.Duration == 0 {
		return DefaultDuration
	}
	return opt.Duration
}

// SamplesPerChar returns the number of samples used for every character.
func (opt *Options) SamplesPerChar() int {
	return int(float64(opt.rate()) * opt.duration())
}

func (opt *Options) check() error {
	rate := opt.rate()
	if rate <= 0 || rate > math.MaxInt32 {
		return fmt.Errorf("invalid sample rate %d", rate)
	}
	if d := opt.duration(); !(d > 0) || math.IsInf(d, 0) {
		return fmt.Errorf("invalid duration %g", d)
	}
	return nil
}

// Frequency returns the pitch, in Hz, used for the character r.
// The result is between 300 and 790 Hz.
func Frequency(r rune) float64 {
	if r < 0 {
		r = -r
	}
	return 300 + float64(r%50)*10
}

// Synthesize returns the samples for the given text.
// Every character, including white space and line breaks, contributes
// one tone which starts at phase zero.
func Synthesize(text string, opt *Options) ([]int16, error) {
	err := opt.check()
	if err != nil {
		return nil, err
	}
	rate := float64(opt.rate())
	n := opt.SamplesPerChar()

	var res []int16
	for _, r := range text {
		freq := Frequency(r)
		for i := range n {
			t := float64(i) / rate
			res = append(res, int16(amplitude*math.Sin(2*math.Pi*freq*t)))
		}
	}
	return res, nil
}

var errTooLong = errors.New("too much audio data for a WAV file")

// wavHeader is the RIFF header of a PCM WAV file, including the start of
// the data chunk.
type wavHeader struct {
	RiffID        [4]byte
	RiffSize      uint32
	WaveID        [4]byte
	FmtID         [4]byte
	FmtSize       uint32
	Format        uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataID        [4]byte
	DataSize      uint32
}

// headerSize is the encoded size of wavHeader.
const headerSize = 44

// WriteWAV writes mono 16-bit PCM samples as a WAV file.
func WriteWAV(w io.Writer, samples []int16, rate int) error {
	if rate <= 0 || rate > math.MaxInt32 {
		return fmt.Errorf("invalid sample rate %d", rate)
	}
	dataSize := uint64(len(samples)) * 2
	if dataSize > math.MaxUint32-(headerSize-8) {
		return errTooLong
	}

	hdr := &wavHeader{
		RiffID:        [4]byte{'R', 'I', 'F', 'F'},
		RiffSize:      uint32(dataSize) + headerSize - 8,
		WaveID:        [4]byte{'W', 'A', 'V', 'E'},
		FmtID:         [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		Format:        1, // PCM
		Channels:      1,
		SampleRate:    uint32(rate),
		ByteRate:      uint32(rate) * 2,
		BlockAlign:    2,
		BitsPerSample: 16,
		DataID:        [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(dataSize),
	}
	err := binary.Write(w, binary.LittleEndian, hdr)
	if err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, samples)
}

// Write synthesizes the tones for text and writes them to w as a WAV file.
func Write(w io.Writer, text string, opt *Options) error {
	samples, err := Synthesize(text, opt)
	if err != nil {
		return err
	}
	return WriteWAV(w, samples, opt.rate())
}

// Create writes the WAV file for text to the named file.
func Create(fileName string, text string, opt *Options) error {
	fd, err := os.Create(fileName)
	if err != nil {
		return err
	}
	err = Write(fd, text, opt)
	err2 := fd.Close()
	if err == nil {
		err = err2
	}
	return err
}
