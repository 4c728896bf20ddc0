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

package tone

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequency(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		want float64
	}{
		{name: "letter A", r: 'A', want: 450},
		{name: "multiple of 50", r: 'd', want: 300},
		{name: "newline", r: '\n', want: 400},
		{name: "highest", r: '1', want: 790},
		{name: "non-ASCII", r: '\u00e9', want: 630},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Frequency(tt.r))
		})
	}
}

func TestSynthesize(t *testing.T) {
	samples, err := Synthesize("A", nil)
	require.NoError(t, err)
	require.Len(t, samples, 80)
	assert.Equal(t, []int16{0, 5670, 10640, 14294, 16181, 16068}, samples[:6])
	for _, s := range samples {
		assert.LessOrEqual(t, s, int16(16383))
		assert.GreaterOrEqual(t, s, int16(-16383))
	}

	samples, err = Synthesize("h\u00e9llo", nil)
	require.NoError(t, err)
	assert.Len(t, samples, 5*80, "one tone per character, not per byte")

	samples, err = Synthesize("ab", &Options{Rate: 44100, Duration: 0.01})
	require.NoError(t, err)
	assert.Len(t, samples, 2*441)

	samples, err = Synthesize("", nil)
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestInvalidOptions(t *testing.T) {
	for _, opt := range []*Options{
		{Rate: -1},
		{Duration: -0.5},
	} {
		_, err := Synthesize("x", opt)
		assert.Error(t, err)
	}
	assert.Error(t, WriteWAV(&bytes.Buffer{}, nil, 0))
}

func TestWriteWAV(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteWAV(buf, []int16{1, -1, 0x1234}, 8000)
	require.NoError(t, err)

	data := buf.Bytes()
	require.Len(t, data, headerSize+6)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, uint32(len(data)-8), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, "WAVEfmt ", string(data[8:16]))
	assert.Equal(t, uint32(16), binary.LittleEndian.Uint32(data[16:20]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[20:22]), "PCM format")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[22:24]), "mono")
	assert.Equal(t, uint32(8000), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(data[28:32]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[32:34]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]))
	assert.Equal(t, "data", string(data[36:40]))
	assert.Equal(t, uint32(6), binary.LittleEndian.Uint32(data[40:44]))
	assert.Equal(t, []byte{0x01, 0x00, 0xff, 0xff, 0x34, 0x12}, data[44:])
}

func TestCreate(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "test.wav")
	err := Create(fname, "SELECT 1;", &Options{Duration: 0.02})
	require.NoError(t, err)

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	assert.Len(t, data, headerSize+9*160*2)
}
