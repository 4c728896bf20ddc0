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

package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// xRefEntryLen is the length of one entry in a cross-reference table,
// including the end-of-line marker.
const xRefEntryLen = 20

type xRefEntry struct {
	Pos        int64
	Generation uint16
}

// IsFree reports whether the entry describes a free object.
func (entry *xRefEntry) IsFree() bool {
	return entry == nil || entry.Pos < 0
}

// writeXRefTable writes a single-section cross-reference table, followed by
// the trailer dictionary.  Every entry is exactly 20 bytes long: a 10-digit
// offset, a 5-digit generation number, the type flag, a space and a newline.
func (pdf *Writer) writeXRefTable(trailer Dict) error {
	_, err := fmt.Fprintf(pdf.w, "xref\n0 %d\n", pdf.nextRef)
	if err != nil {
		return err
	}
	for i := 0; i < pdf.nextRef; i++ {
		entry := pdf.xref[i]
		if !entry.IsFree() {
			_, err = fmt.Fprintf(pdf.w, "%010d %05d n \n",
				entry.Pos, entry.Generation)
		} else {
			_, err = pdf.w.Write([]byte("0000000000 65535 f \n"))
		}
		if err != nil {
			return err
		}
	}

	_, err = pdf.w.Write([]byte("trailer\n"))
	if err != nil {
		return err
	}
	return trailer.PDF(pdf.w)
}

// findXRef returns the offset given after the last "startxref" keyword.
func (r *Reader) findXRef() (int64, error) {
	pos := bytes.LastIndex(r.data, []byte("startxref"))
	if pos < 0 {
		return 0, &MalformedFileError{
			Pos: 0,
			Err: errors.New("startxref not found"),
		}
	}
	s := r.scannerAt(int64(pos) + 9)
	s.skipSpace()
	xRefPos, err := s.readInt()
	if err != nil {
		return 0, err
	}
	if xRefPos <= 0 || int64(xRefPos) >= r.size {
		return 0, &MalformedFileError{
			Pos: s.filePos(),
			Err: errors.New("invalid xref position"),
		}
	}
	return int64(xRefPos), nil
}

// readXRef reads the cross-reference table starting at the given offset,
// together with the trailer dictionary.  Only classic tables are
// supported; files with /Prev chains or cross-reference streams are
// rejected.
func (r *Reader) readXRef(start int64) (map[int]*xRefEntry, Dict, error) {
	s := r.scannerAt(start)
	if !s.startsWith("xref") {
		return nil, nil, &MalformedFileError{
			Pos: start,
			Err: errors.New("cross-reference table not found"),
		}
	}
	s.pos += 4
	s.skipSpace()

	xref := make(map[int]*xRefEntry)
	for s.pos < len(s.data) && isDigit(s.data[s.pos]) {
		first, err := s.readInt()
		if err != nil {
			return nil, nil, err
		}
		s.skipSpace()
		count, err := s.readInt()
		if err != nil {
			return nil, nil, err
		}
		s.skipSpace()
		if first < 0 || count < 0 {
			return nil, nil, s.errorf("invalid xref subsection %d %d", first, count)
		}
		for i := int(first); i < int(first+count); i++ {
			entry, err := s.readXRefEntry()
			if err != nil {
				return nil, nil, err
			}
			xref[i] = entry
		}
		s.skipSpace()
	}

	err := s.expect("trailer")
	if err != nil {
		return nil, nil, err
	}
	s.skipSpace()
	trailer, err := s.readDict()
	if err != nil {
		return nil, nil, err
	}
	if _, hasPrev := trailer["Prev"]; hasPrev {
		return nil, nil, &MalformedFileError{
			Pos: start,
			Err: errors.New("incremental updates not supported"),
		}
	}
	return xref, trailer, nil
}

// readXRefEntry decodes one fixed-width entry "oooooooooo ggggg n" of a
// cross-reference table.
func (s *scanner) readXRefEntry() (*xRefEntry, error) {
	buf := s.peek(xRefEntryLen)
	if len(buf) < xRefEntryLen {
		return nil, s.unexpectedEOF()
	}
	pos, err := strconv.ParseInt(string(buf[:10]), 10, 64)
	if err != nil {
		return nil, &MalformedFileError{Pos: s.filePos(), Err: err}
	}
	gen, err := strconv.ParseUint(string(buf[11:16]), 10, 16)
	if err != nil {
		return nil, &MalformedFileError{Pos: s.filePos(), Err: err}
	}
	entry := &xRefEntry{Pos: pos, Generation: uint16(gen)}
	switch buf[17] {
	case 'n':
	case 'f':
		entry.Pos = -1
	default:
		return nil, s.errorf("malformed xref entry %q", buf)
	}
	s.pos += xRefEntryLen
	return entry, nil
}
