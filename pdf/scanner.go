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
	"io"
	"strconv"
)

// scanner parses PDF objects from the contents of a file held in memory.
// All positions are byte offsets from the start of the file.
type scanner struct {
	data []byte
	pos  int

	// getInt resolves the /Length entries of streams.
	getInt func(Object) (Integer, error)
}

func newScanner(data []byte, pos int64, getInt func(Object) (Integer, error)) *scanner {
	if getInt == nil {
		getInt = directInt
	}
	return &scanner{data: data, pos: int(pos), getInt: getInt}
}

func (s *scanner) filePos() int64 {
	return int64(s.pos)
}

func (s *scanner) errorf(format string, args ...any) error {
	return &MalformedFileError{Pos: int64(s.pos), Err: fmt.Errorf(format, args...)}
}

func (s *scanner) unexpectedEOF() error {
	return &MalformedFileError{Pos: int64(s.pos), Err: io.ErrUnexpectedEOF}
}

// peek returns up to n bytes of input, without consuming them.
func (s *scanner) peek(n int) []byte {
	return s.data[s.pos:min(s.pos+n, len(s.data))]
}

func (s *scanner) startsWith(kw string) bool {
	return bytes.HasPrefix(s.data[s.pos:], []byte(kw))
}

// expect consumes kw, which must be the next input.
func (s *scanner) expect(kw string) error {
	if !s.startsWith(kw) {
		return s.errorf("expected %q but found %q", kw, s.peek(len(kw)))
	}
	s.pos += len(kw)
	return nil
}

// skipSpace skips white space and comments.
func (s *scanner) skipSpace() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case c == '%':
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
		case isSpace[c]:
			s.pos++
		default:
			return
		}
	}
}

// regular consumes a run of regular characters.
func (s *scanner) regular() []byte {
	start := s.pos
	for s.pos < len(s.data) && !isSpace[s.data[s.pos]] && !isDelimiter[s.data[s.pos]] {
		s.pos++
	}
	return s.data[start:s.pos]
}

// readIndirect reads an object of the form "N G obj ... endobj".
func (s *scanner) readIndirect() (Object, *Reference, error) {
	number, err := s.readInt()
	if err != nil {
		return nil, nil, err
	}
	s.skipSpace()
	generation, err := s.readInt()
	if err != nil {
		return nil, nil, err
	}
	if number < 0 || generation < 0 || generation > 65535 {
		return nil, nil, s.errorf("invalid object ID %d %d", number, generation)
	}
	s.skipSpace()
	err = s.expect("obj")
	if err != nil {
		return nil, nil, err
	}
	s.skipSpace()

	obj, err := s.readObject()
	if err != nil {
		return nil, nil, err
	}
	s.skipSpace()
	err = s.expect("endobj")
	if err != nil {
		return nil, nil, err
	}

	ref := &Reference{
		Number:     int(number),
		Generation: uint16(generation),
	}
	return obj, ref, nil
}

// readObject reads a direct object, or a reference to an indirect object.
func (s *scanner) readObject() (Object, error) {
	if s.pos >= len(s.data) {
		return nil, s.unexpectedEOF()
	}
	c := s.data[s.pos]
	switch {
	case c == '/':
		return s.readName()
	case c == '(':
		return s.readLiteral()
	case c == '[':
		return s.readArray()
	case s.startsWith("<<"):
		dict, err := s.readDict()
		if err != nil {
			return nil, err
		}
		save := s.pos
		s.skipSpace()
		if !s.startsWith("stream") {
			s.pos = save
			return dict, nil
		}
		return s.readStreamData(dict)
	case c == '<':
		return s.readHex()
	case c == '+' || c == '-' || c == '.' || isDigit(c):
		return s.readNumberOrReference()
	}

	word := s.regular()
	switch string(word) {
	case "null":
		return nil, nil
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	}
	s.pos -= len(word)
	return nil, s.errorf("object expected")
}

// readInt reads an optionally signed integer.
func (s *scanner) readInt() (Integer, error) {
	start := s.pos
	if s.pos < len(s.data) && (s.data[s.pos] == '+' || s.data[s.pos] == '-') {
		s.pos++
	}
	for s.pos < len(s.data) && isDigit(s.data[s.pos]) {
		s.pos++
	}
	x, err := strconv.ParseInt(string(s.data[start:s.pos]), 10, 64)
	if err != nil {
		s.pos = start
		return 0, &MalformedFileError{Pos: int64(start), Err: err}
	}
	return Integer(x), nil
}

// readNumberOrReference reads an Integer, a Real, or a reference "N G R".
func (s *scanner) readNumberOrReference() (Object, error) {
	start := s.pos
	if c := s.data[s.pos]; c == '+' || c == '-' {
		s.pos++
	}
	hasDot := false
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '.' && !hasDot {
			hasDot = true
		} else if !isDigit(c) {
			break
		}
		s.pos++
	}
	word := string(s.data[start:s.pos])

	if hasDot {
		x, err := strconv.ParseFloat(word, 64)
		if err != nil {
			return nil, &MalformedFileError{Pos: int64(start), Err: err}
		}
		return Real(x), nil
	}
	x, err := strconv.ParseInt(word, 10, 64)
	if err != nil {
		return nil, &MalformedFileError{Pos: int64(start), Err: err}
	}
	if x < 0 || !isDigit(word[0]) {
		return Integer(x), nil
	}

	// look ahead for "G R"
	end := s.pos
	s.skipSpace()
	if s.pos > end && s.pos < len(s.data) && isDigit(s.data[s.pos]) {
		gen, err := s.readInt()
		if err == nil && gen <= 65535 {
			s.skipSpace()
			if s.startsWith("R") && s.atTokenEnd(s.pos+1) {
				s.pos++
				return &Reference{Number: int(x), Generation: uint16(gen)}, nil
			}
		}
	}
	s.pos = end
	return Integer(x), nil
}

func (s *scanner) atTokenEnd(pos int) bool {
	return pos >= len(s.data) || isSpace[s.data[pos]] || isDelimiter[s.data[pos]]
}

// readLiteral reads a ()-delimited string.
func (s *scanner) readLiteral() (String, error) {
	s.pos++
	res := []byte{}
	depth := 0
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return String(res), nil
			}
			depth--
		case '\r':
			// any end-of-line marker reads as a single newline
			if s.pos < len(s.data) && s.data[s.pos] == '\n' {
				s.pos++
			}
			c = '\n'
		case '\\':
			if s.pos >= len(s.data) {
				return nil, s.unexpectedEOF()
			}
			c = s.data[s.pos]
			s.pos++
			switch c {
			case 'n':
				c = '\n'
			case 'r':
				c = '\r'
			case 't':
				c = '\t'
			case 'b':
				c = '\b'
			case 'f':
				c = '\f'
			case '\r':
				if s.pos < len(s.data) && s.data[s.pos] == '\n' {
					s.pos++
				}
				continue
			case '\n':
				continue
			case '0', '1', '2', '3', '4', '5', '6', '7':
				c -= '0'
				for k := 0; k < 2 && s.pos < len(s.data) && isOctal(s.data[s.pos]); k++ {
					c = 8*c + s.data[s.pos] - '0'
					s.pos++
				}
			}
		}
		res = append(res, c)
	}
	return nil, s.unexpectedEOF()
}

// readHex reads a <>-delimited string.  A missing final digit is taken
// to be zero.
func (s *scanner) readHex() (String, error) {
	s.pos++
	res := []byte{}
	var hi byte
	odd := false
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		var d byte
		switch {
		case c == '>':
			if odd {
				res = append(res, hi<<4)
			}
			return String(res), nil
		case isSpace[c]:
			continue
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		default:
			return nil, s.errorf("invalid character %q in hex string", c)
		}
		if odd {
			res = append(res, hi<<4|d)
		} else {
			hi = d
		}
		odd = !odd
	}
	return nil, s.unexpectedEOF()
}

// readName reads a name object, decoding #xx escapes.
func (s *scanner) readName() (Name, error) {
	s.pos++
	start := s.pos
	raw := s.regular()
	if bytes.IndexByte(raw, '#') < 0 {
		return Name(raw), nil
	}
	res := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != '#' {
			res = append(res, raw[i])
			continue
		}
		if i+2 >= len(raw) {
			return "", &MalformedFileError{Pos: int64(start + i), Err: errors.New("truncated escape in name")}
		}
		x, err := strconv.ParseUint(string(raw[i+1:i+3]), 16, 8)
		if err != nil {
			return "", &MalformedFileError{Pos: int64(start + i), Err: err}
		}
		res = append(res, byte(x))
		i += 2
	}
	return Name(res), nil
}

// readArray reads an array.
func (s *scanner) readArray() (Array, error) {
	s.pos++
	array := Array{}
	for {
		s.skipSpace()
		if s.pos >= len(s.data) {
			return nil, s.unexpectedEOF()
		}
		if s.data[s.pos] == ']' {
			s.pos++
			return array, nil
		}
		obj, err := s.readObject()
		if err != nil {
			return nil, err
		}
		array = append(array, obj)
	}
}

// readDict reads a dictionary.  Entries with value null are omitted.
func (s *scanner) readDict() (Dict, error) {
	err := s.expect("<<")
	if err != nil {
		return nil, err
	}
	dict := Dict{}
	for {
		s.skipSpace()
		if s.startsWith(">>") {
			s.pos += 2
			return dict, nil
		}
		if s.pos >= len(s.data) {
			return nil, s.unexpectedEOF()
		}
		if s.data[s.pos] != '/' {
			return nil, s.errorf("dictionary key expected")
		}
		key, err := s.readName()
		if err != nil {
			return nil, err
		}
		s.skipSpace()
		val, err := s.readObject()
		if err != nil {
			return nil, err
		}
		if val != nil {
			dict[key] = val
		}
	}
}

// readStreamData reads the data of a stream, starting at the "stream"
// keyword.  The returned stream reads its data directly from the file
// contents.
func (s *scanner) readStreamData(dict Dict) (*Stream, error) {
	length, err := s.getInt(dict["Length"])
	if err != nil {
		return nil, err
	}

	err = s.expect("stream")
	if err != nil {
		return nil, err
	}
	switch {
	case s.startsWith("\r\n"):
		s.pos += 2
	case s.startsWith("\n"):
		s.pos++
	default:
		return nil, s.errorf("missing end of line after \"stream\"")
	}

	start := s.pos
	if length < 0 || int64(length) > int64(len(s.data)-start) {
		return nil, s.errorf("invalid stream length %d", length)
	}
	s.pos += int(length)
	s.skipSpace()
	err = s.expect("endstream")
	if err != nil {
		return nil, err
	}

	return &Stream{
		Dict: dict,
		R:    io.NewSectionReader(bytes.NewReader(s.data), int64(start), int64(length)),
	}, nil
}

func (s *scanner) readHeaderVersion() (Version, error) {
	if !s.startsWith("%PDF-") {
		return 0, &MalformedFileError{Err: errors.New("PDF header not found")}
	}
	s.pos += 5
	version, err := ParseVersion(string(s.regular()))
	if err != nil {
		return 0, &MalformedFileError{Pos: 5, Err: err}
	}
	return version, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}
