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
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/runenames"
)

// MalformedFileError indicates that a PDF file could not be parsed.
type MalformedFileError struct {
	Pos int64
	Err error
}

func (err *MalformedFileError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	tail := ""
	if err.Pos > 0 {
		tail = " (at byte " + strconv.FormatInt(err.Pos, 10) + ")"
	}
	return "not a valid PDF file" + middle + tail
}

func (err *MalformedFileError) Unwrap() error {
	return err.Err
}

// EncodingError is returned when a text contains a character which cannot
// be represented in the Latin-1 encoding used for page content.
type EncodingError struct {
	// Pos is the byte offset of the character in the (NFC normalised) text.
	Pos  int
	Rune rune
}

func (err *EncodingError) Error() string {
	name := runenames.Name(err.Rune)
	if name == "" {
		name = "unnamed character"
	}
	return fmt.Sprintf("cannot encode %U %s at position %d in Latin-1",
		err.Rune, name, err.Pos)
}

var (
	errWriterClosed = errors.New("PDF writer is closed")
	errStreamClosed = errors.New("stream is closed")
	errVersion      = errors.New("unsupported PDF version")
)
