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
	"strings"
	"time"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// EncodeLatin1 converts s to the byte string used inside content stream
// string operands.  The text is first normalised to NFC, so that combining
// sequences like "e" + U+0301 turn into the single Latin-1 character "é".
// Characters outside ISO 8859-1 result in an *EncodingError.
func EncodeLatin1(s string) (String, error) {
	s = norm.NFC.String(s)
	res := make(String, 0, len(s))
	for i, r := range s {
		c, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			return nil, &EncodingError{Pos: i, Rune: r}
		}
		res = append(res, c)
	}
	return res, nil
}

// DecodeLatin1 is the inverse of EncodeLatin1.
func DecodeLatin1(x String) string {
	var b strings.Builder
	b.Grow(len(x))
	for _, c := range x {
		b.WriteRune(charmap.ISO8859_1.DecodeByte(c))
	}
	return b.String()
}

// TextString creates a String object using the "text string" encoding
// for use in the document information dictionary.  Latin-1 text is stored
// as single bytes, everything else as UTF-16BE with a byte order mark.
func TextString(s string) String {
	if enc, err := EncodeLatin1(s); err == nil {
		return enc
	}
	u := utf16.Encode([]rune(s))
	res := make(String, 2, 2+2*len(u))
	res[0], res[1] = 0xFE, 0xFF
	for _, c := range u {
		res = append(res, byte(c>>8), byte(c))
	}
	return res
}

// AsTextString interprets x as a PDF "text string" and returns the
// corresponding utf-8 encoded string.
func (x String) AsTextString() string {
	if len(x) >= 2 && x[0] == 0xFE && x[1] == 0xFF {
		var u []uint16
		for i := 2; i+1 < len(x); i += 2 {
			u = append(u, uint16(x[i])<<8|uint16(x[i+1]))
		}
		return string(utf16.Decode(u))
	}
	return DecodeLatin1(x)
}

// Date creates a PDF String object encoding the given date and time.
func Date(t time.Time) String {
	s := t.Format("D:20060102150405-0700")
	k := len(s) - 2
	s = s[:k] + "'" + s[k:]
	return String(s)
}

// AsDate converts a PDF date string to a time.Time object.
// If the string does not have the correct format, an error is returned.
func (x String) AsDate() (time.Time, error) {
	s := x.AsTextString()
	if s == "D:" || s == "" {
		return time.Time{}, nil
	}
	s = strings.ReplaceAll(s, "'", "")
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "D:") {
		s = "D:" + s
	}

	formats := []string{
		"D:20060102150405-0700",
		"D:20060102150405Z0000",
		"D:20060102150405Z",
		"D:20060102150405",
		"D:20060102",
	}
	for _, format := range formats {
		t, err := time.Parse(format, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, errNoDate
}

var errNoDate = errors.New("not a valid date string")
