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
	"testing"
	"time"
)

func TestEncodeLatin1(t *testing.T) {
	cases := []struct {
		in   string
		out  string
		back string
	}{
		{"", "", ""},
		{"plain ASCII", "plain ASCII", "plain ASCII"},
		{"caf\u00e9", "caf\xe9", "caf\u00e9"},
		{"cafe\u0301", "caf\xe9", "caf\u00e9"},
		{"Gr\u00fc\u00dfe \u00d72", "Gr\xfc\xdfe \xd72", "Gr\u00fc\u00dfe \u00d72"},
	}
	for _, test := range cases {
		out, err := EncodeLatin1(test.in)
		if err != nil {
			t.Errorf("%q: %s", test.in, err)
			continue
		}
		if string(out) != test.out {
			t.Errorf("%q: expected %q, got %q", test.in, test.out, out)
		}
		if back := DecodeLatin1(out); back != test.back {
			t.Errorf("%q: decoded to %q", test.in, back)
		}
	}
}

func TestEncodingError(t *testing.T) {
	_, err := EncodeLatin1("price: 5\u20ac")
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected EncodingError, got %v", err)
	}
	if encErr.Rune != '\u20ac' || encErr.Pos != 8 {
		t.Errorf("wrong error details: %+v", encErr)
	}
	if !strings.Contains(err.Error(), "EURO SIGN") {
		t.Errorf("character name missing from %q", err.Error())
	}
}

func TestTextString(t *testing.T) {
	for _, in := range []string{"", "Interview Questions", "naïve", "日本語", "mixed ü and €"} {
		enc := TextString(in)
		out := enc.AsTextString()
		if out != in {
			t.Errorf("%q: round trip gave %q", in, out)
		}
	}
	if enc := TextString("€"); string(enc) != "\xfe\xff\x20\xac" {
		t.Errorf("wrong UTF-16 encoding %q", enc)
	}
}

func TestDate(t *testing.T) {
	cases := []time.Time{
		time.Date(2024, 3, 1, 12, 30, 15, 0, time.UTC),
		time.Date(1998, 12, 23, 19, 52, 0, 0, time.FixedZone("PST", -8*60*60)),
		time.Date(2020, 12, 24, 16, 30, 12, 0, time.FixedZone("", 90*60)),
	}
	for _, test := range cases {
		enc := Date(test)
		out, err := enc.AsDate()
		if err != nil {
			t.Error(err)
		} else if !test.Equal(out) {
			t.Errorf("wrong time: %s != %s", out, test)
		}
	}

	if s := string(Date(cases[0])); s != "D:20240301123015+00'00" {
		t.Errorf("wrong date string %q", s)
	}
}
