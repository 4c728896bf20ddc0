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

package document

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/qapdf/pdf"
)

// fontResource is the resource name of the only font in the document.
const fontResource = pdf.Name("F1")

// textLine is a line of a page, ready for output.
type textLine struct {
	Pos  vec.Vec2
	Text pdf.String
}

// writeContent writes the content stream of one page.
//
// Td moves relative to the start of the previous line, so the first line
// is positioned from the origin and every later line by the difference to
// its predecessor.
func writeContent(w io.Writer, lines []textLine, fontSize float64) error {
	buf := &bytes.Buffer{}
	buf.WriteString("BT\n")
	fontResource.PDF(buf)
	buf.WriteString(" " + formatNumber(fontSize) + " Tf")

	var prev vec.Vec2
	for _, line := range lines {
		d := line.Pos.Sub(prev)
		buf.WriteString("\n" + formatNumber(d.X) + " " + formatNumber(d.Y) + " Td\n")
		line.Text.PDF(buf)
		buf.WriteString(" Tj")
		prev = line.Pos
	}
	buf.WriteString("\nET")

	_, err := w.Write(buf.Bytes())
	return err
}

// formatNumber formats x with at most three decimal places.
func formatNumber(x float64) string {
	s := strconv.FormatFloat(x, 'f', 3, 64)
	for s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		s = "0"
	}
	return s
}
