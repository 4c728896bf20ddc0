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

package layout

import (
	"seehuhn.de/go/geom/vec"
)

// Line is a text fragment together with the position of the start of its
// baseline on the page.
type Line struct {
	Pos  vec.Vec2
	Text string
}

// Page is the sequence of lines shown on one page, in reading order.
type Page []Line

// Paginate breaks a sequence of lines into pages.
//
// The first line of every page is placed one margin below the top of the
// page.  Every following line is LineHeight further down.  A new page is
// started when the next line would end up below the bottom margin.  If g is
// nil, DefaultGeometry() is used.
//
// No pages are returned for an empty input.
func Paginate(lines []string, g *Geometry) ([]Page, error) {
	if g == nil {
		g = DefaultGeometry()
	}
	err := g.Check()
	if err != nil {
		return nil, err
	}

	lpp := g.LinesPerPage()
	left := g.MediaBox.LLx + g.Margin
	top := g.MediaBox.URy - g.Margin

	res := make([]Page, 0, g.NumPages(len(lines)))
	var body Page
	flush := func() {
		res = append(res, body)
		body = nil
	}

	for _, text := range lines {
		if len(body) >= lpp {
			flush()
		}
		if body == nil {
			body = make(Page, 0, min(lpp, len(lines)))
		}
		y := top - float64(len(body))*g.LineHeight
		body = append(body, Line{
			Pos:  vec.Vec2{X: left, Y: y},
			Text: text,
		})
	}
	if len(body) > 0 {
		flush()
	}

	return res, nil
}
