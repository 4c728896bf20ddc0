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
	"errors"
	"math"

	"seehuhn.de/go/geom/rect"
)

// Paper sizes, in PDF units (1/72 inch).
var (
	A4     = rect.Rect{URx: 595.276, URy: 841.890}
	A5     = rect.Rect{URx: 420.945, URy: 595.276}
	Letter = rect.Rect{URx: 612, URy: 792}
	Legal  = rect.Rect{URx: 612, URy: 1008}
)

// Default values for the page geometry.
const (
	DefaultMargin     = 50
	DefaultLineHeight = 14
)

// ErrNoRoom is returned if not even a single line fits between the top and
// bottom margin of a page.
var ErrNoRoom = errors.New("page geometry leaves no room for text")

// Geometry describes the size of the pages and the position of the text
// on them.
type Geometry struct {
	// MediaBox is the page size.
	MediaBox rect.Rect

	// Margin is the distance between the text and the edges of the page.
	// The same margin is used on all four sides.
	Margin float64

	// LineHeight is the vertical distance between consecutive baselines.
	LineHeight float64
}

// DefaultGeometry returns US Letter pages with a 50pt margin and 14pt line
// spacing.
func DefaultGeometry() *Geometry {
	return &Geometry{
		MediaBox:   Letter,
		Margin:     DefaultMargin,
		LineHeight: DefaultLineHeight,
	}
}

// LinesPerPage returns the number of lines which fit on one page.
func (g *Geometry) LinesPerPage() int {
	if g.LineHeight <= 0 {
		return 0
	}
	avail := g.MediaBox.URy - g.MediaBox.LLy - 2*g.Margin
	if avail <= 0 {
		return 0
	}
	return int(math.Floor(avail / g.LineHeight))
}

// Check returns ErrNoRoom if the geometry cannot hold any text.
func (g *Geometry) Check() error {
	if g.MediaBox.URx <= g.MediaBox.LLx || g.LinesPerPage() < 1 {
		return ErrNoRoom
	}
	return nil
}

// NumPages returns the number of pages needed for n lines.
func (g *Geometry) NumPages(n int) int {
	lpp := g.LinesPerPage()
	if n <= 0 || lpp < 1 {
		return 0
	}
	return (n + lpp - 1) / lpp
}
