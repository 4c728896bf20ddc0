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
	"errors"
	"fmt"

	"seehuhn.de/go/qapdf/pdf"
)

// Font is the PostScript name of one of the 14 standard PDF fonts.
// Viewers supply these fonts, so nothing needs to be embedded.
type Font string

// The standard 14 fonts.
const (
	Courier              Font = "Courier"
	CourierBold          Font = "Courier-Bold"
	CourierBoldOblique   Font = "Courier-BoldOblique"
	CourierOblique       Font = "Courier-Oblique"
	Helvetica            Font = "Helvetica"
	HelveticaBold        Font = "Helvetica-Bold"
	HelveticaBoldOblique Font = "Helvetica-BoldOblique"
	HelveticaOblique     Font = "Helvetica-Oblique"
	TimesRoman           Font = "Times-Roman"
	TimesBold            Font = "Times-Bold"
	TimesBoldItalic      Font = "Times-BoldItalic"
	TimesItalic          Font = "Times-Italic"
	Symbol               Font = "Symbol"
	ZapfDingbats         Font = "ZapfDingbats"
)

// StandardFonts lists the standard 14 fonts.
var StandardFonts = []Font{
	Courier, CourierBold, CourierBoldOblique, CourierOblique,
	Helvetica, HelveticaBold, HelveticaBoldOblique, HelveticaOblique,
	TimesRoman, TimesBold, TimesBoldItalic, TimesItalic,
	Symbol, ZapfDingbats,
}

// ErrUnknownFont is returned for fonts which are not one of the standard
// 14 fonts.
var ErrUnknownFont = errors.New("not a standard PDF font")

// ParseFont checks that name is one of the standard 14 fonts.
func ParseFont(name string) (Font, error) {
	f := Font(name)
	if !f.IsStandard() {
		return "", fmt.Errorf("%q: %w", name, ErrUnknownFont)
	}
	return f, nil
}

// IsStandard reports whether f is one of the standard 14 fonts.
func (f Font) IsStandard() bool {
	for _, g := range StandardFonts {
		if f == g {
			return true
		}
	}
	return false
}

// isSymbolic reports whether the font uses its own built-in encoding.
func (f Font) isSymbolic() bool {
	return f == Symbol || f == ZapfDingbats
}

// fontDict returns the font dictionary for f.  Text fonts get
// WinAnsiEncoding if the document uses characters outside of ASCII;
// WinAnsiEncoding agrees with Latin-1 for all printable characters.
func (f Font) fontDict(needEncoding bool) pdf.Dict {
	dict := pdf.Dict{
		"Type":     pdf.Name("Font"),
		"Subtype":  pdf.Name("Type1"),
		"BaseFont": pdf.Name(f),
	}
	if needEncoding && !f.isSymbolic() {
		dict["Encoding"] = pdf.Name("WinAnsiEncoding")
	}
	return dict
}
