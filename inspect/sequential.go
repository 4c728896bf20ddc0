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

package inspect

import (
	"errors"
	"regexp"
	"strconv"

	"seehuhn.de/go/qapdf/pdf"
)

// FileInfo describes the layout of a PDF file, as found by reading it
// from start to end.
type FileInfo struct {
	StartPos      int64
	Size          int64
	HeaderVersion string
	Sections      []*FileSection
}

// FileSection is one revision of a file: a run of objects followed by a
// cross-reference table, trailer and end-of-file marker.  Files written
// by the document package have exactly one section.
type FileSection struct {
	XRefPos      int64
	TrailerPos   int64
	StartXRefPos int64
	EOFPos       int64
	Objects      []*FileObject
	Catalog      *FileObject
}

// FileObject describes an indirect object found in the file.
type FileObject struct {
	Pos        int64
	End        int64
	Number     int
	Generation uint16
	Broken     bool
	Type       string
	SubType    pdf.Name
}

// ErrNoPDF is returned by SequentialScan if no PDF header is found.
var ErrNoPDF = errors.New("PDF header not found")

// SequentialScan reads a PDF file sequentially, extracting information
// about the file structure and the location of indirect objects.
// The cross-reference table is not used, so the result can be compared
// against it.
func SequentialScan(data []byte) (*FileInfo, error) {
	m := startRegexp.FindSubmatchIndex(data)
	if m == nil {
		return nil, ErrNoPDF
	}
	info := &FileInfo{
		StartPos:      int64(m[0]),
		Size:          int64(len(data)),
		HeaderVersion: string(data[m[2]:m[3]]),
	}

	section := &FileSection{}
	used := false
	inTrailer := false
	finish := func() {
		if used {
			info.Sections = append(info.Sections, section)
		}
		inTrailer = false
		used = false
		section = &FileSection{}
	}

	for _, m := range markerRegexp.FindAllSubmatchIndex(data, -1) {
		pos := int64(m[2])
		keyword := string(data[m[2]:m[3]])

		switch {
		case m[4] >= 0:
			// an indirect object, m[4]:m[5] is the object number and
			// m[6]:m[7] the generation
			n, err := strconv.ParseUint(string(data[m[4]:m[5]]), 10, 31)
			if err != nil {
				continue
			}
			g, err := strconv.ParseUint(string(data[m[6]:m[7]]), 10, 16)
			if err != nil {
				continue
			}
			if inTrailer {
				finish()
			}
			section.Objects = append(section.Objects, &FileObject{
				Pos:        pos,
				Number:     int(n),
				Generation: uint16(g),
			})
			used = true
		case keyword == "xref":
			section.XRefPos = pos
			inTrailer = true
			used = true
		case keyword == "trailer":
			section.TrailerPos = pos
			inTrailer = true
			used = true
		case keyword == "startxref":
			section.StartXRefPos = pos
			inTrailer = true
			used = true
		case keyword == "%%EOF":
			section.EOFPos = pos
			finish()
		}
	}
	finish()

	for _, section := range info.Sections {
		for _, obj := range section.Objects {
			x, ref, end, err := pdf.ReadIndirectObjectAt(data, obj.Pos)
			if err != nil || ref.Number != obj.Number || ref.Generation != obj.Generation {
				obj.Broken = true
				continue
			}
			obj.End = end
			classify(section, obj, x)
		}
	}

	return info, nil
}

func classify(section *FileSection, obj *FileObject, x pdf.Object) {
	switch o := x.(type) {
	case pdf.Array:
		obj.Type = "Array"
	case pdf.Bool:
		obj.Type = "Bool"
	case pdf.Dict:
		obj.Type = "Dict"
		if t, ok := o["Type"].(pdf.Name); ok {
			obj.SubType = t
			if t == "Catalog" {
				_, hasPages := o["Pages"]
				if section.Catalog == nil || hasPages {
					section.Catalog = obj
				}
			}
		}
	case pdf.Integer:
		obj.Type = "Integer"
	case pdf.Name:
		obj.Type = "Name"
	case pdf.Real:
		obj.Type = "Real"
	case *pdf.Reference:
		obj.Type = "Reference"
	case *pdf.Stream:
		obj.Type = "Stream"
		if t, ok := o.Dict["Type"].(pdf.Name); ok {
			obj.SubType = t
		}
	case pdf.String:
		obj.Type = "String"
	case nil:
		obj.Type = "Null"
	}
}

var (
	startRegexp = regexp.MustCompile(`%PDF-([12]\.[0-9])[^0-9]`)

	whiteSpacePat = `[\000\011\014 ]+`
	eolPat        = `(?:\r\n|\r|\n)`
	objectPat     = `([0-9]+)` + whiteSpacePat + `([0-9]+)` + whiteSpacePat + `obj`
	markerPat     = eolPat + `(` + objectPat + `|xref|trailer|startxref|%%EOF)\b`
	markerRegexp  = regexp.MustCompile(markerPat)
)
