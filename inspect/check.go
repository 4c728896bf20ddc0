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

// Package inspect checks the structure of PDF files and extracts the text
// shown on their pages.
//
// The checks are aimed at files written by the document package: single
// revision files with a classic cross-reference table and unfiltered
// streams.  Problems are collected in a Report instead of aborting at the
// first defect.
package inspect

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"slices"

	"seehuhn.de/go/qapdf/pdf"
)

// Problem describes a structural defect of a PDF file.
type Problem struct {
	// Pos is the byte offset where the problem was found, or -1 if the
	// problem is not tied to a location in the file.
	Pos int64

	// Object is the number of the affected object, or 0.
	Object int

	Msg string
}

func (p Problem) String() string {
	res := p.Msg
	if p.Object > 0 {
		res = fmt.Sprintf("object %d: %s", p.Object, res)
	}
	if p.Pos >= 0 {
		res += fmt.Sprintf(" (at byte %d)", p.Pos)
	}
	return res
}

// Report summarises the result of Check.
type Report struct {
	Version    pdf.Version
	Size       int64
	NumObjects int
	NumPages   int
	Problems   []Problem
}

// OK reports whether no problems were found.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

func (r *Report) add(pos int64, obj int, format string, args ...any) {
	r.Problems = append(r.Problems, Problem{
		Pos:    pos,
		Object: obj,
		Msg:    fmt.Sprintf(format, args...),
	})
}

// CheckFile reads the named file and runs Check on its contents.
func CheckFile(fileName string) (*Report, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	return Check(data), nil
}

// Check verifies the structure of a PDF file:
//
//   - the file starts with a PDF header and ends with %%EOF,
//   - startxref gives the offset of the cross-reference table,
//   - every cross-reference entry points to the start of its object,
//   - /Size in the trailer matches the cross-reference table,
//   - every stream's /Length matches the data between "stream" and
//     "endstream",
//   - every reference points to an object present in the file,
//   - /Count in the page tree matches the number of pages and every page
//     points back to its parent,
//   - every object found by scanning the file is in the
//     cross-reference table.
func Check(data []byte) *Report {
	rep := &Report{Size: int64(len(data))}

	if !headerRegexp.Match(data) {
		rep.add(0, 0, "missing PDF header")
	}
	if !bytes.HasSuffix(bytes.TrimRight(data, "\r\n"), []byte("%%EOF")) {
		rep.add(-1, 0, "file does not end with %%%%EOF")
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		rep.add(-1, 0, "cannot read file: %v", err)
		return rep
	}
	rep.Version = r.Version

	start := r.StartXRef()
	if !bytes.HasPrefix(data[start:], []byte("xref")) ||
		(start > 0 && data[start-1] != '\n' && data[start-1] != '\r') {
		rep.add(start, 0, "startxref does not point to the xref keyword")
	}

	objects := checkXRef(rep, r, data)
	rep.NumObjects = len(objects)

	numbers := make([]int, 0, len(objects))
	for n := range objects {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)
	for _, n := range numbers {
		obj := objects[n]
		checkRefs(rep, r, n, obj.value, 0)
		if stm, ok := obj.value.(*pdf.Stream); ok {
			checkStream(rep, r, n, stm, data)
		}
	}

	checkPageTree(rep, r)
	checkSequential(rep, r, data)

	return rep
}

type xrefObject struct {
	pos   int64
	value pdf.Object
}

func checkXRef(rep *Report, r *pdf.Reader, data []byte) map[int]*xrefObject {
	xref := r.XRef()
	objects := make(map[int]*xrefObject, len(xref))

	if len(xref) == 0 || xref[0].Number != 0 || !xref[0].Free || xref[0].Generation != 65535 {
		rep.add(-1, 0, "xref table does not start with the free entry 0 65535 f")
	}
	for i, entry := range xref {
		if entry.Number != i {
			rep.add(-1, i, "missing from xref table")
			break
		}
	}
	if size, ok := r.Trailer()["Size"].(pdf.Integer); !ok {
		rep.add(-1, 0, "trailer has no /Size")
	} else if int(size) != len(xref) {
		rep.add(-1, 0, "trailer /Size %d does not match %d xref entries", size, len(xref))
	}

	for _, entry := range xref {
		if entry.Free {
			continue
		}
		marker := fmt.Sprintf("%d %d obj", entry.Number, entry.Generation)
		if entry.Pos < 0 || entry.Pos >= int64(len(data)) ||
			!bytes.HasPrefix(data[entry.Pos:], []byte(marker)) {
			rep.add(entry.Pos, entry.Number, "xref offset does not point to %q", marker)
			continue
		}
		value, ref, _, err := r.ReadObjectAt(entry.Pos)
		if err != nil {
			rep.add(entry.Pos, entry.Number, "cannot read object: %v", err)
			continue
		}
		if ref.Number != entry.Number || ref.Generation != entry.Generation {
			rep.add(entry.Pos, entry.Number, "found object %s instead", ref)
			continue
		}
		objects[entry.Number] = &xrefObject{pos: entry.Pos, value: value}
	}
	return objects
}

// checkRefs verifies that all references inside obj can be resolved.
func checkRefs(rep *Report, r *pdf.Reader, num int, obj pdf.Object, depth int) {
	if depth > maxTreeDepth {
		rep.add(-1, num, "objects nested too deeply")
		return
	}
	switch x := obj.(type) {
	case *pdf.Reference:
		val, err := r.Resolve(x)
		if err != nil {
			rep.add(-1, num, "reference %s: %v", x, err)
		} else if val == nil {
			rep.add(-1, num, "dangling reference %s", x)
		}
	case pdf.Array:
		for _, elem := range x {
			checkRefs(rep, r, num, elem, depth+1)
		}
	case pdf.Dict:
		for _, val := range x {
			checkRefs(rep, r, num, val, depth+1)
		}
	case *pdf.Stream:
		checkRefs(rep, r, num, x.Dict, depth+1)
	}
}

func checkStream(rep *Report, r *pdf.Reader, num int, stm *pdf.Stream, data []byte) {
	length, err := r.GetInt(stm.Dict["Length"])
	if err != nil {
		rep.add(-1, num, "invalid stream /Length: %v", err)
		return
	}
	start, ok := pdf.StreamOffset(stm)
	if !ok {
		return
	}
	if start < 7 || string(data[start-7:start]) != "stream\n" {
		rep.add(start, num, "stream data does not follow \"stream\\n\"")
	}
	end := start + int64(length)
	if end > int64(len(data)) || !bytes.HasPrefix(data[end:], []byte("\nendstream")) {
		rep.add(start, num, "/Length %d does not end at \"\\nendstream\"", length)
	}
}

func checkPageTree(rep *Report, r *pdf.Reader) {
	catalog, err := r.Catalog()
	if err != nil {
		rep.add(-1, 0, "invalid catalog: %v", err)
		return
	}
	root, isRef := catalog["Pages"].(*pdf.Reference)
	if !isRef {
		rep.add(-1, 0, "catalog /Pages is not an indirect reference")
		return
	}

	var visit func(ref *pdf.Reference, parent *pdf.Reference, depth int) int
	visit = func(ref *pdf.Reference, parent *pdf.Reference, depth int) int {
		if depth > maxTreeDepth {
			rep.add(-1, ref.Number, "page tree too deep")
			return 0
		}
		node, err := r.GetDict(ref)
		if err != nil {
			rep.add(-1, ref.Number, "invalid page tree node: %v", err)
			return 0
		}
		if parent != nil {
			p, _ := node["Parent"].(*pdf.Reference)
			if p == nil || *p != *parent {
				rep.add(-1, ref.Number, "/Parent does not point to object %d", parent.Number)
			}
		}

		switch node["Type"] {
		case pdf.Name("Pages"):
			kids, err := r.GetArray(node["Kids"])
			if err != nil {
				rep.add(-1, ref.Number, "invalid /Kids: %v", err)
				return 0
			}
			total := 0
			for _, kid := range kids {
				kidRef, ok := kid.(*pdf.Reference)
				if !ok {
					rep.add(-1, ref.Number, "/Kids entry is not a reference")
					continue
				}
				total += visit(kidRef, ref, depth+1)
			}
			count, err := r.GetInt(node["Count"])
			if err != nil {
				rep.add(-1, ref.Number, "invalid /Count: %v", err)
			} else if int(count) != total {
				rep.add(-1, ref.Number, "/Count is %d but the subtree has %d pages", count, total)
			}
			return total
		case pdf.Name("Page"):
			if _, ok := node["Contents"]; !ok {
				rep.add(-1, ref.Number, "page without /Contents")
			}
			return 1
		default:
			rep.add(-1, ref.Number, "invalid page tree node type %v", node["Type"])
			return 0
		}
	}
	rep.NumPages = visit(root, nil, 0)
}

func checkSequential(rep *Report, r *pdf.Reader, data []byte) {
	info, err := SequentialScan(data)
	if err != nil {
		rep.add(-1, 0, "sequential scan failed: %v", err)
		return
	}
	if len(info.Sections) != 1 {
		rep.add(-1, 0, "expected one file section, found %d", len(info.Sections))
	}

	inXRef := make(map[int]int64)
	for _, entry := range r.XRef() {
		if !entry.Free {
			inXRef[entry.Number] = entry.Pos
		}
	}
	for _, section := range info.Sections {
		for _, obj := range section.Objects {
			if obj.Broken {
				rep.add(obj.Pos, obj.Number, "malformed object")
				continue
			}
			pos, ok := inXRef[obj.Number]
			if !ok {
				rep.add(obj.Pos, obj.Number, "object not in xref table")
			} else if pos != obj.Pos {
				rep.add(obj.Pos, obj.Number, "xref gives offset %d", pos)
			}
		}
	}
}

var headerRegexp = regexp.MustCompile(`^%PDF-1\.[0-7]\r?\n`)
