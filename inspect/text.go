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
	"bytes"
	"errors"
	"fmt"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/qapdf/layout"
	"seehuhn.de/go/qapdf/pdf"
)

// maxTreeDepth limits the nesting of page tree nodes.
const maxTreeDepth = 32

// Pages returns the page objects of a document, in order.
func Pages(r *pdf.Reader) ([]pdf.Dict, error) {
	catalog, err := r.Catalog()
	if err != nil {
		return nil, err
	}
	var res []pdf.Dict
	err = walkPages(r, catalog["Pages"], 0, func(_ *pdf.Reference, page pdf.Dict) error {
		res = append(res, page)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func walkPages(r *pdf.Reader, node pdf.Object, depth int, yield func(*pdf.Reference, pdf.Dict) error) error {
	if depth > maxTreeDepth {
		return errors.New("page tree too deep")
	}
	dict, err := r.GetDict(node)
	if err != nil {
		return err
	}
	tp, _ := dict["Type"].(pdf.Name)
	switch tp {
	case "Pages":
		kids, err := r.GetArray(dict["Kids"])
		if err != nil {
			return err
		}
		for _, kid := range kids {
			err = walkPages(r, kid, depth+1, yield)
			if err != nil {
				return err
			}
		}
		return nil
	case "Page":
		ref, _ := node.(*pdf.Reference)
		return yield(ref, dict)
	default:
		return fmt.Errorf("unexpected page tree node type %q", tp)
	}
}

// PageContents returns the concatenated content streams of a page.
func PageContents(r *pdf.Reader, page pdf.Dict) ([]byte, error) {
	contents, err := r.Resolve(page["Contents"])
	if err != nil {
		return nil, err
	}
	var refs pdf.Array
	switch c := contents.(type) {
	case nil:
		return nil, nil
	case pdf.Array:
		refs = c
	default:
		refs = pdf.Array{page["Contents"]}
	}

	buf := &bytes.Buffer{}
	for i, ref := range refs {
		stm, err := r.GetStream(ref)
		if err != nil {
			return nil, err
		}
		data, err := r.ReadStream(stm)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// ExtractText returns the text shown on every page of a document,
// together with the position of each line.
//
// The text is decoded as Latin-1.  Strings shown without moving the text
// position in between are joined into one line.
func ExtractText(r *pdf.Reader) ([]layout.Page, error) {
	pages, err := Pages(r)
	if err != nil {
		return nil, err
	}
	res := make([]layout.Page, len(pages))
	for i, page := range pages {
		content, err := PageContents(r, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		lines, err := extractLines(content)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		res[i] = lines
	}
	return res, nil
}

// textState tracks the text matrix and the text line matrix.
// Only the entries needed to find the start of a line are kept:
// the matrix is [a b c d e f] in PDF order.
type textState struct {
	tm, tlm [6]float64
	leading float64
	moved   bool
}

var identity = [6]float64{1, 0, 0, 1, 0, 0}

func (s *textState) translate(tx, ty float64) {
	m := s.tlm
	m[4] = tx*m[0] + ty*m[2] + m[4]
	m[5] = tx*m[1] + ty*m[3] + m[5]
	s.tlm = m
	s.tm = m
	s.moved = true
}

func extractLines(content []byte) (layout.Page, error) {
	var res layout.Page
	state := &textState{tm: identity, tlm: identity}
	var args []pdf.Object

	show := func(s pdf.String) {
		text := pdf.DecodeLatin1(s)
		if !state.moved && len(res) > 0 {
			res[len(res)-1].Text += text
			return
		}
		res = append(res, layout.Line{
			Pos:  vec.Vec2{X: state.tm[4], Y: state.tm[5]},
			Text: text,
		})
		state.moved = false
	}

	lex := &lexer{data: content}
	for {
		tok, ok, err := lex.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		op, isOp := tok.(operator)
		if !isOp {
			obj, _ := tok.(pdf.Object)
			args = append(args, obj)
			continue
		}

		switch op {
		case "BT":
			state.tm = identity
			state.tlm = identity
			state.moved = true
		case "Td", "TD":
			if len(args) >= 2 {
				tx, ok1 := getNumber(args[len(args)-2])
				ty, ok2 := getNumber(args[len(args)-1])
				if ok1 && ok2 {
					if op == "TD" {
						state.leading = -ty
					}
					state.translate(tx, ty)
				}
			}
		case "Tm":
			if len(args) >= 6 {
				var m [6]float64
				valid := true
				for i := range m {
					x, ok := getNumber(args[len(args)-6+i])
					valid = valid && ok
					m[i] = x
				}
				if valid {
					state.tm = m
					state.tlm = m
					state.moved = true
				}
			}
		case "TL":
			if len(args) >= 1 {
				if x, ok := getNumber(args[len(args)-1]); ok {
					state.leading = x
				}
			}
		case "T*":
			state.translate(0, -state.leading)
		case "Tj":
			if len(args) >= 1 {
				if s, ok := args[len(args)-1].(pdf.String); ok {
					show(s)
				}
			}
		case "'", "\"":
			state.translate(0, -state.leading)
			if len(args) >= 1 {
				if s, ok := args[len(args)-1].(pdf.String); ok {
					show(s)
				}
			}
		case "TJ":
			if len(args) >= 1 {
				if a, ok := args[len(args)-1].(pdf.Array); ok {
					var s pdf.String
					for _, elem := range a {
						if part, ok := elem.(pdf.String); ok {
							s = append(s, part...)
						}
					}
					show(s)
				}
			}
		}
		args = args[:0]
	}
	return res, nil
}

func getNumber(obj pdf.Object) (float64, bool) {
	switch x := obj.(type) {
	case pdf.Integer:
		return float64(x), true
	case pdf.Real:
		return float64(x), true
	default:
		return 0, false
	}
}
