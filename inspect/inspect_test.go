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
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/qapdf/document"
	"seehuhn.de/go/qapdf/layout"
	"seehuhn.de/go/qapdf/pdf"
)

func makeDoc(t *testing.T, lines []string, opt *document.Options) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	err := document.Write(buf, lines, opt)
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func makeLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("%d. (line) with \\ and caf\u00e9", i+1)
	}
	return lines
}

func TestCheckValid(t *testing.T) {
	cases := []struct {
		lines int
		opt   *document.Options
		pages int
		objs  int
	}{
		{0, nil, 0, 3},
		{3, nil, 1, 5},
		{100, nil, 3, 9},
		{120, &document.Options{
			Info:     &document.Info{Title: "Test", Producer: "inspect test"},
			Metadata: true,
		}, 3, 11},
	}
	for i, test := range cases {
		data := makeDoc(t, makeLines(test.lines), test.opt)
		rep := Check(data)
		for _, p := range rep.Problems {
			t.Errorf("%d: %s", i, p)
		}
		if rep.NumPages != test.pages {
			t.Errorf("%d: expected %d pages, got %d", i, test.pages, rep.NumPages)
		}
		if rep.NumObjects != test.objs {
			t.Errorf("%d: expected %d objects, got %d", i, test.objs, rep.NumObjects)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int{1, 3, 49, 50, 200} {
		lines := makeLines(n)
		data := makeDoc(t, lines, nil)

		r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			t.Fatal(err)
		}
		pages, err := ExtractText(r)
		if err != nil {
			t.Fatal(err)
		}

		expected, err := layout.Paginate(lines, nil)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(expected, pages); d != "" {
			t.Errorf("%d lines: %s", n, d)
		}
	}
}

func TestRoundTripGeometry(t *testing.T) {
	g := &layout.Geometry{
		MediaBox:   layout.A4,
		Margin:     72,
		LineHeight: 13.5,
	}
	lines := makeLines(130)
	data := makeDoc(t, lines, &document.Options{Geometry: g, FontSize: 11})

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	pages, err := ExtractText(r)
	if err != nil {
		t.Fatal(err)
	}
	expected, err := layout.Paginate(lines, g)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != len(expected) {
		t.Fatalf("expected %d pages, got %d", len(expected), len(pages))
	}
	for i := range pages {
		if len(pages[i]) != len(expected[i]) {
			t.Fatalf("page %d: expected %d lines, got %d", i, len(expected[i]), len(pages[i]))
		}
		for j, line := range pages[i] {
			want := expected[i][j]
			if line.Text != want.Text {
				t.Errorf("page %d line %d: %q != %q", i, j, line.Text, want.Text)
			}
			dx := line.Pos.X - want.Pos.X
			dy := line.Pos.Y - want.Pos.Y
			if dx*dx+dy*dy > 1e-4 {
				t.Errorf("page %d line %d: position %v != %v", i, j, line.Pos, want.Pos)
			}
		}
	}
}

func TestCheckCorrupt(t *testing.T) {
	data := makeDoc(t, []string{"one", "two"}, nil)

	type corruption struct {
		name string
		edit func([]byte) []byte
		msg  string
	}
	cases := []corruption{
		{
			name: "count",
			edit: func(d []byte) []byte {
				return bytes.Replace(d, []byte("/Count 1"), []byte("/Count 2"), 1)
			},
			msg: "/Count is 2",
		},
		{
			name: "offset",
			edit: func(d []byte) []byte {
				pos := bytes.Index(d, []byte("\n3 0 obj")) + 1
				old := fmt.Sprintf("%010d 00000 n \n", pos)
				bad := fmt.Sprintf("%010d 00000 n \n", pos+1)
				return bytes.Replace(d, []byte(old), []byte(bad), 1)
			},
			msg: "xref offset does not point",
		},
		{
			name: "size",
			edit: func(d []byte) []byte {
				return bytes.Replace(d, []byte("/Size 6"), []byte("/Size 7"), 1)
			},
			msg: "/Size 7",
		},
		{
			name: "dangling",
			edit: func(d []byte) []byte {
				return bytes.Replace(d, []byte("/F1 5 0 R"), []byte("/F1 9 0 R"), 1)
			},
			msg: "dangling reference",
		},
		{
			name: "startxref",
			edit: func(d []byte) []byte {
				i := bytes.LastIndex(d, []byte("startxref\n")) + len("startxref\n")
				j := i + bytes.IndexByte(d[i:], '\n')
				var pos int
				fmt.Sscanf(string(d[i:j]), "%d", &pos)
				res := append([]byte{}, d[:i]...)
				res = fmt.Appendf(res, "%d", pos-1)
				return append(res, d[j:]...)
			},
			msg: "cannot read file",
		},
	}
	for _, test := range cases {
		bad := test.edit(bytes.Clone(data))
		if bytes.Equal(bad, data) {
			t.Fatalf("%s: corruption had no effect", test.name)
		}
		rep := Check(bad)
		if rep.OK() {
			t.Errorf("%s: corruption not detected", test.name)
			continue
		}
		found := false
		for _, p := range rep.Problems {
			if strings.Contains(p.String(), test.msg) {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: expected %q, got %v", test.name, test.msg, rep.Problems)
		}
	}
}

func TestSequentialScan(t *testing.T) {
	data := makeDoc(t, makeLines(60), nil)
	info, err := SequentialScan(data)
	if err != nil {
		t.Fatal(err)
	}
	if info.HeaderVersion != "1.4" || info.StartPos != 0 {
		t.Errorf("wrong header info %q at %d", info.HeaderVersion, info.StartPos)
	}
	if len(info.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(info.Sections))
	}
	section := info.Sections[0]

	// objects appear in the file in number order
	var found []string
	for _, obj := range section.Objects {
		if obj.Broken || obj.Generation != 0 {
			t.Errorf("object %d is broken", obj.Number)
		}
		found = append(found, fmt.Sprintf("%d %s/%s", obj.Number, obj.Type, obj.SubType))
	}
	expected := []string{
		"1 Dict/Catalog", "2 Dict/Pages", "3 Stream/", "4 Stream/",
		"5 Dict/Page", "6 Dict/Page", "7 Dict/Font",
	}
	if d := cmp.Diff(expected, found); d != "" {
		t.Fatal(d)
	}
	if section.Catalog != section.Objects[0] {
		t.Error("catalog not found")
	}
	if section.XRefPos == 0 || section.TrailerPos <= section.XRefPos ||
		section.StartXRefPos <= section.TrailerPos || section.EOFPos <= section.StartXRefPos {
		t.Errorf("wrong trailer positions %+v", section)
	}

	_, err = SequentialScan([]byte("not a PDF file"))
	if err != ErrNoPDF {
		t.Errorf("expected ErrNoPDF, got %v", err)
	}
}

func TestLexer(t *testing.T) {
	in := "BT /F1 12 Tf\n50 742.5 Td\n(a\\(b\\) \\101) Tj % comment\n" +
		"[(x) -20 <4142>] TJ << /K [1 null] >> true ET"
	expected := []any{
		operator("BT"), pdf.Name("F1"), pdf.Integer(12), operator("Tf"),
		pdf.Integer(50), pdf.Real(742.5), operator("Td"),
		pdf.String("a(b) A"), operator("Tj"),
		pdf.Array{pdf.String("x"), pdf.Integer(-20), pdf.String("AB")}, operator("TJ"),
		pdf.Dict{"K": pdf.Array{pdf.Integer(1), nil}},
		pdf.Bool(true), operator("ET"),
	}

	lex := &lexer{data: []byte(in)}
	var tokens []any
	for {
		tok, ok, err := lex.next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		tokens = append(tokens, tok)
	}
	if d := cmp.Diff(expected, tokens); d != "" {
		t.Error(d)
	}

	for _, bad := range []string{"(unterminated", "[1 2", "<< /A >>", "<4x>"} {
		lex := &lexer{data: []byte(bad)}
		_, _, err := lex.next()
		if err == nil {
			t.Errorf("%q: missing error", bad)
		}
	}
}

func TestExtractLines(t *testing.T) {
	content := "BT\n/F1 10 Tf\n12 TL\n1 0 0 1 100 700 Tm\n(first) Tj\nT*\n(sec) Tj (ond) Tj\n" +
		"(third) '\n20 -30 TD\n[(fo) 120 (urth)] TJ\nET"
	lines, err := extractLines([]byte(content))
	if err != nil {
		t.Fatal(err)
	}
	expected := layout.Page{
		{Pos: vec.Vec2{X: 100, Y: 700}, Text: "first"},
		{Pos: vec.Vec2{X: 100, Y: 688}, Text: "second"},
		{Pos: vec.Vec2{X: 100, Y: 676}, Text: "third"},
		{Pos: vec.Vec2{X: 120, Y: 646}, Text: "fourth"},
	}
	if d := cmp.Diff(expected, lines); d != "" {
		t.Error(d)
	}
}
