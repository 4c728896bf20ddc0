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
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

func TestLinesPerPage(t *testing.T) {
	cases := []struct {
		g   Geometry
		lpp int
	}{
		{*DefaultGeometry(), 49},
		{Geometry{MediaBox: Letter, Margin: 50, LineHeight: 12}, 57},
		{Geometry{MediaBox: Letter, Margin: 396, LineHeight: 14}, 0},
		{Geometry{MediaBox: rect.Rect{URx: 100, URy: 100}, Margin: 10, LineHeight: 80}, 1},
		{Geometry{MediaBox: rect.Rect{URx: 100, URy: 100}, Margin: 10, LineHeight: 81}, 0},
		{Geometry{MediaBox: Letter, Margin: 50}, 0},
	}
	for i, test := range cases {
		lpp := test.g.LinesPerPage()
		if lpp != test.lpp {
			t.Errorf("%d: expected %d lines per page, got %d", i, test.lpp, lpp)
		}
	}
}

func TestPaginateSmall(t *testing.T) {
	pages, err := Paginate([]string{"a", "b", "c"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	expected := []Page{{
		{Pos: vec.Vec2{X: 50, Y: 742}, Text: "a"},
		{Pos: vec.Vec2{X: 50, Y: 728}, Text: "b"},
		{Pos: vec.Vec2{X: 50, Y: 714}, Text: "c"},
	}}
	if d := cmp.Diff(expected, pages); d != "" {
		t.Error(d)
	}
}

func TestPaginateCounts(t *testing.T) {
	g := DefaultGeometry()
	for _, n := range []int{0, 1, 48, 49, 50, 98, 99, 200} {
		lines := make([]string, n)
		for i := range lines {
			lines[i] = fmt.Sprintf("line %d", i)
		}
		pages, err := Paginate(lines, g)
		if err != nil {
			t.Fatal(err)
		}

		expected := (n + 48) / 49
		if len(pages) != expected || g.NumPages(n) != expected {
			t.Errorf("%d lines: expected %d pages, got %d", n, expected, len(pages))
		}

		var all []string
		for _, page := range pages {
			if len(page) == 0 || len(page) > 49 {
				t.Errorf("%d lines: page with %d lines", n, len(page))
			}
			for i, line := range page {
				if line.Pos.X != 50 || line.Pos.Y != 742-14*float64(i) {
					t.Errorf("line %q at wrong position %v", line.Text, line.Pos)
				}
				if line.Pos.Y < g.Margin {
					t.Errorf("line %q below the bottom margin", line.Text)
				}
				all = append(all, line.Text)
			}
		}
		if len(lines) > 0 {
			if d := cmp.Diff(lines, all); d != "" {
				t.Error(d)
			}
		}
	}
}

func TestPaginateOffsetMediaBox(t *testing.T) {
	g := &Geometry{
		MediaBox:   rect.Rect{LLx: 100, LLy: 200, URx: 300, URy: 400},
		Margin:     20,
		LineHeight: 50,
	}
	pages, err := Paginate([]string{"1", "2", "3", "4"}, g)
	if err != nil {
		t.Fatal(err)
	}
	expected := []Page{
		{
			{Pos: vec.Vec2{X: 120, Y: 380}, Text: "1"},
			{Pos: vec.Vec2{X: 120, Y: 330}, Text: "2"},
			{Pos: vec.Vec2{X: 120, Y: 280}, Text: "3"},
		},
		{
			{Pos: vec.Vec2{X: 120, Y: 380}, Text: "4"},
		},
	}
	if d := cmp.Diff(expected, pages); d != "" {
		t.Error(d)
	}
}

func TestPaginateNoRoom(t *testing.T) {
	g := &Geometry{MediaBox: Letter, Margin: 400, LineHeight: 14}
	_, err := Paginate([]string{"x"}, g)
	if !errors.Is(err, ErrNoRoom) {
		t.Errorf("expected ErrNoRoom, got %v", err)
	}
}

func TestWrap(t *testing.T) {
	cases := []struct {
		text  string
		width int
		out   []string
	}{
		{"", 10, nil},
		{"   \n\t ", 10, nil},
		{"short", 10, []string{"short"}},
		{"one two three four", 9, []string{"one two", "three", "four"}},
		{"  spaced\n\nout   words ", 100, []string{"spaced out words"}},
		{"a verylongword b", 5, []string{"a", "verylongword", "b"}},
		{"no limit here", 0, []string{"no limit here"}},
		{"a well-known fact", 9, []string{"a well-", "known", "fact"}},
		{"go re-use it", 6, []string{"go re-", "use it"}},
		{"see <app-my-comp> now", 12, []string{"see <app-my-", "comp> now"}},
		{"so über-größe", 9, []string{"so über-", "größe"}},
		{"so one--two", 7, []string{"so one", "--two"}},
		{"to A1-b2", 6, []string{"to", "A1-b2"}},
		{"2-way ab-c", 9, []string{"2-way", "ab-c"}},
	}
	for _, test := range cases {
		out := Wrap(test.text, test.width)
		if d := cmp.Diff(test.out, out); d != "" {
			t.Errorf("%q: %s", test.text, d)
		}
	}
}

func TestWrapWidth(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 20)
	for _, line := range Wrap(text, 30) {
		if len(line) > 30 {
			t.Errorf("line too long: %q", line)
		}
	}
}
