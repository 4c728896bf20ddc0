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
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// writeMinimal writes a file with a catalog, an empty page tree and one
// stream, and returns the file contents.
func writeMinimal(t *testing.T) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, nil)
	if err != nil {
		t.Fatal(err)
	}

	catalog := w.Alloc()
	pages := w.Alloc()

	_, err = w.Put(catalog, Dict{
		"Type":  Name("Catalog"),
		"Pages": pages,
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = w.Put(pages, Dict{
		"Type":  Name("Pages"),
		"Kids":  Array{},
		"Count": Integer(0),
	})
	if err != nil {
		t.Fatal(err)
	}

	stm, _, err := w.OpenStream(nil, Dict{"Type": Name("Test")})
	if err != nil {
		t.Fatal(err)
	}
	_, err = stm.Write([]byte("hello (world)"))
	if err != nil {
		t.Fatal(err)
	}
	err = stm.Close()
	if err != nil {
		t.Fatal(err)
	}

	w.SetCatalog(catalog)
	err = w.Close()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestWriterLayout(t *testing.T) {
	out := writeMinimal(t)
	s := string(out)

	if !strings.HasPrefix(s, "%PDF-1.4\n1 0 obj\n") {
		t.Errorf("wrong file start: %q", s[:20])
	}
	if !strings.HasSuffix(s, "\n%%EOF\n") {
		t.Errorf("wrong file end: %q", s[len(s)-20:])
	}
	if !strings.Contains(s, "<< /Type /Test /Length 13 >>\nstream\nhello (world)\nendstream\nendobj\n") {
		t.Error("stream not found")
	}

	xrefPos := strings.Index(s, "\nxref\n") + 1
	tail := fmt.Sprintf("startxref\n%d\n%%%%EOF\n", xrefPos)
	if !strings.HasSuffix(s, tail) {
		t.Errorf("startxref does not point to xref table")
	}

	entryRegexp := regexp.MustCompile(`(?m)^(\d{10}) (\d{5}) ([fn]) $`)
	entries := entryRegexp.FindAllStringSubmatch(s[xrefPos:], -1)
	if len(entries) != 4 {
		t.Fatalf("expected 4 xref entries, got %d", len(entries))
	}
	if entries[0][0] != "0000000000 65535 f " {
		t.Errorf("wrong free entry %q", entries[0][0])
	}
	for i, entry := range entries[1:] {
		if len(entry[0])+1 != xRefEntryLen {
			t.Errorf("entry %d has wrong length", i+1)
		}
		var pos int
		fmt.Sscanf(entry[1], "%d", &pos)
		marker := fmt.Sprintf("%d 0 obj\n", i+1)
		if !strings.HasPrefix(s[pos:], marker) {
			t.Errorf("object %d: offset %d points to %q", i+1, pos, s[pos:pos+10])
		}
	}
	if entries[1][1] != "0000000009" {
		t.Errorf("first object at %s, expected 9", entries[1][1])
	}

	if !strings.Contains(s, "trailer\n<< /Root 1 0 R /Size 4 >>\nstartxref\n") {
		t.Error("malformed trailer")
	}
}

func TestReadBack(t *testing.T) {
	out := writeMinimal(t)

	r, err := NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatal(err)
	}
	if r.Version != V1_4 {
		t.Errorf("wrong version %s", r.Version)
	}

	catalog, err := r.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	pages, err := r.GetDict(catalog["Pages"])
	if err != nil {
		t.Fatal(err)
	}
	expected := Dict{
		"Type":  Name("Pages"),
		"Kids":  Array{},
		"Count": Integer(0),
	}
	if d := cmp.Diff(expected, pages); d != "" {
		t.Error(d)
	}

	stm, err := r.GetStream(&Reference{Number: 3})
	if err != nil {
		t.Fatal(err)
	}
	data, err := r.ReadStream(stm)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello (world)" {
		t.Errorf("wrong stream data %q", data)
	}
	off, ok := StreamOffset(stm)
	if !ok || !bytes.HasPrefix(out[off:], []byte("hello")) {
		t.Errorf("wrong stream offset %d", off)
	}

	xref := r.XRef()
	if len(xref) != 4 || !xref[0].Free {
		t.Fatalf("wrong xref table: %v", xref)
	}
	for _, entry := range xref[1:] {
		_, ref, _, err := r.ReadObjectAt(entry.Pos)
		if err != nil {
			t.Error(err)
			continue
		}
		if ref.Number != entry.Number {
			t.Errorf("object %d found at offset for %d", ref.Number, entry.Number)
		}
	}
}

func TestWriterErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, nil)
	if err != nil {
		t.Fatal(err)
	}

	catalog := w.Alloc()
	dangling := w.Alloc()
	_, err = w.Put(catalog, Dict{"Type": Name("Catalog"), "Pages": dangling})
	if err != nil {
		t.Fatal(err)
	}

	_, err = w.Put(catalog, Dict{})
	if err == nil {
		t.Error("object written twice")
	}
	_, err = w.Put(&Reference{Number: 99}, Integer(1))
	if err == nil {
		t.Error("unallocated object written")
	}

	err = w.Close()
	if err == nil {
		t.Error("missing catalog not detected")
	}
	w.SetCatalog(catalog)
	err = w.Close()
	if err == nil {
		t.Error("dangling reference not detected")
	}

	_, err = w.Put(dangling, Dict{"Type": Name("Pages"), "Kids": Array{}, "Count": Integer(0)})
	if err != nil {
		t.Fatal(err)
	}
	err = w.Close()
	if err != nil {
		t.Fatal(err)
	}

	_, err = w.Put(nil, Integer(1))
	if err != errWriterClosed {
		t.Errorf("wrong error after close: %v", err)
	}
}

func TestOpenStreamBlocksPut(t *testing.T) {
	w, err := NewWriter(&bytes.Buffer{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	stm, _, err := w.OpenStream(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = w.Put(nil, Integer(1))
	if err == nil {
		t.Error("Put succeeded while a stream was open")
	}
	err = stm.Close()
	if err != nil {
		t.Fatal(err)
	}
	err = stm.Close()
	if err != errStreamClosed {
		t.Errorf("wrong error for second close: %v", err)
	}
}

func TestCreate(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "test.pdf")
	w, err := Create(fname, &WriterOptions{Version: V1_7})
	if err != nil {
		t.Fatal(err)
	}
	ref, err := w.Put(nil, Dict{"Type": Name("Catalog")})
	if err != nil {
		t.Fatal(err)
	}
	w.SetCatalog(ref)
	err = w.Close()
	if err != nil {
		t.Fatal(err)
	}

	r, err := Open(fname)
	if err != nil {
		t.Fatal(err)
	}
	if r.Version != V1_7 {
		t.Errorf("wrong version %s", r.Version)
	}
	if r.StartXRef() <= 0 {
		t.Errorf("invalid startxref %d", r.StartXRef())
	}
}

func TestVersion(t *testing.T) {
	cases := []struct {
		in  string
		out Version
		ok  bool
	}{
		{"1.0", V1_0, true},
		{"1.4", V1_4, true},
		{"1.7", V1_7, true},
		{"", 0, false},
		{"0.9", 0, false},
		{"1.8", 0, false},
		{"2.0", 0, false},
	}
	for _, test := range cases {
		v, err := ParseVersion(test.in)
		if (err == nil) != test.ok {
			t.Errorf("unexpected err = %s", err)
			continue
		}
		if v != test.out {
			t.Errorf("wrong version %d != %d", int(v), int(test.out))
			continue
		}
		if !test.ok {
			continue
		}
		s, err := v.ToString()
		if err != nil {
			t.Error(err)
			continue
		}
		if s != test.in {
			t.Errorf("wrong version %q != %q", s, test.in)
		}
	}
}
