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
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"
	"seehuhn.de/go/geom/rect"
)

// Object represents an object in a PDF file.  There are nine native types of
// PDF objects, which implement this interface: Array, Bool, Dict, Integer,
// Name, Real, Reference, Stream, and String.  The PDF null object is
// represented by nil.
type Object interface {
	// PDF writes the PDF file representation of the object to w.
	PDF(w io.Writer) error
}

// Bool represents a boolean value in a PDF file.
type Bool bool

// PDF implements the Object interface.
func (x Bool) PDF(w io.Writer) error {
	_, err := io.WriteString(w, strconv.FormatBool(bool(x)))
	return err
}

// Integer represents an integer constant in a PDF file.
type Integer int64

// PDF implements the Object interface.
func (x Integer) PDF(w io.Writer) error {
	_, err := io.WriteString(w, strconv.FormatInt(int64(x), 10))
	return err
}

// Real represents a real number in a PDF file.
type Real float64

// PDF implements the Object interface.
// A trailing dot marks values without fractional part as reals.
func (x Real) PDF(w io.Writer) error {
	s := strconv.FormatFloat(float64(x), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += "."
	}
	_, err := io.WriteString(w, s)
	return err
}

// Number returns x as an Integer if x has no fractional part, and as a Real
// otherwise.
func Number(x float64) Object {
	if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
		return Integer(x)
	}
	return Real(x)
}

// String represents a raw string in a PDF file.  The character set encoding,
// if any, is determined by the context.
type String []byte

// PDF implements the Object interface.
//
// The string is always written as a literal string.  Parentheses and
// backslashes are escaped, all other bytes are copied verbatim, except for
// carriage returns which readers would otherwise turn into line feeds.
func (x String) PDF(w io.Writer) error {
	buf := make([]byte, 0, len(x)+2)
	buf = append(buf, '(')
	for _, c := range x {
		switch c {
		case '(', ')', '\\':
			buf = append(buf, '\\', c)
		case '\r':
			buf = append(buf, '\\', 'r')
		default:
			buf = append(buf, c)
		}
	}
	buf = append(buf, ')')
	_, err := w.Write(buf)
	return err
}

// Name represents a name in a PDF file.
type Name string

// PDF implements the Object interface.
// Bytes outside the printable ASCII range, delimiters and '#' are written
// as #xx escapes.
func (x Name) PDF(w io.Writer) error {
	buf := make([]byte, 0, len(x)+1)
	buf = append(buf, '/')
	for i := 0; i < len(x); i++ {
		c := x[i]
		if c < 0x21 || c > 0x7e || c == '#' || isDelimiter[c] {
			buf = fmt.Appendf(buf, "#%02x", c)
		} else {
			buf = append(buf, c)
		}
	}
	_, err := w.Write(buf)
	return err
}

// Array represent an array of objects in a PDF file.
type Array []Object

func (x Array) String() string {
	return "<Array, " + strconv.Itoa(len(x)) + " elements>"
}

// PDF implements the Object interface.
func (x Array) PDF(w io.Writer) error {
	ww := &errWriter{w: w}
	ww.str("[")
	for i, val := range x {
		if i > 0 {
			ww.str(" ")
		}
		ww.obj(val)
	}
	ww.str("]")
	return ww.err
}

// Dict represent a Dictionary object in a PDF file.
type Dict map[Name]Object

func (x Dict) String() string {
	kind := "Dict"
	if tp, ok := x["Type"].(Name); ok {
		kind = string(tp) + " Dict"
	}
	return "<" + kind + ", " + strconv.Itoa(len(x)) + " entries>"
}

// PDF implements the Object interface.
//
// The dictionary is written on a single line.  /Type and /Subtype come
// first, the remaining keys follow in lexicographic order, so that the
// output is deterministic.  Entries with value nil are omitted.
func (x Dict) PDF(w io.Writer) error {
	if x == nil {
		_, err := io.WriteString(w, "null")
		return err
	}

	keys := maps.Keys(x)
	slices.SortFunc(keys, func(a, b Name) int {
		if ra, rb := keyRank(a), keyRank(b); ra != rb {
			return ra - rb
		}
		return strings.Compare(string(a), string(b))
	})

	ww := &errWriter{w: w}
	ww.str("<<")
	for _, key := range keys {
		val := x[key]
		if val == nil {
			continue
		}
		ww.str(" ")
		ww.obj(key)
		ww.str(" ")
		ww.obj(val)
	}
	ww.str(" >>")
	return ww.err
}

func keyRank(key Name) int {
	switch key {
	case "Type":
		return 0
	case "Subtype":
		return 1
	default:
		return 2
	}
}

// Stream represent a stream object in a PDF file.
type Stream struct {
	Dict
	R io.Reader
}

func (x *Stream) String() string {
	kind := "Stream"
	if tp, ok := x.Dict["Type"].(Name); ok {
		kind = string(tp) + " Stream"
	}
	if length, ok := x.Dict["Length"].(Integer); ok {
		return "<" + kind + ", " + strconv.FormatInt(int64(length), 10) + " bytes>"
	}
	return "<" + kind + ">"
}

// PDF implements the Object interface.
//
// The caller is responsible for setting /Length to the number of bytes
// R will produce.  Writer.OpenStream takes care of this automatically.
func (x *Stream) PDF(w io.Writer) error {
	ww := &errWriter{w: w}
	ww.obj(x.Dict)
	ww.str("\nstream\n")
	if ww.err == nil {
		_, ww.err = io.Copy(w, x.R)
	}
	ww.str("\nendstream")
	return ww.err
}

// Reference represents a reference to an indirect object in a PDF file.
type Reference struct {
	Number     int
	Generation uint16
}

func (x *Reference) String() string {
	return fmt.Sprintf("%d %d R", x.Number, x.Generation)
}

// PDF implements the Object interface.
func (x *Reference) PDF(w io.Writer) error {
	var err error
	if x == nil {
		_, err = io.WriteString(w, "null")
	} else {
		_, err = fmt.Fprintf(w, "%d %d R", x.Number, x.Generation)
	}
	return err
}

// Rectangle represents a PDF rectangle, for example a page's /MediaBox.
type Rectangle rect.Rect

// PDF implements the Object interface.
func (r Rectangle) PDF(w io.Writer) error {
	a := Array{Number(r.LLx), Number(r.LLy), Number(r.URx), Number(r.URy)}
	return a.PDF(w)
}

// Format returns the PDF representation of x as a string.
func Format(x Object) string {
	buf := &bytes.Buffer{}
	ww := &errWriter{w: buf}
	ww.obj(x)
	return buf.String()
}

// errWriter remembers the first write error, so that composite objects
// can be written without checking every step.
type errWriter struct {
	w   io.Writer
	err error
}

func (ww *errWriter) str(s string) {
	if ww.err == nil {
		_, ww.err = io.WriteString(ww.w, s)
	}
}

func (ww *errWriter) obj(x Object) {
	if ww.err != nil {
		return
	}
	if x == nil {
		_, ww.err = io.WriteString(ww.w, "null")
		return
	}
	ww.err = x.PDF(ww.w)
}

var (
	isSpace = [256]bool{
		0:    true,
		'\t': true,
		'\n': true,
		'\f': true,
		'\r': true,
		' ':  true,
	}
	isDelimiter = [256]bool{
		'(': true,
		')': true,
		'<': true,
		'>': true,
		'[': true,
		']': true,
		'{': true,
		'}': true,
		'/': true,
		'%': true,
	}
)
