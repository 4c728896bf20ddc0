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
	"errors"
	"io"
	"os"
	"slices"

	"golang.org/x/exp/maps"
)

// Reader represents a pdf file opened for reading.  Use the function Open()
// or NewReader() to create a new Reader.
//
// Only single-revision files with a classic cross-reference table, as
// written by Writer, are supported.
type Reader struct {
	// Version is the PDF version used in this file, as specified in the
	// initial comment at the start of the file.
	Version Version

	size int64
	data []byte

	level int

	startXRef int64
	xref      map[int]*xRefEntry
	trailer   Dict
}

// Open reads the named PDF file.
func Open(fname string) (*Reader, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return NewReader(bytes.NewReader(data), int64(len(data)))
}

// NewReader reads a PDF file of the given size from data.
// The file contents are kept in memory.
func NewReader(data io.ReaderAt, size int64) (*Reader, error) {
	buf := make([]byte, size)
	n, err := data.ReadAt(buf, 0)
	if n < len(buf) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	r := &Reader{
		size: size,
		data: buf,
	}

	s := r.scannerAt(0)
	version, err := s.readHeaderVersion()
	if err != nil {
		return nil, err
	}
	r.Version = version

	start, err := r.findXRef()
	if err != nil {
		return nil, err
	}
	xref, trailer, err := r.readXRef(start)
	if err != nil {
		return nil, err
	}
	r.startXRef = start
	r.xref = xref
	r.trailer = trailer

	if _, err := r.GetDict(trailer["Root"]); err != nil {
		return nil, err
	}

	return r, nil
}

// Trailer returns the trailer dictionary of the file.
func (r *Reader) Trailer() Dict {
	return r.trailer
}

// Catalog returns the document catalog.
func (r *Reader) Catalog() (Dict, error) {
	return r.GetDict(r.trailer["Root"])
}

// StartXRef returns the byte offset given after the startxref keyword.
func (r *Reader) StartXRef() int64 {
	return r.startXRef
}

// XRefEntry describes one entry of the cross-reference table.
type XRefEntry struct {
	Number     int
	Generation uint16
	Pos        int64
	Free       bool
}

// XRef returns the entries of the cross-reference table, ordered by object
// number.
func (r *Reader) XRef() []XRefEntry {
	numbers := maps.Keys(r.xref)
	slices.Sort(numbers)
	res := make([]XRefEntry, 0, len(numbers))
	for _, n := range numbers {
		entry := r.xref[n]
		res = append(res, XRefEntry{
			Number:     n,
			Generation: entry.Generation,
			Pos:        entry.Pos,
			Free:       entry.IsFree(),
		})
	}
	return res
}

// ReadObjectAt reads the indirect object which starts at byte offset pos.
// The returned end position is the offset just after the "endobj" keyword.
func (r *Reader) ReadObjectAt(pos int64) (Object, *Reference, int64, error) {
	if pos < 0 || pos >= r.size {
		return nil, nil, 0, &MalformedFileError{
			Pos: pos,
			Err: errors.New("object offset out of range"),
		}
	}
	s := r.scannerAt(pos)
	obj, ref, err := s.readIndirect()
	if err != nil {
		return nil, nil, 0, err
	}
	return obj, ref, s.filePos(), nil
}

// ReadIndirectObjectAt reads the indirect object which starts at byte
// offset pos of the file contents data, without consulting a
// cross-reference table.  This can be used to inspect files where the
// cross-reference table is damaged.  Stream lengths must be given as direct
// objects.
func ReadIndirectObjectAt(data []byte, pos int64) (Object, *Reference, int64, error) {
	if pos < 0 || pos >= int64(len(data)) {
		return nil, nil, 0, &MalformedFileError{
			Pos: pos,
			Err: errors.New("object offset out of range"),
		}
	}
	s := newScanner(data, pos, directInt)
	obj, ref, err := s.readIndirect()
	if err != nil {
		return nil, nil, 0, err
	}
	return obj, ref, s.filePos(), nil
}

func directInt(obj Object) (Integer, error) {
	x, ok := obj.(Integer)
	if !ok {
		return 0, errors.New("indirect stream length")
	}
	return x, nil
}

// Resolve resolves references to indirect objects.
//
// If obj is of type *Reference, the function loads the corresponding object
// from the file and returns the result.  Otherwise, obj is returned unchanged.
// References to free or missing objects resolve to nil, as required by the
// PDF specification.
func (r *Reader) Resolve(obj Object) (Object, error) {
	ref, ok := obj.(*Reference)
	if !ok {
		return obj, nil
	}

	entry := r.xref[ref.Number]
	if entry.IsFree() || entry.Generation != ref.Generation {
		return nil, nil
	}

	obj, fileRef, _, err := r.ReadObjectAt(entry.Pos)
	if err != nil {
		return nil, err
	}
	if *ref != *fileRef {
		return nil, &MalformedFileError{
			Pos: entry.Pos,
			Err: errors.New("xref corrupted"),
		}
	}
	return obj, nil
}

// GetDict resolves references to indirect objects and makes sure the
// resulting object is a dictionary.
func (r *Reader) GetDict(obj Object) (Dict, error) {
	candidate, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	val, ok := candidate.(Dict)
	if !ok {
		return nil, &MalformedFileError{
			Pos: r.errPos(obj),
			Err: errors.New("wrong type (expected Dict)"),
		}
	}
	return val, nil
}

// GetArray resolves references to indirect objects and makes sure the
// resulting object is an array.
func (r *Reader) GetArray(obj Object) (Array, error) {
	candidate, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	val, ok := candidate.(Array)
	if !ok {
		return nil, &MalformedFileError{
			Pos: r.errPos(obj),
			Err: errors.New("wrong type (expected Array)"),
		}
	}
	return val, nil
}

// GetInt resolves references to indirect objects and makes sure the
// resulting object is an Integer.
func (r *Reader) GetInt(obj Object) (Integer, error) {
	candidate, err := r.Resolve(obj)
	if err != nil {
		return 0, err
	}
	val, ok := candidate.(Integer)
	if !ok {
		return 0, &MalformedFileError{
			Pos: r.errPos(obj),
			Err: errors.New("wrong type (expected Integer)"),
		}
	}
	return val, nil
}

// GetName resolves references to indirect objects and makes sure the
// resulting object is a Name.
func (r *Reader) GetName(obj Object) (Name, error) {
	candidate, err := r.Resolve(obj)
	if err != nil {
		return "", err
	}
	val, ok := candidate.(Name)
	if !ok {
		return "", &MalformedFileError{
			Pos: r.errPos(obj),
			Err: errors.New("wrong type (expected Name)"),
		}
	}
	return val, nil
}

// GetString resolves references to indirect objects and makes sure the
// resulting object is a String.
func (r *Reader) GetString(obj Object) (String, error) {
	candidate, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	val, ok := candidate.(String)
	if !ok {
		return nil, &MalformedFileError{
			Pos: r.errPos(obj),
			Err: errors.New("wrong type (expected String)"),
		}
	}
	return val, nil
}

// GetStream resolves references to indirect objects and makes sure the
// resulting object is a stream.
func (r *Reader) GetStream(obj Object) (*Stream, error) {
	candidate, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	val, ok := candidate.(*Stream)
	if !ok {
		return nil, &MalformedFileError{
			Pos: r.errPos(obj),
			Err: errors.New("wrong type (expected Stream)"),
		}
	}
	return val, nil
}

// ReadStream returns the data of a stream which was read from r.
// Filters are not supported.
func (r *Reader) ReadStream(stm *Stream) ([]byte, error) {
	if _, hasFilter := stm.Dict["Filter"]; hasFilter {
		return nil, errors.New("stream filters are not supported")
	}
	return io.ReadAll(stm.R)
}

// StreamOffset returns the byte offset of the first byte of stream data in
// the file.  The second return value is false, if stm was not read from a
// file.
func StreamOffset(stm *Stream) (int64, bool) {
	sr, ok := stm.R.(*io.SectionReader)
	if !ok {
		return 0, false
	}
	_, off, _ := sr.Outer()
	return off, true
}

// safeGetInt is used to resolve /Length entries while a stream is being
// read.  It limits the nesting depth, in case a /Length entry refers to
// a stream.
func (r *Reader) safeGetInt(obj Object) (Integer, error) {
	if x, ok := obj.(Integer); ok {
		return x, nil
	}

	if r.level > 2 {
		return 0, &MalformedFileError{
			Pos: r.errPos(obj),
			Err: errors.New("recursion limit for /Length exceeded"),
		}
	}
	r.level++
	val, err := r.GetInt(obj)
	r.level--
	return val, err
}

func (r *Reader) scannerAt(pos int64) *scanner {
	return newScanner(r.data, pos, r.safeGetInt)
}

func (r *Reader) errPos(obj Object) int64 {
	ref, ok := obj.(*Reference)
	if !ok || r.xref == nil {
		return 0
	}
	entry := r.xref[ref.Number]
	if entry.IsFree() {
		return 0
	}
	return entry.Pos
}
