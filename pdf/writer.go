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
	"fmt"
	"io"
	"os"
)

// Writer represents a PDF file open for writing.
//
// Object numbers are handed out by Alloc() and stay fixed from then on.
// Objects can be written in any order; the cross-reference table is
// assembled from the object numbers when the Writer is closed.
type Writer struct {
	Version Version

	w       *posWriter
	closer  io.Closer
	xref    map[int]*xRefEntry
	nextRef int

	catalog *Reference
	info    *Reference

	inStream bool
}

// WriterOptions allows to influence the way a PDF file is generated.
type WriterOptions struct {
	// Version is the PDF version written into the file header.
	// The zero value selects PDF 1.4.
	Version Version
}

// NewWriter prepares a PDF file for writing.
//
// The underlying io.Writer is not closed by Writer.Close().
func NewWriter(w io.Writer, opt *WriterOptions) (*Writer, error) {
	ver := V1_4
	if opt != nil && opt.Version != 0 {
		ver = opt.Version
	}
	versionString, err := ver.ToString()
	if err != nil {
		return nil, err
	}

	pdf := &Writer{
		Version: ver,

		w:       &posWriter{w: w},
		nextRef: 1,
		xref:    make(map[int]*xRefEntry),
	}
	pdf.xref[0] = &xRefEntry{
		Pos:        -1,
		Generation: 65535,
	}

	_, err = fmt.Fprintf(pdf.w, "%%PDF-%s\n", versionString)
	if err != nil {
		return nil, err
	}

	return pdf, nil
}

// Create creates the named PDF file and opens it for output.  If a previous
// file with the same name exists, it is overwritten.  After writing is
// complete, Close() must be called to write the trailer and to close the
// underlying file.
func Create(name string, opt *WriterOptions) (*Writer, error) {
	fd, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	pdf, err := NewWriter(fd, opt)
	if err != nil {
		fd.Close()
		return nil, err
	}
	pdf.closer = fd
	return pdf, nil
}

// Alloc allocates an object number for an indirect object.
func (pdf *Writer) Alloc() *Reference {
	res := &Reference{
		Number:     pdf.nextRef,
		Generation: 0,
	}
	pdf.nextRef++
	return res
}

// Pos returns the number of bytes written so far.
func (pdf *Writer) Pos() int64 {
	if pdf.w == nil {
		return -1
	}
	return pdf.w.pos
}

// Put writes an object to the PDF file, as an indirect object.  If ref is
// nil, a new object number is allocated.  The returned reference can be used
// to refer to this object from other parts of the file.
func (pdf *Writer) Put(ref *Reference, obj Object) (*Reference, error) {
	err := pdf.checkWritable()
	if err != nil {
		return nil, err
	}
	if ref == nil {
		ref = pdf.Alloc()
	} else if err := pdf.checkRef(ref); err != nil {
		return nil, err
	}

	pos := pdf.w.pos
	_, err = fmt.Fprintf(pdf.w, "%d %d obj\n", ref.Number, ref.Generation)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		_, err = pdf.w.Write([]byte("null"))
	} else {
		err = obj.PDF(pdf.w)
	}
	if err != nil {
		return nil, err
	}
	_, err = pdf.w.Write([]byte("\nendobj\n"))
	if err != nil {
		return nil, err
	}

	pdf.xref[ref.Number] = &xRefEntry{Pos: pos, Generation: ref.Generation}

	return ref, nil
}

// OpenStream adds a PDF Stream to the file and returns an io.WriteCloser
// which can be used to add the stream's data.  No other objects can be added
// to the file until the stream is closed.  The /Length entry of the stream
// dictionary is set automatically, from the number of bytes written.
func (pdf *Writer) OpenStream(ref *Reference, dict Dict) (io.WriteCloser, *Reference, error) {
	err := pdf.checkWritable()
	if err != nil {
		return nil, nil, err
	}
	if ref == nil {
		ref = pdf.Alloc()
	} else if err := pdf.checkRef(ref); err != nil {
		return nil, nil, err
	}

	streamDict := make(Dict, len(dict)+1)
	for key, val := range dict {
		streamDict[key] = val
	}

	pdf.inStream = true
	return &streamWriter{
		parent: pdf,
		ref:    ref,
		dict:   streamDict,
	}, ref, nil
}

type streamWriter struct {
	parent *Writer
	ref    *Reference
	dict   Dict
	buf    bytes.Buffer
}

func (w *streamWriter) Write(p []byte) (int, error) {
	if w.parent == nil {
		return 0, errStreamClosed
	}
	return w.buf.Write(p)
}

func (w *streamWriter) Close() error {
	pdf := w.parent
	if pdf == nil {
		return errStreamClosed
	}
	w.parent = nil
	pdf.inStream = false

	w.dict["Length"] = Integer(w.buf.Len())
	stm := &Stream{
		Dict: w.dict,
		R:    &w.buf,
	}
	_, err := pdf.Put(w.ref, stm)
	return err
}

// SetCatalog sets the reference to the document catalog, which is written
// to the /Root entry of the trailer dictionary.
func (pdf *Writer) SetCatalog(ref *Reference) {
	pdf.catalog = ref
}

// SetInfo sets the reference to the document information dictionary, which
// is written to the /Info entry of the trailer dictionary.
func (pdf *Writer) SetInfo(ref *Reference) {
	pdf.info = ref
}

// Close writes the cross-reference table and the trailer.  If the Writer was
// created by Create(), the underlying file is closed, too.
//
// Close fails if an object number was allocated but no object was written
// for it, since the file would then contain a dangling reference.
func (pdf *Writer) Close() error {
	err := pdf.checkWritable()
	if err != nil {
		return err
	}
	if pdf.catalog == nil {
		return errors.New("missing /Catalog")
	}
	for i := 1; i < pdf.nextRef; i++ {
		if pdf.xref[i] == nil {
			return fmt.Errorf("object %d allocated but never written", i)
		}
	}

	trailer := Dict{
		"Size": Integer(pdf.nextRef),
		"Root": pdf.catalog,
	}
	if pdf.info != nil {
		trailer["Info"] = pdf.info
	}

	xRefPos := pdf.w.pos
	err = pdf.writeXRefTable(trailer)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(pdf.w, "\nstartxref\n%d\n%%%%EOF\n", xRefPos)
	if err != nil {
		return err
	}

	// Make sure we don't accidentally write beyond the end of file.
	pdf.w = nil

	if pdf.closer != nil {
		return pdf.closer.Close()
	}
	return nil
}

func (pdf *Writer) checkWritable() error {
	if pdf.w == nil {
		return errWriterClosed
	}
	if pdf.inStream {
		return errors.New("stream still open")
	}
	return nil
}

func (pdf *Writer) checkRef(ref *Reference) error {
	if ref.Number <= 0 || ref.Number >= pdf.nextRef {
		return fmt.Errorf("object %d was not allocated by this writer", ref.Number)
	}
	if _, seen := pdf.xref[ref.Number]; seen {
		return fmt.Errorf("object %d already written", ref.Number)
	}
	return nil
}

// posWriter keeps track of the number of bytes written, so that the byte
// offset of every object is known at the time the object is written.
type posWriter struct {
	w   io.Writer
	pos int64
}

func (w *posWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.pos += int64(n)
	return n, err
}
