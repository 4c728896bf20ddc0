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

package metadata

import (
	"bytes"
	"errors"
	"io"
	"time"

	"golang.org/x/text/language"
	"seehuhn.de/go/xmp"

	"seehuhn.de/go/qapdf/pdf"
)

// Stream represents an XMP metadata stream for a document catalog.
type Stream struct {
	Data *xmp.Packet
}

// Properties are the document properties recorded in the metadata stream.
type Properties struct {
	Title    string
	Author   string
	Producer string
	Created  time.Time

	// Lang is the language of the title.  The title is always stored as
	// the x-default alternative and, if Lang is set, also under Lang.
	Lang language.Tag
}

// New creates an XMP packet containing the given properties.
// Empty fields are omitted.
func New(p *Properties) (*Stream, error) {
	dc := &xmp.DublinCore{}
	if p.Title != "" {
		dc.Title.Set(language.MustParse("x-default"), p.Title)
		if p.Lang != language.Und {
			dc.Title.Set(p.Lang, p.Title)
		}
	}
	if p.Author != "" {
		dc.Creator.Append(xmp.NewProperName(p.Author))
	}

	basic := &basicInfo{}
	if !p.Created.IsZero() {
		basic.CreateDate = xmp.NewDate(p.Created)
	}
	pdfInfo := &pdfInfo{}
	if p.Producer != "" {
		pdfInfo.Producer = xmp.NewText(p.Producer)
	}

	packet := xmp.NewPacket()
	err := packet.Set(dc, basic, pdfInfo)
	if err != nil {
		return nil, err
	}
	return &Stream{Data: packet}, nil
}

// Embed writes the metadata stream to w, using the given reference.
// If ref is nil, a new object number is allocated.
//
// XMP metadata streams require PDF 1.4 or newer.
func (s *Stream) Embed(w *pdf.Writer, ref *pdf.Reference) (*pdf.Reference, error) {
	if w.Version < pdf.V1_4 {
		return nil, errVersion
	}

	dict := pdf.Dict{
		"Type":    pdf.Name("Metadata"),
		"Subtype": pdf.Name("XML"),
	}
	body, ref, err := w.OpenStream(ref, dict)
	if err != nil {
		return nil, err
	}

	xmlOpt := &xmp.PacketOptions{
		Pretty: true,
	}
	err = s.Data.Write(body, xmlOpt)
	if err != nil {
		return nil, err
	}

	err = body.Close()
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// Extract reads a metadata stream from a PDF file.
//
// If ref is nil, the function returns nil.
func Extract(r *pdf.Reader, ref pdf.Object) (*Stream, error) {
	if ref == nil {
		return nil, nil
	}
	stm, err := r.GetStream(ref)
	if err != nil {
		return nil, err
	}
	data, err := r.ReadStream(stm)
	if err != nil {
		return nil, err
	}

	packet, err := xmp.Read(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Stream{Data: packet}, nil
}

// DublinCore returns the Dublin Core properties stored in the packet.
func (s *Stream) DublinCore() *xmp.DublinCore {
	dc := &xmp.DublinCore{}
	s.Data.Get(dc)
	return dc
}

// Producer returns the pdf:Producer property, or the empty string if the
// property is not set.
func (s *Stream) Producer() string {
	info := &pdfInfo{}
	s.Data.Get(info)
	return info.Producer.V
}

// Created returns the xmp:CreateDate property.  The zero time is returned
// if the property is not set.
func (s *Stream) Created() time.Time {
	basic := &basicInfo{}
	s.Data.Get(basic)
	return basic.CreateDate.V
}

// Equal reports whether s and other represent the same XMP metadata.
func (s *Stream) Equal(other *Stream) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Data.Equal(other.Data)
}

// Dump writes the XMP packet as indented XML.
func (s *Stream) Dump(w io.Writer) error {
	return s.Data.Write(w, &xmp.PacketOptions{Pretty: true})
}

// basicInfo holds the XMP basic properties used here.
// See https://developer.adobe.com/xmp/docs/XMPNamespaces/xmp/
type basicInfo struct {
	_          xmp.Namespace `xmp:"http://ns.adobe.com/xap/1.0/"`
	_          xmp.Prefix    `xmp:"xmp"`
	CreateDate xmp.Date
}

// pdfInfo is the XMP namespace for PDF metadata.
// See https://developer.adobe.com/xmp/docs/XMPNamespaces/pdf/
type pdfInfo struct {
	_        xmp.Namespace `xmp:"http://ns.adobe.com/pdf/1.3/"`
	_        xmp.Prefix    `xmp:"pdf"`
	Producer xmp.Text
}

var errVersion = errors.New("XMP metadata requires PDF 1.4 or newer")
