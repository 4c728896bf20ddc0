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

// Package document lays out lines of text on pages and writes them as a
// PDF file.
//
// The generated files contain one content stream per page, a single base
// font from the standard 14 fonts and a flat page tree.  Object numbers are
// assigned in a fixed order: the catalog, the page tree root, the content
// streams, the page objects and the font, followed by the optional document
// information dictionary and metadata stream.
package document

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"seehuhn.de/go/qapdf/layout"
	"seehuhn.de/go/qapdf/metadata"
	"seehuhn.de/go/qapdf/pdf"
)

// DefaultFontSize is the font size used if Options.FontSize is zero.
const DefaultFontSize = 12

// Options control the generation of a document.  The zero value selects
// the defaults.
type Options struct {
	// Geometry gives the page size and the placement of text lines.
	// If this is nil, layout.DefaultGeometry() is used.
	Geometry *layout.Geometry

	// Font is the font used for all text.  The default is Helvetica.
	Font Font

	// FontSize is the font size in PDF units.  The default is 12.
	FontSize float64

	// Version is the PDF version of the output.  The default is PDF 1.4.
	Version pdf.Version

	// Info, if non-nil, is written as the document information dictionary.
	Info *Info

	// Metadata, if set, adds an XMP metadata stream to the document
	// catalog.  The stream repeats the fields from Info.
	Metadata bool

	// Logger receives debug messages.  If nil, nothing is logged.
	Logger *slog.Logger
}

// Info holds the fields of the document information dictionary.
type Info struct {
	Title        string
	Author       string
	Producer     string
	CreationDate time.Time
}

// Write lays out the lines on pages and writes the resulting PDF file to w.
//
// The lines are placed in order, starting a new page whenever the current
// one is full.  An empty list of lines gives a document with no pages.
// Text which cannot be represented in the Latin-1 character set results in
// an error wrapping a *pdf.EncodingError.
func Write(w io.Writer, lines []string, opt *Options) error {
	if opt == nil {
		opt = &Options{}
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	font := opt.Font
	if font == "" {
		font = Helvetica
	}
	if !font.IsStandard() {
		return fmt.Errorf("%q: %w", font, ErrUnknownFont)
	}
	fontSize := opt.FontSize
	if fontSize == 0 {
		fontSize = DefaultFontSize
	} else if !(fontSize > 0) || math.IsInf(fontSize, 0) {
		return fmt.Errorf("invalid font size %g", fontSize)
	}
	geom := opt.Geometry
	if geom == nil {
		geom = layout.DefaultGeometry()
	}

	pages, err := layout.Paginate(lines, geom)
	if err != nil {
		return err
	}
	logger.Debug("paginated",
		slog.Int("lines", len(lines)),
		slog.Int("pages", len(pages)),
		slog.Int("perPage", geom.LinesPerPage()))

	// Encode all text before writing anything, so that encoding errors
	// do not leave a partial file behind.
	encoded := make([][]textLine, len(pages))
	nonASCII := false
	lineNo := 0
	for i, page := range pages {
		encoded[i] = make([]textLine, len(page))
		for j, line := range page {
			lineNo++
			s, err := pdf.EncodeLatin1(line.Text)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			for _, c := range s {
				if c >= 0x80 {
					nonASCII = true
				}
			}
			encoded[i][j] = textLine{Pos: line.Pos, Text: s}
		}
	}

	version := opt.Version
	if version == 0 {
		version = pdf.V1_4
	}
	if opt.Metadata && version < pdf.V1_4 {
		return fmt.Errorf("XMP metadata needs PDF 1.4, not %s", version)
	}
	out, err := pdf.NewWriter(w, &pdf.WriterOptions{Version: version})
	if err != nil {
		return err
	}

	// allocate all object numbers up front
	numPages := len(pages)
	catalogRef := out.Alloc()
	pagesRef := out.Alloc()
	contentRefs := make([]*pdf.Reference, numPages)
	for i := range contentRefs {
		contentRefs[i] = out.Alloc()
	}
	pageRefs := make([]*pdf.Reference, numPages)
	for i := range pageRefs {
		pageRefs[i] = out.Alloc()
	}
	fontRef := out.Alloc()
	var infoRef, metaRef *pdf.Reference
	if opt.Info != nil {
		infoRef = out.Alloc()
	}
	if opt.Metadata {
		metaRef = out.Alloc()
	}

	put := func(ref *pdf.Reference, kind string, obj pdf.Object) error {
		_, err := out.Put(ref, obj)
		if err != nil {
			return err
		}
		logger.Debug("object written",
			slog.Int("number", ref.Number),
			slog.String("kind", kind))
		return nil
	}

	catalog := pdf.Dict{
		"Type":  pdf.Name("Catalog"),
		"Pages": pagesRef,
	}
	if metaRef != nil {
		catalog["Metadata"] = metaRef
	}
	err = put(catalogRef, "Catalog", catalog)
	if err != nil {
		return err
	}

	kids := make(pdf.Array, numPages)
	for i, ref := range pageRefs {
		kids[i] = ref
	}
	err = put(pagesRef, "Pages", pdf.Dict{
		"Type":  pdf.Name("Pages"),
		"Kids":  kids,
		"Count": pdf.Integer(numPages),
	})
	if err != nil {
		return err
	}

	for i, page := range encoded {
		stm, _, err := out.OpenStream(contentRefs[i], nil)
		if err != nil {
			return err
		}
		err = writeContent(stm, page, fontSize)
		if err != nil {
			return err
		}
		err = stm.Close()
		if err != nil {
			return err
		}
		logger.Debug("object written",
			slog.Int("number", contentRefs[i].Number),
			slog.String("kind", "Contents"))
	}

	mediaBox := pdf.Rectangle(geom.MediaBox)
	for i := range pageRefs {
		pageDict := pdf.Dict{
			"Type":     pdf.Name("Page"),
			"Parent":   pagesRef,
			"MediaBox": mediaBox,
			"Contents": contentRefs[i],
			"Resources": pdf.Dict{
				"Font": pdf.Dict{fontResource: fontRef},
			},
		}
		err = put(pageRefs[i], "Page", pageDict)
		if err != nil {
			return err
		}
	}

	err = put(fontRef, "Font", font.fontDict(nonASCII))
	if err != nil {
		return err
	}

	if infoRef != nil {
		err = put(infoRef, "Info", opt.Info.asDict())
		if err != nil {
			return err
		}
		out.SetInfo(infoRef)
	}

	if metaRef != nil {
		props := &metadata.Properties{}
		if opt.Info != nil {
			props.Title = opt.Info.Title
			props.Author = opt.Info.Author
			props.Producer = opt.Info.Producer
			props.Created = opt.Info.CreationDate
		}
		stm, err := metadata.New(props)
		if err != nil {
			return err
		}
		_, err = stm.Embed(out, metaRef)
		if err != nil {
			return err
		}
		logger.Debug("object written",
			slog.Int("number", metaRef.Number),
			slog.String("kind", "Metadata"))
	}

	out.SetCatalog(catalogRef)
	err = out.Close()
	if err != nil {
		return err
	}
	logger.Debug("document complete", slog.Int("pages", numPages))
	return nil
}

// Create writes the document to the named file.  If the file exists, it
// is overwritten.
func Create(fileName string, lines []string, opt *Options) error {
	fd, err := os.Create(fileName)
	if err != nil {
		return err
	}
	err = Write(fd, lines, opt)
	err2 := fd.Close()
	if err == nil {
		err = err2
	}
	return err
}

func (info *Info) asDict() pdf.Dict {
	dict := pdf.Dict{}
	if info.Title != "" {
		dict["Title"] = pdf.TextString(info.Title)
	}
	if info.Author != "" {
		dict["Author"] = pdf.TextString(info.Author)
	}
	if info.Producer != "" {
		dict["Producer"] = pdf.TextString(info.Producer)
	}
	if !info.CreationDate.IsZero() {
		dict["CreationDate"] = pdf.Date(info.CreationDate)
	}
	return dict
}
