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

// Qapdf writes interview questions, or the lines of a text file, to a PDF
// file.
//
// Usage:
//
//	qapdf [flags]
//
// Without -i, the built-in Angular interview questions are typeset.
// With "-o -" the PDF file is written to standard output.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/qapdf/document"
	"seehuhn.de/go/qapdf/interview"
	"seehuhn.de/go/qapdf/layout"
)

const (
	defaultOutput = "AngularInterviewQuestions.pdf"
	producer      = "seehuhn.de/go/qapdf"
	tabWidth      = 4
)

var paperSizes = map[string]rect.Rect{
	"a4":     layout.A4,
	"a5":     layout.A5,
	"letter": layout.Letter,
	"legal":  layout.Legal,
}

func main() {
	outName := flag.String("o", defaultOutput, "output file name, \"-\" for standard output")
	inName := flag.String("i", "", "text file to typeset instead of the interview questions")
	width := flag.Int("wrap", interview.DefaultWidth, "wrap lines at this many characters, 0 to disable")
	fontName := flag.String("font", string(document.Helvetica), "one of the standard 14 PDF fonts")
	fontSize := flag.Float64("size", document.DefaultFontSize, "font size")
	paper := flag.String("paper", "letter", "paper size (a4, a5, letter or legal)")
	title := flag.String("title", "", "document title")
	author := flag.String("author", "", "document author")
	addInfo := flag.Bool("info", false, "add a document information dictionary")
	addXMP := flag.Bool("xmp", false, "add an XMP metadata stream")
	verbose := flag.Bool("v", false, "log details about the generated file")
	flag.Parse()

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	font, err := document.ParseFont(*fontName)
	if err != nil {
		log.Fatal(err)
	}
	mediaBox, ok := paperSizes[strings.ToLower(*paper)]
	if !ok {
		log.Fatalf("unknown paper size %q", *paper)
	}
	geom := layout.DefaultGeometry()
	geom.MediaBox = mediaBox

	var lines []string
	defaultTitle := "Angular Interview Questions"
	if *inName == "" {
		lines = interview.Lines(interview.Angular(), *width)
	} else {
		lines, err = readLines(*inName, *width)
		if err != nil {
			log.Fatal(err)
		}
		defaultTitle = filepath.Base(*inName)
	}

	opt := &document.Options{
		Geometry: geom,
		Font:     font,
		FontSize: *fontSize,
		Metadata: *addXMP,
		Logger:   logger,
	}
	if *addInfo || *addXMP || *title != "" || *author != "" {
		info := &document.Info{
			Title:        *title,
			Author:       *author,
			Producer:     producer,
			CreationDate: time.Now(),
		}
		if info.Title == "" {
			info.Title = defaultTitle
		}
		opt.Info = info
	}

	if *outName == "-" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			log.Fatal("refusing to write PDF data to a terminal")
		}
		err = document.Write(os.Stdout, lines, opt)
	} else {
		err = writeAtomic(*outName, func(w io.Writer) error {
			return document.Write(w, lines, opt)
		})
	}
	if err != nil {
		log.Fatal(err)
	}
	logger.Info("wrote PDF file",
		slog.String("file", *outName),
		slog.Int("lines", len(lines)),
		slog.Int("pages", geom.NumPages(len(lines))))
}

// readLines reads a text file, expands tabs and wraps long lines.
// Empty lines are kept.
func readLines(fileName string, width int) ([]string, error) {
	fd, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	var lines []string
	scanner := bufio.NewScanner(fd)
	for scanner.Scan() {
		line := expandTabs(scanner.Text())
		if width <= 0 || len([]rune(line)) <= width {
			lines = append(lines, line)
			continue
		}
		lines = append(lines, layout.Wrap(line, width)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	b := &strings.Builder{}
	col := 0
	for _, r := range s {
		if r == '\t' {
			for {
				b.WriteByte(' ')
				col++
				if col%tabWidth == 0 {
					break
				}
			}
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

// writeAtomic writes a file via a temporary file in the same directory,
// so that the destination is either complete or left untouched.
func writeAtomic(fileName string, write func(io.Writer) error) error {
	dir := filepath.Dir(fileName)
	tmp, err := os.CreateTemp(dir, ".qapdf-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	err = write(tmp)
	err2 := tmp.Close()
	if err == nil {
		err = err2
	}
	if err == nil {
		err = os.Chmod(tmpName, 0o644)
	}
	if err == nil {
		err = os.Rename(tmpName, fileName)
	}
	if err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
