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

// Pdfcheck verifies the structure of PDF files.
//
// Usage:
//
//	pdfcheck [-text] file.pdf ...
//
// For every file, the problems found are listed.  With -text, the text of
// every page is printed as well.  The exit status is 1 if any problems
// were found.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"seehuhn.de/go/qapdf/inspect"
	"seehuhn.de/go/qapdf/pdf"
)

func main() {
	showText := flag.Bool("text", false, "print the text of every page")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] file.pdf ...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	failed := false
	for _, fname := range flag.Args() {
		ok, err := checkFile(fname, *showText)
		if err != nil {
			log.Fatal(err)
		}
		if !ok {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func checkFile(fname string, showText bool) (bool, error) {
	rep, err := inspect.CheckFile(fname)
	if err != nil {
		return false, err
	}

	version, _ := rep.Version.ToString()
	fmt.Printf("%s: PDF-%s, %d bytes, %d objects, %d pages\n",
		fname, version, rep.Size, rep.NumObjects, rep.NumPages)
	for _, p := range rep.Problems {
		fmt.Printf("  %s\n", p)
	}
	if rep.OK() {
		fmt.Println("  no problems found")
	}

	if showText && rep.NumPages > 0 {
		r, err := pdf.Open(fname)
		if err != nil {
			return false, err
		}
		pages, err := inspect.ExtractText(r)
		if err != nil {
			return false, err
		}
		for i, page := range pages {
			fmt.Printf("--- page %d ---\n", i+1)
			for _, line := range page {
				fmt.Printf("%7.2f %7.2f  %s\n", line.Pos.X, line.Pos.Y, line.Text)
			}
		}
	}

	return rep.OK(), nil
}
