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

// Package interview provides question and answer sets for interview
// preparation, and turns them into lines of text for the document package.
package interview

import (
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"seehuhn.de/go/qapdf/layout"
)

// DefaultWidth is the maximal number of characters per answer line used
// by the qapdf command.
const DefaultWidth = 90

// Pair is one interview question together with its model answer.
type Pair struct {
	Question string

	// Answer is given in STAR form, one line each for situation, task,
	// action and result.
	Answer string
}

//go:embed angular.txt
var angularData string

// Angular returns the built-in set of Angular interview questions.
func Angular() []Pair {
	pairs, err := Parse(angularData)
	if err != nil {
		panic(err)
	}
	return pairs
}

var errNoAnswer = errors.New("question without answer")

// Parse reads question and answer pairs from text.
//
// The pairs are separated by blank lines.  The first line of each block is
// the question, the remaining lines form the answer.
func Parse(text string) ([]Pair, error) {
	var res []Pair
	var block []string
	lineNo := 0
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		if len(block) < 2 {
			return fmt.Errorf("line %d: %w", lineNo, errNoAnswer)
		}
		res = append(res, Pair{
			Question: block[0],
			Answer:   strings.Join(block[1:], "\n"),
		})
		block = block[:0]
		return nil
	}

	for _, line := range strings.Split(text, "\n") {
		lineNo++
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			err := flush()
			if err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, line)
	}
	err := flush()
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Lines converts question and answer pairs into lines of text.
//
// Each question is numbered, starting at 1.  The answer follows with
// its white space normalised, wrapped to at most width characters per line,
// and an empty line separates consecutive pairs.
func Lines(pairs []Pair, width int) []string {
	var lines []string
	for i, pair := range pairs {
		lines = append(lines, strconv.Itoa(i+1)+". "+pair.Question)
		lines = append(lines, layout.Wrap(pair.Answer, width)...)
		lines = append(lines, "")
	}
	return lines
}
