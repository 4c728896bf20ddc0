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
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mitchellh/go-wordwrap"
)

// Wrap splits text into lines of at most width characters.
//
// Runs of white space, including newlines, are collapsed into single
// spaces before wrapping.  Lines are broken at spaces and, where this lets
// more text fit onto a line, after a hyphen inside a compound word such as
// "well-known", or next to a dash written as "--".  A word which is longer
// than width is placed on a line of its own.  An empty or all-space text
// gives no lines at all.  If width is not positive, the normalised text is
// returned as a single line.
func Wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	text = strings.Join(words, " ")
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for {
		first, _, more := strings.Cut(wordwrap.WrapString(text, uint(width)), "\n")
		if !more {
			return append(lines, first)
		}
		rest := strings.TrimPrefix(text[len(first):], " ")

		word, tail, _ := strings.Cut(rest, " ")
		room := width - utf8.RuneCountInString(first) - 1
		if n := hyphenPrefix(word, room); n > 0 {
			first += " " + word[:n]
			rest = word[n:]
			if tail != "" {
				rest += " " + tail
			}
		}
		lines = append(lines, first)
		text = rest
	}
}

// hyphenPrefix returns the length in bytes of the longest part of word
// which ends at a break point and has at most room characters.
// If there is no such part, 0 is returned.
func hyphenPrefix(word string, room int) int {
	if room <= 0 {
		return 0
	}
	w := []rune(word)
	best := 0
	for _, end := range breakPoints(w) {
		if end > room {
			break
		}
		best = end
	}
	return len(string(w[:best]))
}

// breakPoints returns the positions inside w, in increasing order, where a
// line may be broken.
func breakPoints(w []rune) []int {
	var res []int
	p := 0
	for p < len(w) {
		if p > 0 && isDashNeighbour(w[p-1]) {
			if end := dashEnd(w, p); end > 0 {
				p = end
				res = append(res, p)
				continue
			}
		}

		end := len(w)
		for k := p + 1; k < len(w); k++ {
			if w[k] == '-' && isHyphenBreak(w, k) {
				end = k + 1
				break
			}
			if isDashNeighbour(w[k-1]) && dashEnd(w, k) > 0 {
				end = k
				break
			}
		}
		p = end
		if p < len(w) {
			res = append(res, p)
		}
	}
	return res
}

// isHyphenBreak reports whether a line may be broken after the hyphen
// w[k].  The hyphen must join two letters on the left to two letters on
// the right, where a single further hyphen may separate the letters.
func isHyphenBreak(w []rune, k int) bool {
	before := letterAt(w, k-2) && letterAt(w, k-1) ||
		letterAt(w, k-3) && w[k-2] == '-' && letterAt(w, k-1)
	after := letterAt(w, k+1) &&
		(letterAt(w, k+2) || k+2 < len(w) && w[k+2] == '-' && letterAt(w, k+3))
	return before && after
}

// dashEnd returns the end of a run of at least two hyphens starting at
// w[i], if the run is followed by a word character.  Otherwise 0 is
// returned.
func dashEnd(w []rune, i int) int {
	j := i
	for j < len(w) && w[j] == '-' {
		j++
	}
	if j-i < 2 || j >= len(w) || !isWordChar(w[j]) {
		return 0
	}
	return j
}

func letterAt(w []rune, i int) bool {
	return i >= 0 && i < len(w) && isWordChar(w[i]) && !unicode.IsDigit(w[i])
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}

func isDashNeighbour(r rune) bool {
	return isWordChar(r) || strings.ContainsRune(`!"'&.,?`, r)
}
