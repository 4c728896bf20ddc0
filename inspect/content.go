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

package inspect

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"seehuhn.de/go/qapdf/pdf"
)

// operator is a content stream operator, like "Tj" or "BT".
type operator string

// lexer breaks a content stream into operands and operators.
type lexer struct {
	data []byte
	pos  int
}

// next returns the next token.  Tokens are either PDF objects (operands),
// or values of type operator.  At the end of input, nil is returned
// together with ok == false.
func (l *lexer) next() (tok any, ok bool, err error) {
	type stackEntry struct {
		isDict bool
		data   []pdf.Object
	}
	var stack []*stackEntry
	for {
		l.skipWhiteSpace()
		if l.pos >= len(l.data) {
			if len(stack) > 0 {
				return nil, false, errUnexpectedEOF
			}
			return nil, false, nil
		}

		var obj any
		c := l.data[l.pos]
		switch {
		case c == '(':
			obj, err = l.readString()
		case c == '<' && l.peekIs("<<"):
			l.pos += 2
			stack = append(stack, &stackEntry{isDict: true})
			continue
		case c == '<':
			obj, err = l.readHexString()
		case c == '>' && l.peekIs(">>"):
			l.pos += 2
			if len(stack) == 0 || !stack[len(stack)-1].isDict {
				return nil, false, l.errorf("unexpected '>>'")
			}
			entry := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(entry.data)%2 != 0 {
				return nil, false, l.errorf("odd number of dictionary entries")
			}
			dict := pdf.Dict{}
			for i := 0; i < len(entry.data); i += 2 {
				key, isName := entry.data[i].(pdf.Name)
				if !isName {
					return nil, false, l.errorf("unexpected dict key")
				}
				if entry.data[i+1] != nil {
					dict[key] = entry.data[i+1]
				}
			}
			obj = dict
		case c == '[':
			l.pos++
			stack = append(stack, &stackEntry{})
			continue
		case c == ']':
			l.pos++
			if len(stack) == 0 || stack[len(stack)-1].isDict {
				return nil, false, l.errorf("unexpected ']'")
			}
			entry := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			obj = pdf.Array(entry.data)
		case c == '/':
			l.pos++
			obj = pdf.Name(l.readRegular())
		case isDelimiter(c):
			return nil, false, l.errorf("unexpected %q", c)
		default:
			obj = l.readKeyword()
		}
		if err != nil {
			return nil, false, err
		}

		if len(stack) == 0 {
			return obj, true, nil
		}
		operand, isObj := obj.(pdf.Object)
		if !isObj && obj != nil {
			return nil, false, l.errorf("operator %q inside array or dict", obj)
		}
		top := stack[len(stack)-1]
		top.data = append(top.data, operand)
	}
}

// readKeyword reads a number, a boolean, null or an operator.
func (l *lexer) readKeyword() any {
	word := l.readRegular()
	if x, err := strconv.ParseInt(word, 10, 64); err == nil {
		return pdf.Integer(x)
	}
	if isNumber(word) {
		y, err := strconv.ParseFloat(word, 64)
		if err == nil && !math.IsInf(y, 0) {
			return pdf.Real(y)
		}
	}
	switch word {
	case "true":
		return pdf.Bool(true)
	case "false":
		return pdf.Bool(false)
	case "null":
		return nil
	}
	return operator(word)
}

func (l *lexer) readRegular() string {
	start := l.pos
	for l.pos < len(l.data) && !isSpace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *lexer) readString() (pdf.String, error) {
	l.pos++ // skip "("
	var res []byte
	level := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			level++
		case ')':
			level--
			if level == 0 {
				return pdf.String(res), nil
			}
		case '\\':
			if l.pos >= len(l.data) {
				return nil, errUnexpectedEOF
			}
			c = l.data[l.pos]
			l.pos++
			switch c {
			case 'n':
				c = '\n'
			case 'r':
				c = '\r'
			case 't':
				c = '\t'
			case 'b':
				c = '\b'
			case 'f':
				c = '\f'
			case '\n':
				continue
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
				continue
			case '0', '1', '2', '3', '4', '5', '6', '7':
				oct := c - '0'
				for i := 0; i < 2 && l.pos < len(l.data); i++ {
					d := l.data[l.pos]
					if d < '0' || d > '7' {
						break
					}
					oct = oct*8 + (d - '0')
					l.pos++
				}
				c = oct
			}
		}
		res = append(res, c)
	}
	return nil, errUnexpectedEOF
}

func (l *lexer) readHexString() (pdf.String, error) {
	l.pos++ // skip "<"
	var res []byte
	var hi byte
	first := true
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		var lo byte
		switch {
		case c == '>':
			if !first {
				res = append(res, hi)
			}
			return pdf.String(res), nil
		case isSpace(c):
			continue
		case c >= '0' && c <= '9':
			lo = c - '0'
		case c >= 'A' && c <= 'F':
			lo = c - 'A' + 10
		case c >= 'a' && c <= 'f':
			lo = c - 'a' + 10
		default:
			return nil, l.errorf("invalid hex digit %q", c)
		}
		if first {
			hi = lo << 4
		} else {
			res = append(res, hi|lo)
		}
		first = !first
	}
	return nil, errUnexpectedEOF
}

// skipWhiteSpace skips white space and comments.
func (l *lexer) skipWhiteSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		} else if !isSpace(c) {
			return
		}
		l.pos++
	}
}

func (l *lexer) peekIs(s string) bool {
	return l.pos+len(s) <= len(l.data) && string(l.data[l.pos:l.pos+len(s)]) == s
}

func (l *lexer) errorf(format string, args ...any) error {
	return fmt.Errorf("content stream byte %d: %s", l.pos, fmt.Sprintf(format, args...))
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	digits := 0
	for i, c := range []byte(s) {
		switch {
		case i == 0 && (c == '+' || c == '-'):
		case c == '.':
		case c >= '0' && c <= '9':
			digits++
		default:
			return false
		}
	}
	return digits > 0
}

func isSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

var errUnexpectedEOF = errors.New("unexpected end of content stream")
