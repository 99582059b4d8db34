// Package tsv parses tab-separated coordinate text into 0-based triples.
//
// Each line carries exactly three fields:
//
//	<row>\t<col>\t<value>\n
//
// Row and column ids are 1-based in the text. Parsing stops at the first
// malformed line and reports it as a *format.FormatError; blank lines are
// malformed.
package tsv

import (
	"bytes"
	"math"
	"strconv"

	"github.com/born-ml/sparsednn/internal/dtype"
	"github.com/born-ml/sparsednn/internal/format"
)

// Delimiter separates the fields of a line.
const Delimiter = '\t'

// Triple is one nonzero entry with 0-based coordinates.
type Triple[T dtype.Float] struct {
	Row   int
	Col   int
	Value T
}

// Parse parses the whole text and returns its triples in line order.
func Parse[T dtype.Float](text []byte) ([]Triple[T], error) {
	triples := make([]Triple[T], 0, CountRecords(text))
	err := ParseFunc(text, func(t Triple[T]) error {
		triples = append(triples, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return triples, nil
}

// ParseFunc parses text line by line and hands each triple to fn.
// An error returned by fn stops parsing and is returned as is.
func ParseFunc[T dtype.Float](text []byte, fn func(Triple[T]) error) error {
	line := 0
	for len(text) > 0 {
		line++
		var cur []byte
		if i := bytes.IndexByte(text, '\n'); i >= 0 {
			cur, text = text[:i], text[i+1:]
		} else {
			cur, text = text, nil
		}
		t, err := ParseLine[T](cur, line)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
	}
	return nil
}

// ParseLine parses a single line. lineNo is only used for error reporting.
func ParseLine[T dtype.Float](line []byte, lineNo int) (Triple[T], error) {
	line = bytes.TrimSuffix(line, []byte{'\r'})

	var fields [3][]byte
	n := 0
	for rest := line; ; n++ {
		i := bytes.IndexByte(rest, Delimiter)
		if n == len(fields) {
			return Triple[T]{}, &format.FormatError{
				Line: lineNo, Text: string(line), Reason: "more than 3 fields",
			}
		}
		if i < 0 {
			fields[n] = rest
			n++
			break
		}
		fields[n], rest = rest[:i], rest[i+1:]
	}
	if n < len(fields) {
		return Triple[T]{}, &format.FormatError{
			Line: lineNo, Text: string(line), Reason: "expected 3 fields, got " + strconv.Itoa(n),
		}
	}

	row, err := ParseIndex(fields[0], lineNo, "row")
	if err != nil {
		return Triple[T]{}, err
	}
	col, err := ParseIndex(fields[1], lineNo, "col")
	if err != nil {
		return Triple[T]{}, err
	}
	val, err := ParseValue[T](fields[2], lineNo)
	if err != nil {
		return Triple[T]{}, err
	}
	return Triple[T]{Row: row, Col: col, Value: val}, nil
}

// ParseValue parses a finite floating point literal with the precision of T.
func ParseValue[T dtype.Float](field []byte, lineNo int) (T, error) {
	v, err := dtype.ParseFloat[T](string(field))
	if err != nil {
		return 0, &format.FormatError{
			Line: lineNo, Field: "value", Text: string(field), Reason: "not a valid " + dtype.Of[T]().String(),
		}
	}
	if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &format.FormatError{
			Line: lineNo, Field: "value", Text: string(field), Reason: "value is not finite",
		}
	}
	return v, nil
}

// ParseIndex parses a 1-based id and returns it 0-based.
func ParseIndex(field []byte, lineNo int, name string) (int, error) {
	id, err := strconv.Atoi(string(field))
	if err != nil {
		return 0, &format.FormatError{
			Line: lineNo, Field: name, Text: string(field), Reason: "not a valid integer",
		}
	}
	if id < 1 {
		return 0, &format.FormatError{
			Line: lineNo, Field: name, Text: string(field), Reason: "ids are 1-based",
		}
	}
	return id - 1, nil
}

// CountLines returns the number of newline-terminated lines in text.
func CountLines(text []byte) int {
	return bytes.Count(text, []byte{'\n'})
}

// CountRecords returns the number of lines ParseFunc visits, counting a
// final line without a newline. For a coordinate file this is its number
// of nonzeros.
func CountRecords(text []byte) int {
	n := CountLines(text)
	if len(text) > 0 && text[len(text)-1] != '\n' {
		n++
	}
	return n
}
