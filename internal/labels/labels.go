// Package labels reads and writes the one-hot category vectors that hold the
// expected classification of every input.
package labels

import (
	"bytes"
	"fmt"

	"github.com/born-ml/sparsednn/internal/format"
	"github.com/born-ml/sparsednn/internal/serialization"
	"github.com/born-ml/sparsednn/internal/tsv"
)

// Vector marks with 1 the inputs that belong to the category, 0 elsewhere.
type Vector []int32

// Parse builds a vector of length numInputs from text holding one 1-based
// input index per line.
func Parse(text []byte, numInputs int) (Vector, error) {
	if numInputs < 0 {
		return nil, &format.BoundsError{What: "label vector length", Need: 0, Have: int64(numInputs)}
	}
	v := make(Vector, numInputs)
	for line := 1; len(text) > 0; line++ {
		var cur []byte
		if i := bytes.IndexByte(text, '\n'); i >= 0 {
			cur, text = text[:i], text[i+1:]
		} else {
			cur, text = text, nil
		}
		idx, err := tsv.ParseIndex(bytes.TrimSuffix(cur, []byte{'\r'}), line, "label")
		if err != nil {
			return nil, err
		}
		if idx >= numInputs {
			return nil, &format.BoundsError{What: fmt.Sprintf("line %d label index", line), Need: int64(idx) + 1, Have: int64(numInputs)}
		}
		v[idx] = 1
	}
	return v, nil
}

// Indices returns the positions set to one, ascending.
func (v Vector) Indices() []int {
	var out []int
	for i, x := range v {
		if x != 0 {
			out = append(out, i)
		}
	}
	return out
}

// Encode returns the binary form: length header and raw values.
func Encode(v Vector) []byte {
	return serialization.EncodeLabels(v)
}

// Decode decodes the binary form.
func Decode(data []byte) (Vector, error) {
	values, err := serialization.DecodeLabels(data)
	if err != nil {
		return nil, err
	}
	return Vector(values), nil
}
