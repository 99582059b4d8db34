package serialization

import (
	"fmt"

	"github.com/born-ml/sparsednn/internal/format"
)

// Validation limits for resource protection. A header above these is
// treated as corrupt rather than trusted for an allocation.
const (
	MaxRows = 1 << 28
	MaxNNZ  = 1 << 30
)

func validateMatrixHeader(rows, nnz int) (MatrixHeader, error) {
	if rows <= 0 || rows > MaxRows {
		return MatrixHeader{}, &format.FormatError{Field: "rows", Reason: fmt.Sprintf("%d out of range (1..%d)", rows, MaxRows)}
	}
	if nnz < 0 || nnz > MaxNNZ {
		return MatrixHeader{}, &format.FormatError{Field: "nnz", Reason: fmt.Sprintf("%d out of range (0..%d)", nnz, MaxNNZ)}
	}
	return MatrixHeader{Rows: rows, NNZ: nnz}, nil
}

func validateDenseHeader(rows, cols int) (DenseHeader, error) {
	if rows < 0 || rows > MaxRows {
		return DenseHeader{}, &format.FormatError{Field: "rows", Reason: fmt.Sprintf("%d out of range (0..%d)", rows, MaxRows)}
	}
	if cols < 0 || cols > MaxRows {
		return DenseHeader{}, &format.FormatError{Field: "cols", Reason: fmt.Sprintf("%d out of range (0..%d)", cols, MaxRows)}
	}
	return DenseHeader{Rows: rows, Cols: cols}, nil
}

// checkPayload requires data to be exactly want bytes long.
func checkPayload(data []byte, want int) error {
	switch {
	case len(data) < want:
		return &format.FormatError{Field: "payload", Reason: fmt.Sprintf("truncated: %d bytes, want %d", len(data), want)}
	case len(data) > want:
		return &format.FormatError{Field: "payload", Reason: fmt.Sprintf("%d trailing bytes", len(data)-want)}
	}
	return nil
}

// CheckOffsets verifies that offsets start at zero, never decrease and end
// at nnz, so every row range lies within the first nnz entries.
func CheckOffsets(offsets []int32, nnz int) error {
	return checkOffsets(len(offsets), func(i int) int32 { return offsets[i] }, nnz)
}

func checkOffsets(n int, at func(i int) int32, nnz int) error {
	if n == 0 {
		return &format.FormatError{Field: "offsets", Reason: "empty"}
	}
	if first := at(0); first != 0 {
		return &format.FormatError{Field: "offsets", Reason: fmt.Sprintf("first offset is %d, not zero", first)}
	}
	prev := int32(0)
	for i := 1; i < n; i++ {
		cur := at(i)
		if cur < prev {
			return &format.FormatError{Field: "offsets", Reason: fmt.Sprintf("decreasing at virtual row %d", i-1)}
		}
		prev = cur
	}
	if int(prev) != nnz {
		return &format.FormatError{Field: "offsets", Reason: fmt.Sprintf("last offset %d does not match nnz %d", prev, nnz)}
	}
	return nil
}

// checkColumns rejects negative column indices and, when cols is positive,
// indices at or past cols.
func checkColumns(n int, at func(i int) int32, cols int) error {
	for i := 0; i < n; i++ {
		if c := at(i); c < 0 || (cols > 0 && int(c) >= cols) {
			return &format.FormatError{Field: "columns", Reason: fmt.Sprintf("entry %d has column %d outside [0, %d)", i, c, cols)}
		}
	}
	return nil
}

// words reads native-order int32 words from b.
func words(b []byte) func(i int) int32 {
	return func(i int) int32 {
		return int32(byteOrder.Uint32(b[i*WordSize:])) //nolint:gosec // G115: bit pattern preserved
	}
}
