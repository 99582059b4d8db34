package serialization

import (
	"fmt"

	"github.com/born-ml/sparsednn/internal/dtype"
	"github.com/born-ml/sparsednn/internal/format"
)

// EncodeDense encodes a row-major rows x cols matrix.
func EncodeDense[T dtype.Float](rows, cols int, values []T) ([]byte, error) {
	if _, err := validateDenseHeader(rows, cols); err != nil {
		return nil, err
	}
	if len(values) != rows*cols {
		return nil, &format.BoundsError{What: "dense values", Need: int64(rows * cols), Have: int64(len(values))}
	}
	payload := asBytes(values)
	buf := make([]byte, DenseHeaderLen+len(payload))
	byteOrder.PutUint32(buf[0:], uint32(rows)) //nolint:gosec // G115: validated above
	byteOrder.PutUint32(buf[4:], uint32(cols)) //nolint:gosec // G115: validated above
	copy(buf[DenseHeaderLen:], payload)
	return buf, nil
}

// ParseDenseHeader decodes the header at the start of data.
func ParseDenseHeader(data []byte) (DenseHeader, error) {
	if len(data) < DenseHeaderLen {
		return DenseHeader{}, &format.FormatError{Field: "header", Reason: fmt.Sprintf("need %d bytes, got %d", DenseHeaderLen, len(data))}
	}
	rows := int32(byteOrder.Uint32(data[0:])) //nolint:gosec // G115: bit pattern preserved
	cols := int32(byteOrder.Uint32(data[4:])) //nolint:gosec // G115: bit pattern preserved
	return validateDenseHeader(int(rows), int(cols))
}

// DecodeDenseInto copies the payload of an encoded dense matrix into dst.
//
// The header must declare exactly wantRows x wantCols and dst must hold at
// least that many values; dst beyond that is left untouched.
func DecodeDenseInto[T dtype.Float](data []byte, dst []T, wantRows, wantCols int) (DenseHeader, error) {
	hdr, err := ParseDenseHeader(data)
	if err != nil {
		return DenseHeader{}, err
	}
	if hdr.Rows != wantRows || hdr.Cols != wantCols {
		return DenseHeader{}, &format.FormatError{
			Field:  "header",
			Reason: fmt.Sprintf("declares %dx%d, expected %dx%d", hdr.Rows, hdr.Cols, wantRows, wantCols),
		}
	}
	n := hdr.Rows * hdr.Cols
	if err := format.CheckBounds("dense destination", n, len(dst)); err != nil {
		return DenseHeader{}, err
	}
	if err := checkPayload(data, DenseHeaderLen+n*dtype.Of[T]().Size()); err != nil {
		return DenseHeader{}, err
	}
	copy(asBytes(dst[:n]), data[DenseHeaderLen:])
	return hdr, nil
}
