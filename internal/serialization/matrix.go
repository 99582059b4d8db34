package serialization

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/born-ml/sparsednn/internal/csr"
	"github.com/born-ml/sparsednn/internal/dtype"
	"github.com/born-ml/sparsednn/internal/format"
)

// MatrixSize returns the encoded size of m in bytes.
func MatrixSize[T dtype.Float](m *csr.Matrix[T]) int {
	return matrixPayloadSize(len(m.Offsets), m.NNZ, dtype.Of[T]()) + MatrixHeaderLen
}

func matrixPayloadSize(offsets, nnz int, kind dtype.DataType) int {
	return (offsets+nnz)*WordSize + nnz*kind.Size()
}

// EncodeMatrix encodes m as header, offsets, columns and values.
func EncodeMatrix[T dtype.Float](m *csr.Matrix[T]) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to encode invalid matrix: %w", err)
	}
	buf := make([]byte, MatrixSize(m))
	byteOrder.PutUint32(buf[0:], uint32(m.Rows)) //nolint:gosec // G115: rows validated positive
	byteOrder.PutUint32(buf[4:], uint32(m.NNZ))  //nolint:gosec // G115: nnz validated non-negative

	pos := MatrixHeaderLen
	pos += copy(buf[pos:], asBytes(m.Offsets))
	pos += copy(buf[pos:], asBytes(m.Columns))
	copy(buf[pos:], asBytes(m.Values))
	return buf, nil
}

// WriteMatrix encodes m to w.
func WriteMatrix[T dtype.Float](w io.Writer, m *csr.Matrix[T]) error {
	data, err := EncodeMatrix(m)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write matrix: %w", err)
	}
	return nil
}

// ParseMatrixHeader decodes the header at the start of data.
func ParseMatrixHeader(data []byte) (MatrixHeader, error) {
	if len(data) < MatrixHeaderLen {
		return MatrixHeader{}, &format.FormatError{Field: "header", Reason: fmt.Sprintf("need %d bytes, got %d", MatrixHeaderLen, len(data))}
	}
	rows := int32(byteOrder.Uint32(data[0:])) //nolint:gosec // G115: bit pattern preserved
	nnz := int32(byteOrder.Uint32(data[4:]))  //nolint:gosec // G115: bit pattern preserved
	return validateMatrixHeader(int(rows), int(nnz))
}

// ReadMatrixHeader reads only the header of a weight file from r.
func ReadMatrixHeader(r io.Reader) (MatrixHeader, error) {
	var hdr [2]int32
	if err := binary.Read(r, byteOrder, &hdr); err != nil {
		return MatrixHeader{}, &format.FormatError{Field: "header", Reason: fmt.Sprintf("failed to read header: %v", err)}
	}
	return validateMatrixHeader(int(hdr[0]), int(hdr[1]))
}

// DecodeMatrixInto copies an encoded matrix into the sections of dst laid out by l.
//
// The offsets must start at zero, never decrease and end at nnz, and the
// columns must lie within l.Cols; nothing is written otherwise. Only the
// ranges that hold data are written: offsets, the first nnz columns and
// the first nnz values. The remaining capacity of dst is left untouched.
// Nothing is allocated.
func DecodeMatrixInto(data []byte, dst View, l Layout) (MatrixHeader, error) {
	hdr, err := ParseMatrixHeader(data)
	if err != nil {
		return MatrixHeader{}, err
	}
	if hdr.Rows != l.Rows {
		return MatrixHeader{}, &format.FormatError{Field: "rows", Reason: fmt.Sprintf("header declares %d rows, expected %d", hdr.Rows, l.Rows)}
	}
	if err := format.CheckBounds("layer nnz", hdr.NNZ, l.MaxNNZ); err != nil {
		return MatrixHeader{}, err
	}
	if err := format.CheckBounds("layer region", l.Size(), dst.Len()); err != nil {
		return MatrixHeader{}, err
	}

	offsetsLen := l.OffsetsLen()
	if err := checkPayload(data, MatrixHeaderLen+matrixPayloadSize(offsetsLen, hdr.NNZ, l.Kind)); err != nil {
		return MatrixHeader{}, err
	}

	offsets := data[MatrixHeaderLen : MatrixHeaderLen+offsetsLen*WordSize]
	columns := data[MatrixHeaderLen+len(offsets) : MatrixHeaderLen+len(offsets)+hdr.NNZ*WordSize]
	values := data[MatrixHeaderLen+len(offsets)+len(columns):]

	if err := checkOffsets(offsetsLen, words(offsets), hdr.NNZ); err != nil {
		return MatrixHeader{}, err
	}
	if err := checkColumns(hdr.NNZ, words(columns), l.Cols); err != nil {
		return MatrixHeader{}, err
	}

	if err := dst.Write(0, offsets); err != nil {
		return MatrixHeader{}, err
	}
	if err := dst.Write(l.ColumnsOffset(), columns); err != nil {
		return MatrixHeader{}, err
	}
	if err := dst.Write(l.ValuesOffset(), values); err != nil {
		return MatrixHeader{}, err
	}
	return hdr, nil
}

// DecodeMatrix decodes data into a new matrix of geometry g and checks its invariants.
func DecodeMatrix[T dtype.Float](data []byte, g csr.Geometry) (*csr.Matrix[T], error) {
	hdr, err := ParseMatrixHeader(data)
	if err != nil {
		return nil, err
	}
	if hdr.Rows != g.Rows {
		return nil, &format.FormatError{Field: "rows", Reason: fmt.Sprintf("header declares %d rows, expected %d", hdr.Rows, g.Rows)}
	}
	if err := checkPayload(data, MatrixHeaderLen+matrixPayloadSize(g.OffsetsLen(), hdr.NNZ, dtype.Of[T]())); err != nil {
		return nil, err
	}

	m := &csr.Matrix[T]{
		Geometry: g,
		NNZ:      hdr.NNZ,
		Offsets:  make([]int32, g.OffsetsLen()),
		Columns:  make([]int32, hdr.NNZ),
		Values:   make([]T, hdr.NNZ),
	}
	pos := MatrixHeaderLen
	pos += copy(asBytes(m.Offsets), data[pos:])
	pos += copy(asBytes(m.Columns), data[pos:])
	copy(asBytes(m.Values), data[pos:])

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
