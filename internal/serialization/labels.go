package serialization

import (
	"fmt"

	"github.com/born-ml/sparsednn/internal/format"
)

// EncodeLabels encodes a label vector as its length followed by the values.
func EncodeLabels(values []int32) []byte {
	buf := make([]byte, LabelHeaderLen+len(values)*WordSize)
	byteOrder.PutUint32(buf, uint32(len(values))) //nolint:gosec // G115: length fits in int32 for any label file
	copy(buf[LabelHeaderLen:], asBytes(values))
	return buf
}

// DecodeLabels decodes an encoded label vector.
func DecodeLabels(data []byte) ([]int32, error) {
	if len(data) < LabelHeaderLen {
		return nil, &format.FormatError{Field: "header", Reason: fmt.Sprintf("need %d bytes, got %d", LabelHeaderLen, len(data))}
	}
	rows := int(int32(byteOrder.Uint32(data))) //nolint:gosec // G115: bit pattern preserved
	if rows < 0 || rows > MaxRows {
		return nil, &format.FormatError{Field: "rows", Reason: fmt.Sprintf("%d out of range (0..%d)", rows, MaxRows)}
	}
	if err := checkPayload(data, LabelHeaderLen+rows*WordSize); err != nil {
		return nil, err
	}
	values := make([]int32, rows)
	copy(asBytes(values), data[LabelHeaderLen:])
	return values, nil
}
