// Package dtype describes the floating point value kinds a weight file can carry.
package dtype

import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"
)

// Float is a constraint for supported weight value types.
// It uses Go generics so single and double precision share one code path.
type Float interface {
	~float32 | ~float64
}

// DataType represents runtime type information for weight values.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float64
)

// IndexSize is the byte width of the index unit (offsets, columns, headers).
const IndexSize = 4

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// WordRatio returns how many index words one value occupies.
func (dt DataType) WordRatio() int {
	return dt.Size() / IndexSize
}

// BitSize returns the precision passed to strconv.ParseFloat.
func (dt DataType) BitSize() int {
	return dt.Size() * 8
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// Valid reports whether dt is one of the supported kinds.
func (dt DataType) Valid() bool {
	return dt == Float32 || dt == Float64
}

// Parse converts a kind name ("float32", "float", "float64", "double") to a DataType.
func Parse(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float32", "float", "single", "f32":
		return Float32, nil
	case "float64", "double", "f64":
		return Float64, nil
	default:
		return 0, fmt.Errorf("unsupported value kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (dt DataType) MarshalText() ([]byte, error) {
	if !dt.Valid() {
		return nil, fmt.Errorf("unsupported value kind %d", int(dt))
	}
	return []byte(dt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (dt *DataType) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

// Of infers the DataType of a generic type T.
func Of[T Float]() DataType {
	var zero T
	if unsafe.Sizeof(zero) == 8 {
		return Float64
	}
	return Float32
}

// ParseFloat parses s with the precision of T.
func ParseFloat[T Float](s string) (T, error) {
	v, err := strconv.ParseFloat(s, Of[T]().BitSize())
	if err != nil {
		return 0, err
	}
	return T(v), nil
}
