package serialization

import (
	"unsafe"

	"github.com/born-ml/sparsednn/internal/dtype"
	"github.com/born-ml/sparsednn/internal/format"
)

// View is a bounds-checked window [off, off+n) over a shared byte buffer.
//
// Views over disjoint ranges of the same buffer may be written from
// different goroutines without synchronization. A View never grows past
// the range it was created with.
type View struct {
	buf []byte
	off int
	n   int
}

// NewView returns the window [off, off+n) of buf.
func NewView(buf []byte, off, n int) (View, error) {
	if off < 0 || n < 0 {
		return View{}, &format.BoundsError{What: "view range", Need: int64(min(off, n)), Have: 0}
	}
	if err := format.CheckBounds("view range", off+n, len(buf)); err != nil {
		return View{}, err
	}
	return View{buf: buf, off: off, n: n}, nil
}

// Len returns the view length in bytes.
func (v View) Len() int { return v.n }

// Offset returns the position of the view within its buffer.
func (v View) Offset() int { return v.off }

// Bytes returns the viewed bytes. The slice cannot be appended past the view.
func (v View) Bytes() []byte {
	return v.buf[v.off : v.off+v.n : v.off+v.n]
}

// Sub returns the window [off, off+n) relative to v.
func (v View) Sub(off, n int) (View, error) {
	if err := v.check("sub-view", off, n); err != nil {
		return View{}, err
	}
	return View{buf: v.buf, off: v.off + off, n: n}, nil
}

// Write copies src to position off of the view.
func (v View) Write(off int, src []byte) error {
	if err := v.check("view write", off, len(src)); err != nil {
		return err
	}
	copy(v.buf[v.off+off:], src)
	return nil
}

// PutInt32 stores x at position off in native byte order.
func (v View) PutInt32(off int, x int32) error {
	if err := v.check("view write", off, WordSize); err != nil {
		return err
	}
	byteOrder.PutUint32(v.buf[v.off+off:], uint32(x)) //nolint:gosec // G115: bit pattern preserved
	return nil
}

// PutInt32s copies s to position off.
func (v View) PutInt32s(off int, s []int32) error {
	return v.Write(off, asBytes(s))
}

// PutFloats copies s to position off of v.
func PutFloats[T dtype.Float](v View, off int, s []T) error {
	return v.Write(off, asBytes(s))
}

// Int32 reads the int32 at position off.
func (v View) Int32(off int) (int32, error) {
	if err := v.check("view read", off, WordSize); err != nil {
		return 0, err
	}
	return int32(byteOrder.Uint32(v.buf[v.off+off:])), nil //nolint:gosec // G115: bit pattern preserved
}

// Int32s returns n int32 values starting at off without copying.
func (v View) Int32s(off, n int) ([]int32, error) {
	return slice[int32](v, off, n)
}

// Floats returns n values of type T starting at off of v without copying.
func Floats[T dtype.Float](v View, off, n int) ([]T, error) {
	return slice[T](v, off, n)
}

func slice[E element](v View, off, n int) ([]E, error) {
	var zero E
	size := int(unsafe.Sizeof(zero))
	if n < 0 {
		return nil, &format.BoundsError{What: "view read", Need: int64(n), Have: 0}
	}
	if err := v.check("view read", off, n*size); err != nil {
		return nil, err
	}
	if n == 0 {
		return []E{}, nil
	}
	p := unsafe.Pointer(&v.buf[v.off+off])
	if uintptr(p)%unsafe.Alignof(zero) != 0 {
		return nil, ErrMisaligned
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked above
	return unsafe.Slice((*E)(p), n), nil
}

func (v View) check(what string, off, n int) error {
	if off < 0 || n < 0 {
		return &format.BoundsError{What: what, Need: int64(min(off, n)), Have: 0}
	}
	return format.CheckBounds(what, off+n, v.n)
}
