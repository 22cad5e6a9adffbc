package xdrwire

import (
	"encoding/binary"
	"math"
	"sync"
)

// Writer accumulates XDR-encoded bytes. Once any Pack method fails, it
// becomes sticky: every subsequent call is a no-op returning the same
// error, so callers can chain packs without checking each return
// individually and inspect Err() once at the end.
type Writer struct {
	buf []byte
	err error
}

var writerPool = sync.Pool{New: func() any { return &Writer{buf: make([]byte, 0, 256)} }}

// GetWriter returns a Writer from the pool, reset and ready for use.
func GetWriter() *Writer {
	w := writerPool.Get().(*Writer)
	w.Reset()
	return w
}

// PutWriter returns w to the pool. w must not be used afterwards.
func PutWriter(w *Writer) {
	writerPool.Put(w)
}

// NewWriter returns a fresh, unpooled Writer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 256)}
}

// Reset empties the buffer and clears the sticky error, keeping the
// underlying array for reuse.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.err = nil
}

// Bytes returns the accumulated buffer. The slice aliases the Writer's
// internal storage and is only valid until the next Pack call or Reset.
func (w *Writer) Bytes() []byte { return w.buf }

// BytesCopy returns an independent copy of the accumulated buffer, safe to
// retain after the Writer is reset or returned to the pool.
func (w *Writer) BytesCopy() []byte {
	out := make([]byte, len(w.buf))
	copy(out, w.buf)
	return out
}

// Err returns the first error encountered, if any.
func (w *Writer) Err() error { return w.err }

func (w *Writer) fail(err error) (int, error) {
	if w.err == nil {
		w.err = err
	}
	return 0, w.err
}

func (w *Writer) raw(b []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.buf = append(w.buf, b...)
	return len(b), nil
}

// PackInt packs a signed 32-bit integer (XDR "int").
func (w *Writer) PackInt(v int32) (int, error) { return w.PackUint(uint32(v)) }

// PackUint packs an unsigned 32-bit integer (XDR "unsigned int").
func (w *Writer) PackUint(v uint32) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return w.raw(b[:])
}

// PackHyper packs a signed 64-bit integer (XDR "hyper").
func (w *Writer) PackHyper(v int64) (int, error) { return w.PackUHyper(uint64(v)) }

// PackUHyper packs an unsigned 64-bit integer (XDR "unsigned hyper").
func (w *Writer) PackUHyper(v uint64) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return w.raw(b[:])
}

// PackFloat packs a 32-bit IEEE 754 float.
func (w *Writer) PackFloat(v float32) (int, error) {
	return w.PackUint(math.Float32bits(v))
}

// PackDouble packs a 64-bit IEEE 754 float.
func (w *Writer) PackDouble(v float64) (int, error) {
	return w.PackUHyper(math.Float64bits(v))
}

// PackQuadruple packs XDR's 128-bit float as its 16 raw bytes, already
// 4-byte aligned; Go has no native quadruple-precision type to interpret
// them with.
func (w *Writer) PackQuadruple(v [16]byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	return w.raw(v[:])
}

// PackBool packs XDR's bool: a 4-byte integer, 1 for true, 0 for false.
func (w *Writer) PackBool(v bool) (int, error) {
	if v {
		return w.PackUint(1)
	}
	return w.PackUint(0)
}

// padLen returns the number of zero-padding bytes needed to round n up to
// the next multiple of 4.
func padLen(n int) int {
	if rem := n % 4; rem != 0 {
		return 4 - rem
	}
	return 0
}

var zeroPad = [4]byte{}

func (w *Writer) pad(n int) (int, error) {
	p := padLen(n)
	if p == 0 {
		return 0, nil
	}
	return w.raw(zeroPad[:p])
}

// PackOpaqueFixed packs a fixed-length opaque array: the raw bytes followed
// by zero padding to a 4-byte boundary. The length is implied by the
// typespec (len(b)), never written to the wire.
func (w *Writer) PackOpaqueFixed(b []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.raw(b)
	if err != nil {
		return 0, err
	}
	pn, err := w.pad(len(b))
	if err != nil {
		return 0, err
	}
	return n + pn, nil
}

// PackOpaqueFlex packs a variable-length opaque array: a 4-byte length
// prefix, the bytes, then padding. max < 0 means unbounded; a longer b
// fails with KindInvalidLen.
func (w *Writer) PackOpaqueFlex(b []byte, max int) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if max >= 0 && len(b) > max {
		return w.fail(InvalidLen(len(b)))
	}
	ln, err := w.PackUint(uint32(len(b)))
	if err != nil {
		return 0, err
	}
	bn, err := w.raw(b)
	if err != nil {
		return 0, err
	}
	pn, err := w.pad(len(b))
	if err != nil {
		return 0, err
	}
	return ln + bn + pn, nil
}

// PackString packs an XDR string: identical wire shape to PackOpaqueFlex,
// over the string's UTF-8 bytes.
func (w *Writer) PackString(s string, max int) (int, error) {
	return w.PackOpaqueFlex([]byte(s), max)
}

// PackArray packs a fixed-length array of n elements, each via pack, with
// no length prefix (the length is implied by the typespec).
func PackArray[T any](w *Writer, items []T, pack func(*Writer, T) (int, error)) (int, error) {
	total := 0
	for _, item := range items {
		n, err := pack(w, item)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// PackFlex packs a variable-length array: a 4-byte length prefix followed
// by each element via pack. max < 0 means unbounded.
func PackFlex[T any](w *Writer, items []T, max int, pack func(*Writer, T) (int, error)) (int, error) {
	if max >= 0 && len(items) > max {
		return w.fail(InvalidLen(len(items)))
	}
	ln, err := w.PackUint(uint32(len(items)))
	if err != nil {
		return 0, err
	}
	en, err := PackArray(w, items, pack)
	if err != nil {
		return 0, err
	}
	return ln + en, nil
}

// PackOption packs XDR's optional-data type: a presence flag followed by
// the inner value via pack when present is non-nil.
func PackOption[T any](w *Writer, present *T, pack func(*Writer, T) (int, error)) (int, error) {
	if present == nil {
		return w.PackBool(false)
	}
	fn, err := w.PackBool(true)
	if err != nil {
		return 0, err
	}
	vn, err := pack(w, *present)
	if err != nil {
		return 0, err
	}
	return fn + vn, nil
}
