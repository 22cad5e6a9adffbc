package xdrwire

import (
	"encoding/binary"
	"math"
)

// Reader consumes XDR-encoded bytes from an in-memory buffer. Like Writer,
// it is sticky: once an Unpack call fails, every subsequent call returns
// the same error without advancing the cursor further.
type Reader struct {
	buf []byte
	pos int
	err error
}

// NewReader wraps buf for unpacking. buf is read, never retained beyond the
// lifetime the caller already owns.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

// Pos returns the number of bytes consumed so far.
func (r *Reader) Pos() int { return r.pos }

func (r *Reader) fail(err error) (int, error) {
	if r.err == nil {
		r.err = err
	}
	return 0, r.err
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	if n < 0 || r.pos+n > len(r.buf) {
		r.err = ErrShortBuffer
		return nil, r.err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// UnpackInt unpacks a signed 32-bit integer.
func (r *Reader) UnpackInt() (int32, int, error) {
	v, n, err := r.UnpackUint()
	return int32(v), n, err
}

// UnpackUint unpacks an unsigned 32-bit integer.
func (r *Reader) UnpackUint() (uint32, int, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, 0, err
	}
	return binary.BigEndian.Uint32(b), 4, nil
}

// UnpackHyper unpacks a signed 64-bit integer.
func (r *Reader) UnpackHyper() (int64, int, error) {
	v, n, err := r.UnpackUHyper()
	return int64(v), n, err
}

// UnpackUHyper unpacks an unsigned 64-bit integer.
func (r *Reader) UnpackUHyper() (uint64, int, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, 0, err
	}
	return binary.BigEndian.Uint64(b), 8, nil
}

// UnpackFloat unpacks a 32-bit IEEE 754 float.
func (r *Reader) UnpackFloat() (float32, int, error) {
	v, n, err := r.UnpackUint()
	if err != nil {
		return 0, 0, err
	}
	return math.Float32frombits(v), n, nil
}

// UnpackDouble unpacks a 64-bit IEEE 754 float.
func (r *Reader) UnpackDouble() (float64, int, error) {
	v, n, err := r.UnpackUHyper()
	if err != nil {
		return 0, 0, err
	}
	return math.Float64frombits(v), n, nil
}

// UnpackQuadruple unpacks XDR's 128-bit float as its 16 raw bytes.
func (r *Reader) UnpackQuadruple() ([16]byte, int, error) {
	var out [16]byte
	b, err := r.take(16)
	if err != nil {
		return out, 0, err
	}
	copy(out[:], b)
	return out, 16, nil
}

// UnpackBool unpacks XDR's bool: any nonzero 4-byte integer is true.
func (r *Reader) UnpackBool() (bool, int, error) {
	v, n, err := r.UnpackUint()
	if err != nil {
		return false, 0, err
	}
	return v != 0, n, nil
}

func (r *Reader) skipPad(dataLen int) (int, error) {
	p := padLen(dataLen)
	if p == 0 {
		return 0, nil
	}
	if _, err := r.take(p); err != nil {
		return 0, err
	}
	return p, nil
}

// UnpackOpaqueFixed unpacks a fixed-length opaque array of n bytes,
// consuming padding to the next 4-byte boundary. The returned slice is a
// copy, safe to retain past the Reader's lifetime.
func (r *Reader) UnpackOpaqueFixed(n int) ([]byte, int, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, 0, err
	}
	out := make([]byte, n)
	copy(out, b)
	pn, err := r.skipPad(n)
	if err != nil {
		return nil, 0, err
	}
	return out, n + pn, nil
}

// UnpackOpaqueFlex unpacks a variable-length opaque array: a length
// prefix, the bytes, then padding. max < 0 means unbounded; a decoded
// length over max fails with KindInvalidLen.
func (r *Reader) UnpackOpaqueFlex(max int) ([]byte, int, error) {
	length, ln, err := r.UnpackUint()
	if err != nil {
		return nil, 0, err
	}
	if int32(length) < 0 {
		r.err = ErrNegativeLength
		return nil, 0, r.err
	}
	if max >= 0 && int(length) > max {
		_, err = r.fail(InvalidLen(int(length)))
		return nil, 0, err
	}
	b, n, err := r.UnpackOpaqueFixed(int(length))
	if err != nil {
		return nil, 0, err
	}
	return b, ln + n, nil
}

// UnpackString unpacks an XDR string: identical wire shape to
// UnpackOpaqueFlex, interpreted as UTF-8 text.
func (r *Reader) UnpackString(max int) (string, int, error) {
	b, n, err := r.UnpackOpaqueFlex(max)
	if err != nil {
		return "", 0, err
	}
	return string(b), n, nil
}

// UnpackArray unpacks a fixed-length array of n elements, each via unpack.
// On a mid-array failure the partially built slice is discarded — Go has
// no manual destructors to run, so there's no exception-safe unwind to
// perform; the garbage collector reclaims the elements already produced.
func UnpackArray[T any](r *Reader, n int, unpack func(*Reader) (T, int, error)) ([]T, int, error) {
	out := make([]T, n)
	total := 0
	for i := 0; i < n; i++ {
		v, sz, err := unpack(r)
		if err != nil {
			return nil, 0, err
		}
		out[i] = v
		total += sz
	}
	return out, total, nil
}

// UnpackFlex unpacks a variable-length array: a length prefix followed by
// each element via unpack. max < 0 means unbounded.
func UnpackFlex[T any](r *Reader, max int, unpack func(*Reader) (T, int, error)) ([]T, int, error) {
	length, ln, err := r.UnpackUint()
	if err != nil {
		return nil, 0, err
	}
	if int32(length) < 0 {
		r.err = ErrNegativeLength
		return nil, 0, r.err
	}
	if max >= 0 && int(length) > max {
		_, err = r.fail(InvalidLen(int(length)))
		return nil, 0, err
	}
	items, en, err := UnpackArray(r, int(length), unpack)
	if err != nil {
		return nil, 0, err
	}
	return items, ln + en, nil
}

// UnpackOption unpacks XDR's optional-data type: a presence flag followed
// by the inner value via unpack when present.
func UnpackOption[T any](r *Reader, unpack func(*Reader) (T, int, error)) (*T, int, error) {
	present, n, err := r.UnpackBool()
	if err != nil {
		return nil, 0, err
	}
	if !present {
		return nil, n, nil
	}
	v, vn, err := unpack(r)
	if err != nil {
		return nil, 0, err
	}
	return &v, n + vn, nil
}
