package xdrwire

import (
	"bytes"
	"errors"
	"testing"
)

func TestPackIntBigEndian(t *testing.T) {
	w := NewWriter()
	n, err := w.PackInt(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 bytes written, got %d", n)
	}
	want := []byte{0, 0, 0, 1}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("expected %v, got %v", want, w.Bytes())
	}
}

func TestPackIntNegative(t *testing.T) {
	w := NewWriter()
	if _, err := w.PackInt(-1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0xff, 0xff, 0xff, 0xff}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("expected %v, got %v", want, w.Bytes())
	}
}

func TestPackHyper(t *testing.T) {
	w := NewWriter()
	if _, err := w.PackHyper(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("expected %v, got %v", want, w.Bytes())
	}
}

func TestPackFloatRoundTrip(t *testing.T) {
	w := NewWriter()
	if _, err := w.PackFloat(3.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := NewReader(w.Bytes())
	v, _, err := r.UnpackFloat()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 3.5 {
		t.Errorf("expected 3.5, got %v", v)
	}
}

func TestPackBool(t *testing.T) {
	w := NewWriter()
	w.PackBool(true)
	w.PackBool(false)
	want := []byte{0, 0, 0, 1, 0, 0, 0, 0}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("expected %v, got %v", want, w.Bytes())
	}
}

func TestPackOpaqueFixedPads(t *testing.T) {
	w := NewWriter()
	n, err := w.PackOpaqueFixed([]byte{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 3 bytes + 1 pad byte = 4, got %d", n)
	}
	want := []byte{1, 2, 3, 0}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("expected %v, got %v", want, w.Bytes())
	}
}

func TestPackOpaqueFixedExactMultipleNoPad(t *testing.T) {
	w := NewWriter()
	n, err := w.PackOpaqueFixed([]byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected no padding, got %d bytes", n)
	}
}

func TestPackOpaqueFlexLengthPrefixed(t *testing.T) {
	w := NewWriter()
	n, err := w.PackOpaqueFlex([]byte{1, 2, 3}, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4+4 {
		t.Fatalf("expected 4-byte length + 3 bytes + 1 pad = 8, got %d", n)
	}
	want := []byte{0, 0, 0, 3, 1, 2, 3, 0}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("expected %v, got %v", want, w.Bytes())
	}
}

func TestPackOpaqueFlexOverMaxFails(t *testing.T) {
	w := NewWriter()
	_, err := w.PackOpaqueFlex([]byte{1, 2, 3}, 2)
	if err == nil {
		t.Fatal("expected an error for exceeding max")
	}
	var xerr *Error
	if !errors.As(err, &xerr) || xerr.Kind != KindInvalidLen {
		t.Errorf("expected KindInvalidLen, got %v", err)
	}
}

func TestPackStringSameShapeAsOpaqueFlex(t *testing.T) {
	w1 := NewWriter()
	w1.PackString("abc", -1)
	w2 := NewWriter()
	w2.PackOpaqueFlex([]byte("abc"), -1)
	if !bytes.Equal(w1.Bytes(), w2.Bytes()) {
		t.Errorf("expected identical wire shape, got %v vs %v", w1.Bytes(), w2.Bytes())
	}
}

func TestWriterStickyError(t *testing.T) {
	w := NewWriter()
	_, err1 := w.PackOpaqueFlex(make([]byte, 5), 1)
	if err1 == nil {
		t.Fatal("expected the first call to fail")
	}
	before := len(w.Bytes())
	n, err2 := w.PackInt(42)
	if n != 0 || err2 != err1 {
		t.Errorf("expected a no-op returning the same sticky error, got n=%d err=%v", n, err2)
	}
	if len(w.Bytes()) != before {
		t.Errorf("expected no further bytes written after a sticky error")
	}
	if w.Err() != err1 {
		t.Errorf("expected Err() to report the sticky error")
	}
}

func TestWriterResetClearsStateAndError(t *testing.T) {
	w := NewWriter()
	w.PackOpaqueFlex(make([]byte, 5), 1)
	w.Reset()
	if w.Err() != nil {
		t.Errorf("expected Reset to clear the sticky error")
	}
	if len(w.Bytes()) != 0 {
		t.Errorf("expected Reset to empty the buffer")
	}
	if _, err := w.PackInt(7); err != nil {
		t.Errorf("expected a fresh Writer to work after Reset, got %v", err)
	}
}

func TestWriterPoolRoundTrip(t *testing.T) {
	w := GetWriter()
	w.PackInt(1)
	PutWriter(w)
	w2 := GetWriter()
	if len(w2.Bytes()) != 0 {
		t.Errorf("expected a pooled Writer to come back reset, got %v", w2.Bytes())
	}
}

func TestBytesCopyIsIndependent(t *testing.T) {
	w := NewWriter()
	w.PackInt(1)
	cp := w.BytesCopy()
	w.Reset()
	w.PackInt(2)
	if bytes.Equal(cp, w.Bytes()) {
		t.Error("expected BytesCopy to be unaffected by a later Reset/Pack")
	}
	want := []byte{0, 0, 0, 1}
	if !bytes.Equal(cp, want) {
		t.Errorf("expected copy to retain %v, got %v", want, cp)
	}
}

func TestPackArrayGeneric(t *testing.T) {
	w := NewWriter()
	n, err := PackArray(w, []int32{1, 2, 3}, func(w *Writer, v int32) (int, error) { return w.PackInt(v) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 12 {
		t.Fatalf("expected 12 bytes, got %d", n)
	}
}

func TestPackFlexGenericOverMaxFails(t *testing.T) {
	w := NewWriter()
	_, err := PackFlex(w, []int32{1, 2, 3}, 2, func(w *Writer, v int32) (int, error) { return w.PackInt(v) })
	var xerr *Error
	if !errors.As(err, &xerr) || xerr.Kind != KindInvalidLen {
		t.Errorf("expected KindInvalidLen, got %v", err)
	}
}

func TestPackOptionNilAndPresent(t *testing.T) {
	w := NewWriter()
	PackOption[int32](w, nil, func(w *Writer, v int32) (int, error) { return w.PackInt(v) })
	want := []byte{0, 0, 0, 0}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("expected a false flag for nil, got %v", w.Bytes())
	}

	w2 := NewWriter()
	v := int32(5)
	n, err := PackOption(w2, &v, func(w *Writer, v int32) (int, error) { return w.PackInt(v) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 8 {
		t.Fatalf("expected 8 bytes (flag + value), got %d", n)
	}
	want2 := []byte{0, 0, 0, 1, 0, 0, 0, 5}
	if !bytes.Equal(w2.Bytes(), want2) {
		t.Errorf("expected %v, got %v", want2, w2.Bytes())
	}
}
