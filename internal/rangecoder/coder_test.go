package rangecoder

import (
	"bytes"
	"math/bits"
	"testing"

	"github.com/srxgo/srx/internal/predictor"
)

// bitReader reads single bits MSB-first from a byte slice, returning 0
// once the slice is exhausted (mirrors how a decoder must treat missing
// trailing bytes per the wire format).
type bitReader struct {
	data []byte
	pos  int
}

func (r *bitReader) next() uint64 {
	byteIdx := r.pos / 8
	bitIdx := uint(7 - r.pos%8)
	r.pos++
	if byteIdx >= len(r.data) {
		return 0
	}
	return uint64((r.data[byteIdx] >> bitIdx) & 1)
}

// testDecoder is the inverse of Encoder, used only to verify round-trip
// behavior in this package's tests. It is not part of the shipped API:
// the wire format is fixed precisely enough that a decoder could be
// written from it, but this package does not ship one.
type testDecoder struct {
	br              *bitReader
	low, high, code uint64
}

func newTestDecoder(data []byte) *testDecoder {
	d := &testDecoder{br: &bitReader{data: data}, high: ^uint64(0)}
	for i := 0; i < 64; i++ {
		d.code = (d.code << 1) | d.br.next()
	}
	return d
}

func (d *testDecoder) Bit(s *predictor.State) int {
	p := uint64(s.Prediction())
	rangeSize := d.high - d.low
	hi, lo := bits.Mul64(rangeSize, p)
	delta := hi<<40 | lo>>24
	mid := d.low + delta

	var bit int
	if d.code <= mid {
		bit = 1
		d.high = mid
	} else {
		bit = 0
		d.low = mid + 1
	}
	s.Update(bit)

	for (d.high^d.low)&(1<<63) == 0 {
		d.high = (d.high << 1) | 1
		d.low = d.low << 1
		d.code = (d.code << 1) | d.br.next()
	}
	return bit
}

func (d *testDecoder) codeNibble(tbl predictor.Table, base int) int {
	x := 1
	for i := 0; i < 4; i++ {
		bit := d.Bit(&tbl[base+x])
		x = x<<1 | bit
	}
	return x
}

func (d *testDecoder) Byte(tbl predictor.Table, base int) byte {
	xHi := d.codeNibble(tbl, base)
	loBase := base + 15*(xHi-15)
	xLo := d.codeNibble(tbl, loBase)
	return byte((xHi&0xF)<<4 | (xLo & 0xF))
}

func TestBitRoundTrip(t *testing.T) {
	bitSeqs := [][]int{
		{0},
		{1},
		{0, 1, 0, 1, 0, 1, 0, 1},
		{0, 0, 0, 0, 0, 0, 0, 0},
		{1, 1, 1, 1, 1, 1, 1, 1},
	}

	for _, bits := range bitSeqs {
		encTbl := predictor.NewTable(1)
		var buf bytes.Buffer
		enc := NewEncoder(&buf)
		for _, b := range bits {
			if err := enc.Bit(&encTbl[0], b); err != nil {
				t.Fatalf("Bit: %v", err)
			}
		}
		if err := enc.Flush(); err != nil {
			t.Fatalf("Flush: %v", err)
		}

		decTbl := predictor.NewTable(1)
		dec := newTestDecoder(buf.Bytes())
		for i, want := range bits {
			got := dec.Bit(&decTbl[0])
			if got != want {
				t.Fatalf("bit %d: got %d, want %d", i, got, want)
			}
		}
	}
}

func TestBitRoundTripMultiContext(t *testing.T) {
	const numCtx = 10
	bits := make([]int, 500)
	ctxs := make([]int, 500)
	for i := range bits {
		bits[i] = (i * 7) % 2
		ctxs[i] = i % numCtx
	}

	encTbl := predictor.NewTable(numCtx)
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for i, b := range bits {
		if err := enc.Bit(&encTbl[ctxs[i]], b); err != nil {
			t.Fatalf("Bit: %v", err)
		}
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	decTbl := predictor.NewTable(numCtx)
	dec := newTestDecoder(buf.Bytes())
	for i, want := range bits {
		if got := dec.Bit(&decTbl[ctxs[i]]); got != want {
			t.Fatalf("bit %d (ctx %d): got %d, want %d", i, ctxs[i], got, want)
		}
	}
}

func TestByteRoundTrip(t *testing.T) {
	values := []byte{0x00, 0x41, 0xFF, 0x80, 0x7F, 0x01, 0xAA, 0x55}

	encTbl := predictor.NewTable(1024)
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, v := range values {
		if err := enc.Byte(encTbl, 0, v); err != nil {
			t.Fatalf("Byte: %v", err)
		}
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	decTbl := predictor.NewTable(1024)
	dec := newTestDecoder(buf.Bytes())
	for i, want := range values {
		if got := dec.Byte(decTbl, 0); got != want {
			t.Fatalf("byte %d: got %#x, want %#x", i, got, want)
		}
	}
}

func TestLowLessThanHighInvariant(t *testing.T) {
	encTbl := predictor.NewTable(4)
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for i := 0; i < 2000; i++ {
		bit := (i * 13) % 3 % 2
		if err := enc.Bit(&encTbl[i%4], bit); err != nil {
			t.Fatalf("Bit: %v", err)
		}
		if enc.low >= enc.high {
			t.Fatalf("iteration %d: low (%d) >= high (%d)", i, enc.low, enc.high)
		}
	}
}

func TestFlushOutputLength(t *testing.T) {
	// Empty coder: Flush alone still emits exactly one byte (the pad of
	// the single appended bit).
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if buf.Len() != 1 {
		t.Fatalf("Flush-only output length = %d, want 1", buf.Len())
	}
}
