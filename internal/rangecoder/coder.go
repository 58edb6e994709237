// Package rangecoder implements a 64-bit arithmetic (range) coder that
// consumes (probability, bit) pairs from an adaptive predictor and emits
// a byte-packed, MSB-first bit stream.
package rangecoder

import (
	"io"
	"math/bits"

	"github.com/srxgo/srx/internal/predictor"
)

// Encoder holds range-coder state and writes coded bytes to a sink as
// soon as a full byte of output bits accumulates.
type Encoder struct {
	low, high uint64
	buf       byte
	n         uint8
	w         io.Writer
}

// NewEncoder returns a range coder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{low: 0, high: ^uint64(0), w: w}
}

// Bit codes bit (0 or 1) using the prediction held by s, then updates s.
func (e *Encoder) Bit(s *predictor.State, bit int) error {
	p := uint64(s.Update(bit))

	rangeSize := e.high - e.low
	hi, lo := bits.Mul64(rangeSize, p)
	// delta = (rangeSize * p) >> 24, computed from the 128-bit product.
	delta := hi<<40 | lo>>24

	mid := e.low + delta + uint64(1-bit)
	if bit == 1 {
		e.high = mid
	} else {
		e.low = mid
	}

	for (e.high^e.low)&(1<<63) == 0 {
		top := byte(e.low >> 63)
		e.buf = (e.buf << 1) | top
		e.n++
		e.high = (e.high << 1) | 1
		e.low = e.low << 1
		if e.n == 8 {
			if err := e.writeByte(); err != nil {
				return err
			}
		}
	}
	return nil
}

// codeNibble codes the 4-bit unary-traversal tree for a nibble v
// (0..15), rooted at base, and returns x = v|16 so the caller can derive
// a dependent context for a subsequent nibble.
func (e *Encoder) codeNibble(tbl predictor.Table, base int, v int) (int, error) {
	x := v | 16
	if err := e.Bit(&tbl[base+1], (x>>3)&1); err != nil {
		return 0, err
	}
	if err := e.Bit(&tbl[base+(x>>3)], (x>>2)&1); err != nil {
		return 0, err
	}
	if err := e.Bit(&tbl[base+(x>>2)], (x>>1)&1); err != nil {
		return 0, err
	}
	if err := e.Bit(&tbl[base+(x>>1)], x&1); err != nil {
		return 0, err
	}
	return x, nil
}

// Byte codes v as two nibble trees: the high nibble rooted at base
// (occupying base+1..base+15), and the low nibble rooted at one of 16
// disjoint 15-context blocks selected by the high nibble's value
// (occupying base+16..base+255).
func (e *Encoder) Byte(tbl predictor.Table, base int, v byte) error {
	xHi, err := e.codeNibble(tbl, base, int(v>>4))
	if err != nil {
		return err
	}
	loBase := base + 15*(xHi-15)
	_, err = e.codeNibble(tbl, loBase, int(v&0xF))
	return err
}

// Flush appends the final bit (the top bit of high) and zero-pads the
// output to a full byte. It must be the last operation performed on e.
func (e *Encoder) Flush() error {
	top := byte(e.high >> 63)
	e.buf = (e.buf << 1) | top
	e.n++
	e.buf <<= 8 - e.n
	return e.writeByte()
}

func (e *Encoder) writeByte() error {
	_, err := e.w.Write([]byte{e.buf})
	e.buf = 0
	e.n = 0
	return err
}
