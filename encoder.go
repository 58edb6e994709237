package srx

import (
	"fmt"
	"io"

	"github.com/srxgo/srx/internal/predictor"
	"github.com/srxgo/srx/internal/rangecoder"
	"github.com/srxgo/srx/internal/ranking"
)

const (
	// contextMapBits is L: the primary context map holds 2^L cells.
	contextMapBits = 24
	// predictorTableSize reserves four 256-entry sub-contexts
	// (first/second/third/literal) for each of the 1024 + 256
	// bit-contexts the stream encoder can select.
	predictorTableSize = (1024 + 256) * 1024
)

// Encoder holds the predictor table and primary context map for
// single-pass symbol-ranking compression; each call to Encode creates its
// own range coder. Its tables are allocated once and are not safe for
// concurrent use.
type Encoder struct {
	predictors predictor.Table
	context    *ranking.Map
}

// NewEncoder allocates a new Encoder's tables: ≈5 MiB for the predictor
// and ≈64 MiB for the primary context map.
func NewEncoder() *Encoder {
	return &Encoder{
		predictors: predictor.NewTable(predictorTableSize),
		context:    ranking.NewMap(contextMapBits),
	}
}

// Encode reads bytes from r until end-of-stream and writes the
// compressed stream to w. The first I/O failure aborts the encode; on
// success the output is complete and the final operation has already
// been a range-coder flush.
func (e *Encoder) Encode(r io.Reader, w io.Writer) error {
	rc := rangecoder.NewEncoder(w)

	for {
		cell := e.context.Current()
		count := int(cell.Count())
		prev := e.context.PreviousByte()

		var bitContext int
		if count < 4 {
			bitContext = ((int(prev) << 2) | count) * 1024
		} else {
			bitContext = (1024 + count) * 1024
		}

		firstCtx := bitContext + int(cell.First())
		secondCtx := bitContext + 256 + int(cell.Second()+cell.Third())
		thirdCtx := bitContext + 512 + int(2*cell.Second()-cell.Third())
		literalCtx := bitContext + 768

		b, ok, err := readByte(r)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIoRead, err)
		}

		if !ok {
			if err := rc.Bit(&e.predictors[firstCtx], 1); err != nil {
				return fmt.Errorf("%w: %v", ErrIoWrite, err)
			}
			if err := rc.Bit(&e.predictors[secondCtx], 0); err != nil {
				return fmt.Errorf("%w: %v", ErrIoWrite, err)
			}
			if err := rc.Byte(e.predictors, literalCtx, cell.First()); err != nil {
				return fmt.Errorf("%w: %v", ErrIoWrite, err)
			}
			if err := rc.Flush(); err != nil {
				return fmt.Errorf("%w: %v", ErrIoWrite, err)
			}
			return nil
		}

		switch e.context.Match(b) {
		case ranking.First:
			if err := rc.Bit(&e.predictors[firstCtx], 0); err != nil {
				return fmt.Errorf("%w: %v", ErrIoWrite, err)
			}
		case ranking.Second:
			if err := codeBit3(rc, e.predictors, firstCtx, 1, secondCtx, 1, thirdCtx, 0); err != nil {
				return fmt.Errorf("%w: %v", ErrIoWrite, err)
			}
		case ranking.Third:
			if err := codeBit3(rc, e.predictors, firstCtx, 1, secondCtx, 1, thirdCtx, 1); err != nil {
				return fmt.Errorf("%w: %v", ErrIoWrite, err)
			}
		case ranking.None:
			if err := rc.Bit(&e.predictors[firstCtx], 1); err != nil {
				return fmt.Errorf("%w: %v", ErrIoWrite, err)
			}
			if err := rc.Bit(&e.predictors[secondCtx], 0); err != nil {
				return fmt.Errorf("%w: %v", ErrIoWrite, err)
			}
			if err := rc.Byte(e.predictors, literalCtx, b); err != nil {
				return fmt.Errorf("%w: %v", ErrIoWrite, err)
			}
		}
	}
}

// codeBit3 codes three bits in sequence under three contexts, short-
// circuiting on the first error.
func codeBit3(rc *rangecoder.Encoder, tbl predictor.Table, ctx1, bit1, ctx2, bit2, ctx3, bit3 int) error {
	if err := rc.Bit(&tbl[ctx1], bit1); err != nil {
		return err
	}
	if err := rc.Bit(&tbl[ctx2], bit2); err != nil {
		return err
	}
	return rc.Bit(&tbl[ctx3], bit3)
}

// readByte requests a single byte from r, reporting ok=false once r
// reports end-of-stream by yielding zero bytes.
func readByte(r io.Reader) (b byte, ok bool, err error) {
	var buf [1]byte
	n, rerr := r.Read(buf[:])
	if n == 0 {
		if rerr != nil && rerr != io.EOF {
			return 0, false, rerr
		}
		return 0, false, nil
	}
	return buf[0], true, nil
}

// Encode is a convenience wrapper that allocates a new Encoder, encodes
// r into w, and discards the tables. Callers encoding more than one
// stream in a process should construct an Encoder with NewEncoder and
// reuse it instead; its model state then carries over from one stream to
// the next.
func Encode(r io.Reader, w io.Writer) error {
	return NewEncoder().Encode(r, w)
}
