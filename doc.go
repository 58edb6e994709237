// Package srx implements the core of a symbol-ranking byte-stream
// compressor: an adaptive bit predictor, a 64-bit range coder, and a
// symbol-ranking primary context model, composed into a single-pass
// encoder.
//
// Basic usage:
//
//	err := srx.Encode(r, w)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// To reuse the encoder's tables (≈69 MiB) across more than one stream in
// the same process, construct one with NewEncoder and call Encode on it
// repeatedly. Encode does not reset the tables: each stream after the
// first is coded from the model state the previous stream left behind,
// not from the initial state.
//
// The encoder is symmetric with a decoder that is not included in this
// package; the wire format below is fixed precisely so one can be
// written from it. There is no header, length field, or checksum: the
// output is nothing but the range coder's emitted bytes, MSB-first. The
// end-of-stream sentinel uses the same decision pattern as a "no match"
// (a 1 under the first-byte context, a 0 under the second-byte context,
// then a literal byte). Its literal is the current context's first byte,
// which a genuine "no match" never codes, because a byte equal to first
// is always coded as a first-byte match. No length prefix or escape code
// is added to the stream.
package srx
