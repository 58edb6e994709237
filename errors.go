package srx

import "errors"

// ErrIoRead is wrapped around any failure to read from the byte source.
var ErrIoRead = errors.New("srx: read from byte source failed")

// ErrIoWrite is wrapped around any failure to write to the byte sink.
var ErrIoWrite = errors.New("srx: write to byte sink failed")
