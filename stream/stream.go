// Package stream frames kJSON records for transport and storage.
//
// The core codec defines no record boundary of its own, so this package
// supplies two: newline-delimited text records (one compact kJSON document
// per line) and length-prefixed binary records (a base-128 uvarint byte
// count followed by one kJSONB document). Both framings optionally pass
// through gzip.
//
// Readers and writers here do I/O; the per-record parse and encode work is
// delegated to the synchronous core.
package stream

import "fmt"

// DefaultMaxRecordSize bounds a single record (64 MiB) unless overridden.
const DefaultMaxRecordSize = 64 << 20

// RecordError reports a failure on one record, identified by its position
// in the stream (zero-based).
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("stream: record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
