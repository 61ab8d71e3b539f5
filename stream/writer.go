package stream

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/atikayda/kjson-sub001/kjson"
)

// WriterOption configures a Writer or BinaryWriter.
type WriterOption func(*writerConfig)

type writerConfig struct {
	gzip      bool
	stringify kjson.StringifyOptions
}

// WithGzip compresses the output stream. Close must be called to flush the
// compressor.
func WithGzip() WriterOption {
	return func(c *writerConfig) {
		c.gzip = true
	}
}

// WithStringifyOptions overrides the text rendering options. Indentation is
// ignored: a text record must stay on one line.
func WithStringifyOptions(opts kjson.StringifyOptions) WriterOption {
	return func(c *writerConfig) {
		opts.Indent = ""
		c.stringify = opts
	}
}

// Writer writes newline-delimited kJSON text records.
type Writer struct {
	w         io.Writer
	gz        *gzip.Writer
	stringify kjson.StringifyOptions
	count     int
}

// NewWriter creates a text record writer.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	cfg := writerConfig{stringify: kjson.DefaultStringifyOptions()}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := &Writer{w: w, stringify: cfg.stringify}
	if cfg.gzip {
		out.gz = gzip.NewWriter(w)
		out.w = out.gz
	}
	return out
}

// Write renders one value as a compact single-line record.
func (w *Writer) Write(v *kjson.Value) error {
	text := kjson.StringifyWithOptions(v, w.stringify)
	if _, err := io.WriteString(w.w, text); err != nil {
		return fmt.Errorf("stream: write record %d: %w", w.count, err)
	}
	if _, err := io.WriteString(w.w, "\n"); err != nil {
		return fmt.Errorf("stream: write record %d: %w", w.count, err)
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	return w.count
}

// Close flushes the compressor if one is active. The underlying writer is
// not closed.
func (w *Writer) Close() error {
	if w.gz != nil {
		return w.gz.Close()
	}
	return nil
}

// BinaryWriter writes length-prefixed kJSONB records.
type BinaryWriter struct {
	w      io.Writer
	gz     *gzip.Writer
	count  int
	prefix [binary.MaxVarintLen64]byte
}

// NewBinaryWriter creates a binary record writer.
func NewBinaryWriter(w io.Writer, opts ...WriterOption) *BinaryWriter {
	var cfg writerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	out := &BinaryWriter{w: w}
	if cfg.gzip {
		out.gz = gzip.NewWriter(w)
		out.w = out.gz
	}
	return out
}

// Write encodes one value and emits it behind a uvarint byte count.
func (w *BinaryWriter) Write(v *kjson.Value) error {
	data, err := kjson.Encode(v)
	if err != nil {
		return &RecordError{Index: w.count, Err: err}
	}

	n := binary.PutUvarint(w.prefix[:], uint64(len(data)))
	if _, err := w.w.Write(w.prefix[:n]); err != nil {
		return fmt.Errorf("stream: write record %d: %w", w.count, err)
	}
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("stream: write record %d: %w", w.count, err)
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *BinaryWriter) Count() int {
	return w.count
}

// Close flushes the compressor if one is active. The underlying writer is
// not closed.
func (w *BinaryWriter) Close() error {
	if w.gz != nil {
		return w.gz.Close()
	}
	return nil
}
