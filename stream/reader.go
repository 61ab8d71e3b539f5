package stream

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/atikayda/kjson-sub001/kjson"
)

// ReaderOption configures a Reader or BinaryReader.
type ReaderOption func(*readerConfig)

type readerConfig struct {
	maxRecord   int
	skipInvalid bool
	parse       kjson.ParseOptions
}

// WithMaxRecordSize sets the maximum size of a single record.
func WithMaxRecordSize(max int) ReaderOption {
	return func(c *readerConfig) {
		c.maxRecord = max
	}
}

// WithSkipInvalid makes Next skip records that fail to parse instead of
// returning the error. Truncation of the stream itself is still an error.
func WithSkipInvalid() ReaderOption {
	return func(c *readerConfig) {
		c.skipInvalid = true
	}
}

// WithParseOptions overrides the per-record parse options for text records.
func WithParseOptions(opts kjson.ParseOptions) ReaderOption {
	return func(c *readerConfig) {
		c.parse = opts
	}
}

func newReaderConfig(opts []ReaderOption) readerConfig {
	cfg := readerConfig{
		maxRecord: DefaultMaxRecordSize,
		parse:     kjson.DefaultParseOptions(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// wrapDecompress peeks for the gzip magic bytes and transparently inserts
// a decompressor when present.
func wrapDecompress(br *bufio.Reader) (*bufio.Reader, error) {
	magic, err := br.Peek(2)
	if err != nil || len(magic) < 2 || magic[0] != 0x1f || magic[1] != 0x8b {
		return br, nil
	}
	gz, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("stream: open gzip: %w", err)
	}
	return bufio.NewReader(gz), nil
}

// Reader reads newline-delimited kJSON text records.
type Reader struct {
	br      *bufio.Reader
	cfg     readerConfig
	index   int
	skipped int
	initErr error
}

// NewReader creates a text record reader. Gzip input is detected and
// decompressed transparently.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	br, err := wrapDecompress(bufio.NewReader(r))
	return &Reader{br: br, cfg: newReaderConfig(opts), initErr: err}
}

// Next returns the next record, or io.EOF when the stream is exhausted.
// Blank lines are skipped.
func (r *Reader) Next() (*kjson.Value, error) {
	if r.initErr != nil {
		return nil, r.initErr
	}

	for {
		line, err := r.readLine()
		if err != nil {
			return nil, err
		}

		if len(line) == 0 {
			continue
		}

		index := r.index
		r.index++

		v, perr := kjson.ParseWithOptions(string(line), r.cfg.parse)
		if perr != nil {
			if r.cfg.skipInvalid {
				r.skipped++
				continue
			}
			return nil, &RecordError{Index: index, Err: perr}
		}
		return v, nil
	}
}

// readLine reads one newline-terminated line, enforcing the record size
// limit. A final line without a newline is accepted.
func (r *Reader) readLine() ([]byte, error) {
	line, err := r.br.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("stream: read record %d: %w", r.index, err)
	}
	if err == io.EOF && len(line) == 0 {
		return nil, io.EOF
	}

	line = bytes.TrimSpace(line)
	if len(line) > r.cfg.maxRecord {
		return nil, &RecordError{
			Index: r.index,
			Err:   fmt.Errorf("record is %d bytes, limit is %d", len(line), r.cfg.maxRecord),
		}
	}
	return line, nil
}

// Skipped returns the number of invalid records passed over.
func (r *Reader) Skipped() int {
	return r.skipped
}

// ReadAll reads records until EOF.
func (r *Reader) ReadAll() ([]*kjson.Value, error) {
	var values []*kjson.Value
	for {
		v, err := r.Next()
		if err == io.EOF {
			return values, nil
		}
		if err != nil {
			return values, err
		}
		values = append(values, v)
	}
}

// BinaryReader reads length-prefixed kJSONB records.
type BinaryReader struct {
	br      *bufio.Reader
	cfg     readerConfig
	index   int
	skipped int
	initErr error
}

// NewBinaryReader creates a binary record reader. Gzip input is detected
// and decompressed transparently.
func NewBinaryReader(r io.Reader, opts ...ReaderOption) *BinaryReader {
	br, err := wrapDecompress(bufio.NewReader(r))
	return &BinaryReader{br: br, cfg: newReaderConfig(opts), initErr: err}
}

// Next returns the next record, or io.EOF when the stream is exhausted.
func (r *BinaryReader) Next() (*kjson.Value, error) {
	if r.initErr != nil {
		return nil, r.initErr
	}

	for {
		payload, err := r.readRecord()
		if err != nil {
			return nil, err
		}

		index := r.index
		r.index++

		v, derr := kjson.Decode(payload)
		if derr != nil {
			if r.cfg.skipInvalid {
				r.skipped++
				continue
			}
			return nil, &RecordError{Index: index, Err: derr}
		}
		return v, nil
	}
}

// readRecord reads one uvarint-prefixed payload. EOF cleanly before a
// prefix means end of stream; EOF inside a record is an error.
func (r *BinaryReader) readRecord() ([]byte, error) {
	size, err := binary.ReadUvarint(r.br)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("stream: read record %d length: %w", r.index, err)
	}
	if size > uint64(r.cfg.maxRecord) {
		return nil, &RecordError{
			Index: r.index,
			Err:   fmt.Errorf("record is %d bytes, limit is %d", size, r.cfg.maxRecord),
		}
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r.br, payload); err != nil {
		return nil, fmt.Errorf("stream: read record %d payload: %w", r.index, err)
	}
	return payload, nil
}

// Skipped returns the number of invalid records passed over.
func (r *BinaryReader) Skipped() int {
	return r.skipped
}

// ReadAll reads records until EOF.
func (r *BinaryReader) ReadAll() ([]*kjson.Value, error) {
	var values []*kjson.Value
	for {
		v, err := r.Next()
		if err == io.EOF {
			return values, nil
		}
		if err != nil {
			return values, err
		}
		values = append(values, v)
	}
}
