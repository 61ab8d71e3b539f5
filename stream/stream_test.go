package stream

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atikayda/kjson-sub001/kjson"
)

func sampleValues(t *testing.T) []*kjson.Value {
	t.Helper()

	first, err := kjson.Parse("{id: 1n, name: 'alice', at: 2025-01-10T12:00:00Z}")
	require.NoError(t, err)
	second, err := kjson.Parse("{id: 2n, name: 'bob', balance: 99.99m}")
	require.NoError(t, err)
	third, err := kjson.Parse("[550e8400-e29b-41d4-a716-446655440000, PT1H, null]")
	require.NoError(t, err)

	return []*kjson.Value{first, second, third}
}

func TestTextRoundTrip(t *testing.T) {
	values := sampleValues(t)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, v := range values {
		require.NoError(t, w.Write(v))
	}
	require.NoError(t, w.Close())
	assert.Equal(t, 3, w.Count())

	// One record per line, no indentation.
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)

	out, err := NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, out, len(values))
	for i := range values {
		assert.True(t, kjson.Equal(values[i], out[i]), "record %d changed", i)
	}
}

func TestTextGzipRoundTrip(t *testing.T) {
	values := sampleValues(t)

	var buf bytes.Buffer
	w := NewWriter(&buf, WithGzip())
	for _, v := range values {
		require.NoError(t, w.Write(v))
	}
	require.NoError(t, w.Close())

	// Compressed output carries the gzip magic.
	require.GreaterOrEqual(t, buf.Len(), 2)
	assert.Equal(t, byte(0x1f), buf.Bytes()[0])
	assert.Equal(t, byte(0x8b), buf.Bytes()[1])

	// The reader detects compression on its own.
	out, err := NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, out, len(values))
	for i := range values {
		assert.True(t, kjson.Equal(values[i], out[i]), "record %d changed", i)
	}
}

func TestTextReader_BlankLinesAndFinalNewline(t *testing.T) {
	// A missing final newline must not drop the last record. Blank lines
	// are not records.
	r := NewReader(strings.NewReader("1\n\n  \ntrue\n'last'"))
	out, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, out, 3)

	last, err := out[2].AsStr()
	require.NoError(t, err)
	assert.Equal(t, "last", last)
}

func TestTextReader_InvalidRecord(t *testing.T) {
	input := "{a:1}\n{broken\n{b:2}\n"

	_, err := NewReader(strings.NewReader(input)).ReadAll()
	var rerr *RecordError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 1, rerr.Index)
}

func TestTextReader_SkipInvalid(t *testing.T) {
	input := "{a:1}\n{broken\n{b:2}\n"

	r := NewReader(strings.NewReader(input), WithSkipInvalid())
	out, err := r.ReadAll()
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, 1, r.Skipped())
}

func TestTextReader_RecordSizeLimit(t *testing.T) {
	input := "'" + strings.Repeat("x", 100) + "'\n"

	_, err := NewReader(strings.NewReader(input), WithMaxRecordSize(50)).ReadAll()
	var rerr *RecordError
	require.ErrorAs(t, err, &rerr)
}

func TestTextReader_ParseOptions(t *testing.T) {
	opts := kjson.DefaultParseOptions()
	opts.AllowTrailingCommas = false

	_, err := NewReader(strings.NewReader("[1,2,]\n"), WithParseOptions(opts)).ReadAll()
	var rerr *RecordError
	require.ErrorAs(t, err, &rerr)
}

func TestBinaryRoundTrip(t *testing.T) {
	values := sampleValues(t)

	var buf bytes.Buffer
	w := NewBinaryWriter(&buf)
	for _, v := range values {
		require.NoError(t, w.Write(v))
	}
	require.NoError(t, w.Close())
	assert.Equal(t, 3, w.Count())

	out, err := NewBinaryReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, out, len(values))
	for i := range values {
		assert.True(t, kjson.Equal(values[i], out[i]), "record %d changed", i)
	}
}

func TestBinaryGzipRoundTrip(t *testing.T) {
	values := sampleValues(t)

	var buf bytes.Buffer
	w := NewBinaryWriter(&buf, WithGzip())
	for _, v := range values {
		require.NoError(t, w.Write(v))
	}
	require.NoError(t, w.Close())

	out, err := NewBinaryReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, out, len(values))
	for i := range values {
		assert.True(t, kjson.Equal(values[i], out[i]), "record %d changed", i)
	}
}

func TestBinaryReader_TruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	w := NewBinaryWriter(&buf)
	require.NoError(t, w.Write(kjson.Str("a record that will be cut short")))

	data := buf.Bytes()[:buf.Len()-5]
	_, err := NewBinaryReader(bytes.NewReader(data)).ReadAll()
	assert.Error(t, err)
}

func TestBinaryReader_RecordSizeLimit(t *testing.T) {
	var buf bytes.Buffer
	w := NewBinaryWriter(&buf)
	require.NoError(t, w.Write(kjson.Str(strings.Repeat("x", 100))))

	_, err := NewBinaryReader(&buf, WithMaxRecordSize(50)).ReadAll()
	var rerr *RecordError
	require.ErrorAs(t, err, &rerr)
}

func TestBinaryReader_Empty(t *testing.T) {
	out, err := NewBinaryReader(bytes.NewReader(nil)).ReadAll()
	require.NoError(t, err)
	assert.Empty(t, out)
}
