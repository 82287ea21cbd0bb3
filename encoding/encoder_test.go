package encoding_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cstockton/go-xray/encoding"
	"github.com/cstockton/go-xray/internal/fdrgen"
	"github.com/cstockton/go-xray/record"
)

func TestNewEncoder(t *testing.T) {
	buf := new(bytes.Buffer)
	enc := encoding.NewEncoder(buf, encoding.NewHeader(record.Version5, 0))
	require.NotNil(t, enc)
	assert.Zero(t, buf.Len(), `header is written lazily`)

	require.NoError(t, enc.Emit(record.NewBuffer{TID: 1}))
	assert.Equal(t, encoding.HeaderSize+encoding.MetadataRecordSize, buf.Len())
	assert.Equal(t, buf.Len(), enc.Off())

	require.NoError(t, enc.Flush())
	assert.Equal(t, encoding.HeaderSize+encoding.MetadataRecordSize, buf.Len(), `flush after emit writes nothing`)
}

func TestEncoderFlush(t *testing.T) {
	buf := new(bytes.Buffer)
	enc := encoding.NewEncoder(buf, encoding.NewHeader(record.Version2, 0))
	require.NoError(t, enc.Flush())
	require.NoError(t, enc.Flush())
	assert.Equal(t, encoding.AppendHeader(nil, encoding.NewHeader(record.Version2, 0)), buf.Bytes())

	dec := encoding.NewDecoder(buf)
	assert.False(t, dec.More())
	assert.NoError(t, dec.Err())
}

func TestEncoderErrors(t *testing.T) {
	t.Run(`Record`, func(t *testing.T) {
		enc := encoding.NewEncoder(io.Discard, encoding.NewHeader(record.Version2, 0))
		sentinel := enc.Emit(record.EndOfBuffer{})
		require.Error(t, sentinel)
		assert.Contains(t, sentinel.Error(), `at 0x20`)

		for i := 0; i < 10; i++ {
			require.Equal(t, sentinel, enc.Err(), `exp identical err for all future calls`)
			require.Equal(t, sentinel, enc.Emit(record.NewBuffer{}), `exp err to remain unchanged`)
			require.Equal(t, sentinel, enc.Flush())
		}

		enc.Reset(io.Discard)
		assert.NoError(t, enc.Err(), `error should clear after Reset`)
		assert.Zero(t, enc.Off(), `writer offset should clear after Reset`)
		assert.NoError(t, enc.Emit(record.NewBuffer{}))
	})
	t.Run(`Header`, func(t *testing.T) {
		for _, h := range []encoding.Header{
			{Version: record.Version5},
			{Version: 0, Type: encoding.LogTypeFDR},
			{Version: 6, Type: encoding.LogTypeFDR},
		} {
			buf := new(bytes.Buffer)
			enc := encoding.NewEncoder(buf, h)
			assert.Equal(t, encoding.ErrVersion, enc.Emit(record.NewBuffer{}))
			assert.Equal(t, encoding.ErrVersion, enc.Flush())
			assert.Zero(t, buf.Len())
		}
	})
	t.Run(`Writer`, func(t *testing.T) {
		sentinel := errors.New(`sentinel`)
		for limit := 0; limit < encoding.HeaderSize+encoding.MetadataRecordSize; limit++ {
			rwl := &rwLimiter{w: io.Discard, n: limit, err: sentinel}
			enc := encoding.NewEncoder(rwl, encoding.NewHeader(record.Version5, 0))
			err := enc.Emit(record.NewBuffer{})
			assert.Equal(t, sentinel, err, `limit %d`, limit)
			assert.Equal(t, sentinel, enc.Err())

			rwl = &rwLimiter{w: io.Discard, n: limit}
			enc = encoding.NewEncoder(rwl, encoding.NewHeader(record.Version5, 0))
			assert.Equal(t, io.ErrShortWrite, enc.Emit(record.NewBuffer{}), `limit %d`, limit)
		}
	})
}

func TestAppendRecord(t *testing.T) {
	v2, v3 := encoding.NewHeader(record.Version2, 0), encoding.NewHeader(record.Version3, 0)
	type testAppend struct {
		h   encoding.Header
		rec record.Record
		err string
	}
	tests := []testAppend{
		{v3, nil, `nil record`},
		{v3, record.EndOfBuffer{}, `can not be encoded`},
		{v3, record.CustomEventV5{Size: 1, Data: []byte(`x`)}, `can not be encoded`},
		{v2, record.NewCPUID{CPU: 1, TSC: 1}, `can not carry a tsc`},
		{v2, record.CustomEvent{Size: 1, CPU: 1, Data: []byte(`x`)}, `can not carry a cpu`},
		{v3, record.CustomEvent{Size: 2, Data: []byte(`x`)}, `does not match`},
		{v3, record.TypedEvent{Size: 0}, `does not match`},
		{v3, record.TypedEvent{Size: -1, Data: []byte(`x`)}, `does not match`},
		{v3, record.Function{Type: 7}, `invalid function record type 7`},
		{v3, record.Function{FuncID: -1}, `out of range`},
		{v3, record.Function{FuncID: encoding.MaxFunctionID + 1}, `out of range`},
	}
	for _, test := range tests {
		dst := []byte{0xaa}
		got, err := encoding.AppendRecord(dst, test.h, test.rec)
		require.Error(t, err, `%v`, test.rec)
		assert.Contains(t, err.Error(), test.err)
		assert.Equal(t, dst, got, `dst is returned unchanged on error`)
	}

	b, err := encoding.AppendRecord(nil, v3, record.Function{Type: record.FuncExit, FuncID: encoding.MaxFunctionID})
	require.NoError(t, err)
	assert.Len(t, b, encoding.FunctionRecordSize)
}

func TestEncodeSources(t *testing.T) {
	for _, sl := range fdrgen.Sources {
		buf := new(bytes.Buffer)
		enc := encoding.NewEncoder(buf, encoding.NewHeader(sl.Version, 0))

		exp := encoding.AppendHeader(nil, encoding.NewHeader(sl.Version, 0))
		for _, src := range sl.Sources {
			require.NoError(t, enc.Emit(src.Record))
			exp = append(exp, src.Source...)
		}
		assert.Equal(t, exp, buf.Bytes(), `%v`, sl.Version)
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, v := range testVersions {
		g := fdrgen.New(v)

		// Without a declared buffer size Version1 logs are not padded.
		buf := new(bytes.Buffer)
		enc := encoding.NewEncoder(buf, encoding.NewHeader(v, 0))
		for _, rec := range g.Records() {
			require.NoError(t, enc.Emit(rec))
		}
		if v != record.Version1 {
			assert.Equal(t, makeLog(t, g), buf.Bytes(), `%v`, v)
		}

		dec := encoding.NewDecoder(bytes.NewReader(buf.Bytes()))
		var got []record.Record
		for dec.More() {
			rec, err := dec.Decode()
			require.NoError(t, err)
			got = append(got, rec)
		}
		require.NoError(t, dec.Err())
		assert.Equal(t, g.Records(), got, `%v`, v)
	}
}

// rwLimiter writes at most n bytes to w, then fails with err or a short write.
type rwLimiter struct {
	w   io.Writer
	n   int
	err error
}

func (l *rwLimiter) Write(p []byte) (int, error) {
	if l.n <= 0 {
		if l.err != nil {
			return 0, l.err
		}
		return 0, nil
	}
	if len(p) > l.n {
		n, _ := l.w.Write(p[:l.n])
		l.n = 0
		return n, l.err
	}
	l.n -= len(p)
	return l.w.Write(p)
}
