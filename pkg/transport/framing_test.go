package transport

import (
	"bytes"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyscan/debounce-go/pkg/log"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"SingleByte", []byte{0x42}},
		{"ConfigSync", []byte{0xa2, 0x01, 0x03, 0x02, 0x14}},
		{"MaxSize", bytes.Repeat([]byte{0x7f}, DefaultMaxFrameSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			require.NoError(t, NewFrameWriter(buf).WriteFrame(tt.payload))
			assert.Equal(t, FrameSize(len(tt.payload)), buf.Len())

			got, err := NewFrameReader(buf).ReadFrame()
			require.NoError(t, err)
			assert.Equal(t, tt.payload, got)
		})
	}
}

func TestFramePrefixIsBigEndian(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, NewFrameWriter(buf).WriteFrame([]byte{1, 2, 3}))
	assert.Equal(t, []byte{0, 0, 0, 3, 1, 2, 3}, buf.Bytes())
}

func TestFrameWriterRejects(t *testing.T) {
	w := NewFrameWriterWithMaxSize(new(bytes.Buffer), 8)

	assert.ErrorIs(t, w.WriteFrame(nil), ErrFrameEmpty)
	assert.ErrorIs(t, w.WriteFrame([]byte{}), ErrFrameEmpty)
	assert.ErrorIs(t, w.WriteFrame(make([]byte, 9)), ErrFrameTooLarge)
}

func TestFrameReaderErrors(t *testing.T) {
	prefix := func(n uint32) []byte {
		var b [LengthPrefixSize]byte
		binary.BigEndian.PutUint32(b[:], n)
		return b[:]
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"EOF", nil, io.EOF},
		{"ShortPrefix", []byte{0x00, 0x01}, ErrFrameTruncated},
		{"EmptyFrame", prefix(0), ErrFrameEmpty},
		{"TooLarge", append(prefix(1000), make([]byte, 1000)...), ErrFrameTooLarge},
		{"ShortPayload", append(prefix(10), 1, 2, 3), ErrFrameTruncated},
		{"MissingPayload", prefix(10), ErrFrameTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFrameReader(bytes.NewReader(tt.data)).ReadFrame()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFrameSequence(t *testing.T) {
	buf := new(bytes.Buffer)
	w := NewFrameWriter(buf)
	frames := [][]byte{[]byte("a"), []byte("bc"), []byte("def")}
	for _, f := range frames {
		require.NoError(t, w.WriteFrame(f))
	}

	r := NewFrameReader(buf)
	for _, want := range frames {
		got, err := r.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := r.ReadFrame()
	assert.Equal(t, io.EOF, err)
}

func TestFramerOverPipe(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	left := NewFramer(a)
	right := NewFramer(b)

	go func() {
		_ = left.WriteFrame([]byte("ping"))
	}()

	got, err := right.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), got)
}

type capturingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (l *capturingLogger) Log(event log.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *capturingLogger) Events() []log.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]log.Event(nil), l.events...)
}

func TestFramesAreLogged(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := &capturingLogger{}

	w := NewFrameWriter(buf)
	w.SetLogger(logger, "left", log.RolePrimary)
	require.NoError(t, w.WriteFrame([]byte("hello")))

	r := NewFrameReader(buf)
	r.SetLogger(logger, "right", log.RoleSecondary)
	_, err := r.ReadFrame()
	require.NoError(t, err)

	events := logger.Events()
	require.Len(t, events, 2)

	out, in := events[0], events[1]
	assert.Equal(t, log.CategoryFrame, out.Category)
	assert.Equal(t, "left", out.UnitID)
	assert.Equal(t, log.RolePrimary, out.Role)
	require.NotNil(t, out.Frame)
	assert.Equal(t, log.DirectionOut, out.Frame.Direction)
	assert.Equal(t, FrameSize(5), out.Frame.Size)
	assert.Equal(t, []byte("hello"), out.Frame.Data)

	assert.Equal(t, "right", in.UnitID)
	assert.Equal(t, log.DirectionIn, in.Frame.Direction)
	assert.False(t, in.Frame.Truncated)
}

func TestLoggedFrameDataTruncated(t *testing.T) {
	logger := &capturingLogger{}
	w := NewFrameWriter(new(bytes.Buffer))
	w.SetLogger(logger, "left", log.RoleStandalone)

	require.NoError(t, w.WriteFrame(bytes.Repeat([]byte{1}, MaxLogFrameDataSize+10)))

	events := logger.Events()
	require.Len(t, events, 1)
	assert.True(t, events[0].Frame.Truncated)
	assert.Len(t, events[0].Frame.Data, MaxLogFrameDataSize)
	assert.Equal(t, FrameSize(MaxLogFrameDataSize+10), events[0].Frame.Size)
}

func BenchmarkFrameWrite(b *testing.B) {
	buf := new(bytes.Buffer)
	w := NewFrameWriter(buf)
	payload := []byte{0xa2, 0x01, 0x03, 0x02, 0x14}

	for i := 0; i < b.N; i++ {
		buf.Reset()
		_ = w.WriteFrame(payload)
	}
}
