package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/keyscan/debounce-go/pkg/log"
)

// Framing constants.
const (
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4

	// DefaultMaxFrameSize bounds a payload on the split link.
	DefaultMaxFrameSize = 256

	// MaxLogFrameDataSize caps the payload bytes copied into FRAME events.
	MaxLogFrameDataSize = 64
)

// Framing errors.
var (
	ErrFrameTooLarge  = errors.New("frame too large")
	ErrFrameEmpty     = errors.New("frame is empty")
	ErrFrameTruncated = errors.New("frame truncated")
)

// frameLog mirrors frames to a capture logger.
type frameLog struct {
	logger log.Logger
	clock  clockwork.Clock
	unitID string
	role   log.Role
}

func (l *frameLog) record(dir log.Direction, payload []byte) {
	if l.logger == nil {
		return
	}
	data := payload
	truncated := len(data) > MaxLogFrameDataSize
	if truncated {
		data = data[:MaxLogFrameDataSize]
	}
	l.logger.Log(log.Event{
		Timestamp: l.clock.Now(),
		UnitID:    l.unitID,
		Category:  log.CategoryFrame,
		Role:      l.role,
		Frame: &log.FrameEvent{
			Direction: dir,
			Size:      FrameSize(len(payload)),
			Data:      append([]byte(nil), data...),
			Truncated: truncated,
		},
	})
}

func (l *frameLog) set(logger log.Logger, unitID string, role log.Role) {
	l.logger = logger
	l.unitID = unitID
	l.role = role
	if l.clock == nil {
		l.clock = clockwork.NewRealClock()
	}
}

// FrameWriter writes length-prefixed frames. It is safe for concurrent use.
type FrameWriter struct {
	mu      sync.Mutex
	w       io.Writer
	maxSize uint32
	log     frameLog
}

// NewFrameWriter creates a writer with DefaultMaxFrameSize.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return NewFrameWriterWithMaxSize(w, DefaultMaxFrameSize)
}

// NewFrameWriterWithMaxSize creates a writer rejecting payloads above maxSize.
func NewFrameWriterWithMaxSize(w io.Writer, maxSize uint32) *FrameWriter {
	return &FrameWriter{w: w, maxSize: maxSize}
}

// SetLogger mirrors written frames to logger. Pass nil to disable.
func (fw *FrameWriter) SetLogger(logger log.Logger, unitID string, role log.Role) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.log.set(logger, unitID, role)
}

// WriteFrame writes one frame in a single Write call.
func (fw *FrameWriter) WriteFrame(payload []byte) error {
	if len(payload) == 0 {
		return ErrFrameEmpty
	}
	if uint64(len(payload)) > uint64(fw.maxSize) {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(payload), fw.maxSize)
	}

	frame := make([]byte, FrameSize(len(payload)))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[LengthPrefixSize:], payload)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, err := fw.w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	fw.log.record(log.DirectionOut, payload)
	return nil
}

// FrameReader reads length-prefixed frames. It is not safe for concurrent use.
type FrameReader struct {
	r       io.Reader
	maxSize uint32
	prefix  [LengthPrefixSize]byte
	log     frameLog
}

// NewFrameReader creates a reader with DefaultMaxFrameSize.
func NewFrameReader(r io.Reader) *FrameReader {
	return NewFrameReaderWithMaxSize(r, DefaultMaxFrameSize)
}

// NewFrameReaderWithMaxSize creates a reader rejecting payloads above maxSize.
func NewFrameReaderWithMaxSize(r io.Reader, maxSize uint32) *FrameReader {
	return &FrameReader{r: r, maxSize: maxSize}
}

// SetLogger mirrors read frames to logger. Pass nil to disable.
func (fr *FrameReader) SetLogger(logger log.Logger, unitID string, role log.Role) {
	fr.log.set(logger, unitID, role)
}

// ReadFrame returns the next payload. A clean end of stream between frames
// returns io.EOF; a stream ending inside a frame returns ErrFrameTruncated.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.prefix[:]); err != nil {
		switch {
		case err == io.EOF:
			return nil, io.EOF
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, ErrFrameTruncated
		default:
			return nil, fmt.Errorf("read length prefix: %w", err)
		}
	}

	length := binary.BigEndian.Uint32(fr.prefix[:])
	if length == 0 {
		return nil, ErrFrameEmpty
	}
	if length > fr.maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, length, fr.maxSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("read payload: %w", err)
	}

	fr.log.record(log.DirectionIn, payload)
	return payload, nil
}

// Framer reads and writes frames on one stream.
type Framer struct {
	*FrameReader
	*FrameWriter
}

// NewFramer creates a Framer with DefaultMaxFrameSize.
func NewFramer(rw io.ReadWriter) *Framer {
	return NewFramerWithMaxSize(rw, DefaultMaxFrameSize)
}

// NewFramerWithMaxSize creates a Framer with a custom maximum payload size.
func NewFramerWithMaxSize(rw io.ReadWriter, maxSize uint32) *Framer {
	return &Framer{
		FrameReader: NewFrameReaderWithMaxSize(rw, maxSize),
		FrameWriter: NewFrameWriterWithMaxSize(rw, maxSize),
	}
}

// SetLogger mirrors frames in both directions to logger.
func (f *Framer) SetLogger(logger log.Logger, unitID string, role log.Role) {
	f.FrameReader.SetLogger(logger, unitID, role)
	f.FrameWriter.SetLogger(logger, unitID, role)
}

// FrameSize returns the size of a frame carrying payloadSize bytes.
func FrameSize(payloadSize int) int {
	return LengthPrefixSize + payloadSize
}
