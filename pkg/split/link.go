package split

import (
	"io"

	"github.com/keyscan/debounce-go/pkg/log"
	"github.com/keyscan/debounce-go/pkg/transport"
)

// Link delivers one message to the peer half.
type Link interface {
	// Send transmits payload. A nil error means the peer link accepted it.
	Send(payload []byte) error
}

// FrameSource yields received messages.
type FrameSource interface {
	// ReadFrame blocks for the next message and returns io.EOF once the
	// peer closed the link.
	ReadFrame() ([]byte, error)
}

// FramedLink carries messages as length-prefixed frames over a stream.
type FramedLink struct {
	framer *transport.Framer
}

// NewFramedLink wraps rw, typically a serial port or net.Conn.
func NewFramedLink(rw io.ReadWriter) *FramedLink {
	return &FramedLink{framer: transport.NewFramer(rw)}
}

// SetLogger mirrors frames in both directions to logger as FRAME events.
func (l *FramedLink) SetLogger(logger log.Logger, unitID string, role log.Role) {
	l.framer.SetLogger(logger, unitID, role)
}

// Send writes payload as one frame.
func (l *FramedLink) Send(payload []byte) error {
	return l.framer.WriteFrame(payload)
}

// ReadFrame reads the next frame.
func (l *FramedLink) ReadFrame() ([]byte, error) {
	return l.framer.ReadFrame()
}

var (
	_ Link        = (*FramedLink)(nil)
	_ FrameSource = (*FramedLink)(nil)
)
