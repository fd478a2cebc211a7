package log

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/keyscan/debounce-go/pkg/matrix"
)

// MaxScanKeys bounds ScanEvent.Keys: one delta per switch of the largest
// supported matrix.
const MaxScanKeys = matrix.MaxRows * matrix.MaxCols

// The deepest record is a scan event: event map, payload map, delta array,
// delta map.
const (
	maxEventFields  = 32
	maxEventNesting = 4
)

// ErrEventTooLarge is returned for a scan event with more than MaxScanKeys
// deltas. Such a record would be rejected when the capture is read back.
var ErrEventTooLarge = errors.New("capture event too large")

var (
	captureEncMode cbor.EncMode
	captureDecMode cbor.DecMode
)

func init() {
	var err error

	captureEncMode, err = cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create capture CBOR encoder mode: %v", err))
	}

	// Unknown keys are ignored so captures from newer builds stay readable,
	// but sizes are bounded by what a scan can produce. A truncated or
	// corrupt file cannot make the reader allocate beyond that.
	captureDecMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthForbidden,
		MaxArrayElements:  MaxScanKeys,
		MaxMapPairs:       maxEventFields,
		MaxNestedLevels:   maxEventNesting,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create capture CBOR decoder mode: %v", err))
	}
}

func checkEvent(event *Event) error {
	if event.Scan != nil && len(event.Scan.Keys) > MaxScanKeys {
		return fmt.Errorf("%w: %d key deltas", ErrEventTooLarge, len(event.Scan.Keys))
	}
	return nil
}

// EncodeEvent encodes one capture record.
func EncodeEvent(event Event) ([]byte, error) {
	if err := checkEvent(&event); err != nil {
		return nil, err
	}
	return captureEncMode.Marshal(event)
}

// DecodeEvent decodes one capture record.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := captureDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewDecoder reads a stream of capture records from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return captureDecMode.NewDecoder(r)
}
