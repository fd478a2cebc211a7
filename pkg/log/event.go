package log

import "time"

// Event is a captured engine event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred.
	Timestamp time.Time `cbor:"1,keyasint"`

	// UnitID identifies the engine instance (one per keyboard half).
	UnitID string `cbor:"2,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"3,keyasint"`

	// Role of the unit in a split pair.
	Role Role `cbor:"4,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Config *ConfigEvent    `cbor:"10,keyasint,omitempty"`
	Scan   *ScanEvent      `cbor:"11,keyasint,omitempty"`
	Sync   *SyncEvent      `cbor:"12,keyasint,omitempty"`
	Frame  *FrameEvent     `cbor:"13,keyasint,omitempty"`
	Error  *ErrorEventData `cbor:"14,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryConfig indicates an algorithm or debounce time change.
	CategoryConfig Category = 0
	// CategoryScan indicates a cooked matrix change.
	CategoryScan Category = 1
	// CategorySync indicates split configuration traffic.
	CategorySync Category = 2
	// CategoryFrame indicates raw frame I/O on the split link.
	CategoryFrame Category = 3
	// CategoryError indicates an error.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryConfig:
		return "CONFIG"
	case CategoryScan:
		return "SCAN"
	case CategorySync:
		return "SYNC"
	case CategoryFrame:
		return "FRAME"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryConfig, CategoryScan, CategorySync, CategoryFrame, CategoryError}
}

// Role indicates which half of a split pair produced the event.
type Role uint8

const (
	// RoleStandalone is a unit that is not part of a split pair.
	RoleStandalone Role = 0
	// RolePrimary is the half that owns the configuration.
	RolePrimary Role = 1
	// RoleSecondary is the half that follows the primary.
	RoleSecondary Role = 2
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleStandalone:
		return "STANDALONE"
	case RolePrimary:
		return "PRIMARY"
	case RoleSecondary:
		return "SECONDARY"
	default:
		return "UNKNOWN"
	}
}

// Direction indicates the direction of split traffic.
type Direction uint8

const (
	// DirectionIn indicates received traffic.
	DirectionIn Direction = 0
	// DirectionOut indicates sent traffic.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// ConfigEvent captures an algorithm or debounce time change.
// Algorithms are stored as their wire values.
type ConfigEvent struct {
	// Reason names the operation that caused the change.
	Reason string `cbor:"1,keyasint"`

	OldAlgorithm uint8 `cbor:"2,keyasint"`
	NewAlgorithm uint8 `cbor:"3,keyasint"`
	OldTimeMS    uint8 `cbor:"4,keyasint"`
	NewTimeMS    uint8 `cbor:"5,keyasint"`
}

// ScanEvent captures a scan cycle that changed the cooked matrix.
type ScanEvent struct {
	// Cycle is the scan cycle number since the driver started.
	Cycle uint64 `cbor:"1,keyasint"`

	// Algorithm active during the cycle (wire value).
	Algorithm uint8 `cbor:"2,keyasint"`

	// Keys lists the switches whose cooked state changed.
	Keys []KeyDelta `cbor:"3,keyasint,omitempty"`
}

// KeyDelta is one cooked switch transition.
type KeyDelta struct {
	Row     uint8 `cbor:"1,keyasint"`
	Col     uint8 `cbor:"2,keyasint"`
	Pressed bool  `cbor:"3,keyasint"`
}

// SyncEvent captures a split configuration message.
type SyncEvent struct {
	Direction Direction `cbor:"1,keyasint"`
	Algorithm uint8     `cbor:"2,keyasint"`
	TimeMS    uint8     `cbor:"3,keyasint"`

	// Applied is set on received messages that changed the local engine.
	Applied bool `cbor:"4,keyasint,omitempty"`
}

// FrameEvent captures a frame on the split link.
type FrameEvent struct {
	Direction Direction `cbor:"1,keyasint"`

	// Size is the frame size in bytes (including length prefix).
	Size int `cbor:"2,keyasint"`

	// Data is the frame payload (may be truncated for large frames).
	Data []byte `cbor:"3,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData captures an error.
type ErrorEventData struct {
	// Component where the error occurred (engine, split, transport, scan).
	Component string `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
