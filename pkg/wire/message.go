package wire

import (
	"errors"
	"fmt"

	"github.com/keyscan/debounce-go/pkg/debounce"
)

// Message errors.
var (
	ErrInvalidAlgorithm = errors.New("invalid algorithm")
	ErrMissingField     = errors.New("missing field")
)

// ConfigSync carries the debounce settings of the primary half.
type ConfigSync struct {
	Algorithm debounce.Algorithm `cbor:"1,keyasint"`
	TimeMS    uint8              `cbor:"2,keyasint"`
}

// Validate checks that the algorithm is one of the seven known values.
func (m *ConfigSync) Validate() error {
	if !m.Algorithm.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidAlgorithm, m.Algorithm)
	}
	return nil
}

// String returns "algorithm/timeMs" for logs.
func (m ConfigSync) String() string {
	return fmt.Sprintf("%s/%dms", m.Algorithm, m.TimeMS)
}

// EncodeConfigSync encodes m after validating it.
func EncodeConfigSync(m *ConfigSync) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config sync: %w", err)
	}
	return Marshal(m)
}

// DecodeConfigSync decodes and validates a ConfigSync. Both keys must be
// present.
func DecodeConfigSync(data []byte) (*ConfigSync, error) {
	var raw struct {
		Algorithm *uint8 `cbor:"1,keyasint"`
		TimeMS    *uint8 `cbor:"2,keyasint"`
	}
	if err := Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode config sync: %w", err)
	}
	if raw.Algorithm == nil {
		return nil, fmt.Errorf("%w: algorithm", ErrMissingField)
	}
	if raw.TimeMS == nil {
		return nil, fmt.Errorf("%w: time", ErrMissingField)
	}

	m := &ConfigSync{
		Algorithm: debounce.Algorithm(*raw.Algorithm),
		TimeMS:    *raw.TimeMS,
	}
	if err := m.Validate(); err != nil {
		return m, fmt.Errorf("invalid config sync: %w", err)
	}
	return m, nil
}
