package source

import (
	"fmt"

	"github.com/roach88/sieve/internal/ir"
)

// marshalOpaque converts an opaque value to canonical JSON TEXT for storage.
// Opaque values round-trip as IR values, so floats inside them are rejected.
func marshalOpaque(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	val, err := ir.FromAny(v)
	if err != nil {
		return nil, fmt.Errorf("marshal opaque: %w", err)
	}
	data, err := ir.MarshalCanonical(val)
	if err != nil {
		return nil, fmt.Errorf("marshal opaque: %w", err)
	}
	return string(data), nil
}

// unmarshalOpaque parses TEXT written by marshalOpaque.
func unmarshalOpaque(v any) (any, error) {
	var data []byte
	switch raw := v.(type) {
	case nil:
		return nil, nil
	case string:
		data = []byte(raw)
	case []byte:
		data = raw
	default:
		return v, nil
	}
	val, err := ir.DecodeIRValue(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal opaque: %w", err)
	}
	if ir.IsNull(val) {
		return nil, nil
	}
	return val, nil
}
