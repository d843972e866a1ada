package logic

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ValueType names a state value type usable in configuration.
type ValueType string

// Value types.
const (
	TypeBool   ValueType = "bool"
	TypeInt    ValueType = "int"
	TypeFloat  ValueType = "float"
	TypeString ValueType = "string"
)

// InferType returns the value type of a configuration value. Nil infers
// bool.
func InferType(v any) (ValueType, error) {
	switch v.(type) {
	case nil, bool:
		return TypeBool, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInt, nil
	case float32, float64:
		return TypeFloat, nil
	case string:
		return TypeString, nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// convert decodes raw into a V, accepting strings for numbers and bools.
func convert[V any](raw any) (V, error) {
	var v V
	if raw == nil {
		return v, nil
	}
	if err := mapstructure.WeakDecode(raw, &v); err != nil {
		return v, fmt.Errorf("cannot use %v as %T: %w", raw, v, err)
	}
	return v, nil
}
