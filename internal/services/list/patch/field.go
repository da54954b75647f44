// Package patch provides the partial-update pipeline applied to list entities.
package patch

import "encoding/json"

// Field is a tri-state value for partial updates: absent from the payload,
// explicit null, or set. Absent fields leave the entity alone; null clears
// nullable columns; set values replace.
type Field[T any] struct {
	present bool
	null    bool
	value   T
}

// Set returns a field carrying a value.
func Set[T any](value T) Field[T] {
	return Field[T]{present: true, value: value}
}

// Null returns a field that clears its target.
func Null[T any]() Field[T] {
	return Field[T]{present: true, null: true}
}

// Present reports whether the field appeared in the payload.
func (f Field[T]) Present() bool {
	return f.present
}

// IsNull reports whether the field was an explicit null.
func (f Field[T]) IsNull() bool {
	return f.null
}

// Value returns the carried value, or the zero value when absent or null.
func (f Field[T]) Value() T {
	return f.value
}

// UnmarshalJSON records presence and distinguishes null from set values.
// Unmarshal invokes this for null literals, so all three states survive
// decoding: keys left out of the payload never reach this method.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.present = true
	if string(data) == "null" {
		f.null = true
		var zero T
		f.value = zero
		return nil
	}
	return json.Unmarshal(data, &f.value)
}
