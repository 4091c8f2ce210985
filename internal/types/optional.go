package types

import (
	"bytes"
	"encoding/json"
)

// Optional records whether a JSON field was present, and whether it was null.
// Absent fields leave Set false; an explicit null sets Set and Null.
// A value of the wrong JSON type sets Invalid instead of failing the whole body,
// so validation can report it against its own field.
type Optional[T any] struct {
	Value   T
	Set     bool
	Null    bool
	Invalid bool
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Invalid = false
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	if err := json.Unmarshal(data, &o.Value); err != nil {
		var zero T
		o.Value = zero
		o.Invalid = true
	}
	return nil
}

// Present reports a field that was sent with a non-null value
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null && !o.Invalid
}

// Ptr returns nil for null or absent fields, otherwise a pointer to the value
func (o Optional[T]) Ptr() *T {
	if !o.Present() {
		return nil
	}
	v := o.Value
	return &v
}

// Some builds a present Optional, mostly for tests and internal callers
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null builds an explicit null Optional
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}
