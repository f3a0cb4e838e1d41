package enum

import (
	"fmt"
	"reflect"
)

// registry maps an enum type name to the set of its registered values.
var registry = map[string]any{}

type values[T comparable] map[string]T

// New registers a value of an enum type and returns it unchanged, so it can
// be called directly in a var block.
func New[T comparable](value T) T {
	name := reflect.TypeOf(value).Name()
	vals, ok := registry[name].(values[T])
	if !ok {
		vals = values[T]{}
		registry[name] = vals
	}

	vals[reflect.ValueOf(value).String()] = value
	return value
}

// ToEnum parses s into a registered value of the enum type T. It fails when
// s was never registered with New.
func ToEnum[T comparable](s string) (T, error) {
	var zero T
	vals, ok := registry[reflect.TypeOf(zero).Name()].(values[T])
	if !ok {
		return zero, fmt.Errorf("not found enum type %T", zero)
	}

	value, ok := vals[s]
	if !ok {
		return zero, fmt.Errorf("not found value %s in enum %T", s, zero)
	}

	return value, nil
}
