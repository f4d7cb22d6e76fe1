// Package query implements the keyed slot cache the dashboard reads
// server state through. Every (operation, parameters) pair maps to one
// slot holding the latest known value, its error state, and the request
// sequencing that keeps overlapping fetches from racing.
package query

import (
	"fmt"
	"strings"
)

// Key identifies one cache slot. Keys are built from an operation name
// plus its parameters, so the same operation with different parameters
// occupies independent slots.
type Key string

// NewKey builds a slot key from an operation name and its parameters.
func NewKey(op string, params ...any) Key {
	if len(params) == 0 {
		return Key(op)
	}
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, op)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	return Key(strings.Join(parts, "/"))
}

// Op returns the operation name the key was built from.
func (k Key) Op() string {
	if i := strings.IndexByte(string(k), '/'); i >= 0 {
		return string(k[:i])
	}
	return string(k)
}
