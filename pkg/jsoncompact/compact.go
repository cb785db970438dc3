// Package jsoncompact trims oversized sample documents before inference.
// Trimmed arrays end with a truncation sentinel ({"_truncated": n}) that the
// classifier skips, so compaction never changes the inferred item shape.
package jsoncompact

import (
	"fmt"
	"unicode/utf8"

	"github.com/usestring/schemainfer/pkg/value"
)

// Options controls compaction behavior.
type Options struct {
	MaxArrayItems int // Trim arrays to N items (0 = no limit)
	MaxStringLen  int // Truncate strings longer than N bytes (0 = no limit)
}

// Default values for compaction options.
const (
	DefaultMaxArrayItems = 50
	DefaultMaxStringLen  = 2000
)

// DefaultOptions returns the default compaction settings.
func DefaultOptions() *Options {
	return &Options{
		MaxArrayItems: DefaultMaxArrayItems,
		MaxStringLen:  DefaultMaxStringLen,
	}
}

// Compact compacts JSON bytes, preserving key order.
// Returns error if input is not valid JSON.
// If opts is nil, DefaultOptions() is used.
func Compact(data []byte, opts *Options) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	v, err := value.ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return CompactValue(v, opts).MarshalJSON()
}

// CompactValue compacts a decoded sample.
// If opts is nil, DefaultOptions() is used.
func CompactValue(v value.Value, opts *Options) value.Value {
	if opts == nil {
		opts = DefaultOptions()
	}
	return compactRecursive(v, opts)
}

func compactRecursive(v value.Value, opts *Options) value.Value {
	switch v.Kind() {
	case value.KindSeq:
		return compactArray(v.Items(), opts)
	case value.KindMap:
		return compactObject(v.Fields(), opts)
	case value.KindString:
		return compactString(v.AsString(), opts)
	default:
		return v
	}
}

func compactString(s string, opts *Options) value.Value {
	if opts.MaxStringLen <= 0 || len(s) <= opts.MaxStringLen {
		return value.String(s)
	}
	cut := opts.MaxStringLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	remaining := len(s) - cut
	return value.String(s[:cut] + fmt.Sprintf("... (%d more chars)", remaining))
}

func compactArray(arr []value.Value, opts *Options) value.Value {
	if len(arr) == 0 {
		return value.Seq()
	}

	n := len(arr)
	if opts.MaxArrayItems > 0 && n > opts.MaxArrayItems {
		n = opts.MaxArrayItems
	}
	result := make([]value.Value, 0, n+1)
	for _, item := range arr[:n] {
		result = append(result, compactRecursive(item, opts))
	}
	if remaining := len(arr) - n; remaining > 0 {
		result = append(result, value.Truncated(remaining))
	}
	return value.Seq(result...)
}

func compactObject(fields []value.Field, opts *Options) value.Value {
	result := make([]value.Field, len(fields))
	for i, f := range fields {
		result[i] = value.F(f.Key, compactRecursive(f.Value, opts))
	}
	return value.Map(result...)
}
