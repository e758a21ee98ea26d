// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package helper collects small generic utilities shared by every kernel
// package: pointer conversion, slice membership, and attribute-map decoding.
// Nothing here is scheduling-domain specific.
package helper

import (
	"github.com/go-viper/mapstructure/v2"
)

// Ptr returns a pointer to a copy of v. Useful for optional struct fields
// (Task.Deadline, Task.ReleaseTime, Resource.CostPerHour) populated from
// literals in tests and call sites.
func Ptr[T any](v T) *T {
	return &v
}

// PtrOrNil dereferences p, returning the zero value and false when p is nil.
func PtrOrNil[T any](p *T) (T, bool) {
	var zero T
	if p == nil {
		return zero, false
	}
	return *p, true
}

// ContainsString reports whether needle is present in haystack.
func ContainsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// FromMap decodes a free-form attribute map into a typed struct, matching
// fields by their `attr` struct tag and converting weakly typed values
// (e.g. "3" into an int). No kernel package calls it.
func FromMap(m map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "attr",
	})
	if err != nil {
		return err
	}
	return dec.Decode(m)
}
