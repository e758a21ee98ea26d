// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package transition implements sequence-dependent setup-time lookup: a
// per-resource matrix mapping (from-category, to-category) to a setup
// duration in milliseconds, with a default fallback, collected by resource
// id. The scheduler's hot path (scheduler.C7 step c) calls Collection.Setup
// once per placement; Collection memoizes that lookup behind a bounded LRU
// since the same (resource, from, to) triple recurs heavily across a
// greedy pass and, more so, across the thousands of decodes a GA run
// performs.
package transition

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Matrix is one resource's setup-time lookup table.
type Matrix struct {
	Default int64            `json:"default" msgpack:"default"`
	Entries map[string]map[string]int64 `json:"entries" msgpack:"entries"`
}

// NewMatrix returns an empty Matrix with the given default fallback.
func NewMatrix(defaultMS int64) *Matrix {
	return &Matrix{Default: defaultMS, Entries: make(map[string]map[string]int64)}
}

// Set records the setup time for a (from, to) category transition.
func (m *Matrix) Set(from, to string, setupMS int64) {
	if m.Entries == nil {
		m.Entries = make(map[string]map[string]int64)
	}
	if m.Entries[from] == nil {
		m.Entries[from] = make(map[string]int64)
	}
	m.Entries[from][to] = setupMS
}

// Lookup returns the setup time for (from, to), falling back to Default
// when no explicit entry exists. An empty from category (no prior
// assignment on the resource) always yields 0, per spec.md §4.4 step (c):
// "if last_category[chosen] unset, setup is 0".
func (m *Matrix) Lookup(from, to string) int64 {
	if from == "" {
		return 0
	}
	if m == nil {
		return 0
	}
	if row, ok := m.Entries[from]; ok {
		if v, ok := row[to]; ok {
			return v
		}
	}
	return m.Default
}

// Collection indexes Matrix values by resource id, with an LRU cache
// memoizing the (resource, from, to) -> setup-ms lookup.
type Collection struct {
	matrices map[string]*Matrix
	cache    *lru.Cache[cacheKey, int64]
}

type cacheKey struct {
	resourceID string
	from, to   string
}

// defaultCacheSize bounds memory given an unbounded number of genome
// decodes; a few thousand entries comfortably covers realistic
// (resource, category, category) cardinalities while staying small.
const defaultCacheSize = 4096

// NewCollection builds an empty Collection.
func NewCollection() *Collection {
	cache, _ := lru.New[cacheKey, int64](defaultCacheSize)
	return &Collection{matrices: make(map[string]*Matrix), cache: cache}
}

// Set installs the Matrix for resourceID, invalidating any cached lookups
// for that resource.
func (c *Collection) Set(resourceID string, m *Matrix) {
	c.matrices[resourceID] = m
	if c.cache != nil {
		for _, k := range c.cache.Keys() {
			if k.resourceID == resourceID {
				c.cache.Remove(k)
			}
		}
	}
}

// Setup returns the setup-ms for the given resource's (from, to) category
// transition, 0 when the resource has no Matrix at all.
func (c *Collection) Setup(resourceID, from, to string) int64 {
	if c == nil {
		return 0
	}
	key := cacheKey{resourceID, from, to}
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return v
		}
	}

	m, ok := c.matrices[resourceID]
	if !ok {
		return 0
	}
	v := m.Lookup(from, to)
	if c.cache != nil {
		c.cache.Add(key, v)
	}
	return v
}
