// Package mapping builds immutable key to value lookups from tables and
// applies them as joins.
package mapping

import (
	"fmt"

	apperrors "soiagi/internal/errors"
	"soiagi/pkg/contracts/domain"
)

// CollisionPolicy decides which value a duplicate key keeps
type CollisionPolicy int

const (
	// LastWins keeps the value of the last row carrying the key
	LastWins CollisionPolicy = iota
	// FirstWins keeps the value of the first row carrying the key
	FirstWins
)

func (p CollisionPolicy) String() string {
	switch p {
	case LastWins:
		return "last_wins"
	case FirstWins:
		return "first_wins"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// KeyNormalizer canonicalizes a raw key. Returning ok=false marks the key
// unusable, which skips the row at build time and misses at lookup time.
type KeyNormalizer func(raw string) (key string, ok bool)

// Identity is the KeyNormalizer that keeps keys as they are
func Identity(raw string) (string, bool) {
	return raw, raw != ""
}

// Mapping is an immutable lookup from normalized key to V. The same
// normalizer is used for building and probing.
type Mapping[V any] struct {
	values     map[string]V
	normalize  KeyNormalizer
	policy     CollisionPolicy
	collisions int
}

// Builder accumulates entries for a Mapping
type Builder[V any] struct {
	m     *Mapping[V]
	built bool
}

// NewBuilder starts a mapping with the given policy and normalizer.
// A nil normalizer means Identity.
func NewBuilder[V any](policy CollisionPolicy, normalize KeyNormalizer) *Builder[V] {
	if normalize == nil {
		normalize = Identity
	}
	return &Builder[V]{
		m: &Mapping[V]{
			values:    make(map[string]V),
			normalize: normalize,
			policy:    policy,
		},
	}
}

// Add records one entry, reporting whether the key was usable
func (b *Builder[V]) Add(rawKey string, v V) bool {
	if b.built {
		panic("mapping: Add after Build")
	}
	key, ok := b.m.normalize(rawKey)
	if !ok {
		return false
	}
	if _, exists := b.m.values[key]; exists {
		b.m.collisions++
		if b.m.policy == FirstWins {
			return true
		}
	}
	b.m.values[key] = v
	return true
}

// Build freezes the mapping. The builder cannot be reused.
func (b *Builder[V]) Build() *Mapping[V] {
	b.built = true
	return b.m
}

// Lookup normalizes rawKey and returns its value
func (m *Mapping[V]) Lookup(rawKey string) (V, bool) {
	var zero V
	key, ok := m.normalize(rawKey)
	if !ok {
		return zero, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of distinct keys
func (m *Mapping[V]) Len() int {
	return len(m.values)
}

// Collisions returns how many entries hit an existing key during build
func (m *Mapping[V]) Collisions() int {
	return m.collisions
}

// Policy returns the collision policy the mapping was built with
func (m *Mapping[V]) Policy() CollisionPolicy {
	return m.policy
}

// Build derives a key to value mapping from two columns of table.
// Rows whose key or value is missing are skipped.
func Build(table *domain.Table, keyColumn, valueColumn string, policy CollisionPolicy, normalize KeyNormalizer) (*Mapping[string], error) {
	if err := table.RequireColumns(keyColumn, valueColumn); err != nil {
		return nil, apperrors.NewSchemaError("cannot build mapping", err).
			WithContext("key_column", keyColumn).
			WithContext("value_column", valueColumn)
	}

	b := NewBuilder[string](policy, normalize)
	for i := 0; i < table.Len(); i++ {
		k, v := table.Get(i, keyColumn), table.Get(i, valueColumn)
		if k.IsMissing() || v.IsMissing() {
			continue
		}
		b.Add(k.String(), v.String())
	}
	return b.Build(), nil
}
