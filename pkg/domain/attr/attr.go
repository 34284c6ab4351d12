// Package attr provides the open-ended attribute bag carried by every
// broadcast-source record. Attributes are string keyed, value-copied, and
// persist as a single encoded string column.
package attr

import (
	"net/url"
	"sort"
)

// Well-known attribute keys. Callers may set arbitrary keys; these are the
// ones the core itself interprets.
const (
	// KeyBaseline marks a record that originates from a baseline table.
	// Replication preserves vertical pattern data for baseline records.
	KeyBaseline = "is_baseline"
	// KeyLicensee carries the licensee name when imported from a primary
	// data source.
	KeyLicensee = "licensee_name"
)

// Bag is a string-keyed attribute collection. The zero value is empty and
// ready to use.
type Bag struct {
	values map[string]string
}

// Copy returns a bag sharing no mutable state with the receiver.
func (b Bag) Copy() Bag {
	if len(b.values) == 0 {
		return Bag{}
	}
	cp := make(map[string]string, len(b.values))
	for k, v := range b.values {
		cp[k] = v
	}
	return Bag{values: cp}
}

// Get returns the value for key and whether the key is set.
func (b Bag) Get(key string) (string, bool) {
	v, ok := b.values[key]
	return v, ok
}

// Has reports whether key is set.
func (b Bag) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// Set stores value under key.
func (b *Bag) Set(key, value string) {
	if b.values == nil {
		b.values = make(map[string]string)
	}
	b.values[key] = value
}

// Delete removes key. Deleting an absent key is a no-op.
func (b *Bag) Delete(key string) {
	delete(b.values, key)
}

// Len returns the number of attributes set.
func (b Bag) Len() int { return len(b.values) }

// Keys returns the set keys in sorted order.
func (b Bag) Keys() []string {
	keys := make([]string, 0, len(b.values))
	for k := range b.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Encode serialises the bag to a single string. Unset keys are absent, not
// empty. Decode(Encode(b)) restores every set key/value pair exactly.
func (b Bag) Encode() string {
	if len(b.values) == 0 {
		return ""
	}
	vals := make(url.Values, len(b.values))
	for k, v := range b.values {
		vals.Set(k, v)
	}
	return vals.Encode()
}

// Decode parses an encoded bag produced by Encode.
func Decode(encoded string) (Bag, error) {
	if encoded == "" {
		return Bag{}, nil
	}
	vals, err := url.ParseQuery(encoded)
	if err != nil {
		return Bag{}, err
	}
	b := Bag{values: make(map[string]string, len(vals))}
	for k := range vals {
		b.values[k] = vals.Get(k)
	}
	return b, nil
}

// Equal reports whether two bags hold the same key/value pairs.
func (b Bag) Equal(other Bag) bool {
	if len(b.values) != len(other.values) {
		return false
	}
	for k, v := range b.values {
		ov, ok := other.values[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}
