// Package props implements the ordered, dot-path addressable property store
// shared by every document element.
//
// Keys keep their insertion order so formatters can emit properties in the
// order the caller declared them. A dotted key such as "border.bottom.sz"
// addresses nested stores, which are created on demand by Set.
package props

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotSupported is returned by Remove when given a dotted path.
var ErrNotSupported = errors.New("not supported")

// Store is an insertion-ordered mapping of keys to values. Nested maps are
// held as *Store values.
type Store struct {
	keys   []string
	values map[string]any
}

// New returns an empty store.
func New() *Store {
	return &Store{values: make(map[string]any)}
}

// FromMap builds a store from a plain map. Keys are added in sorted order
// since map iteration order is undefined; nested maps become nested stores.
func FromMap(m map[string]any) *Store {
	s := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.Set(k, m[k])
	}
	return s
}

// Set stores value under path. Intermediate stores are created as needed;
// an intermediate scalar is replaced by a new store.
func (s *Store) Set(path string, value any) *Store {
	s.init()
	segments := strings.Split(path, ".")
	cur := s
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur.values[seg].(*Store)
		if !ok {
			next = New()
			cur.put(seg, next)
		}
		cur = next
	}
	cur.put(segments[len(segments)-1], normalize(value))
	return s
}

// Get returns the value at path or def when any segment is missing or an
// intermediate segment is not a nested store.
func (s *Store) Get(path string, def any) any {
	if v, ok := s.lookup(path); ok {
		return v
	}
	return def
}

// Has reports whether a value exists at path.
func (s *Store) Has(path string) bool {
	_, ok := s.lookup(path)
	return ok
}

// String returns the value at path formatted as a string, or def.
func (s *Store) String(path, def string) string {
	v, ok := s.lookup(path)
	if !ok || v == nil {
		return def
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Store returns the nested store at path, or nil.
func (s *Store) Store(path string) *Store {
	v, _ := s.lookup(path)
	sub, _ := v.(*Store)
	return sub
}

// Remove deletes a top-level key. Dotted paths are rejected.
func (s *Store) Remove(key string) error {
	if strings.Contains(key, ".") {
		return fmt.Errorf("remove %q: dotted keys are %w", key, ErrNotSupported)
	}
	if s == nil || s.values == nil {
		return nil
	}
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	return nil
}

// Merge copies every key of other into s, recursing into nested stores.
// Values from other win on conflict.
func (s *Store) Merge(other *Store) *Store {
	s.init()
	if other == nil {
		return s
	}
	for _, k := range other.keys {
		ov := other.values[k]
		if sub, ok := ov.(*Store); ok {
			if mine, ok := s.values[k].(*Store); ok {
				mine.Merge(sub)
				continue
			}
		}
		s.put(k, normalize(ov))
	}
	return s
}

// All returns a deep snapshot of the store as plain maps.
func (s *Store) All() map[string]any {
	out := make(map[string]any, s.Len())
	if s == nil {
		return out
	}
	for _, k := range s.keys {
		if sub, ok := s.values[k].(*Store); ok {
			out[k] = sub.All()
			continue
		}
		out[k] = s.values[k]
	}
	return out
}

// Keys returns the top-level keys in insertion order.
func (s *Store) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.keys...)
}

// Len returns the number of top-level keys.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// IsEmpty reports whether the store holds no keys.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Clone returns a deep copy.
func (s *Store) Clone() *Store {
	c := New()
	if s == nil {
		return c
	}
	for _, k := range s.keys {
		c.put(k, normalize(s.values[k]))
	}
	return c
}

func (s *Store) init() {
	if s.values == nil {
		s.values = make(map[string]any)
	}
}

func (s *Store) put(key string, value any) {
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

func (s *Store) lookup(path string) (any, bool) {
	if s == nil || s.values == nil {
		return nil, false
	}
	segments := strings.Split(path, ".")
	cur := s
	for i, seg := range segments {
		v, ok := cur.values[seg]
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return v, true
		}
		next, ok := v.(*Store)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// normalize copies values so a store never aliases caller-owned maps,
// slices or stores.
func normalize(value any) any {
	switch v := value.(type) {
	case *Store:
		return v.Clone()
	case map[string]any:
		return FromMap(v)
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[k] = val
		}
		return FromMap(m)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return value
	}
}
