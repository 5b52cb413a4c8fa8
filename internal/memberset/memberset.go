// Package memberset implements the MemberSet value shape: a compact
// sorted-integer form that transparently upgrades to a general hash-set
// form the first time it sees a non-integer member or runs out of
// capacity.
package memberset

import (
	"strconv"

	"github.com/pomai-cache/corekv/internal/intset"
)

// Encoding tags which internal form backs a MemberSet.
type Encoding int

const (
	EncodingCompact Encoding = iota
	EncodingGeneral
)

func (e Encoding) String() string {
	if e == EncodingGeneral {
		return "general"
	}
	return "compact"
}

// MemberSet is an unordered collection of unique string members,
// encoded compactly while every member is an integer and small cap
// allows it.
type MemberSet struct {
	encoding Encoding
	compact  *intset.IntSet
	general  map[string]struct{}
}

// New returns an empty MemberSet starting in the compact encoding.
func New(cap int) *MemberSet {
	return &MemberSet{
		encoding: EncodingCompact,
		compact:  intset.New(cap),
	}
}

// Encoding reports the current internal form.
func (m *MemberSet) Encoding() Encoding { return m.encoding }

// Add inserts member. It reports whether the member was newly added
// and whether this call triggered an upgrade to the general encoding.
func (m *MemberSet) Add(member string) (added bool, upgraded bool) {
	if m.encoding == EncodingGeneral {
		if _, ok := m.general[member]; ok {
			return false, false
		}
		m.general[member] = struct{}{}
		return true, false
	}

	v, err := strconv.ParseInt(member, 10, 64)
	if err != nil {
		m.upgrade()
		added, _ := m.Add(member)
		return added, true
	}

	switch m.compact.Add(v) {
	case intset.Added:
		return true, false
	case intset.Present:
		return false, false
	default: // UpgradeRequired
		m.upgrade()
		added, _ := m.Add(member)
		return added, true
	}
}

func (m *MemberSet) upgrade() {
	m.general = m.compact.UpgradeToGeneral()
	m.compact = nil
	m.encoding = EncodingGeneral
}

// Has reports whether member is present.
func (m *MemberSet) Has(member string) bool {
	if m.encoding == EncodingGeneral {
		_, ok := m.general[member]
		return ok
	}
	v, err := strconv.ParseInt(member, 10, 64)
	if err != nil {
		return false
	}
	return m.compact.Has(v)
}

// Delete removes member, reporting whether it was present.
func (m *MemberSet) Delete(member string) bool {
	if m.encoding == EncodingGeneral {
		if _, ok := m.general[member]; !ok {
			return false
		}
		delete(m.general, member)
		return true
	}
	v, err := strconv.ParseInt(member, 10, 64)
	if err != nil {
		return false
	}
	return m.compact.Delete(v)
}

// Size returns the member count.
func (m *MemberSet) Size() int {
	if m.encoding == EncodingGeneral {
		return len(m.general)
	}
	return m.compact.Size()
}

// Members returns every member as a string, in no particular order for
// the general encoding and ascending numeric order for the compact one.
func (m *MemberSet) Members() []string {
	if m.encoding == EncodingGeneral {
		out := make([]string, 0, len(m.general))
		for k := range m.general {
			out = append(out, k)
		}
		return out
	}
	values := m.compact.Values()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.FormatInt(v, 10)
	}
	return out
}
