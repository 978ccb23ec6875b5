package entities

import "slices"

// AttendeeSet is an ordered, duplicate-free list of user IDs.
// The zero value is an empty set ready to use.
type AttendeeSet struct {
	ids []string
}

// NewAttendeeSet builds a set from ids, keeping first occurrences and dropping blanks.
func NewAttendeeSet(ids ...string) AttendeeSet {
	var s AttendeeSet
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s AttendeeSet) Len() int { return len(s.ids) }

func (s AttendeeSet) Contains(id string) bool {
	return slices.Contains(s.ids, id)
}

// Add appends id and reports whether the set changed.
func (s *AttendeeSet) Add(id string) bool {
	if id == "" || s.Contains(id) {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Remove deletes id and reports whether the set changed.
func (s *AttendeeSet) Remove(id string) bool {
	i := slices.Index(s.ids, id)
	if i < 0 {
		return false
	}
	s.ids = slices.Delete(s.ids, i, i+1)
	return true
}

// IDs returns a copy of the members in insertion order.
func (s AttendeeSet) IDs() []string {
	return slices.Clone(s.ids)
}

// WithHost returns the members with host prepended when it is not stored.
func (s AttendeeSet) WithHost(host string) []string {
	if host == "" || s.Contains(host) {
		return s.IDs()
	}
	return append([]string{host}, s.ids...)
}

func (s AttendeeSet) Clone() AttendeeSet {
	return AttendeeSet{ids: slices.Clone(s.ids)}
}
