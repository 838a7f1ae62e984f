package reminder

import "strings"

// RepeatPolicy governs whether a record re-arms itself after firing.
// Stored as free text; anything other than empty or "none" repeats.
type RepeatPolicy string

const (
	RepeatNone  RepeatPolicy = "none"
	RepeatDaily RepeatPolicy = "daily"
)

// ParseRepeatPolicy normalizes a stored value. Blank becomes RepeatNone.
func ParseRepeatPolicy(s string) RepeatPolicy {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return RepeatNone
	}
	return RepeatPolicy(v)
}

// IsRepeating is false only for RepeatNone.
func (p RepeatPolicy) IsRepeating() bool {
	return ParseRepeatPolicy(string(p)) != RepeatNone
}
