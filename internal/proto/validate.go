package proto

import (
	"regexp"
	"strconv"
)

// Display names: letters, digits, spaces and light punctuation, 2-20 runes.
var nameRE = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} _.-]{1,19}$`)

// ValidName reports whether the display name is acceptable.
func ValidName(name string) bool {
	return nameRE.MatchString(name)
}

// ParseRoomID parses the wire form of a room id. Room ids are positive
// integers; whether the room exists is decided deeper in.
func ParseRoomID(s string) (uint64, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
