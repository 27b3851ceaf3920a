// Package domain contains entity without logic, just meta-data
package domain

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const MaxDisplayNameLen = 64

// Participant is one connection's presence inside one room.
type Participant struct {
	ConnID          ConnID
	DisplayName     string
	IsHost          bool
	IsMuted         bool
	IsScreenSharing bool

	// JoinSeq orders participants for host succession; lower joined earlier.
	JoinSeq  uint64
	JoinedAt time.Time
}

// DefaultDisplayName is the name given to a joiner that did not pick one.
// position is the 1-based size of the room including the joiner.
func DefaultDisplayName(position int) string {
	return "User " + strconv.Itoa(position)
}

// NormalizeDisplayName trims the requested name and caps its length.
// An empty result means the caller should fall back to DefaultDisplayName.
func NormalizeDisplayName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= MaxDisplayNameLen {
		return name
	}
	runes := []rune(name)
	return string(runes[:MaxDisplayNameLen])
}
