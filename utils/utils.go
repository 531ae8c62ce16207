package utils

import (
	"fmt"
	"time"
)

func AssertInvariant(condition bool, message string) {
	if !condition {
		panic("invariant violated - " + message)
	}
}

// FormatDiscordTimestamp formats a time as a Discord timestamp markdown tag,
// which Discord clients render in the viewer's local timezone.
// Style "F" renders a full date and time, "R" a relative time.
func FormatDiscordTimestamp(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}
