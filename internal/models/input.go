package models

import (
	"fmt"
	"strings"
	"time"
)

// ParseTags splits comma-separated tag text into a tag sequence,
// trimming whitespace and discarding empty entries.
func ParseTags(text string) []string {
	tags := make([]string, 0)
	for _, part := range strings.Split(text, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

// ParseDueDate accepts either a calendar date (2006-01-02), read as
// midnight UTC, or a full RFC 3339 timestamp.
func ParseDueDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if t, err := time.Parse(time.DateOnly, text); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: expected YYYY-MM-DD or RFC 3339", text)
	}
	return t.UTC(), nil
}
