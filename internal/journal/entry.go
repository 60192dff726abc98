// Package journal owns the append-only collection of diary entries.
package journal

import (
	"fmt"
	"strconv"
	"strings"
)

const labelPrefix = "Entry "

// Entry is a single diary entry as persisted.
type Entry struct {
	Day   string `json:"Day"`
	Time  string `json:"Time"`
	Entry string `json:"Entry"`
}

// Record pairs an entry with its label and sequence id.
type Record struct {
	Label string `json:"label"`
	Seq   int    `json:"seq"`
	Entry Entry  `json:"entry"`
}

// Label returns the display key for a sequence id.
func Label(seq int) string {
	return labelPrefix + strconv.Itoa(seq)
}

// ParseLabel extracts the sequence id from a label of the form "Entry N".
func ParseLabel(label string) (int, error) {
	digits, ok := strings.CutPrefix(label, labelPrefix)
	if !ok {
		return 0, fmt.Errorf("journal: malformed label %q", label)
	}
	seq, err := strconv.Atoi(digits)
	if err != nil || seq < 1 || strconv.Itoa(seq) != digits {
		return 0, fmt.Errorf("journal: malformed label %q", label)
	}
	return seq, nil
}
