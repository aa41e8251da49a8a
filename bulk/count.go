package bulk

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	// ErrNoCount is returned by ParseCount for labels without a number.
	ErrNoCount = errors.New("no count in label")
	// ErrCountMismatch is returned when a count shown by the portal differs
	// from the expected one.
	ErrCountMismatch = errors.New("count mismatch")
	// ErrNotDeleted is returned when deleted users are still found.
	ErrNotDeleted = errors.New("users not deleted")
)

var countPattern = regexp.MustCompile(`\d+`)

// ParseCount returns the number in a label such as "12 valid" or
// "Users to be deleted (3)". With several numbers the last one wins.
func ParseCount(label string) (int, error) {
	matches := countPattern.FindAllString(label, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoCount, label)
	}
	n, err := strconv.Atoi(matches[len(matches)-1])
	if err != nil {
		return 0, fmt.Errorf("parsing count of %q: %w", label, err)
	}
	return n, nil
}

func expectCount(what string, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: %s is %d, want %d", ErrCountMismatch, what, got, want)
	}
	return nil
}
