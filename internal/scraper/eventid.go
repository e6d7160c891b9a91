package scraper

import (
	"fmt"
	"regexp"
)

var digitRun = regexp.MustCompile(`\d+`)

// ExtractNumericID returns the first run of decimal digits in id,
// e.g. "1234" for "1234-polish-open-2025".
func ExtractNumericID(id string) (string, error) {
	match := digitRun.FindString(id)
	if match == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return match, nil
}
