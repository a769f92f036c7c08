package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// --- Duration Parsing Helper (handles 'd' and 'w') ---

// StrToDuration converts a string defining a time period into a time.Duration.
// On top of the units time.ParseDuration knows it accepts days ("2d") and
// weeks ("1w"). "0" means disabled.
func StrToDuration(durationStr string) (time.Duration, error) {
	durationStr = strings.TrimSpace(durationStr)
	if durationStr == "" {
		return 0, fmt.Errorf("empty duration string")
	}
	if durationStr == "0" {
		return 0, nil
	}

	splitIndex := strings.IndexFunc(durationStr, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	if splitIndex <= 0 {
		// No unit, or no number in front of it: let time.ParseDuration report it.
		return parseStd(durationStr)
	}

	numStr, unitStr := durationStr[:splitIndex], strings.ToLower(durationStr[splitIndex:])

	var hoursPerUnit float64
	switch unitStr {
	case "d":
		hoursPerUnit = 24
	case "w":
		hoursPerUnit = 7 * 24
	default:
		return parseStd(durationStr)
	}

	n, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number '%s' for unit '%s': %w", numStr, unitStr, err)
	}
	return time.Duration(n * hoursPerUnit * float64(time.Hour)), nil
}

func parseStd(durationStr string) (time.Duration, error) {
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration '%s': %w", durationStr, err)
	}
	return d, nil
}
