// Package formatting converts byte sizes between counts and the
// human-readable strings used in configuration files and log output.
package formatting

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const kib = 1024

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

var sizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([A-Za-z]{0,3})$`)

// FormatBytes renders n with the largest base-1024 unit that keeps the value at
// or above one, using the given number of decimal places.
func FormatBytes(n int64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	if n < kib {
		return fmt.Sprintf("%d B", n)
	}

	value := float64(n)
	unit := 0
	for value >= kib && unit < len(sizeUnits)-1 {
		value /= kib
		unit++
	}

	return strconv.FormatFloat(value, 'f', precision, 64) + " " + sizeUnits[unit]
}

// ParseBytes parses sizes such as "64MB", "1.5 GB", "512kb" or "2048".
// A missing unit means bytes; the "iB" suffix forms (MiB, GiB) are accepted.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number %q: %w", m[1], err)
	}

	unit := strings.ToUpper(m[2])
	if len(unit) == 3 && unit[1] == 'I' {
		unit = unit[:1] + "B"
	}
	if unit == "" {
		unit = "B"
	}

	multiplier := int64(1)
	for _, u := range sizeUnits {
		if u == unit {
			return int64(value * float64(multiplier)), nil
		}
		multiplier *= kib
	}

	return 0, fmt.Errorf("unknown byte size unit: %q", m[2])
}
