// Package fiscal normalises Indian fiscal-year labels. The accounting period
// runs April through March and appears in documents in a long form
// ("2025-2026") and a short form ("25-26"); the short form is canonical.
package fiscal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Short normalises a fiscal-year label to the canonical "YY-YY" form.
// Accepted inputs: "2025-2026", "2025-26", "25-26". Anything else returns
// an error so malformed labels never reach document numbers.
func Short(fy string) (string, error) {
	parts := strings.SplitN(strings.TrimSpace(fy), "-", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("fiscal: malformed year %q", fy)
	}
	start, err := twoDigit(parts[0])
	if err != nil {
		return "", fmt.Errorf("fiscal: malformed year %q", fy)
	}
	end, err := twoDigit(parts[1])
	if err != nil {
		return "", fmt.Errorf("fiscal: malformed year %q", fy)
	}
	if (end-start+100)%100 != 1 {
		return "", fmt.Errorf("fiscal: %q does not span consecutive years", fy)
	}
	return fmt.Sprintf("%02d-%02d", start, end), nil
}

// Long expands a label to the "YYYY-YYYY" form, assuming the 2000s for
// two-digit input. Kept for matching legacy rows that stored the long form.
func Long(fy string) (string, error) {
	short, err := Short(fy)
	if err != nil {
		return "", err
	}
	start, _ := strconv.Atoi(short[:2])
	return fmt.Sprintf("%d-%d", 2000+start, 2000+start+1), nil
}

// ForDate returns the short fiscal year containing t (April–March).
func ForDate(t time.Time) string {
	year := t.Year()
	if t.Month() < time.April {
		year--
	}
	return fmt.Sprintf("%02d-%02d", year%100, (year+1)%100)
}

// Matches reports whether a stored label denotes the same fiscal year as fy,
// regardless of which form either side uses.
func Matches(stored, fy string) bool {
	a, err := Short(stored)
	if err != nil {
		return false
	}
	b, err := Short(fy)
	if err != nil {
		return false
	}
	return a == b
}

func twoDigit(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("fiscal: bad year component %q", s)
	}
	return n % 100, nil
}
