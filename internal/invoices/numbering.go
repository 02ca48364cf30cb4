package invoices

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/khatadesk/khatadesk/internal/fiscal"
)

// Invoice numbers follow the fixed PREFIX/<serial>/<shortFY> pattern, e.g.
// INV/07/25-26. Serials are zero-padded to two digits and grow past 99
// without truncation.
var numberPattern = regexp.MustCompile(`^([A-Z]+)/(\d+)/(\d{2}-\d{2})$`)

// FormatNumber renders a document number for the kind, serial and fiscal year.
func FormatNumber(kind DocKind, serial int, shortFY string) string {
	return fmt.Sprintf("%s/%02d/%s", kind.Prefix(), serial, shortFY)
}

// ParseNumber splits a document number into its components.
func ParseNumber(number string) (prefix string, serial int, shortFY string, ok bool) {
	m := numberPattern.FindStringSubmatch(number)
	if m == nil {
		return "", 0, "", false
	}
	serial, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, "", false
	}
	return m[1], serial, m[3], true
}

// SerialIn extracts the serial from a number when it belongs to the given
// kind and fiscal year (matched in either long or short form). Used to seed
// the sequence counter above pre-existing manually numbered documents.
func SerialIn(number string, kind DocKind, fy string) (int, bool) {
	prefix, serial, shortFY, ok := ParseNumber(number)
	if !ok || prefix != kind.Prefix() {
		return 0, false
	}
	if !fiscal.Matches(shortFY, fy) {
		return 0, false
	}
	return serial, true
}
