package invoice

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const prefixLayout = "200601"

// NumberPrefix returns the YYYYMM prefix of invoices issued on asOf.
func NumberPrefix(asOf time.Time) string {
	return asOf.Format(prefixLayout)
}

// FormatNumber joins a prefix and a sequence, zero-padding the sequence to
// four digits.
func FormatNumber(prefix string, seq int) string {
	return fmt.Sprintf("%s%04d", prefix, seq)
}

// Sequence extracts the numeric suffix of number under prefix.
func Sequence(prefix, number string) (int, bool) {
	rest, ok := strings.CutPrefix(number, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextFrom returns the number following the highest sequence in existing
// that carries the prefix of asOf. Numbers of other months are ignored, so
// the sequence restarts at 0001 each month.
func NextFrom(existing []string, asOf time.Time) string {
	prefix := NumberPrefix(asOf)
	highest := 0
	for _, number := range existing {
		if n, ok := Sequence(prefix, number); ok && n > highest {
			highest = n
		}
	}
	return FormatNumber(prefix, highest+1)
}
