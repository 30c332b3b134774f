package helpers

import (
	"fmt"
	"strconv"
	"strings"
)

// MinNumberWidth is the digit count used for every pool of up to 1000 numbers.
const MinNumberWidth = 3

// NumberWidth returns how many digits the numbers of a pool of total tickets
// are padded to.
func NumberWidth(total int) int {
	if total <= 1 {
		return MinNumberWidth
	}
	w := len(strconv.Itoa(total - 1))
	if w < MinNumberWidth {
		return MinNumberWidth
	}
	return w
}

func FormatNumber(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TrimNumbers trims every entry and reports the first duplicate, if any.
func TrimNumbers(numbers []string) ([]string, string) {
	seen := make(map[string]struct{}, len(numbers))
	out := make([]string, 0, len(numbers))
	for _, n := range numbers {
		n = strings.TrimSpace(n)
		if _, dup := seen[n]; dup {
			return nil, n
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, ""
}

// NullableString maps "" to nil so optional columns are stored as NULL.
func NullableString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
