package maintenance

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// formatCount renders a cycle count rounded to the nearest whole cycle with
// thousands separators, e.g. 18100 -> "18,100" and -4000 -> "-4,000".
func formatCount(value float64) string {
	n := int64(math.Round(value))

	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return sign + digits
	}

	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	return sign + strings.Join(groups, ",")
}

// formatRatio renders a remaining-capacity percentage with one decimal.
func formatRatio(value float64) string {
	return fmt.Sprintf("%.1f", value)
}
